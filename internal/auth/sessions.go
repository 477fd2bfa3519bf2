// internal/auth/sessions.go
//
// Cookie-backed admin sessions.
//
// Context
// -------
// One admin user edits the site.  Login verifies the Argon2id hash, mints
// a random 32-byte token, stores it in the sessions table, and sets it as
// an HttpOnly cookie.  The middleware resolves the cookie back to a user
// id on every request; handlers behind RequireUser get a 401 when no valid
// session exists.
//
// Expired rows are ignored on lookup and reaped opportunistically on
// login, so no background sweeper is needed at this traffic level.
package auth

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// ErrBadCredentials covers unknown e-mail and wrong password alike, so the
// login response never reveals which one failed.
var ErrBadCredentials = errors.New("auth: bad credentials")

// Store manages users and their sessions.
type Store struct {
	db         *sqlx.DB
	log        *zap.SugaredLogger
	cookieName string
	ttl        time.Duration
}

// NewStore wires a Store to the shared pool.
func NewStore(db *sqlx.DB, log *zap.SugaredLogger, cookieName string, ttl time.Duration) *Store {
	return &Store{db: db, log: log, cookieName: cookieName, ttl: ttl}
}

// Login verifies credentials and, on success, writes the session cookie.
func (s *Store) Login(ctx context.Context, w http.ResponseWriter, r *http.Request, email, password string) error {
	var row struct {
		ID       int64  `db:"id"`
		Password string `db:"password"`
	}
	err := sqlx.GetContext(ctx, s.db, &row,
		`SELECT id, password FROM users WHERE email = ? LIMIT 1`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrBadCredentials
	}
	if err != nil {
		return fmt.Errorf("auth: lookup user: %w", err)
	}
	if !VerifyPassword(password, row.Password) {
		return ErrBadCredentials
	}

	// Opportunistic cleanup keeps the table small.
	_, _ = s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < NOW()`)

	token, err := newToken()
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, expires_at) VALUES (?, ?, ?)`,
		token, row.ID, time.Now().Add(s.ttl)); err != nil {
		return fmt.Errorf("auth: insert session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(s.ttl),
	})
	s.log.Infow("admin login", "user", row.ID)
	return nil
}

// Logout deletes the session row and clears the cookie.
func (s *Store) Logout(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(s.cookieName); err == nil && c.Value != "" {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, c.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// Middleware resolves the session cookie to a user id and stores it in the
// request context.  Requests without a valid session pass through
// unauthenticated; RequireUser draws the line.
func (s *Store) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(s.cookieName)
		if err != nil || c.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		var userID int64
		err = sqlx.GetContext(r.Context(), s.db, &userID,
			`SELECT user_id FROM sessions WHERE token = ? AND expires_at > NOW() LIMIT 1`,
			c.Value)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), userID)))
	})
}

// RequireUser rejects unauthenticated requests with 401.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserID(r.Context()); !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// newToken returns 32 random bytes, hex-encoded.
func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("auth: token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
