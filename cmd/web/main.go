// cmd/web/main.go
//
// Atelier – HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Start the daily rotating logger (tees to console when running in a
//     TTY).
//
//  2. Build the Vault client when VAULT_ADDR is set, then load and
//     validate the configuration tree (.env → global.yaml → ATELIER_ env
//     overrides, with `vault:` references resolved).
//
//  3. Open the MySQL pool, apply embedded goose migrations.
//
//  4. Open the GeoLite2 database when configured.
//
//  5. Wire services (blog, portfolio, settings, visits, sessions) and the
//     chi router, wrap with ForceHTTPS when enabled, and serve with
//     hardened timeouts.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/atelier-cms/atelier/internal/api"
	"github.com/atelier-cms/atelier/internal/auth"
	"github.com/atelier-cms/atelier/internal/blog"
	"github.com/atelier-cms/atelier/internal/config"
	"github.com/atelier-cms/atelier/internal/database"
	"github.com/atelier-cms/atelier/internal/logger"
	"github.com/atelier-cms/atelier/internal/middleware"
	"github.com/atelier-cms/atelier/internal/portfolio"
	"github.com/atelier-cms/atelier/internal/requestinfo"
	"github.com/atelier-cms/atelier/internal/server"
	"github.com/atelier-cms/atelier/internal/settings"
	"github.com/atelier-cms/atelier/internal/uploads"
	"github.com/atelier-cms/atelier/internal/vault"
	"github.com/atelier-cms/atelier/internal/visits"
)

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	rootDir, _ := os.Getwd()
	logOut, err := logger.New(rootDir, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}
	defer logOut.Sync()

	ctx := context.Background()

	//
	// ── 1.  Vault (optional) and configuration ──────────────────────────
	//
	var vc *vault.Client
	if os.Getenv("VAULT_ADDR") != "" {
		vc, err = vault.New(ctx, logOut.Infof)
		if err != nil {
			logOut.Fatalf("vault client: %v", err)
		}
	}
	cfg, err := config.Load(ctx, vc)
	if err != nil {
		logOut.Fatalf("load config: %v", err)
	}

	//
	// ── 2.  Database + migrations ───────────────────────────────────────
	//
	db, err := database.Open(cfg.Database.FullDSN())
	if err != nil {
		logOut.Fatalf("connect DB: %v", err)
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		logOut.Fatalf("migrate: %v", err)
	}
	logOut.Infow("database online")

	// The uploader assumes both tiers' directories exist.
	if err := os.MkdirAll(filepath.Join(cfg.Uploads.Dir, uploads.MobileDir), 0o755); err != nil {
		logOut.Fatalf("create uploads dir: %v", err)
	}

	//
	// ── 3.  GeoLite2 (optional) ─────────────────────────────────────────
	//
	if cfg.Geo.DBPath != "" {
		requestinfo.InitGeo(cfg.Geo.DBPath)
		logOut.Infow("geo lookup online", "db", cfg.Geo.DBPath)
	}

	//
	// ── 4.  Services and router ─────────────────────────────────────────
	//
	sessions := auth.NewStore(db, logOut, cfg.Auth.CookieName,
		time.Duration(cfg.Auth.SessionTTL)*time.Hour)
	blogSvc := blog.NewService(db, logOut, cfg.Uploads.Dir)
	portfolioSvc := portfolio.NewService(db, logOut, cfg.Uploads.Dir)
	settingsSvc := settings.NewService(db, logOut)
	recorder := visits.NewRecorder(db, logOut)

	handler := api.NewRouter(api.Deps{
		Auth:      api.NewAuthHandler(sessions),
		Blog:      api.NewBlogHandler(blogSvc),
		Portfolio: api.NewPortfolioHandler(portfolioSvc),
		Settings:  api.NewSettingsHandler(settingsSvc),
		Public:    api.NewPublicHandler(blogSvc, portfolioSvc, settingsSvc, recorder),
		Sessions:  sessions,
	})
	if cfg.HTTP.ForceHTTPS {
		handler = middleware.ForceHTTPS(handler)
	}

	//
	// ── 5.  Serve ───────────────────────────────────────────────────────
	//
	srv := server.New(cfg.HTTP.ListenAddr, handler)
	logOut.Infow("listening", "addr", cfg.HTTP.ListenAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logOut.Fatalf("http server: %v", err)
	}
}
