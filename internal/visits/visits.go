// internal/visits/visits.go
//
// Page-view recording for the public site.
//
// Context
// -------
// Every public page hit is stored as one visits row built from the
// *RequestInfo the enrichment middleware attached upstream: parsed
// user-agent, best-effort geolocation, and the referer.  The same event
// increments the Prometheus counter, so dashboards and the admin's visit
// log stay in sync.
//
// Recording is best-effort.  A failed insert is logged and swallowed so a
// metrics hiccup never breaks page rendering.
package visits

import (
	"context"
	"net/http"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/atelier-cms/atelier/internal/metrics"
	"github.com/atelier-cms/atelier/internal/requestinfo"
)

// Page labels a visit with the surface that produced it.
type Page string

const (
	PageHome      Page = "home"
	PageBlog      Page = "blog"
	PageArticle   Page = "article"
	PagePortfolio Page = "portfolio"
	PageProject   Page = "project"
)

// Visit is one recorded page view.
type Visit struct {
	ID       int64   `db:"id"        json:"id"`
	Page     string  `db:"page"      json:"page"`
	TargetID *int64  `db:"target_id" json:"target_id"`
	Country  *string `db:"country"   json:"country"`
	City     *string `db:"city"      json:"city"`
	Browser  *string `db:"browser"   json:"browser"`
	OS       *string `db:"os"        json:"os"`
	Device   *string `db:"device"    json:"device"`
	IsBot    bool    `db:"is_bot"    json:"is_bot"`
	Referer  *string `db:"referer"   json:"referer"`
}

// Recorder persists visits and feeds the Prometheus counter.
type Recorder struct {
	db  *sqlx.DB
	log *zap.SugaredLogger
}

// NewRecorder wires a Recorder to the shared pool.
func NewRecorder(db *sqlx.DB, log *zap.SugaredLogger) *Recorder {
	return &Recorder{db: db, log: log}
}

// Record stores one page view.  targetID points at the article or project
// being read; pass nil for list and landing pages.
func (rec *Recorder) Record(ctx context.Context, r *http.Request, page Page, targetID *int64) {
	const stmt = `
        INSERT INTO visits
            (page, target_id, country, city, browser, os, device, is_bot, referer)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var (
		country, city, browser, os, device *string
		isBot                              bool
	)
	if info := requestinfo.FromContext(ctx); info != nil {
		country = optional(info.Geo.CountryISO)
		city = optional(info.Geo.City)
		browser = optional(info.UA.Browser)
		os = optional(info.UA.OS)
		device = optional(info.UA.Device)
		isBot = info.UA.IsBot
	}

	_, err := rec.db.ExecContext(ctx, stmt,
		string(page), targetID, country, city, browser, os, device, isBot,
		optional(r.Referer()))
	if err != nil {
		rec.log.Warnw("visit insert failed", "page", page, "err", err)
		return
	}
	metrics.VisitsTotal.WithLabelValues(string(page)).Inc()
}

// Recent returns the latest n visits for the admin dashboard.
func (rec *Recorder) Recent(ctx context.Context, n int) ([]Visit, error) {
	const stmt = `
        SELECT id, page, target_id, country, city, browser, os, device, is_bot, referer
        FROM   visits
        ORDER  BY id DESC
        LIMIT  ?`

	var rows []Visit
	if err := sqlx.SelectContext(ctx, rec.db, &rows, stmt, n); err != nil {
		return nil, err
	}
	return rows, nil
}

// optional maps "" to NULL.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
