// internal/config/model.go
//
// Typed configuration model for Atelier.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                          – dotenv values,
//   • `conf/global.yaml`                       – primary static file,
//   • `ATELIER_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the Vault client *after* unmarshalling, so the rest of the app
// only ever sees plain strings.
//
// Validation happens immediately after unmarshal; the app fails fast if
// required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`—Koanf ignores `yaml` tags
//     unless configured otherwise.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.  No em-dash.

package config

import "strings"

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
	ForceHTTPS bool   `koanf:"force_https"`
}

//
// Database section
//

// Database holds the DSN template and its secret.
//
// The *template* (`DSN`) is kept in YAML so operators can tweak host,
// port, or flags without touching Vault.  The *secret* portion
// (`Password`) is stored in Vault and injected at runtime, keeping
// credentials out of flat files and git history.
type Database struct {
	DSN      string `koanf:"dsn"      validate:"required"`
	Password string `koanf:"password" validate:"required"`
}

// FullDSN substitutes the resolved password into the DSN template's
// `${password}` placeholder.  Templates without the placeholder pass
// through unchanged.
func (d Database) FullDSN() string {
	return strings.ReplaceAll(d.DSN, "${password}", d.Password)
}

//
// Uploads section
//

// Uploads points at the directory the image pipeline writes derivatives
// into.  The `mobile/` subdirectory is created on demand.
type Uploads struct {
	Dir string `koanf:"dir" validate:"required"`
}

//
// Geo section
//

// Geo configures the optional MaxMind GeoLite2 lookup used by the visit
// log.  An empty path disables geolocation; visits are still recorded.
type Geo struct {
	DBPath string `koanf:"db_path"`
}

//
// Auth section
//

// Auth holds admin-session tunables.
type Auth struct {
	CookieName string `koanf:"cookie_name" validate:"required"`
	SessionTTL int    `koanf:"session_ttl_hours" validate:"gt=0"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime—never set in YAML or env.  The loader
// discovers `Root` (repo root or ATELIER_ROOT override) so later code can
// build absolute file paths.
type Paths struct {
	Root string // ATELIER_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Database Database `koanf:"database"`
	Uploads  Uploads  `koanf:"uploads"`
	Geo      Geo      `koanf:"geo"`
	Auth     Auth     `koanf:"auth"`
	Paths    Paths    `koanf:"-"` // not loaded from config files
}
