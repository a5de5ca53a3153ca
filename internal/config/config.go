// Package config assembles runtime settings for the sync CLI from three
// layers: built-in defaults, an optional JSON file (-c/-config), and
// command-line flags. Later layers win.
package config

import "time"

// Config holds runtime settings for the CLI.
type Config struct {
	// ServerURL is the base URL of the sales backend, including any path
	// prefix, e.g. "https://api.example.com/v1".
	ServerURL string
	// DatabasePath is the sqlite file holding the local cache.
	DatabasePath string
	// PageLimit is the batch size requested per download page.
	PageLimit int
	// HTTPTimeout bounds each API request.
	HTTPTimeout time.Duration
	// Verbose enables debug logging.
	Verbose bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080/api/v1"
	c.DatabasePath = "routesales.db"
	c.PageLimit = 100
	c.HTTPTimeout = 30 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if a file is given) and command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
