package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/routesales/internal/flagx"
	"github.com/dmitrijs2005/routesales/internal/timex"
)

// JsonConfig is the DTO for the optional JSON config file. timex.Duration
// lets the timeout be written either as "30s" or as integer nanoseconds.
// Absent keys leave the corresponding Config field untouched.
type JsonConfig struct {
	ServerURL    string         `json:"server_url"`
	DatabasePath string         `json:"database_path"`
	PageLimit    int            `json:"page_limit"`
	HTTPTimeout  timex.Duration `json:"http_timeout"`
	Verbose      *bool          `json:"verbose"`
}

// parseJson overlays Config with values from the JSON file named by the
// -c/-config flag. With no flag the function is a no-op. Read and decode
// errors panic: a config file that exists but cannot be used is operator
// error, not something to silently skip.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.PageLimit > 0 {
		cfg.PageLimit = jc.PageLimit
	}
	if jc.HTTPTimeout.Duration > 0 {
		cfg.HTTPTimeout = jc.HTTPTimeout.Duration
	}
	if jc.Verbose != nil {
		cfg.Verbose = *jc.Verbose
	}
}
