package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/routesales/internal/flagx"
)

// parseFlags overlays Config with command-line flags:
//
//	-a string   base URL of the sales backend
//	-d string   path to the local sqlite database
//	-l int      download page size
//	-t int      HTTP request timeout in seconds
//	-v          verbose logging
//
// os.Args is filtered through flagx.FilterArgs so the subcommand and its
// arguments do not confuse the parser.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-l", "-t", "-v"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the sales backend")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the local database")
	fs.IntVar(&cfg.PageLimit, "l", cfg.PageLimit, "download page size")
	timeout := fs.Int("t", int(cfg.HTTPTimeout.Seconds()), "HTTP timeout (in seconds)")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "verbose logging")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.HTTPTimeout = time.Duration(*timeout) * time.Second
}
