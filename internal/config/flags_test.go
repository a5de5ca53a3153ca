package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		name        string
		args        []string
		expected    Config
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"cmd", "-a", "https://api.example/v1", "-d", "/tmp/s.db", "-l", "20", "-t", "10", "-v", "sync"},
			expected: Config{
				ServerURL:    "https://api.example/v1",
				DatabasePath: "/tmp/s.db",
				PageLimit:    20,
				HTTPTimeout:  10 * time.Second,
				Verbose:      true,
			},
		},
		{
			name:        "bad page limit",
			args:        []string{"cmd", "-l", "abc"},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			cfg := &Config{}
			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(cfg) })
				return
			}
			require.NotPanics(t, func() { parseFlags(cfg) })
			assert.Equal(t, tt.expected, *cfg)
		})
	}
}
