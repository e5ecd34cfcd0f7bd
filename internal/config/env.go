package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Paths locates the files telehud reads and writes.
type Paths struct {
	Config string `env:"TELEHUD_CONFIG"`
	DB     string `env:"TELEHUD_DB"`
	Log    string `env:"TELEHUD_LOG"`
}

// ResolvePaths returns XDG defaults overridden by environment variables.
func ResolvePaths() (Paths, error) {
	var p Paths
	if err := env.Parse(&p); err != nil {
		return Paths{}, fmt.Errorf("parse env: %w", err)
	}
	if p.Config == "" {
		p.Config = DefaultConfigPath()
	}
	if p.DB == "" {
		p.DB = DefaultDBPath()
	}
	if p.Log == "" {
		p.Log = DefaultLogPath()
	}
	return p, nil
}
