// Package config reads the server configuration from the environment.
package config

import (
	"fmt"
	"strconv"

	"github.com/caarlos0/env/v11"

	"github.com/roach88/isomorph/internal/errs"
	"github.com/roach88/isomorph/internal/value"
)

// Config is the server configuration.
type Config struct {
	// Env names the deployment, e.g. "dev" or "production".
	Env  string `env:"ISOMORPH_ENV" envDefault:"dev"`
	Port int    `env:"PORT" envDefault:"8080"`

	// Routes is a YAML or CUE route table. Empty uses the embedded demo
	// table.
	Routes string `env:"ISOMORPH_ROUTES"`

	// Template is the page shell. Empty uses the embedded shell.
	Template string `env:"ISOMORPH_TEMPLATE"`

	// DB is the user directory database path.
	DB string `env:"ISOMORPH_DB" envDefault:":memory:"`

	// Global is the window property carrying the Context snapshot.
	Global string `env:"ISOMORPH_GLOBAL" envDefault:"LITTLEST_ISOMORPH_CONTEXT"`
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	return parse(env.Options{})
}

// LoadFrom reads the configuration from environ instead of the process
// environment.
func LoadFrom(environ map[string]string) (Config, error) {
	if environ == nil {
		environ = map[string]string{}
	}
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values Load cannot check by type alone.
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return errs.Configuration("PORT", "port %d out of range", c.Port)
	}
	if c.Env == "" {
		return errs.Configuration("ISOMORPH_ENV", "environment name is empty")
	}
	if c.DB == "" {
		return errs.Configuration("ISOMORPH_DB", "database path is empty")
	}
	return nil
}

// Addr returns the listen address for Port.
func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

// Object returns the settings the about page shows.
func (c Config) Object() value.Object {
	return value.Object{
		"env":  value.String(c.Env),
		"port": value.Int(int64(c.Port)),
	}
}
