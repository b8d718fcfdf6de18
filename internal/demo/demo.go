// Package demo is a small application built on the isomorph scaffold: a
// home page, an about page showing the server settings, and user pages
// read from a SQLite user directory.
package demo

import (
	_ "embed"
	"log/slog"

	"github.com/roach88/isomorph/internal/config"
	"github.com/roach88/isomorph/internal/engine"
	"github.com/roach88/isomorph/internal/errs"
	"github.com/roach88/isomorph/internal/routecfg"
	"github.com/roach88/isomorph/internal/userdir"
)

//go:embed routes.yaml
var routesYAML []byte

//go:embed shell.html
var shellHTML string

// Shell returns the embedded page shell.
func Shell() string {
	return shellHTML
}

// DefaultRoutes returns the embedded route table.
func DefaultRoutes() (*routecfg.Table, error) {
	return routecfg.Parse("routes.yaml", routesYAML)
}

// Options configures the demo application.
type Options struct {
	Config    config.Config
	Directory *userdir.Directory

	// Routes replaces the embedded route table.
	Routes *routecfg.Table

	Logger *slog.Logger
	IDs    engine.IDGenerator
}

// New builds the application's root Context: Stores, actions and routes.
// Requests and page loads work on children of it.
func New(opts Options) (*engine.Context, error) {
	if opts.Directory == nil {
		return nil, errs.Configuration("", "missing a user directory")
	}

	table := opts.Routes
	if table == nil {
		var err error
		if table, err = DefaultRoutes(); err != nil {
			return nil, err
		}
	}

	var copts []engine.Option
	if opts.Logger != nil {
		copts = append(copts, engine.WithLogger(opts.Logger))
	}
	if opts.IDs != nil {
		copts = append(copts, engine.WithIDGenerator(opts.IDs))
	}
	c := engine.New(copts...)

	registerStores(c, opts.Config)
	registerActions(c, opts.Directory)
	if err := routecfg.Apply(c, table, Registry()); err != nil {
		return nil, err
	}
	return c, nil
}
