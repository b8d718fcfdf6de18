package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/isomorph/internal/config"
	"github.com/roach88/isomorph/internal/demo"
	"github.com/roach88/isomorph/internal/engine"
	"github.com/roach88/isomorph/internal/navigator"
	"github.com/roach88/isomorph/internal/render"
	"github.com/roach88/isomorph/internal/routecfg"
	"github.com/roach88/isomorph/internal/userdir"
)

// appFlags are the flags of commands that build the application. Empty
// flags fall back to the environment (see config.Config).
type appFlags struct {
	routes   string
	template string
	db       string
	users    string
}

func (f *appFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.routes, "routes", "", "route table (.yaml, .yml or .cue); default $ISOMORPH_ROUTES or the built-in table")
	cmd.Flags().StringVar(&f.template, "template", "", "page shell HTML; default $ISOMORPH_TEMPLATE or the built-in shell")
	cmd.Flags().StringVar(&f.db, "db", "", "user directory database; default $ISOMORPH_DB or :memory:")
	cmd.Flags().StringVar(&f.users, "users", "", "YAML list of users to seed the directory with")
}

// app is a built application ready to serve.
type app struct {
	cfg    config.Config
	root   *engine.Context
	server *navigator.HTTP
	dir    *userdir.Directory
}

func (a *app) Close() error {
	return a.dir.Close()
}

// loadApp builds the application from the environment and f. Problems
// with flags, files or configuration are command errors.
func loadApp(ctx context.Context, f *appFlags, logger *slog.Logger) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	if f.routes != "" {
		cfg.Routes = f.routes
	}
	if f.template != "" {
		cfg.Template = f.template
	}
	if f.db != "" {
		cfg.DB = f.db
	}

	var table *routecfg.Table
	if cfg.Routes != "" {
		if table, err = routecfg.Load(cfg.Routes); err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to load routes", err)
		}
	}

	static, err := render.NewStatic(staticOptions(cfg))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load template", err)
	}

	dir, err := userdir.Open(cfg.DB)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open user directory", err)
	}
	if f.users != "" {
		if err := seedUsers(ctx, dir, f.users); err != nil {
			dir.Close()
			return nil, WrapExitError(ExitCommandError, "failed to seed users", err)
		}
	}

	root, err := demo.New(demo.Options{
		Config:    cfg,
		Directory: dir,
		Routes:    table,
		Logger:    logger,
	})
	if err != nil {
		dir.Close()
		return nil, WrapExitError(ExitCommandError, "failed to build application", err)
	}

	server, err := navigator.NewHTTP(root, static, navigator.WithLogger(logger))
	if err != nil {
		dir.Close()
		return nil, WrapExitError(ExitCommandError, "failed to build server", err)
	}

	logger.Debug("application loaded",
		"env", cfg.Env,
		"db", cfg.DB,
		"routes", len(root.Router().Routes()),
	)
	return &app{cfg: cfg, root: root, server: server, dir: dir}, nil
}

func staticOptions(cfg config.Config) render.StaticOptions {
	opts := render.StaticOptions{GlobalName: cfg.Global}
	if cfg.Template != "" {
		opts.TemplatePath = cfg.Template
	} else {
		opts.Template = demo.Shell()
	}
	return opts
}

// seedUsers loads a YAML list of users into dir.
func seedUsers(ctx context.Context, dir *userdir.Directory, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var users []userdir.User
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&users); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return dir.Seed(ctx, users)
}
