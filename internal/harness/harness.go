package harness

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/isomorph/internal/config"
	"github.com/roach88/isomorph/internal/demo"
	"github.com/roach88/isomorph/internal/engine"
	"github.com/roach88/isomorph/internal/navigator"
	"github.com/roach88/isomorph/internal/render"
	"github.com/roach88/isomorph/internal/routecfg"
	"github.com/roach88/isomorph/internal/testutil"
	"github.com/roach88/isomorph/internal/userdir"
	"github.com/roach88/isomorph/internal/value"
)

// Option configures Run.
type Option func(*runOptions)

type runOptions struct {
	logger *slog.Logger
}

// WithLogger routes the application's logs to l. Runs are silent by
// default.
func WithLogger(l *slog.Logger) Option {
	return func(o *runOptions) {
		o.logger = l
	}
}

// Harness serves one scenario's requests.
type Harness struct {
	root   *engine.Context
	server *navigator.HTTP
	dir    *userdir.Directory
	seq    testutil.Counter
	logger *slog.Logger
}

// Run executes a scenario and returns its result.
//
// Each scenario gets a fresh application over an in-memory user directory.
// Execution flow:
//  1. Seed the directory with the scenario's users
//  2. Build the root Context from the route table
//  3. Serve each request on its own child Context, recording a trace event
//     and checking its expectations
//  4. Evaluate the assertions
//
// A failed expectation or assertion fails the result; only setup problems
// return an error.
func Run(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	o := runOptions{logger: testutil.DiscardLogger()}
	for _, opt := range opts {
		opt(&o)
	}

	h, err := newHarness(ctx, scenario, o.logger)
	if err != nil {
		return nil, err
	}
	defer h.dir.Close()

	before := h.root.Snapshot()
	result := NewResult()
	for i, req := range scenario.Requests {
		h.serve(ctx, i, req, result)
	}

	actx := &AssertionContext{Root: h.root, Before: &before}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	h.logger.Info("scenario finished",
		"scenario", scenario.Name,
		"requests", len(result.Trace),
		"pass", result.Pass,
	)
	return result, nil
}

func newHarness(ctx context.Context, scenario *Scenario, logger *slog.Logger) (*Harness, error) {
	dir, err := userdir.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory directory: %w", err)
	}
	if err := dir.Seed(ctx, scenario.Users); err != nil {
		dir.Close()
		return nil, fmt.Errorf("failed to seed users: %w", err)
	}

	h, err := buildHarness(scenario, dir, logger)
	if err != nil {
		dir.Close()
		return nil, err
	}
	return h, nil
}

func buildHarness(scenario *Scenario, dir *userdir.Directory, logger *slog.Logger) (*Harness, error) {
	cfg, err := config.LoadFrom(nil)
	if err != nil {
		return nil, err
	}

	var table *routecfg.Table
	if scenario.Routes != "" {
		if table, err = routecfg.Load(scenario.Routes); err != nil {
			return nil, fmt.Errorf("failed to load routes: %w", err)
		}
	}

	root, err := demo.New(demo.Options{
		Config:    cfg,
		Directory: dir,
		Routes:    table,
		Logger:    logger,
		IDs:       testutil.NewFixedIDs(scenario.Name),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build application: %w", err)
	}

	static, err := render.NewStatic(render.StaticOptions{Template: demo.Shell()})
	if err != nil {
		return nil, err
	}
	server, err := navigator.NewHTTP(root, static, navigator.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	return &Harness{
		root:   root,
		server: server,
		dir:    dir,
		logger: logger,
	}, nil
}

// serve handles one request on a fresh child Context.
func (h *Harness) serve(ctx context.Context, index int, req Request, result *Result) {
	c := h.root.GetChild()
	defer c.Dispose()

	res, err := h.server.Serve(ctx, req.Path, c)
	if err != nil {
		result.AddError(fmt.Sprintf("requests[%d] %s: %v", index, req.Path, err))
		return
	}

	snap := c.Snapshot()
	stores, _ := snap.Object()["stores"].(value.Object)
	result.State = stores

	ev := TraceEvent{
		Seq:      h.seq.Next(),
		Path:     req.Path,
		Status:   res.Status,
		Redirect: res.Redirect,
		Stores:   stores,
	}
	if res.Route != nil {
		ev.Route = res.Route.Name
	}
	result.AddTrace(ev)

	h.logger.Debug("request served",
		"path", req.Path,
		"status", res.Status,
		"route", ev.Route,
	)

	if req.Expect != nil {
		for _, msg := range checkExpect(req, res, stores) {
			result.AddError(fmt.Sprintf("requests[%d] %s: %s", index, req.Path, msg))
		}
	}
}
