package harness

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/isomorph/internal/testutil"
	"github.com/roach88/isomorph/internal/userdir"
	"github.com/roach88/isomorph/internal/value"
)

func TestScenarios(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			s, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := Run(context.Background(), s, WithLogger(testutil.Logger(t)))
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Len(t, result.Trace, len(s.Requests))
		})
	}
}

func TestRunWithGolden(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "user_profile.yaml"))
	require.NoError(t, err)

	result, err := RunWithGolden(t, s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRunIsDeterministic(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "directory.yaml"))
	require.NoError(t, err)

	first, err := Run(context.Background(), s)
	require.NoError(t, err)
	second, err := Run(context.Background(), s)
	require.NoError(t, err)

	a, err := Canonical(s.Name, first)
	require.NoError(t, err)
	b, err := Canonical(s.Name, second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestRunTrace(t *testing.T) {
	s := &Scenario{
		Name:        "trace",
		Description: "d",
		Users:       []userdir.User{{Login: "ada", Name: "Ada Lovelace"}},
		Requests: []Request{
			{Path: "/user/ada"},
			{Path: "/users/first"},
		},
	}

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	require.True(t, result.Pass)
	require.Len(t, result.Trace, 2)

	assert.Equal(t, int64(1), result.Trace[0].Seq)
	assert.Equal(t, "user", result.Trace[0].Route)
	assert.Equal(t, 200, result.Trace[0].Status)
	user := result.Trace[0].Stores["user"].(value.Object)
	assert.Equal(t, value.String("Ada Lovelace"), user["name"])

	assert.Equal(t, int64(2), result.Trace[1].Seq)
	assert.Equal(t, "first", result.Trace[1].Route)
	assert.Equal(t, 302, result.Trace[1].Status)
	assert.Equal(t, "/user/ada", result.Trace[1].Redirect)

	// Each request starts from the root's Stores.
	user = result.State["user"].(value.Object)
	assert.Equal(t, value.String(""), user["name"])
}

func TestRunReportsFailedExpectations(t *testing.T) {
	s := &Scenario{
		Name:        "wrong",
		Description: "d",
		Requests: []Request{
			{Path: "/", Expect: &Expect{Status: 404, Title: "Nope"}},
		},
		Assertions: []Assertion{
			{Type: AssertStoreEquals, Store: "app", Expect: map[string]any{"env": "prod"}},
		},
	}

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 3)
	assert.Equal(t, "requests[0] /: status: got 200, want 404", result.Errors[0])
	assert.Equal(t, `requests[0] /: title: got "Home", want "Nope"`, result.Errors[1])
	assert.Contains(t, result.Errors[2], `env: got "dev", want "prod"`)
}

func TestRunWithRouteTable(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "routes.yaml"), []byte(`
routes:
  - name: home
    path: /
    component: index
    head: head
    title: Start
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "s.yaml"), []byte(`
name: custom
description: "Only the home route exists"
routes: routes.yaml
requests:
  - path: /
    expect:
      status: 200
      title: Start
  - path: /about
`), 0o644))

	s, err := LoadScenario(filepath.Join(dir, "s.yaml"))
	require.NoError(t, err)

	result, err := Run(context.Background(), s)
	require.NoError(t, err)

	// Without a 404 route the unmatched request fails outright.
	assert.False(t, result.Pass)
	require.Len(t, result.Trace, 1)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "requests[1] /about")
}

func TestRunSetupErrors(t *testing.T) {
	_, err := Run(context.Background(), &Scenario{
		Name:     "bad-users",
		Users:    []userdir.User{{Login: "!!"}},
		Requests: []Request{{Path: "/"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to seed users")

	_, err = Run(context.Background(), &Scenario{
		Name:     "bad-routes",
		Routes:   filepath.Join(t.TempDir(), "missing.yaml"),
		Requests: []Request{{Path: "/"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load routes")
}
