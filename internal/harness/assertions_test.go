package harness

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/isomorph/internal/engine"
	"github.com/roach88/isomorph/internal/navigator"
	"github.com/roach88/isomorph/internal/value"
)

func TestDocumentTitle(t *testing.T) {
	tests := []struct {
		markup string
		want   string
	}{
		{"<html><head><title> Home </title></head><body></body></html>", "Home"},
		{"<html><head></head><body><p>no title</p></body></html>", ""},
		{"<title></title>", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, documentTitle(tt.markup), tt.markup)
	}
}

func TestCheckExpect(t *testing.T) {
	res := &navigator.Result{
		Status: 200,
		HTML:   "<html><head><title>User ada</title></head><body><h1>Ada</h1></body></html>",
	}
	stores := value.Object{
		"user": value.Object{"login": value.String("ada"), "found": value.Bool(true)},
	}

	req := Request{Path: "/user/ada", Expect: &Expect{
		Status:   200,
		Title:    "User ada",
		Contains: []string{"<h1>Ada</h1>"},
		Stores:   map[string]map[string]any{"user": {"login": "ada", "found": true}},
	}}
	assert.Empty(t, checkExpect(req, res, stores))

	req = Request{Path: "/user/ada", Expect: &Expect{
		Status:   404,
		Title:    "Nope",
		Redirect: "/elsewhere",
		Contains: []string{"<h2>"},
		Stores: map[string]map[string]any{
			"user":    {"login": "grace", "company": "x"},
			"missing": {"a": 1},
		},
	}}
	assert.Equal(t, []string{
		"status: got 200, want 404",
		`redirect: got "", want "/elsewhere"`,
		`title: got "User ada", want "Nope"`,
		`body does not contain "<h2>"`,
		`store "missing" not found`,
		`store "user": company: missing`,
		`store "user": login: got "ada", want "grace"`,
	}, checkExpect(req, res, stores))
}

func TestAssertRootUnchanged(t *testing.T) {
	root := engine.New()
	root.CreateStore("app", value.Object{"env": value.String("dev")})
	root.CreateStore("user", value.Object{})

	before := root.Snapshot()
	actx := &AssertionContext{Root: root, Before: &before}
	assertions := []Assertion{{Type: AssertRootUnchanged}}

	assert.Empty(t, EvaluateAssertions(NewResult(), assertions, actx))

	root.GetStore("app").Set("env", value.String("prod"))
	msgs := EvaluateAssertions(NewResult(), assertions, actx)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "Assertion failed: root_unchanged")
	assert.Contains(t, msgs[0], "changed stores: [app]")

	msgs = EvaluateAssertions(NewResult(), assertions, nil)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "no root context")
}

func TestAssertRootUnchangedDigestFailures(t *testing.T) {
	nan := value.Float(math.NaN())
	tests := []struct {
		name   string
		before engine.Snapshot
		mutate func(*engine.Context)
		want   string
	}{
		{
			name:   "unencodable before",
			before: engine.Snapshot{Stores: map[string]value.Object{"app": {"ratio": nan}}},
			want:   "root_unchanged: digest:",
		},
		{
			name:   "unencodable after",
			before: engine.Snapshot{Stores: map[string]value.Object{"app": {"env": value.String("dev")}}},
			mutate: func(c *engine.Context) { c.GetStore("app").Set("ratio", nan) },
			want:   "root_unchanged: digest:",
		},
		{
			name: "store only before",
			before: engine.Snapshot{Stores: map[string]value.Object{
				"app":  {"env": value.String("dev")},
				"gone": {"x": value.Int(1)},
			}},
			want: "changed stores: [gone]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := engine.New()
			root.CreateStore("app", value.Object{"env": value.String("dev")})
			if tt.mutate != nil {
				tt.mutate(root)
			}

			msgs := EvaluateAssertions(NewResult(), []Assertion{{Type: AssertRootUnchanged}},
				&AssertionContext{Root: root, Before: &tt.before})
			require.Len(t, msgs, 1)
			assert.Contains(t, msgs[0], tt.want)
		})
	}
}

func TestAssertStoreEquals(t *testing.T) {
	result := NewResult()
	result.State = value.Object{
		"user": value.Object{"login": value.String("ada"), "error": value.Null{}},
	}
	result.AddTrace(TraceEvent{Seq: 1, Path: "/user/ada", Status: 200})

	msgs := EvaluateAssertions(result, []Assertion{
		{Type: AssertStoreEquals, Store: "user", Expect: map[string]any{"login": "ada", "error": nil}},
	}, nil)
	assert.Empty(t, msgs)

	msgs = EvaluateAssertions(result, []Assertion{
		{Type: AssertStoreEquals, Store: "user", Expect: map[string]any{"login": "grace"}},
		{Type: AssertStoreEquals, Store: "nope", Expect: map[string]any{"a": 1}},
		{Type: "bogus"},
	}, nil)
	require.Len(t, msgs, 3)
	assert.Contains(t, msgs[0], `login: got "ada", want "grace"`)
	assert.Contains(t, msgs[0], "[1] /user/ada -> 200")
	assert.Contains(t, msgs[1], "store not found")
	assert.Contains(t, msgs[2], "unknown assertion type: bogus")
}
