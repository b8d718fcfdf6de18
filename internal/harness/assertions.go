package harness

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/roach88/isomorph/internal/engine"
	"github.com/roach88/isomorph/internal/navigator"
	"github.com/roach88/isomorph/internal/value"
)

// AssertionContext holds what assertions need beyond the trace.
type AssertionContext struct {
	Root *engine.Context

	// Before is the root snapshot taken before the first request.
	Before *engine.Snapshot
}

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEvent
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, ev := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s -> %d", ev.Seq, ev.Path, ev.Status)
		if ev.Redirect != "" {
			fmt.Fprintf(&buf, " (redirect %s)", ev.Redirect)
		}
		buf.WriteByte('\n')
	}
	return buf.String()
}

// EvaluateAssertions checks every assertion and returns one message per
// failure.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var msgs []string
	for _, a := range assertions {
		var err error
		switch a.Type {
		case AssertRootUnchanged:
			err = assertRootUnchanged(result.Trace, actx)
		case AssertStoreEquals:
			err = assertStoreEquals(result, a)
		default:
			err = fmt.Errorf("unknown assertion type: %s", a.Type)
		}
		if err != nil {
			msgs = append(msgs, err.Error())
		}
	}
	return msgs
}

// assertRootUnchanged compares root snapshot digests from before the first
// request and now.
func assertRootUnchanged(trace []TraceEvent, actx *AssertionContext) error {
	if actx == nil || actx.Root == nil || actx.Before == nil {
		return fmt.Errorf("root_unchanged: no root context")
	}

	want, err := actx.Before.Digest()
	if err != nil {
		return fmt.Errorf("root_unchanged: %w", err)
	}
	after := actx.Root.Snapshot()
	got, err := after.Digest()
	if err != nil {
		return fmt.Errorf("root_unchanged: %w", err)
	}
	if got == want {
		return nil
	}

	names := make(map[string]struct{}, len(after.Stores))
	for name := range after.Stores {
		names[name] = struct{}{}
	}
	for name := range actx.Before.Stores {
		names[name] = struct{}{}
	}

	var changed []string
	for name := range names {
		b, err := actx.Before.StoreDigest(name)
		if err != nil {
			return fmt.Errorf("root_unchanged: store %q: %w", name, err)
		}
		a, err := after.StoreDigest(name)
		if err != nil {
			return fmt.Errorf("root_unchanged: store %q: %w", name, err)
		}
		if a != b {
			changed = append(changed, name)
		}
	}
	sort.Strings(changed)
	return &AssertionError{
		Type:     AssertRootUnchanged,
		Expected: "root stores untouched by requests",
		Actual:   fmt.Sprintf("changed stores: %v", changed),
		Trace:    trace,
	}
}

// assertStoreEquals checks the named keys of a Store in the last request's
// Context.
func assertStoreEquals(result *Result, a Assertion) error {
	store, ok := result.State[a.Store].(value.Object)
	if !ok {
		return &AssertionError{
			Type:     AssertStoreEquals,
			Expected: fmt.Sprintf("store %q", a.Store),
			Actual:   "store not found",
			Trace:    result.Trace,
		}
	}

	mismatches, err := matchStore(store, a.Expect)
	if err != nil {
		return fmt.Errorf("store_equals %s: %w", a.Store, err)
	}
	if len(mismatches) == 0 {
		return nil
	}

	want, _ := value.ObjectFromGo(a.Expect)
	got := make(value.Object, len(want))
	for key := range want {
		if v, ok := store[key]; ok {
			got[key] = v
		}
	}
	actual := fmt.Sprintf("%s\n  diff (-want +got):\n%s", strings.Join(mismatches, "; "), cmp.Diff(want, got))
	return &AssertionError{
		Type:     AssertStoreEquals,
		Expected: fmt.Sprintf("store %q to match %v", a.Store, a.Expect),
		Actual:   actual,
		Trace:    result.Trace,
	}
}

// matchStore compares the expected keys of store, subset semantics.
func matchStore(store value.Object, expect map[string]any) ([]string, error) {
	want, err := value.ObjectFromGo(expect)
	if err != nil {
		return nil, err
	}

	var mismatches []string
	for _, key := range want.SortedKeys() {
		got, ok := store[key]
		if !ok {
			mismatches = append(mismatches, fmt.Sprintf("%s: missing", key))
			continue
		}
		if !value.Equal(got, want[key]) {
			gotJSON, _ := value.MarshalCanonical(got)
			wantJSON, _ := value.MarshalCanonical(want[key])
			mismatches = append(mismatches, fmt.Sprintf("%s: got %s, want %s", key, gotJSON, wantJSON))
		}
	}
	return mismatches, nil
}

// checkExpect compares one served request against its expectations.
func checkExpect(req Request, res *navigator.Result, stores value.Object) []string {
	exp := req.Expect
	var msgs []string

	if exp.Status != 0 && res.Status != exp.Status {
		msgs = append(msgs, fmt.Sprintf("status: got %d, want %d", res.Status, exp.Status))
	}
	if exp.Redirect != "" && res.Redirect != exp.Redirect {
		msgs = append(msgs, fmt.Sprintf("redirect: got %q, want %q", res.Redirect, exp.Redirect))
	}
	if exp.Title != "" {
		if got := documentTitle(res.HTML); got != exp.Title {
			msgs = append(msgs, fmt.Sprintf("title: got %q, want %q", got, exp.Title))
		}
	}
	for _, fragment := range exp.Contains {
		if !strings.Contains(res.HTML, fragment) {
			msgs = append(msgs, fmt.Sprintf("body does not contain %q", fragment))
		}
	}

	names := make([]string, 0, len(exp.Stores))
	for name := range exp.Stores {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		store, ok := stores[name].(value.Object)
		if !ok {
			msgs = append(msgs, fmt.Sprintf("store %q not found", name))
			continue
		}
		mismatches, err := matchStore(store, exp.Stores[name])
		if err != nil {
			msgs = append(msgs, fmt.Sprintf("store %q: %v", name, err))
			continue
		}
		for _, m := range mismatches {
			msgs = append(msgs, fmt.Sprintf("store %q: %s", name, m))
		}
	}
	return msgs
}

// documentTitle returns the text of the first <title> in markup.
func documentTitle(markup string) string {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return ""
	}

	var find func(*html.Node) *html.Node
	find = func(n *html.Node) *html.Node {
		if n.Type == html.ElementNode && n.DataAtom == atom.Title {
			return n
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if found := find(c); found != nil {
				return found
			}
		}
		return nil
	}

	t := find(doc)
	if t == nil || t.FirstChild == nil {
		return ""
	}
	return strings.TrimSpace(t.FirstChild.Data)
}
