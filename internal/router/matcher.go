package router

import (
	"fmt"
	"net/url"
	"strings"
)

// Match is the result of matching a path against a Matcher.
type Match struct {
	Name   string
	Params map[string]string
}

// Matcher is the path-matching engine a Router composes.
type Matcher interface {
	// Add registers template under name. Re-adding a name replaces the
	// template in place.
	Add(name, template string) error
	// Remove forgets name.
	Remove(name string)
	// Match returns the first registered template matching path.
	Match(path string) (Match, bool)
	// Build renders the template for name, returning the path and the
	// params the template did not consume.
	Build(name string, params map[string]string) (string, map[string]string, bool)
}

type segment struct {
	literal string
	param   string
}

type template struct {
	name     string
	segments []segment
}

// SegmentMatcher matches paths segment by segment. A segment starting with
// ':' captures one path segment under that name; every other segment must
// match exactly. Templates are tried in registration order.
//
// SegmentMatcher is not safe for concurrent use; Router guards it.
type SegmentMatcher struct {
	templates []template
}

// NewSegmentMatcher creates an empty SegmentMatcher.
func NewSegmentMatcher() *SegmentMatcher {
	return &SegmentMatcher{}
}

// Add implements Matcher.
func (m *SegmentMatcher) Add(name, tmpl string) error {
	if !strings.HasPrefix(tmpl, "/") {
		return fmt.Errorf("path %q must start with /", tmpl)
	}

	segs := splitPath(tmpl)
	parsed := make([]segment, len(segs))
	seen := make(map[string]bool)
	for i, s := range segs {
		if !strings.HasPrefix(s, ":") {
			parsed[i] = segment{literal: s}
			continue
		}
		param := s[1:]
		if param == "" {
			return fmt.Errorf("path %q has an unnamed parameter", tmpl)
		}
		if seen[param] {
			return fmt.Errorf("path %q repeats parameter %q", tmpl, param)
		}
		seen[param] = true
		parsed[i] = segment{param: param}
	}

	t := template{name: name, segments: parsed}
	for i := range m.templates {
		if m.templates[i].name == name {
			m.templates[i] = t
			return nil
		}
	}
	m.templates = append(m.templates, t)
	return nil
}

// Remove implements Matcher.
func (m *SegmentMatcher) Remove(name string) {
	for i := range m.templates {
		if m.templates[i].name == name {
			m.templates = append(m.templates[:i], m.templates[i+1:]...)
			return
		}
	}
}

// Match implements Matcher.
func (m *SegmentMatcher) Match(path string) (Match, bool) {
	segs := splitPath(path)

	for _, t := range m.templates {
		if len(t.segments) != len(segs) {
			continue
		}
		params, ok := t.match(segs)
		if ok {
			return Match{Name: t.name, Params: params}, true
		}
	}
	return Match{}, false
}

func (t template) match(segs []string) (map[string]string, bool) {
	params := make(map[string]string)
	for i, s := range t.segments {
		if s.param == "" {
			if s.literal != segs[i] {
				return nil, false
			}
			continue
		}
		if segs[i] == "" {
			return nil, false
		}
		v, err := url.PathUnescape(segs[i])
		if err != nil {
			v = segs[i]
		}
		params[s.param] = v
	}
	return params, true
}

// Build implements Matcher. A template parameter missing from params fails
// the build.
func (m *SegmentMatcher) Build(name string, params map[string]string) (string, map[string]string, bool) {
	for _, t := range m.templates {
		if t.name != name {
			continue
		}

		rest := make(map[string]string, len(params))
		for k, v := range params {
			rest[k] = v
		}

		var b strings.Builder
		for _, s := range t.segments {
			b.WriteByte('/')
			if s.param == "" {
				b.WriteString(s.literal)
				continue
			}
			v, ok := rest[s.param]
			if !ok || v == "" {
				return "", nil, false
			}
			b.WriteString(url.PathEscape(v))
			delete(rest, s.param)
		}
		if b.Len() == 0 {
			b.WriteByte('/')
		}
		return b.String(), rest, true
	}
	return "", nil, false
}

// splitPath splits a path into segments, ignoring leading and trailing
// slashes. "/" yields no segments.
func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
