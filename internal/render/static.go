package render

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/roach88/isomorph/internal/engine"
	"github.com/roach88/isomorph/internal/errs"
	"github.com/roach88/isomorph/internal/router"
)

const (
	headSlot = "{head}"
	bodySlot = "{body}"
)

// StaticOptions configures a Static renderer. One of Template or
// TemplatePath is required; Template wins when both are set.
type StaticOptions struct {
	Template     string
	TemplatePath string
	GlobalName   string
}

// templatePart is a literal run of template text or a slot.
type templatePart struct {
	text string
	slot string
}

// Static renders Routes into a fixed HTML template.
//
// Thread-safety: immutable after construction and safe for concurrent use.
type Static struct {
	parts  []templatePart
	global string
}

var _ HTMLRenderer = (*Static)(nil)

// NewStatic loads and validates the template. A template without a {body}
// slot is a configuration error; {head} is optional.
func NewStatic(opts StaticOptions) (*Static, error) {
	tmpl := opts.Template
	if tmpl == "" && opts.TemplatePath != "" {
		data, err := os.ReadFile(opts.TemplatePath)
		if err != nil {
			return nil, errs.Configuration(opts.TemplatePath, "read template: %v", err)
		}
		tmpl = string(data)
	}
	if tmpl == "" {
		return nil, errs.Configuration("", "missing either a template or a template path")
	}
	if !strings.Contains(tmpl, bodySlot) {
		return nil, errs.Configuration(opts.TemplatePath, "template does not contain a %s render target", bodySlot)
	}

	global := opts.GlobalName
	if global == "" {
		global = DefaultGlobalName
	}
	return &Static{parts: splitTemplate(tmpl), global: global}, nil
}

// GlobalName returns the window property the snapshot is assigned to.
func (s *Static) GlobalName() string {
	return s.global
}

// Render renders route's head and body into the template. The snapshot of
// c is appended to the body; a nil c embeds an empty object.
func (s *Static) Render(ctx context.Context, route *router.Route, c *engine.Context) (string, error) {
	if route == nil || route.Body == nil {
		return "", errs.Render(routeName(route), errNoBody)
	}

	cctx := componentContext(ctx, route, c)

	body, err := renderComponent(cctx, route.Name, route.Body)
	if err != nil {
		return "", err
	}
	blob, err := Blob(s.global, c)
	if err != nil {
		return "", errs.Render(route.Name, err)
	}
	body += blob

	var head string
	if route.Head != nil {
		head, err = renderComponent(cctx, route.Name, route.Head)
		if err != nil {
			return "", err
		}
	}

	var b strings.Builder
	for _, p := range s.parts {
		switch p.slot {
		case headSlot:
			b.WriteString(head)
		case bodySlot:
			b.WriteString(body)
		default:
			b.WriteString(p.text)
		}
	}
	return b.String(), nil
}

// Blob returns the script assigning c's snapshot to window.<global>.
// Strings in the snapshot are HTML-escaped, so stored markup cannot close
// the script element.
func Blob(global string, c *engine.Context) (string, error) {
	data := []byte("{}")
	if c != nil {
		var err error
		data, err = c.MarshalJSON()
		if err != nil {
			return "", fmt.Errorf("serialize context: %w", err)
		}
	}
	return "<script>window." + global + " = " + string(data) + ";</script>", nil
}

// splitTemplate splits tmpl at the first {head} and the first {body}.
func splitTemplate(tmpl string) []templatePart {
	var parts []templatePart
	seen := map[string]bool{}
	for tmpl != "" {
		next, at := "", -1
		for _, slot := range []string{headSlot, bodySlot} {
			if seen[slot] {
				continue
			}
			if i := strings.Index(tmpl, slot); i >= 0 && (at < 0 || i < at) {
				next, at = slot, i
			}
		}
		if at < 0 {
			parts = append(parts, templatePart{text: tmpl})
			break
		}
		if at > 0 {
			parts = append(parts, templatePart{text: tmpl[:at]})
		}
		parts = append(parts, templatePart{slot: next})
		seen[next] = true
		tmpl = tmpl[at+len(next):]
	}
	return parts
}
