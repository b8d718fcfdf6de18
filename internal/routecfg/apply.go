package routecfg

import (
	"strings"

	"github.com/a-h/templ"

	"github.com/roach88/isomorph/internal/engine"
	"github.com/roach88/isomorph/internal/errs"
	"github.com/roach88/isomorph/internal/router"
	"github.com/roach88/isomorph/internal/value"
)

// Apply registers every route in t on c, resolving component names
// through reg. Actions named by routes must already exist on c.
func Apply(c *engine.Context, t *Table, reg *Registry) error {
	if err := t.Validate(); err != nil {
		return err
	}
	actions := make(map[string]bool)
	for _, name := range c.ActionNames() {
		actions[name] = true
	}

	for _, spec := range t.Routes {
		body, head, err := components(reg, spec.Name, spec.Component, spec.Head)
		if err != nil {
			return err
		}
		if spec.Action != "" && !actions[spec.Action] {
			return errs.Configuration(spec.Name, "unknown action %q", spec.Action)
		}
		props, err := value.ObjectFromGo(spec.Props)
		if err != nil {
			return errs.Configuration(spec.Name, "props: %v", err)
		}
		if err := c.CreateRoute(spec.Name, router.Definition{
			Path:      spec.Path,
			Body:      body,
			Head:      head,
			Action:    spec.Action,
			Title:     spec.Title,
			TitleFunc: titleFunc(spec.Title),
			Props:     props,
			Method:    spec.Method,
		}); err != nil {
			return err
		}
	}

	for _, spec := range t.Errors {
		status, err := spec.StatusCode()
		if err != nil {
			return errs.Configuration(spec.Name, "%v", err)
		}
		body, head, err := components(reg, router.StatusName(status), spec.Component, spec.Head)
		if err != nil {
			return err
		}
		if err := c.CreateErrorRoute(status, router.Definition{
			Body:  body,
			Head:  head,
			Title: spec.Title,
		}); err != nil {
			return err
		}
	}
	return nil
}

func components(reg *Registry, route, bodyName, headName string) (body, head templ.Component, err error) {
	body, ok := reg.Component(bodyName)
	if !ok {
		return nil, nil, errs.Configuration(route, "unknown component %q", bodyName)
	}
	if headName == "" {
		return body, nil, nil
	}
	head, ok = reg.Component(headName)
	if !ok {
		return nil, nil, errs.Configuration(route, "unknown head component %q", headName)
	}
	return body, head, nil
}

// titleFunc returns a TitleFunc filling {param} placeholders in title from
// the resolved route's params, or nil when title has none.
func titleFunc(title string) func(*router.Route) string {
	if !strings.Contains(title, "{") {
		return nil
	}
	return func(r *router.Route) string {
		out := title
		for k, v := range r.Params {
			out = strings.ReplaceAll(out, "{"+k+"}", v)
		}
		return out
	}
}
