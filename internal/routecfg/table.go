package routecfg

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/isomorph/internal/errs"
	"github.com/roach88/isomorph/internal/router"
)

// Table is a parsed route table.
type Table struct {
	Routes []RouteSpec `yaml:"routes" json:"routes"`
	Errors []ErrorSpec `yaml:"errors" json:"errors,omitempty"`
}

// RouteSpec describes one regular route.
type RouteSpec struct {
	Name      string         `yaml:"name" json:"name"`
	Path      string         `yaml:"path" json:"path"`
	Component string         `yaml:"component" json:"component"`
	Head      string         `yaml:"head" json:"head,omitempty"`
	Action    string         `yaml:"action" json:"action,omitempty"`
	Title     string         `yaml:"title" json:"title,omitempty"`
	Method    string         `yaml:"method" json:"method,omitempty"`
	Props     map[string]any `yaml:"props" json:"props,omitempty"`
}

// ErrorSpec describes one error route. Exactly one of Status and Name is
// set; Name is a status name such as "NotFound".
type ErrorSpec struct {
	Status    int    `yaml:"status" json:"status,omitempty"`
	Name      string `yaml:"name" json:"name,omitempty"`
	Component string `yaml:"component" json:"component"`
	Head      string `yaml:"head" json:"head,omitempty"`
	Title     string `yaml:"title" json:"title,omitempty"`
}

// StatusCode resolves the route's status from Status or Name.
func (e ErrorSpec) StatusCode() (int, error) {
	switch {
	case e.Status != 0 && e.Name != "":
		return 0, fmt.Errorf("error route sets both status %d and name %q", e.Status, e.Name)
	case e.Status != 0:
		return e.Status, nil
	case e.Name != "":
		status, ok := router.StatusCode(e.Name)
		if !ok {
			return 0, fmt.Errorf("unknown status name %q", e.Name)
		}
		return status, nil
	default:
		return 0, fmt.Errorf("error route needs a status or a name")
	}
}

// Validate checks the table for missing fields and duplicates.
func (t *Table) Validate() error {
	seen := make(map[string]bool, len(t.Routes))
	for i, r := range t.Routes {
		switch {
		case r.Name == "":
			return errs.Configuration("", "route %d: name is required", i)
		case seen[r.Name]:
			return errs.Configuration(r.Name, "duplicate route name")
		case r.Path == "":
			return errs.Configuration(r.Name, "path is required")
		case r.Component == "":
			return errs.Configuration(r.Name, "component is required")
		}
		seen[r.Name] = true
	}

	statuses := make(map[int]bool, len(t.Errors))
	for i, e := range t.Errors {
		status, err := e.StatusCode()
		if err != nil {
			return errs.Configuration("", "error route %d: %v", i, err)
		}
		if statuses[status] {
			return errs.Configuration(router.StatusName(status), "duplicate error route")
		}
		if e.Component == "" {
			return errs.Configuration(router.StatusName(status), "component is required")
		}
		statuses[status] = true
	}
	return nil
}

// Load reads the table at path, choosing the format by extension: .yaml
// or .yml for YAML, .cue for CUE.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Configuration(path, "read route table: %v", err)
	}
	return Parse(filepath.Base(path), data)
}

// Parse decodes data as the format named by filename's extension and
// validates the result.
func Parse(filename string, data []byte) (*Table, error) {
	var (
		t   *Table
		err error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		t, err = ParseYAML(data)
	case ".cue":
		t, err = ParseCUE(filename, data)
		if err != nil {
			err = &errs.Error{
				Code:    errs.CodeConfiguration,
				Message: "parse CUE route table",
				Name:    filename,
				Err:     err,
			}
		}
	default:
		return nil, errs.Configuration(filename, "unsupported route table format")
	}
	if err != nil {
		return nil, err
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}
