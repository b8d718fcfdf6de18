package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/isomorph/internal/userdir"
)

// Scenario is a sequence of requests served by one fresh application.
type Scenario struct {
	// Name uniquely identifies the scenario. Golden files are named after it.
	Name string `yaml:"name"`

	// Description explains what the scenario checks.
	Description string `yaml:"description"`

	// Routes is an optional route table path replacing the embedded one.
	// Relative paths resolve against the scenario file's directory.
	Routes string `yaml:"routes,omitempty"`

	// Users seed the user directory before the first request.
	Users []userdir.User `yaml:"users,omitempty"`

	// Requests are served in order, each on its own child Context.
	Requests []Request `yaml:"requests"`

	// Assertions are checked after the last request.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Request is one GET served through the HTTP navigator.
type Request struct {
	Path   string  `yaml:"path"`
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect describes what a request should serve. Zero fields are not
// checked.
type Expect struct {
	Status   int    `yaml:"status,omitempty"`
	Title    string `yaml:"title,omitempty"`
	Redirect string `yaml:"redirect,omitempty"`

	// Contains lists fragments the HTML must contain.
	Contains []string `yaml:"contains,omitempty"`

	// Stores maps Store names to the keys they must hold after the request.
	Stores map[string]map[string]any `yaml:"stores,omitempty"`
}

// Assertion is checked once every request has been served.
type Assertion struct {
	// Type is root_unchanged or store_equals.
	Type string `yaml:"type"`

	// Store names the Store checked by store_equals.
	Store string `yaml:"store,omitempty"`

	// Expect holds the keys store_equals checks. Subset match.
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertRootUnchanged = "root_unchanged"
	AssertStoreEquals   = "store_equals"
)

// LoadScenario reads and validates a scenario file. Unknown fields are
// rejected so typos surface instead of silently skipping checks.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	s, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}
	if s.Routes != "" && !filepath.IsAbs(s.Routes) {
		s.Routes = filepath.Join(filepath.Dir(path), s.Routes)
	}
	return s, nil
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Requests) == 0 {
		return fmt.Errorf("requests list is required and must be non-empty")
	}

	for i, u := range s.Users {
		if _, err := userdir.NormalizeLogin(u.Login); err != nil {
			return fmt.Errorf("users[%d]: %w", i, err)
		}
	}

	for i, req := range s.Requests {
		if !strings.HasPrefix(req.Path, "/") {
			return fmt.Errorf("requests[%d]: path must start with /: %q", i, req.Path)
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertRootUnchanged:
		return nil
	case AssertStoreEquals:
		if a.Store == "" {
			return fmt.Errorf("assertions[%d]: store is required for store_equals", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for store_equals", index)
		}
		return nil
	default:
		return fmt.Errorf("assertions[%d]: unknown type %q", index, a.Type)
	}
}
