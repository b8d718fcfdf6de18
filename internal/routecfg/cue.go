package routecfg

import (
	"fmt"
	"slices"
	"strconv"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// FieldError is a CUE table error with its source position.
type FieldError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *FieldError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ParseCUE compiles a CUE table. Routes are read from the "route" struct
// and error routes from the "error" struct, in declaration order. An error
// route label is a status code ("404") or a status name ("NotFound").
func ParseCUE(filename string, data []byte) (*Table, error) {
	v := cuecontext.New().CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	t := &Table{}

	routes := v.LookupPath(cue.ParsePath("route"))
	if routes.Exists() {
		iter, err := routes.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			spec, err := parseRoute(iter.Label(), iter.Value())
			if err != nil {
				return nil, err
			}
			t.Routes = append(t.Routes, spec)
		}
	}

	errorRoutes := v.LookupPath(cue.ParsePath("error"))
	if errorRoutes.Exists() {
		iter, err := errorRoutes.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			spec, err := parseErrorRoute(iter.Label(), iter.Value())
			if err != nil {
				return nil, err
			}
			t.Errors = append(t.Errors, spec)
		}
	}

	return t, nil
}

func parseRoute(name string, v cue.Value) (RouteSpec, error) {
	spec := RouteSpec{Name: name}
	fields := map[string]*string{
		"path":      &spec.Path,
		"component": &spec.Component,
		"head":      &spec.Head,
		"action":    &spec.Action,
		"title":     &spec.Title,
		"method":    &spec.Method,
	}
	if err := readStrings(v, "route."+name, fields, "props"); err != nil {
		return RouteSpec{}, err
	}

	propsVal := v.LookupPath(cue.ParsePath("props"))
	if propsVal.Exists() {
		props, err := decodeProps(propsVal, "route."+name+".props")
		if err != nil {
			return RouteSpec{}, err
		}
		m, ok := props.(map[string]any)
		if !ok && props != nil {
			return RouteSpec{}, &FieldError{
				Field:   "route." + name + ".props",
				Message: "must be a struct",
				Pos:     propsVal.Pos(),
			}
		}
		spec.Props = m
	}
	return spec, nil
}

func parseErrorRoute(label string, v cue.Value) (ErrorSpec, error) {
	var spec ErrorSpec
	if status, err := strconv.Atoi(label); err == nil {
		spec.Status = status
	} else {
		spec.Name = label
	}

	fields := map[string]*string{
		"component": &spec.Component,
		"head":      &spec.Head,
		"title":     &spec.Title,
	}
	if err := readStrings(v, "error."+label, fields); err != nil {
		return ErrorSpec{}, err
	}
	return spec, nil
}

// readStrings fills each target from the optional string field of the
// same name. Fields not in targets or skip are rejected.
func readStrings(v cue.Value, path string, targets map[string]*string, skip ...string) error {
	iter, err := v.Fields()
	if err != nil {
		return formatCUEError(err)
	}
	for iter.Next() {
		label := iter.Label()
		if slices.Contains(skip, label) {
			continue
		}
		target, ok := targets[label]
		if !ok {
			return &FieldError{
				Field:   path + "." + label,
				Message: "unknown field",
				Pos:     iter.Value().Pos(),
			}
		}
		s, err := iter.Value().String()
		if err != nil {
			return &FieldError{
				Field:   path + "." + label,
				Message: "must be a string",
				Pos:     iter.Value().Pos(),
			}
		}
		*target = s
	}
	return nil
}

// decodeProps converts a concrete CUE value to the Go shapes YAML decoding
// produces.
func decodeProps(v cue.Value, path string) (any, error) {
	switch v.IncompleteKind() {
	case cue.NullKind:
		return nil, nil
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return s, nil
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return b, nil
	case cue.IntKind:
		i, err := v.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return i, nil
	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out := []any{}
		for i := 0; iter.Next(); i++ {
			elem, err := decodeProps(iter.Value(), fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			out = append(out, elem)
		}
		return out, nil
	case cue.StructKind:
		iter, err := v.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out := map[string]any{}
		for iter.Next() {
			label := iter.Label()
			elem, err := decodeProps(iter.Value(), path+"."+label)
			if err != nil {
				return nil, err
			}
			out[label] = elem
		}
		return out, nil
	case cue.FloatKind:
		f, err := v.Float64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return f, nil
	default:
		return nil, &FieldError{
			Field:   path,
			Message: fmt.Sprintf("unsupported kind: %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
}

// formatCUEError returns the first CUE error with its position.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	list := cueerrors.Errors(err)
	if len(list) == 0 {
		return err
	}

	first := list[0]
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		return &FieldError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
