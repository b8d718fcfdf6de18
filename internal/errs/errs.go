// Package errs defines the error taxonomy shared by the router, the
// Context, the renderers and the navigators.
//
// Errors carry a Code so callers can branch on the category with the Is*
// predicates, which use errors.As and therefore see through wrapping.
package errs

import (
	"errors"
	"fmt"
)

// Code categorizes an Error.
type Code string

const (
	// CodeConfiguration indicates a bad or missing route or template
	// definition. Fatal at setup time.
	CodeConfiguration Code = "CONFIGURATION"

	// CodeRouteNotFound indicates no route matched and no 404 route exists.
	CodeRouteNotFound Code = "ROUTE_NOT_FOUND"

	// CodeActionNotFound indicates an action was performed by an
	// unregistered name.
	CodeActionNotFound Code = "ACTION_NOT_FOUND"

	// CodeActionExecution wraps the failure of an action itself.
	CodeActionExecution Code = "ACTION_EXECUTION"

	// CodeRender wraps a component or template failure during rendering.
	CodeRender Code = "RENDER"
)

// Error is a categorized failure with optional structured context.
type Error struct {
	// Code identifies the error category.
	Code Code

	// Message is a human-readable description.
	Message string

	// Name identifies the route, action or template involved, if any.
	Name string

	// Status is the HTTP status associated with the failure, if any.
	Status int

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Name != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Name)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Configuration creates a CodeConfiguration error.
func Configuration(name, format string, args ...any) *Error {
	return &Error{Code: CodeConfiguration, Name: name, Message: fmt.Sprintf(format, args...)}
}

// RouteNotFound creates a CodeRouteNotFound error for location.
func RouteNotFound(location string) *Error {
	return &Error{
		Code:    CodeRouteNotFound,
		Message: "no route found, and no 404 route provided",
		Name:    location,
		Status:  404,
	}
}

// ActionNotFound creates a CodeActionNotFound error for the named action.
func ActionNotFound(name string) *Error {
	return &Error{
		Code:    CodeActionNotFound,
		Message: "could not find action",
		Name:    name,
	}
}

// ActionExecution wraps err as the failure of the named action.
func ActionExecution(name string, err error) *Error {
	return &Error{
		Code:    CodeActionExecution,
		Message: "action failed",
		Name:    name,
		Status:  500,
		Err:     err,
	}
}

// Render wraps err as a rendering failure of the named route.
func Render(name string, err error) *Error {
	return &Error{
		Code:    CodeRender,
		Message: "render failed",
		Name:    name,
		Status:  500,
		Err:     err,
	}
}

// CodeOf returns the Code of the first Error in err's chain, or "".
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsConfiguration reports whether err is a configuration error.
func IsConfiguration(err error) bool { return CodeOf(err) == CodeConfiguration }

// IsRouteNotFound reports whether err is a route-not-found error.
func IsRouteNotFound(err error) bool { return CodeOf(err) == CodeRouteNotFound }

// IsActionNotFound reports whether err is an action-not-found error.
func IsActionNotFound(err error) bool { return CodeOf(err) == CodeActionNotFound }

// IsActionExecution reports whether err is an action execution error.
func IsActionExecution(err error) bool { return CodeOf(err) == CodeActionExecution }

// IsRender reports whether err is a render error.
func IsRender(err error) bool { return CodeOf(err) == CodeRender }
