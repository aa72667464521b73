package router

import (
	"fmt"
	"strconv"
)

// Params holds the raw values bound to a pattern's parameters.
type Params map[string]string

// RouteBindingError reports a parameter value that does not fit its
// declared type, e.g. "/posts/abc" against ":id:uint64". The router
// recovers from it locally by treating the route as unmatched.
type RouteBindingError struct {
	Param string
	Value string
	Type  string
	Err   error
}

func (e *RouteBindingError) Error() string {
	return fmt.Sprintf("route param %q: cannot bind %q as %s", e.Param, e.Value, e.Type)
}

func (e *RouteBindingError) Unwrap() error {
	return e.Err
}

// Uint64 parses the named parameter as an unsigned decimal integer.
func (p Params) Uint64(name string) (uint64, error) {
	value, ok := p[name]
	if !ok {
		return 0, &RouteBindingError{Param: name, Type: "uint64", Err: fmt.Errorf("missing")}
	}
	n, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, &RouteBindingError{Param: name, Value: value, Type: "uint64", Err: err}
	}
	return n, nil
}

// String returns the named parameter.
func (p Params) String(name string) string {
	return p[name]
}

// ValidateParam checks a raw value against a parameter type. Unknown types
// accept any value.
func ValidateParam(name, value, paramType string) error {
	switch paramType {
	case "uint", "uint64", "uint32", "uint16", "uint8":
		if _, err := strconv.ParseUint(value, 10, bitSize(paramType)); err != nil {
			return &RouteBindingError{Param: name, Value: value, Type: paramType, Err: err}
		}
	case "int", "int64", "int32", "int16", "int8":
		if _, err := strconv.ParseInt(value, 10, bitSize(paramType)); err != nil {
			return &RouteBindingError{Param: name, Value: value, Type: paramType, Err: err}
		}
	}
	return nil
}

func bitSize(paramType string) int {
	switch paramType {
	case "uint8", "int8":
		return 8
	case "uint16", "int16":
		return 16
	case "uint32", "int32":
		return 32
	default:
		return 64
	}
}
