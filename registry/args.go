package registry

import (
	"math"

	"github.com/andaru/netctrl/dispatch"
	"github.com/pkg/errors"
)

// Args are an operation's keyword arguments
type Args map[string]interface{}

// Has reports whether the argument name is present
func (a Args) Has(name string) bool {
	_, ok := a[name]
	return ok
}

func invalid(name, want string, v interface{}) error {
	if v == nil {
		return errors.Wrapf(dispatch.ErrInvalidArguments, "missing %s argument %q", want, name)
	}
	return errors.Wrapf(dispatch.ErrInvalidArguments, "argument %q is %T, want %s", name, v, want)
}

// String returns the string argument name. Binary values are accepted.
func (a Args) String(name string) (string, error) {
	switch v := a[name].(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", invalid(name, "string", v)
	}
}

// Int returns the integer argument name
func (a Args) Int(name string) (int64, error) {
	switch v := a[name].(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return 0, errors.Wrapf(dispatch.ErrInvalidArguments, "argument %q overflows", name)
		}
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint8:
		return int64(v), nil
	default:
		return 0, invalid(name, "integer", v)
	}
}

// Bool returns the boolean argument name
func (a Args) Bool(name string) (bool, error) {
	v, ok := a[name].(bool)
	if !ok {
		return false, invalid(name, "bool", a[name])
	}
	return v, nil
}

// Map returns the map argument name
func (a Args) Map(name string) (map[string]interface{}, error) {
	v, ok := a[name].(map[string]interface{})
	if !ok {
		return nil, invalid(name, "map", a[name])
	}
	return v, nil
}

// StringOr returns the string argument name, or def if it is absent
func (a Args) StringOr(name, def string) (string, error) {
	if !a.Has(name) {
		return def, nil
	}
	return a.String(name)
}
