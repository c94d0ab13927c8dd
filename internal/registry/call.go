package registry

import (
	"context"
	"fmt"

	"github.com/bennettsmith-io/labrelay-core/internal/message"
)

// Call carries the string-encoded arguments of a single invocation and
// provides decoding helpers. Helper failures wrap message.ErrDecode so the
// dispatcher can map them to a DecodeError reply.
type Call struct {
	Args   []string
	Kwargs map[string]string
}

// Invokable is a typed method implementation registered for an
// (object_id, method) pair. Returned values are JSON-encoded into the
// reply's data field; returned errors become ExecutionError replies unless
// they wrap message.ErrDecode.
type Invokable func(ctx context.Context, call Call) (any, error)

// Arg returns the positional argument at index i.
func (c Call) Arg(i int) (string, error) {
	if i < 0 || i >= len(c.Args) {
		return "", fmt.Errorf("%w: missing positional argument %d (got %d)", message.ErrDecode, i, len(c.Args))
	}
	return c.Args[i], nil
}

// FloatArg decodes the positional argument at index i as a float.
func (c Call) FloatArg(i int) (float64, error) {
	s, err := c.Arg(i)
	if err != nil {
		return 0, err
	}
	return message.ParseFloat(s)
}

// IntArg decodes the positional argument at index i as an integer.
func (c Call) IntArg(i int) (int64, error) {
	s, err := c.Arg(i)
	if err != nil {
		return 0, err
	}
	return message.ParseInt(s)
}

// BoolArg decodes the positional argument at index i as a boolean.
func (c Call) BoolArg(i int) (bool, error) {
	s, err := c.Arg(i)
	if err != nil {
		return false, err
	}
	return message.ParseBool(s)
}

// Kwarg returns the keyword argument for key, with ok=false when absent.
func (c Call) Kwarg(key string) (string, bool) {
	v, ok := c.Kwargs[key]
	return v, ok
}

// RequiredKwarg returns the keyword argument for key or a decode error.
func (c Call) RequiredKwarg(key string) (string, error) {
	v, ok := c.Kwargs[key]
	if !ok {
		return "", fmt.Errorf("%w: missing keyword argument %q", message.ErrDecode, key)
	}
	return v, nil
}

// FloatKwarg decodes the keyword argument for key as a float, returning
// def when the key is absent.
func (c Call) FloatKwarg(key string, def float64) (float64, error) {
	v, ok := c.Kwargs[key]
	if !ok {
		return def, nil
	}
	return message.ParseFloat(v)
}

// IntKwarg decodes the keyword argument for key as an integer, returning
// def when the key is absent.
func (c Call) IntKwarg(key string, def int64) (int64, error) {
	v, ok := c.Kwargs[key]
	if !ok {
		return def, nil
	}
	return message.ParseInt(v)
}

// BoolKwarg decodes the keyword argument for key as a boolean, returning
// def when the key is absent.
func (c Call) BoolKwarg(key string, def bool) (bool, error) {
	v, ok := c.Kwargs[key]
	if !ok {
		return def, nil
	}
	return message.ParseBool(v)
}
