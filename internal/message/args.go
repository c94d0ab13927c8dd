package message

import (
	"fmt"
	"strconv"
)

// Textual argument serialization.
//
// Positional and keyword arguments travel as strings on the wire. These
// helpers fix the encoding both ends must agree on:
//
//   - bool:    "true" / "false"
//   - int:     base-10 digits, optional leading minus
//   - float:   Go's shortest 'g' representation (e.g. "5", "5.25", "1e-09")
//   - string:  the raw value, no quoting
//
// Nested structures are not supported as argument values; pass them as a
// JSON string and decode inside the invokable.

// FormatBool encodes a boolean argument value.
func FormatBool(v bool) string {
	return strconv.FormatBool(v)
}

// FormatInt encodes an integer argument value.
func FormatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

// FormatFloat encodes a floating-point argument value.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ParseBool decodes a boolean argument value.
// Returns an ErrDecode-wrapped error for anything but "true" or "false"
// (and the other forms strconv accepts: "1", "0", "t", "f", ...).
func ParseBool(s string) (bool, error) {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%w: %q is not a boolean", ErrDecode, s)
	}
	return v, nil
}

// ParseInt decodes an integer argument value.
func ParseInt(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrDecode, s)
	}
	return v, nil
}

// ParseFloat decodes a floating-point argument value.
func ParseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrDecode, s)
	}
	return v, nil
}
