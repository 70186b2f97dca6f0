package validation

import "github.com/rotisserie/eris"

// ErrInvalidConfiguration marks a rejected configuration: green fraction
// outside [0,1], non-positive grid dimensions, degenerate bounds, negative
// radii and the like. Test for it with errors.Is.
var ErrInvalidConfiguration = eris.New("invalid configuration")

// Invalid wraps ErrInvalidConfiguration with a formatted message.
func Invalid(format string, args ...any) error {
	return eris.Wrapf(ErrInvalidConfiguration, format, args...)
}
