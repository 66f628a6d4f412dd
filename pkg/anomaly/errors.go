package anomaly

import "errors"

// Sentinel errors. Callers match them with [errors.Is]; the wrapped message
// names the offending argument or sample.
var (
	// ErrInvalidArgument is returned for a window size below 1 or a threshold
	// that is not a positive finite number.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidInput is returned when the stream contains NaN or ±Inf.
	ErrInvalidInput = errors.New("invalid input")
)
