package errors

import "fmt"

// DecodeWarning is a recoverable problem found while decoding a quoted path.
// The parser still returns a usable path (the raw, unescaped text) alongside it.
type DecodeWarning struct {
	// Raw is the payload as it appeared in the status output.
	Raw string
	// Err is the cause, typically ErrInvalidUTF8Path.
	Err error
}

// Error implements error.
func (w *DecodeWarning) Error() string {
	return fmt.Sprintf("decode %q: %v", w.Raw, w.Err)
}

// Unwrap returns the cause.
func (w *DecodeWarning) Unwrap() error {
	return w.Err
}
