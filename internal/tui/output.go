package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/ItsDalk-Lane/gitbatch/internal/errors"
)

// Format is an output format selected with --output.
type Format string

// Supported output formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Formats lists the accepted --output values.
func Formats() []Format {
	return []Format{FormatText, FormatJSON, FormatYAML, FormatTOML}
}

// ParseFormat validates an --output value. Empty means text.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return FormatText, nil
	}
	for _, known := range Formats() {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%q: %w", s, errors.ErrInvalidOutputFormat)
}

// Structured reports whether the format is machine-readable.
func (f Format) Structured() bool {
	return f != FormatText
}

// Output provides methods for user-facing output.
type Output interface {
	// Success prints a success message.
	Success(msg string)
	// Error prints an error with its suggested action, if any.
	Error(err error)
	// Warning prints a warning message.
	Warning(msg string)
	// Info prints an informational message.
	Info(msg string)
	// Table prints rows under headers.
	Table(headers []string, rows [][]string)
	// Encode writes v as a document in the output format. Text output
	// renders it as YAML.
	Encode(v any) error
	// Format returns the output format.
	Format() Format
}

// NewOutput creates the output for format.
func NewOutput(w io.Writer, format Format) Output {
	if format.Structured() {
		return NewEncodedOutput(w, format)
	}
	return NewTTYOutput(w)
}
