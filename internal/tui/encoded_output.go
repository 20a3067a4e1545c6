package tui

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/ItsDalk-Lane/gitbatch/internal/errors"
)

// EncodedOutput writes every message as a structured record in JSON, YAML
// or TOML. JSON records are newline-delimited; YAML and TOML documents are
// separated by "---" and a blank line respectively.
type EncodedOutput struct {
	w       io.Writer
	format  Format
	written bool
}

// Compile-time interface check.
var _ Output = (*EncodedOutput)(nil)

// NewEncodedOutput creates an EncodedOutput. Unknown formats fall back to JSON.
func NewEncodedOutput(w io.Writer, format Format) *EncodedOutput {
	if format != FormatYAML && format != FormatTOML {
		format = FormatJSON
	}
	return &EncodedOutput{w: w, format: format}
}

// messageRecord is the structured form of Success/Warning/Info.
type messageRecord struct {
	Type    string `json:"type" yaml:"type" toml:"type"`
	Message string `json:"message" yaml:"message" toml:"message"`
}

// errorRecord is the structured form of Error.
type errorRecord struct {
	Type       string `json:"type" yaml:"type" toml:"type"`
	Message    string `json:"message" yaml:"message" toml:"message"`
	Details    string `json:"details,omitempty" yaml:"details,omitempty" toml:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty" yaml:"suggestion,omitempty" toml:"suggestion,omitempty"`
}

// tableRecord wraps table rows; TOML documents cannot be bare arrays.
type tableRecord struct {
	Rows []map[string]string `json:"rows" yaml:"rows" toml:"rows"`
}

// Format returns the output format.
func (o *EncodedOutput) Format() Format {
	return o.format
}

// Success outputs {"type": "success", "message": "..."}.
func (o *EncodedOutput) Success(msg string) {
	_ = o.Encode(messageRecord{Type: "success", Message: msg})
}

// Error outputs the user-facing message, the raw error as details and the
// suggested action.
func (o *EncodedOutput) Error(err error) {
	msg, action := errors.Actionable(err)
	rec := errorRecord{Type: "error", Message: msg, Suggestion: action}
	if raw := err.Error(); raw != msg {
		rec.Details = raw
	}
	_ = o.Encode(rec)
}

// Warning outputs {"type": "warning", "message": "..."}.
func (o *EncodedOutput) Warning(msg string) {
	_ = o.Encode(messageRecord{Type: "warning", Message: msg})
}

// Info outputs {"type": "info", "message": "..."}.
func (o *EncodedOutput) Info(msg string) {
	_ = o.Encode(messageRecord{Type: "info", Message: msg})
}

// Table outputs rows as objects keyed by header.
func (o *EncodedOutput) Table(headers []string, rows [][]string) {
	result := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		obj := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(row) {
				obj[h] = row[i]
			} else {
				obj[h] = ""
			}
		}
		result = append(result, obj)
	}
	_ = o.Encode(tableRecord{Rows: result})
}

// Encode writes v as one document.
func (o *EncodedOutput) Encode(v any) error {
	var (
		data []byte
		err  error
		sep  string
	)
	switch o.format {
	case FormatYAML:
		data, err = yaml.Marshal(v)
		sep = "---\n"
	case FormatTOML:
		data, err = toml.Marshal(v)
		sep = "\n"
	default:
		data, err = json.Marshal(v)
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", o.format, err)
	}

	if o.written && sep != "" {
		if _, err := io.WriteString(o.w, sep); err != nil {
			return err
		}
	}
	o.written = true
	_, err = o.w.Write(data)
	return err
}
