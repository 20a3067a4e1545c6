// Package porcelain parses `git status --porcelain` (v1) output into
// classified changes.
// This file implements decoding and encoding of git's quoted path form.
package porcelain

import (
	"strings"
	"unicode/utf8"

	gberrors "github.com/ItsDalk-Lane/gitbatch/internal/errors"
)

// scanState is the state of the quoted-path scanner.
type scanState int

const (
	scanNormal scanState = iota
	scanEscape
	scanDigit1
	scanDigit2
)

// cEscapes maps the single-character escapes git writes to their bytes.
//
//nolint:gochecknoglobals // Lookup table
var cEscapes = map[byte]byte{
	'\\': '\\',
	'"':  '"',
	'a':  '\a',
	'b':  '\b',
	't':  '\t',
	'n':  '\n',
	'v':  '\v',
	'f':  '\f',
	'r':  '\r',
}

// IsQuoted reports whether a payload uses the quoted form.
func IsQuoted(payload string) bool {
	return len(payload) >= 2 && payload[0] == '"' && payload[len(payload)-1] == '"'
}

// Unquote decodes a path payload. Unquoted payloads are returned unchanged.
//
// Inside quotes, \NNN (three octal digits) is one raw byte and the C escapes
// git emits are honored. Malformed or truncated escapes are copied through
// literally. If the resulting bytes are not valid UTF-8 the raw text between
// the quotes is returned along with a *DecodeWarning.
func Unquote(payload string) (string, error) {
	if !IsQuoted(payload) {
		return payload, nil
	}
	inner := payload[1 : len(payload)-1]

	decoded := unescape(inner)
	if !utf8.Valid(decoded) {
		return inner, &gberrors.DecodeWarning{Raw: payload, Err: gberrors.ErrInvalidUTF8Path}
	}
	return string(decoded), nil
}

// unescape runs the escape scanner over s.
func unescape(s string) []byte {
	out := make([]byte, 0, len(s))
	state := scanNormal
	// start is the index of the pending backslash; value accumulates octal digits.
	start := 0
	value := 0

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch state {
		case scanNormal:
			if c == '\\' {
				state, start = scanEscape, i
				continue
			}
			out = append(out, c)

		case scanEscape:
			if isOctal(c) {
				state, value = scanDigit1, int(c-'0')
				continue
			}
			if b, ok := cEscapes[c]; ok {
				out = append(out, b)
			} else {
				out = append(out, '\\', c)
			}
			state = scanNormal

		case scanDigit1:
			if !isOctal(c) {
				out = append(out, s[start:i]...)
				state = scanNormal
				i--
				continue
			}
			state, value = scanDigit2, value*8+int(c-'0')

		case scanDigit2:
			value = value*8 + int(c-'0')
			// Escapes above \377 are not bytes; git never writes them, so
			// they are kept as written rather than truncated to 8 bits.
			if !isOctal(c) || value > 0o377 {
				out = append(out, s[start:i]...)
				state = scanNormal
				i--
				continue
			}
			out = append(out, byte(value))
			state = scanNormal
		}
	}

	// A truncated escape at the end of input is kept as written.
	if state != scanNormal {
		out = append(out, s[start:]...)
	}
	return out
}

func isOctal(c byte) bool {
	return c >= '0' && c <= '7'
}

// Quote encodes path the way git does with core.quotePath enabled.
// Paths made only of printable ASCII without '"' or '\' are returned as is.
func Quote(path string) string {
	if !needsQuoting(path) {
		return path
	}

	var b strings.Builder
	b.Grow(len(path) + 2)
	b.WriteByte('"')
	for i := 0; i < len(path); i++ {
		c := path[i]
		switch c {
		case '\\', '"':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\a':
			b.WriteString(`\a`)
		case '\b':
			b.WriteString(`\b`)
		case '\t':
			b.WriteString(`\t`)
		case '\n':
			b.WriteString(`\n`)
		case '\v':
			b.WriteString(`\v`)
		case '\f':
			b.WriteString(`\f`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if c < 0x20 || c >= 0x7f {
				b.WriteByte('\\')
				b.WriteByte('0' + c>>6)
				b.WriteByte('0' + (c>>3)&7)
				b.WriteByte('0' + c&7)
				continue
			}
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func needsQuoting(path string) bool {
	if path == "" {
		return false
	}
	for i := 0; i < len(path); i++ {
		c := path[i]
		if c < 0x20 || c >= 0x7f || c == '"' || c == '\\' {
			return true
		}
	}
	return false
}
