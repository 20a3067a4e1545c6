package config

import (
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/go-viper/mapstructure/v2"

	"github.com/ItsDalk-Lane/gitbatch/internal/errors"
)

// ByteSize is a byte count written in config files as "10MiB", "512 KB" or
// a plain number.
type ByteSize int64

// ParseByteSize parses a human byte size. SI suffixes (KB, MB) are powers
// of 1000, IEC suffixes (KiB, MiB) powers of 1024.
func ParseByteSize(s string) (ByteSize, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.Wrap(errors.ErrInvalidSize, "size must not be empty")
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("%q: %w: %w", s, errors.ErrInvalidSize, err)
	}
	if n > math.MaxInt64 {
		return 0, errors.Wrapf(errors.ErrInvalidSize, "%q is too large", s)
	}
	return ByteSize(n), nil
}

// Int64 returns the size in bytes.
func (b ByteSize) Int64() int64 {
	return int64(b)
}

// String formats the size with IEC units.
func (b ByteSize) String() string {
	if b < 0 {
		return fmt.Sprintf("%d B", int64(b))
	}
	return humanize.IBytes(uint64(b))
}

// MarshalText implements encoding.TextMarshaler.
func (b ByteSize) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *ByteSize) UnmarshalText(text []byte) error {
	v, err := ParseByteSize(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// StringToByteSizeHookFunc converts strings into ByteSize during decoding.
// Numbers are decoded by mapstructure directly.
func StringToByteSizeHookFunc() mapstructure.DecodeHookFuncType {
	target := reflect.TypeOf(ByteSize(0))
	return func(from, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String || to != target {
			return data, nil
		}
		s, ok := data.(string)
		if !ok {
			return data, nil
		}
		return ParseByteSize(s)
	}
}
