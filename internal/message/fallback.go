package message

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// FallbackGenerator tries Primary and falls back to Fallback when it fails.
type FallbackGenerator struct {
	Primary  Generator
	Fallback Generator
	Logger   zerolog.Logger
}

// Compile-time interface check.
var _ Generator = (*FallbackGenerator)(nil)

// Generate returns the primary message, or the fallback one if the primary
// generator fails for any reason other than cancellation.
func (g *FallbackGenerator) Generate(ctx context.Context, paths []string) (string, error) {
	msg, err := g.Primary.Generate(ctx, paths)
	if err == nil {
		return msg, nil
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	fallback, fbErr := g.Fallback.Generate(ctx, paths)
	if fbErr != nil {
		return "", fbErr
	}

	firstLine, _, _ := strings.Cut(fallback, "\n")
	g.Logger.Warn().
		Err(err).
		Str("fallback_message", firstLine).
		Msg("message generation failed, using fallback")
	return fallback, nil
}
