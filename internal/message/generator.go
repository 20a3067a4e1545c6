// Package message produces commit messages for a set of changed paths.
package message

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/ItsDalk-Lane/gitbatch/internal/clock"
	"github.com/ItsDalk-Lane/gitbatch/internal/constants"
	"github.com/ItsDalk-Lane/gitbatch/internal/ctxutil"
	gberrors "github.com/ItsDalk-Lane/gitbatch/internal/errors"
)

// Generator produces a commit message for paths.
type Generator interface {
	Generate(ctx context.Context, paths []string) (string, error)
}

// Data is the value a message template is executed with.
type Data struct {
	// Count is the number of changed paths.
	Count int
	// Files are the changed paths.
	Files []string
	// Date is the local date and minute, "2006-01-02 15:04".
	Date string
}

// TemplateGenerator renders a text/template. It never calls out of process.
type TemplateGenerator struct {
	tmpl  *template.Template
	clock clock.Clock
}

// Compile-time interface check.
var _ Generator = (*TemplateGenerator)(nil)

// NewTemplateGenerator parses text. An empty text uses the default template.
func NewTemplateGenerator(text string, clk clock.Clock) (*TemplateGenerator, error) {
	if strings.TrimSpace(text) == "" {
		text = constants.DefaultMessageTemplate
	}
	if clk == nil {
		clk = clock.RealClock{}
	}

	tmpl, err := template.New("message").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse message template: %w: %w", gberrors.ErrConfigInvalidMessage, err)
	}
	return &TemplateGenerator{tmpl: tmpl, clock: clk}, nil
}

// Generate renders the template for paths.
func (g *TemplateGenerator) Generate(ctx context.Context, paths []string) (string, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return "", err
	}

	data := Data{
		Count: len(paths),
		Files: paths,
		Date:  g.clock.Now().Format("2006-01-02 15:04"),
	}

	var buf bytes.Buffer
	if err := g.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render message template: %w: %w", gberrors.ErrMessageGeneration, err)
	}

	msg := Clean(buf.String())
	if msg == "" {
		return "", fmt.Errorf("message template rendered nothing: %w", gberrors.ErrMessageGeneration)
	}
	return msg, nil
}

// Clean normalizes generated text: markdown code fences are removed, lines
// are trimmed and blank lines dropped.
func Clean(raw string) string {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "```") {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
