// Package reference issues human-readable booking codes of the form
// PREFIX + N uppercase hex characters, retrying when a code is already taken.
package reference

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mkwawa-heritage/marketplace-api/internal/domain"
	"github.com/mkwawa-heritage/marketplace-api/internal/metrics"
)

const (
	DefaultPrefix      = "MKW"
	DefaultLength      = 8
	DefaultMaxAttempts = 5

	maxLength = 32
)

var ErrExhausted = domain.ErrReferenceExhausted

type ClaimFunc = domain.ReferenceClaim

type Option func(*Generator)

// WithSource replaces the random suffix source.
func WithSource(source func(n int) string) Option {
	return func(g *Generator) {
		g.suffix = source
	}
}

type Generator struct {
	prefix      string
	length      int
	maxAttempts int
	suffix      func(n int) string
	pattern     *regexp.Regexp
}

func New(prefix string, length, maxAttempts int, opts ...Option) (*Generator, error) {
	if prefix == "" {
		return nil, fmt.Errorf("reference prefix must not be empty")
	}
	if length < 1 || length > maxLength {
		return nil, fmt.Errorf("reference length must be between 1 and %d, got %d", maxLength, length)
	}
	if maxAttempts < 1 {
		return nil, fmt.Errorf("reference attempts must be positive, got %d", maxAttempts)
	}

	g := &Generator{
		prefix:      prefix,
		length:      length,
		maxAttempts: maxAttempts,
		suffix:      uuidHex,
		pattern:     regexp.MustCompile(fmt.Sprintf(`^%s[0-9A-F]{%d}$`, regexp.QuoteMeta(prefix), length)),
	}
	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

// Generate returns the first code that claim accepts.
func (g *Generator) Generate(ctx context.Context, claim ClaimFunc) (string, error) {
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		code := g.prefix + g.suffix(g.length)
		ok, err := claim(ctx, code)
		if err != nil {
			return "", fmt.Errorf("claim %s -> %w", code, err)
		}
		if ok {
			return code, nil
		}

		metrics.ReferenceCollision()
		zap.L().Warn("booking reference collision",
			zap.String("reference", code),
			zap.Int("attempt", attempt),
		)
	}

	return "", fmt.Errorf("%w after %d attempts", ErrExhausted, g.maxAttempts)
}

func (g *Generator) Valid(code string) bool {
	return g.pattern.MatchString(code)
}

func uuidHex(n int) string {
	var b strings.Builder
	for b.Len() < n {
		b.WriteString(strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")))
	}
	return b.String()[:n]
}
