// Package fallback wraps the generative model used when no routing rule matches.
package fallback

import (
	"context"
	"fmt"
	"strings"
	"time"

	errx "github.com/Chative-shop-assistant/server/internal/core/error"
)

// Generator produces a free-text answer for an utterance.
type Generator interface {
	Generate(ctx context.Context, sessionID, text string) (string, error)
}

// GeneratorFunc adapts a plain function to Generator.
type GeneratorFunc func(ctx context.Context, sessionID, text string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, sessionID, text string) (string, error) {
	return f(ctx, sessionID, text)
}

// Guard bounds a Generator with a deadline and folds every failure mode
// (disabled, error, panic, timeout, empty text) into one wrapped error.
type Guard struct {
	gen     Generator
	timeout time.Duration
}

// NewGuard accepts a nil generator; Reply then always reports ErrFallbackDisabled.
func NewGuard(gen Generator, timeout time.Duration) *Guard {
	return &Guard{gen: gen, timeout: timeout}
}

func (g *Guard) Enabled() bool {
	return g != nil && g.gen != nil
}

type result struct {
	text string
	err  error
}

func (g *Guard) Reply(ctx context.Context, sessionID, text string) (string, error) {
	if !g.Enabled() {
		return "", errx.WrapFallback(errx.ErrFallbackDisabled)
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("generator panic: %v", r)}
			}
		}()
		out, err := g.gen.Generate(ctx, sessionID, text)
		done <- result{text: out, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", errx.WrapFallback(ctx.Err())
	case r := <-done:
		if r.err != nil {
			return "", errx.WrapFallback(r.err)
		}
		out := strings.TrimSpace(r.text)
		if out == "" {
			return "", errx.WrapFallback(errx.ErrEmptyGeneration)
		}
		return out, nil
	}
}
