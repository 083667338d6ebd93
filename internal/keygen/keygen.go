// Package keygen produces short, URL-safe, unpredictable keys used as
// public mapping identifiers.
package keygen

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

// DefaultKeyBytes is the number of random bytes behind a key.
// 8 bytes encode to an 11-character base64url string.
const DefaultKeyBytes = 8

// Generator produces fixed-length keys over the base64url alphabet
// (letters, digits, '-' and '_', no padding). It is stateless and gives
// no uniqueness guarantee; collision handling belongs to the store.
type Generator struct {
	keyBytes int
	source   io.Reader
}

// Option configures a Generator.
type Option func(*Generator)

// WithKeyBytes sets the number of raw random bytes per key.
func WithKeyBytes(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.keyBytes = n
		}
	}
}

// WithSource replaces the randomness source. Used by tests to make key
// sequences deterministic.
func WithSource(r io.Reader) Option {
	return func(g *Generator) {
		g.source = r
	}
}

// New creates a Generator backed by crypto/rand.
func New(opts ...Option) *Generator {
	g := &Generator{
		keyBytes: DefaultKeyBytes,
		source:   rand.Reader,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Generate returns a fresh key. It fails only when the randomness source
// fails, which callers should treat as fatal rather than retryable.
func (g *Generator) Generate() (string, error) {
	const op = "keygen.Generator.Generate"

	buf := make([]byte, g.keyBytes)
	if _, err := io.ReadFull(g.source, buf); err != nil {
		return "", fmt.Errorf("%s: failed to read random bytes: %w", op, err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}
