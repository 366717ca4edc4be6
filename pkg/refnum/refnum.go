// Package refnum issues human-readable submission reference numbers of the
// form <prefix><DD><MM><YYYY><NNNN>, e.g. EduPX140420252731.
package refnum

import (
	"fmt"
	"math/rand"
	"regexp"
	"sync"
	"time"
)

// DefaultPrefix is prepended to every reference when none is configured.
const DefaultPrefix = "EduPX"

var pattern = regexp.MustCompile(`^[A-Za-z]+(\d{2})(\d{2})(\d{4})(\d{4})$`)

// Generator is safe for concurrent use.
type Generator struct {
	prefix string
	now    func() time.Time

	mu  sync.Mutex
	rnd *rand.Rand
}

// Option customises a Generator.
type Option func(*Generator)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithSource overrides the random source.
func WithSource(src rand.Source) Option {
	return func(g *Generator) { g.rnd = rand.New(src) }
}

// New builds a generator. An empty prefix falls back to DefaultPrefix.
func New(prefix string, opts ...Option) *Generator {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	g := &Generator{
		prefix: prefix,
		now:    time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns a reference for the current UTC calendar date with a
// zero-padded four digit suffix in [0, 9999].
func (g *Generator) Generate() string {
	return g.GenerateAt(g.now())
}

// GenerateAt is Generate for the UTC calendar date of at.
func (g *Generator) GenerateAt(at time.Time) string {
	g.mu.Lock()
	suffix := g.rnd.Intn(10000)
	g.mu.Unlock()

	return Format(g.prefix, at.UTC(), suffix)
}

// Format renders a reference for date and suffix.
func Format(prefix string, date time.Time, suffix int) string {
	return fmt.Sprintf("%s%02d%02d%04d%04d", prefix, date.Day(), int(date.Month()), date.Year(), suffix)
}

// Valid reports whether ref has the expected shape and an existing calendar date.
func Valid(ref string) bool {
	m := pattern.FindStringSubmatch(ref)
	if m == nil {
		return false
	}
	_, err := time.Parse("02012006", m[1]+m[2]+m[3])
	return err == nil
}
