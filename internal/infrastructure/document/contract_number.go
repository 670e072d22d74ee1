package document

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// NumberGenerator produces contract numbers in the form CT{yyyy}{MM}{dd}{HHmm}{rrr}.
// Numbers are a display convenience; two numbers issued in the same minute may collide.
type NumberGenerator struct {
	now      func() time.Time
	location *time.Location
	intN     func(n int) int
}

// NumberGeneratorOption configures a NumberGenerator
type NumberGeneratorOption func(*NumberGenerator)

// WithClock sets the time source
func WithClock(now func() time.Time) NumberGeneratorOption {
	return func(g *NumberGenerator) {
		if now != nil {
			g.now = now
		}
	}
}

// WithLocation sets the time zone the timestamp part is expressed in
func WithLocation(loc *time.Location) NumberGeneratorOption {
	return func(g *NumberGenerator) {
		if loc != nil {
			g.location = loc
		}
	}
}

// WithRandom sets the source of the three-digit suffix.
// intN must return a value in [0, n).
func WithRandom(intN func(n int) int) NumberGeneratorOption {
	return func(g *NumberGenerator) {
		if intN != nil {
			g.intN = intN
		}
	}
}

// NewNumberGenerator creates a generator using the wall clock and math/rand/v2
func NewNumberGenerator(opts ...NumberGeneratorOption) *NumberGenerator {
	g := &NumberGenerator{
		now:      time.Now,
		location: time.Local,
		intN:     rand.IntN,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Next returns a new contract number
func (g *NumberGenerator) Next() string {
	return numberAt(g.now(), g.location, g.intN(1000))
}

// numberAt formats the contract number for a given instant and suffix
func numberAt(t time.Time, loc *time.Location, suffix int) string {
	return fmt.Sprintf("CT%s%03d", t.In(loc).Format("200601021504"), suffix%1000)
}
