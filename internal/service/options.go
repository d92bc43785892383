package service

import (
	"math/rand/v2"
	"time"

	"github.com/AdamBeresnev/op-tournament-engine/internal/config"
)

// Options carries the clock, random source and scheduling defaults shared by
// the services. Zero values are replaced by sensible defaults.
type Options struct {
	Now func() time.Time

	// Rand returns a fresh source for one operation
	Rand func() *rand.Rand

	DefaultMatchDuration time.Duration
	DefaultMatchInterval time.Duration
}

// SeededRand returns a source factory. A zero seed gives a differently seeded
// source on every call; any other seed makes every call reproduce the same
// sequence.
func SeededRand(seed uint64) func() *rand.Rand {
	if seed == 0 {
		return func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		}
	}
	return func() *rand.Rand {
		return rand.New(rand.NewPCG(seed, seed))
	}
}

// OptionsFromConfig builds the service options for a running binary.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Rand:                 SeededRand(cfg.RandomSeed),
		DefaultMatchDuration: cfg.DefaultMatchDuration,
		DefaultMatchInterval: cfg.DefaultMatchInterval,
	}
}

func (o Options) withDefaults() Options {
	if o.Now == nil {
		o.Now = func() time.Time { return time.Now().UTC() }
	}
	if o.Rand == nil {
		o.Rand = SeededRand(0)
	}
	if o.DefaultMatchDuration <= 0 {
		o.DefaultMatchDuration = 60 * time.Minute
	}
	if o.DefaultMatchInterval < 0 {
		o.DefaultMatchInterval = 0
	}
	return o
}
