package service

import (
	"math/rand"
	"time"

	"go.uber.org/zap"

	"devrush/internal/metrics"
)

// Random draws integers uniformly from [0, n).
type Random interface {
	IntN(n int) int
}

type globalRandom struct{}

// IntN uses the goroutine-safe top-level generator.
func (globalRandom) IntN(n int) int { return rand.Intn(n) }

// Options carries the injectable environment shared by the services.
type Options struct {
	Now     func() time.Time
	Random  Random
	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

func (o Options) withDefaults() Options {
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Random == nil {
		o.Random = globalRandom{}
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}
