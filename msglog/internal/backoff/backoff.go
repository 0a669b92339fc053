package backoff

import (
	"math/rand/v2"
	"time"
)

type Config struct {
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
	Jitter     float64
}

// Exponential yields growing delays between Initial and Max. It is owned by a
// single goroutine and is not safe for concurrent use.
type Exponential struct {
	current time.Duration
	config  Config
	rand    func() float64
}

func New(cfg Config) *Exponential {
	if cfg.Initial <= 0 {
		cfg.Initial = 50 * time.Millisecond
	}
	if cfg.Max < cfg.Initial {
		cfg.Max = cfg.Initial
	}
	if cfg.Multiplier <= 1 {
		cfg.Multiplier = 2
	}
	if cfg.Jitter < 0 || cfg.Jitter >= 1 {
		cfg.Jitter = 0
	}
	return &Exponential{config: cfg, rand: rand.Float64}
}

func (e *Exponential) Next() time.Duration {
	if e.current <= 0 {
		e.current = e.config.Initial
	} else {
		e.current = time.Duration(float64(e.current) * e.config.Multiplier)
		if e.current > e.config.Max {
			e.current = e.config.Max
		}
	}
	interval := e.current
	if e.config.Jitter > 0 {
		span := float64(interval) * e.config.Jitter
		interval += time.Duration((e.rand()*2 - 1) * span)
	}
	return interval
}

// Current returns the last delay handed out, before jitter.
func (e *Exponential) Current() time.Duration { return e.current }

func (e *Exponential) Reset() {
	e.current = 0
}
