package infra

import (
	"time"

	"golang.org/x/time/rate"
)

// IntervalPacer garante um espaçamento mínimo entre regenerações usando
// token-bucket (x/time/rate) com burst 1.
//
// Com interval <= 0 tudo é permitido.
type IntervalPacer struct {
	lim      *rate.Limiter
	interval time.Duration
}

func NewIntervalPacer(interval time.Duration) *IntervalPacer {
	if interval <= 0 {
		return &IntervalPacer{}
	}
	return &IntervalPacer{
		lim:      rate.NewLimiter(rate.Every(interval), 1),
		interval: interval,
	}
}

func (p *IntervalPacer) Interval() time.Duration { return p.interval }

// Allow implementa domain.Limiter.
func (p *IntervalPacer) Allow() bool {
	if p == nil || p.lim == nil {
		return true
	}
	return p.lim.Allow()
}
