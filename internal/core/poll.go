package core

import (
	"context"
	"time"
)

const (
	// PairingPollInterval is the delay between pairing artifact checks.
	PairingPollInterval = 500 * time.Millisecond

	// PairingPollTimeout bounds how long Start waits for a pairing code.
	PairingPollTimeout = 10 * time.Second
)

// Poller runs a probe at a fixed interval until it succeeds or the
// attempt budget is spent. The budget is Timeout/Interval attempts, each
// made after waiting Interval.
type Poller struct {
	Interval time.Duration
	Timeout  time.Duration
	Clock    Clock
}

// Attempts returns the maximum number of probes Poll makes.
func (p Poller) Attempts() int {
	if p.Interval <= 0 {
		return 1
	}
	n := int(p.Timeout / p.Interval)
	if n < 1 {
		n = 1
	}
	return n
}

// Poll waits Interval, calls probe, and repeats until probe reports ok or
// Attempts probes have been made. It returns the last successful value, or
// "" and false when the budget is exhausted or ctx is done.
func (p Poller) Poll(ctx context.Context, probe func() (string, bool)) (string, bool) {
	clock := p.Clock
	if clock == nil {
		clock = RealClock{}
	}

	for i := 0; i < p.Attempts(); i++ {
		select {
		case <-ctx.Done():
			return "", false
		case <-clock.After(p.Interval):
		}
		if v, ok := probe(); ok {
			return v, true
		}
	}
	return "", false
}
