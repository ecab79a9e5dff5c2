package backend

import (
	"context"
	"sync/atomic"
	"time"
)

// HealthPoller probes the backend health endpoint on a fixed interval and
// exposes the latest result as a connectivity indicator.
type HealthPoller struct {
	client    *Client
	interval  time.Duration
	connected atomic.Bool
	onChange  func(connected bool)
}

// NewHealthPoller creates a poller. onChange may be nil; when set it fires
// on every state transition.
func NewHealthPoller(client *Client, interval time.Duration, onChange func(bool)) *HealthPoller {
	return &HealthPoller{
		client:   client,
		interval: interval,
		onChange: onChange,
	}
}

// Connected reports the last observed backend state.
func (p *HealthPoller) Connected() bool {
	return p.connected.Load()
}

// Run polls until the context is cancelled. The first probe fires
// immediately so the indicator is meaningful at startup.
func (p *HealthPoller) Run(ctx context.Context) {
	p.probe(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.probe(ctx)
		}
	}
}

func (p *HealthPoller) probe(ctx context.Context) {
	up := p.client.Health(ctx)
	if p.connected.Swap(up) != up && p.onChange != nil {
		p.onChange(up)
	}
}
