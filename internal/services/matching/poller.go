package matching

import (
	"context"
	"errors"
	"time"

	"github.com/iyunix/finsarthi/internal/domain"
)

const DefaultPollInterval = 5 * time.Second

// FetchFunc loads the customer's current requests.
type FetchFunc func(ctx context.Context) ([]OutgoingRequest, error)

// HasPending reports whether a customer is still waiting on any coach.
func HasPending(reqs []OutgoingRequest) bool {
	for _, r := range reqs {
		if r.Status == domain.StatusPending {
			return true
		}
	}
	return false
}

// Poller re-fetches a customer's requests on a fixed interval while any of
// them is pending. There is no backoff or jitter.
type Poller struct {
	interval time.Duration
	fetch    FetchFunc
	onUpdate func([]OutgoingRequest)
	logger   Logger
}

// NewPoller returns a poller. onUpdate may be nil.
func NewPoller(interval time.Duration, fetch FetchFunc, onUpdate func([]OutgoingRequest), logger Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if onUpdate == nil {
		onUpdate = func([]OutgoingRequest) {}
	}
	return &Poller{interval: interval, fetch: fetch, onUpdate: onUpdate, logger: logger}
}

// Run fetches once immediately and then on every tick until no request is
// pending, which returns nil, or ctx is done, which returns ctx.Err().
// A failed fetch is logged and retried on the next tick.
func (p *Poller) Run(ctx context.Context) error {
	if p.poll(ctx) {
		return nil
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if p.poll(ctx) {
				return nil
			}
		}
	}
}

// poll reports whether polling is finished.
func (p *Poller) poll(ctx context.Context) bool {
	reqs, err := p.fetch(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return false
		}
		p.logger.Warn("poll failed", "error", err)
		return false
	}
	p.onUpdate(reqs)
	if HasPending(reqs) {
		return false
	}
	p.logger.Debug("no pending chat requests, polling stopped")
	return true
}
