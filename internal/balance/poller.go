// Package balance observes buyer balances for open checkouts.
package balance

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"contentcheckout/internal/domain"
)

// Source reads a buyer's balance from the ledger. domain.ErrNotFound means the
// buyer has never held a balance.
type Source interface {
	GetBalance(ctx context.Context, buyerID string) (int64, error)
}

// Observer is the read side of a balance subscription.
type Observer interface {
	CurrentBalance() domain.Balance
	Updates() <-chan domain.Balance
}

// Poller refreshes one buyer's balance on a fixed cadence and publishes every
// change on Updates. Slow consumers only ever see the latest value.
type Poller struct {
	source  Source
	buyerID string
	limiter *rate.Limiter
	timeout time.Duration
	logger  logrus.FieldLogger

	mu      sync.RWMutex
	current domain.Balance
	updates chan domain.Balance
}

func NewPoller(source Source, buyerID string, interval time.Duration, logger logrus.FieldLogger) *Poller {
	if interval <= 0 {
		interval = time.Second
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Poller{
		source:  source,
		buyerID: buyerID,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		timeout: max(interval, time.Second),
		logger:  logger.WithField("buyer_id", buyerID),
		updates: make(chan domain.Balance, 1),
	}
}

// CurrentBalance returns the last observed balance, unknown before the first poll.
func (p *Poller) CurrentBalance() domain.Balance {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// Updates is closed when Run returns.
func (p *Poller) Updates() <-chan domain.Balance {
	return p.updates
}

// Run polls until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	defer close(p.updates)
	for {
		if err := p.limiter.Wait(ctx); err != nil {
			return
		}
		p.poll(ctx)
	}
}

func (p *Poller) poll(ctx context.Context) {
	fetchCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cents, err := p.source.GetBalance(fetchCtx, p.buyerID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		cents = 0
	case err != nil:
		if ctx.Err() == nil {
			p.logger.WithError(err).Warn("balance poll failed")
		}
		return
	}

	next := domain.KnownBalance(cents)
	p.mu.Lock()
	changed := next != p.current
	p.current = next
	p.mu.Unlock()
	if changed {
		p.publish(next)
	}
}

func (p *Poller) publish(b domain.Balance) {
	for {
		select {
		case p.updates <- b:
			return
		default:
		}
		// Drop the stale value nobody consumed yet.
		select {
		case <-p.updates:
		default:
		}
	}
}
