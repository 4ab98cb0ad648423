package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/crowncreative/portal/pkg/domain"
)

const (
	DefaultMaxAttempts = 5
	DefaultInterval    = 2 * time.Second
)

// StatusChecker reads a checkout session's status. *client.Client satisfies it.
type StatusChecker interface {
	GetCheckoutStatus(ctx context.Context, sessionID string) (*domain.CheckoutStatus, error)
}

// Option configures a Poller.
type Option func(*Poller)

// WithInterval sets the fixed delay between attempts.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithMaxAttempts caps the number of status calls per poll.
func WithMaxAttempts(n int) Option {
	return func(p *Poller) {
		if n > 0 {
			p.maxAttempts = n
		}
	}
}

// WithLogger sets the logger for poll outcomes.
func WithLogger(l *zap.Logger) Option {
	return func(p *Poller) {
		if l != nil {
			p.logger = l
		}
	}
}

// Poller creates and drives confirmation polls.
type Poller struct {
	checker     StatusChecker
	interval    time.Duration
	maxAttempts int
	logger      *zap.Logger
}

// NewPoller returns a poller with 5 attempts 2s apart unless overridden.
func NewPoller(checker StatusChecker, opts ...Option) *Poller {
	p := &Poller{
		checker:     checker,
		interval:    DefaultInterval,
		maxAttempts: DefaultMaxAttempts,
		logger:      zap.NewNop(),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Interval is the delay between attempts.
func (p *Poller) Interval() time.Duration { return p.interval }

// Start creates a fresh poll for sessionID.
func (p *Poller) Start(sessionID string) *Poll {
	return NewPoll(sessionID, p.maxAttempts)
}

// Check issues one attempt of poll and applies its result. It reports false
// without calling the backend when poll may not attempt again.
func (p *Poller) Check(ctx context.Context, poll *Poll) (again, called bool) {
	if !poll.Begin() {
		return false, false
	}
	st, err := p.checker.GetCheckoutStatus(ctx, poll.SessionID)
	again = poll.Observe(st, err)
	if err != nil {
		p.logger.Debug("checkout status attempt failed",
			zap.String("poll_id", poll.ID),
			zap.Int("attempt", poll.Attempts),
			zap.Error(err))
	}
	if poll.Status.Terminal() {
		p.Log(poll)
	}
	return again, true
}

// Log records the terminal outcome of poll.
func (p *Poller) Log(poll *Poll) {
	fields := []zap.Field{
		zap.String("poll_id", poll.ID),
		zap.String("session_id", poll.SessionID),
		zap.String("status", string(poll.Status)),
		zap.Int("attempts", poll.Attempts),
	}
	switch poll.Status {
	case StatusSuccess, StatusExpired:
		p.logger.Info("checkout poll finished", fields...)
	default:
		p.logger.Warn("checkout poll unresolved", append(fields, zap.Error(poll.Err))...)
	}
}

var errPending = errors.New("payment pending")

// Run polls sessionID until a terminal state. The returned poll is always
// non-nil; the error is non-nil only when ctx ends first.
func (p *Poller) Run(ctx context.Context, sessionID string) (*Poll, error) {
	poll := p.Start(sessionID)
	if poll.Status.Terminal() {
		p.Log(poll)
		return poll, nil
	}

	backoff := retry.WithMaxRetries(uint64(poll.MaxAttempts-1), retry.NewConstant(p.interval))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		again, _ := p.Check(ctx, poll)
		if again {
			return retry.RetryableError(errPending)
		}
		return nil
	})
	if err != nil && !errors.Is(err, errPending) {
		return poll, fmt.Errorf("payment.Run: %w", err)
	}
	return poll, nil
}
