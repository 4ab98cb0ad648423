// Package payment confirms a hosted checkout by polling its status.
//
// Poll is a pure state machine: Begin reserves an attempt, Observe applies
// its result. Poller.Run drives one Poll to a terminal state on the calling
// goroutine; the TUI drives the same machine with timer messages instead.
package payment

import (
	"errors"

	"github.com/google/uuid"

	"github.com/crowncreative/portal/pkg/domain"
)

// Status is the state of a confirmation poll.
type Status string

const (
	StatusChecking Status = "checking"
	StatusSuccess  Status = "success"
	StatusExpired  Status = "expired"
	StatusTimeout  Status = "timeout"
	StatusError    Status = "error"
)

// Terminal reports whether no further attempt may follow.
func (s Status) Terminal() bool {
	return s != StatusChecking
}

// ErrNoSession is the error of a poll started without a checkout session id.
var ErrNoSession = errors.New("missing checkout session id")

// Poll is one confirmation run for one checkout session. A Poll is never
// resumed after a terminal state; start a new one instead.
type Poll struct {
	ID          string
	SessionID   string
	MaxAttempts int

	// Attempts counts status calls issued so far.
	Attempts int
	Status   Status
	Last     *domain.CheckoutStatus
	Err      error
}

// NewPoll creates a poll in the checking state. An empty sessionID yields a
// poll that is already in the error state and will never issue a call.
func NewPoll(sessionID string, maxAttempts int) *Poll {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	p := &Poll{
		ID:          uuid.NewString(),
		SessionID:   sessionID,
		MaxAttempts: maxAttempts,
		Status:      StatusChecking,
	}
	if sessionID == "" {
		p.Status = StatusError
		p.Err = ErrNoSession
	}
	return p
}

// Begin reserves the next attempt. It returns false, and changes nothing,
// once the poll is terminal or the budget is spent.
func (p *Poll) Begin() bool {
	if p.Status.Terminal() || p.Attempts >= p.MaxAttempts {
		return false
	}
	p.Attempts++
	return true
}

// Observe applies the outcome of the attempt reserved by Begin and reports
// whether another attempt should be scheduled.
func (p *Poll) Observe(st *domain.CheckoutStatus, err error) (again bool) {
	if p.Status.Terminal() {
		return false
	}
	exhausted := p.Attempts >= p.MaxAttempts

	if err != nil || st == nil {
		if err == nil {
			err = errors.New("empty status response")
		}
		p.Err = err
		if exhausted {
			p.Status = StatusError
			return false
		}
		return true
	}

	p.Last = st
	p.Err = nil
	switch {
	case st.Paid():
		p.Status = StatusSuccess
		return false
	case st.Expired():
		p.Status = StatusExpired
		return false
	case exhausted:
		p.Status = StatusTimeout
		return false
	default:
		return true
	}
}

// Headline is the short user-facing result.
func (p *Poll) Headline() string {
	switch p.Status {
	case StatusSuccess:
		return "Payment successful"
	case StatusExpired:
		return "Session expired"
	case StatusTimeout, StatusError:
		return "Unable to verify"
	default:
		return "Processing payment"
	}
}

// Detail is the longer explanation shown under the headline.
func (p *Poll) Detail() string {
	switch p.Status {
	case StatusSuccess:
		return "Thank you for your purchase!"
	case StatusExpired:
		return "Your payment session has expired. Please try again."
	case StatusTimeout, StatusError:
		return "We couldn't verify your payment status. Please check your email for confirmation."
	default:
		return "Please wait while we confirm your payment..."
	}
}
