package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/crowncreative/portal/internal/payment"
	"github.com/crowncreative/portal/pkg/domain"
)

var errNoChecker = errors.New("payment status is unavailable")

// pollTickMsg schedules the next attempt of one poll instance.
type pollTickMsg struct {
	scope  scope
	pollID string
}

type pollResultMsg struct {
	scope  scope
	pollID string
	status *domain.CheckoutStatus
	err    error
}

// paymentModel confirms a checkout after the client returns from the
// hosted page. Each mount runs a fresh poll; ticks and results that carry
// another poll's ID are dropped, so an abandoned poll never mutates a view.
type paymentModel struct {
	deps     Deps
	scope    scope
	checker  payment.StatusChecker
	interval time.Duration
	poll     *payment.Poll
	inFlight bool
	width    int
	height   int
}

func newPaymentModel(d Deps, sessionID string) paymentModel {
	m := paymentModel{deps: d, scope: newScope(), interval: payment.DefaultInterval}
	if d.Client != nil {
		m.checker = d.Client
	}
	if d.Poller != nil {
		m.interval = d.Poller.Interval()
		m.poll = d.Poller.Start(sessionID)
	} else {
		m.poll = payment.NewPoll(sessionID, payment.DefaultMaxAttempts)
	}
	return m
}

func (m paymentModel) Init() tea.Cmd {
	if m.poll.Status.Terminal() {
		m.logOutcome()
		return nil
	}
	sc, id := m.scope, m.poll.ID
	return func() tea.Msg { return pollTickMsg{scope: sc, pollID: id} }
}

func (m paymentModel) tick() tea.Cmd {
	sc, id := m.scope, m.poll.ID
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		return pollTickMsg{scope: sc, pollID: id}
	})
}

func (m paymentModel) check() tea.Cmd {
	checker, sc, id, sessionID := m.checker, m.scope, m.poll.ID, m.poll.SessionID
	return func() tea.Msg {
		if checker == nil {
			return pollResultMsg{scope: sc, pollID: id, err: errNoChecker}
		}
		ctx, cancel := reqCtx()
		defer cancel()
		st, err := checker.GetCheckoutStatus(ctx, sessionID)
		return pollResultMsg{scope: sc, pollID: id, status: st, err: err}
	}
}

func (m paymentModel) logOutcome() {
	if m.deps.Poller != nil {
		m.deps.Poller.Log(m.poll)
	}
}

func (m paymentModel) current(sc scope, pollID string) bool {
	return sc == m.scope && pollID == m.poll.ID
}

func (m paymentModel) Update(msg tea.Msg) (paymentModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case pollTickMsg:
		if !m.current(msg.scope, msg.pollID) || m.inFlight {
			return m, nil
		}
		if !m.poll.Begin() {
			return m, nil
		}
		m.inFlight = true
		return m, m.check()

	case pollResultMsg:
		if !m.current(msg.scope, msg.pollID) {
			return m, nil
		}
		m.inFlight = false
		if m.poll.Observe(msg.status, msg.err) {
			return m, m.tick()
		}
		if m.poll.Status.Terminal() {
			m.logOutcome()
		}

	case tea.KeyMsg:
		if !m.poll.Status.Terminal() {
			return m, nil
		}
		switch msg.String() {
		case "enter", "esc":
			return m, navigate(pageOrders, "")
		case "d":
			return m, navigate(pageDashboard, "")
		}
	}
	return m, nil
}

func (m paymentModel) View() string {
	var b strings.Builder
	b.WriteString(" " + titleStyle.Render("Payment") + "\n")
	b.WriteString(" " + separator(m.width) + "\n\n")

	var headline string
	switch m.poll.Status {
	case payment.StatusSuccess:
		headline = successStyle.Bold(true).Render("✓ " + m.poll.Headline())
	case payment.StatusChecking:
		headline = goldStyle.Bold(true).Render("… " + m.poll.Headline())
	default:
		headline = rejectStyle.Bold(true).Render("✗ " + m.poll.Headline())
	}
	b.WriteString(" " + headline + "\n")
	b.WriteString(" " + dimStyle.Render(m.poll.Detail()) + "\n\n")

	if m.poll.Status == payment.StatusChecking {
		fmt.Fprintf(&b, " %s\n", metaStyle.Render(fmt.Sprintf("attempt %d of %d", m.poll.Attempts, m.poll.MaxAttempts)))
	}
	if last := m.poll.Last; last != nil && m.poll.Status == payment.StatusSuccess && last.AmountTotal > 0 {
		fmt.Fprintf(&b, " %s %s\n", dimStyle.Render("Amount paid"), goldStyle.Render(money(last.AmountTotal, last.Currency)))
	}
	if m.poll.SessionID != "" {
		fmt.Fprintf(&b, " %s\n", metaStyle.Render("session "+truncStr(m.poll.SessionID, 40)))
	}
	return b.String()
}

func (m paymentModel) helpKeys() string {
	if !m.poll.Status.Terminal() {
		return helpEntry("1-7", "tabs")
	}
	return helpBar(helpEntry("enter", "view orders"), helpEntry("d", "dashboard"))
}

func (m paymentModel) editing() bool { return false }

func (m paymentModel) update(msg tea.Msg) (page, tea.Cmd) { return m.Update(msg) }
