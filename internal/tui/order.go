package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/crowncreative/portal/internal/browser"
	"github.com/crowncreative/portal/internal/payment"
	"github.com/crowncreative/portal/pkg/client"
	"github.com/crowncreative/portal/pkg/domain"
)

type orderMode int

const (
	orderViewMode orderMode = iota
	orderAddMode            // picking a service to add
	orderCouponMode         // typing a coupon code
)

type orderLoadedMsg struct {
	scope scope
	order *domain.Order
	err   error
}

type itemRemovedMsg struct {
	scope  scope
	itemID string
	err    error
}

type itemAddedMsg struct {
	scope scope
	order *domain.Order
	err   error
}

type servicesLoadedMsg struct {
	scope    scope
	services []domain.Service
	err      error
}

type couponAppliedMsg struct {
	scope  scope
	result *client.CouponResult
	err    error
}

type checkoutMsg struct {
	scope   scope
	session *domain.CheckoutSession
	err     error
}

// orderModel shows one order and its line items.
type orderModel struct {
	deps    Deps
	scope   scope
	id      string
	order   *domain.Order
	cursor  int
	loading bool
	mode    orderMode
	width   int
	height  int

	confirmCancel bool
	paying        bool
	removing      string
	checkout      *domain.CheckoutSession

	services   []domain.Service
	svcCursor  int
	coupon     string
	cursorOn   bool
	couponBusy bool
}

func newOrderModel(d Deps, id string) orderModel {
	return orderModel{deps: d, scope: newScope(), id: id, loading: true}
}

func (m orderModel) Init() tea.Cmd {
	return m.load()
}

func (m orderModel) load() tea.Cmd {
	c, sc, id := m.deps.Client, m.scope, m.id
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		o, err := c.GetOrder(ctx, id)
		return orderLoadedMsg{scope: sc, order: o, err: err}
	}
}

func (m orderModel) removeItem(itemID string) tea.Cmd {
	c, sc, id := m.deps.Client, m.scope, m.id
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		return itemRemovedMsg{scope: sc, itemID: itemID, err: c.RemoveOrderItem(ctx, id, itemID)}
	}
}

func (m orderModel) loadServices() tea.Cmd {
	c, sc := m.deps.Client, m.scope
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		svcs, err := c.ListServices(ctx)
		return servicesLoadedMsg{scope: sc, services: svcs, err: err}
	}
}

func (m orderModel) addItem(serviceID string) tea.Cmd {
	c, sc, id := m.deps.Client, m.scope, m.id
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		o, err := c.AddOrderItem(ctx, id, client.OrderItemInput{ServiceID: serviceID, Quantity: 1})
		return itemAddedMsg{scope: sc, order: o, err: err}
	}
}

func (m orderModel) applyCoupon(code string) tea.Cmd {
	c, sc, id := m.deps.Client, m.scope, m.id
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		res, err := c.ApplyCoupon(ctx, id, code)
		return couponAppliedMsg{scope: sc, result: res, err: err}
	}
}

func (m orderModel) cancelOrder() tea.Cmd {
	c, id := m.deps.Client, m.id
	canceled := domain.OrderCanceled
	return doAction(m.scope, "Order cancelled", func(ctx context.Context) error {
		_, err := c.UpdateOrder(ctx, id, client.OrderUpdate{Status: &canceled})
		return err
	})
}

func (m orderModel) startCheckout(o domain.Order) tea.Cmd {
	c, sc, returnURL := m.deps.Client, m.scope, m.deps.ReturnURL
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		sess, err := payment.Checkout(ctx, c, o, returnURL)
		return checkoutMsg{scope: sc, session: sess, err: err}
	}
}

func (m orderModel) Update(msg tea.Msg) (orderModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case cursorBlinkMsg:
		if m.mode == orderCouponMode {
			m.cursorOn = !m.cursorOn
			return m, cursorBlinkCmd()
		}

	case orderLoadedMsg:
		if msg.scope != m.scope {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			if client.IsNotFound(msg.err) || m.order == nil {
				return m, tea.Batch(func() tea.Msg {
					return notifyMsg{text: "Order not found", isErr: true}
				}, navigate(pageOrders, ""))
			}
			return m, failed(msg.err)
		}
		m.order = msg.order
		m.cursor = clampCursor(m.cursor, len(m.order.Items))

	case itemRemovedMsg:
		if msg.scope != m.scope {
			return m, nil
		}
		m.removing = ""
		if msg.err != nil {
			return m, failedWith(msg.err, "Failed to remove item")
		}
		if m.order != nil {
			if next, ok := m.order.WithoutItem(msg.itemID); ok {
				m.order = &next
				m.cursor = clampCursor(m.cursor, len(next.Items))
			}
		}
		return m, notify("Item removed")

	case servicesLoadedMsg:
		if msg.scope != m.scope {
			return m, nil
		}
		if msg.err != nil {
			m.mode = orderViewMode
			return m, failed(msg.err)
		}
		m.services = msg.services
		m.svcCursor = 0

	case itemAddedMsg:
		if msg.scope != m.scope {
			return m, nil
		}
		if msg.err != nil {
			return m, failed(msg.err)
		}
		m.order = msg.order
		m.mode = orderViewMode
		return m, notify("Item added")

	case couponAppliedMsg:
		if msg.scope != m.scope {
			return m, nil
		}
		m.couponBusy = false
		if msg.err != nil {
			return m, failed(msg.err)
		}
		m.mode = orderViewMode
		m.coupon = ""
		text := "Coupon applied"
		if msg.result != nil && msg.result.Message != "" {
			text = msg.result.Message
		}
		return m, tea.Batch(notify(text), m.load())

	case actionMsg:
		if msg.scope != m.scope {
			return m, nil
		}
		if msg.err != nil {
			return m, failedWith(msg.err, "Failed to cancel order")
		}
		return m, tea.Batch(actionResult(msg), m.load())

	case checkoutMsg:
		if msg.scope != m.scope {
			return m, nil
		}
		m.paying = false
		if msg.err != nil {
			return m, failed(msg.err)
		}
		return m.openCheckout(msg.session)

	case tea.KeyMsg:
		switch m.mode {
		case orderAddMode:
			return m.updateAdd(msg)
		case orderCouponMode:
			return m.updateCoupon(msg)
		}
		return m.updateView(msg)
	}
	return m, nil
}

// openCheckout hands the hosted checkout to the browser. Confirmation
// starts once the user says they are done paying.
func (m orderModel) openCheckout(sess *domain.CheckoutSession) (orderModel, tea.Cmd) {
	log := m.deps.logger()
	text := "Checkout opened in your browser"
	if err := browser.Open(sess.URL); err != nil {
		log.Warn("open checkout url", zap.Error(err))
		text = "Open the checkout link to pay"
	}
	if err := clipboard.WriteAll(sess.URL); err == nil {
		text += " (link copied)"
	}
	m.checkout = sess
	return m, notify(text)
}

func (m orderModel) updateView(msg tea.KeyMsg) (orderModel, tea.Cmd) {
	if m.order == nil {
		if msg.String() == "esc" {
			return m, navigate(pageOrders, "")
		}
		return m, nil
	}
	key := msg.String()
	if key != "c" {
		m.confirmCancel = false
	}
	editable := m.order.Editable()
	switch key {
	case "esc":
		return m, navigate(pageOrders, "")
	case "d", "x":
		if !editable || m.removing != "" || m.cursor >= len(m.order.Items) {
			return m, nil
		}
		m.removing = m.order.Items[m.cursor].ID
		return m, m.removeItem(m.removing)
	case "a":
		if editable {
			m.mode = orderAddMode
			m.services = nil
			return m, m.loadServices()
		}
	case "C":
		if editable {
			m.mode = orderCouponMode
			m.cursorOn = true
			return m, cursorBlinkCmd()
		}
	case "c":
		if !m.order.Cancelable() {
			return m, nil
		}
		if !m.confirmCancel {
			m.confirmCancel = true
			return m, nil
		}
		m.confirmCancel = false
		return m, m.cancelOrder()
	case "p":
		if m.paying {
			return m, nil
		}
		if err := payment.PreflightCheckout(*m.order); err != nil {
			text := err.Error()
			return m, func() tea.Msg { return notifyMsg{text: text, isErr: true} }
		}
		m.paying = true
		return m, m.startCheckout(*m.order)
	case "v", "enter":
		if m.checkout != nil {
			return m, navigate(pagePayment, m.checkout.SessionID)
		}
	case "r":
		return m, m.load()
	default:
		m.cursor = moveCursor(m.cursor, len(m.order.Items), key)
	}
	return m, nil
}

func (m orderModel) updateAdd(msg tea.KeyMsg) (orderModel, tea.Cmd) {
	switch key := msg.String(); key {
	case "esc":
		m.mode = orderViewMode
	case "enter":
		if m.svcCursor < len(m.services) {
			return m, m.addItem(m.services[m.svcCursor].ID)
		}
	default:
		m.svcCursor = moveCursor(m.svcCursor, len(m.services), key)
	}
	return m, nil
}

func (m orderModel) updateCoupon(msg tea.KeyMsg) (orderModel, tea.Cmd) {
	if m.couponBusy {
		return m, nil
	}
	m.cursorOn = true
	switch key := msg.String(); key {
	case "esc":
		m.mode = orderViewMode
		m.coupon = ""
	case "enter":
		code := strings.TrimSpace(m.coupon)
		if code == "" {
			return m, nil
		}
		m.couponBusy = true
		return m, m.applyCoupon(strings.ToUpper(code))
	default:
		m.coupon = editRune(m.coupon, key)
	}
	return m, nil
}

func (m orderModel) View() string {
	var b strings.Builder
	if m.order == nil {
		b.WriteString(" " + titleStyle.Render("Order") + "\n")
		b.WriteString(" " + separator(m.width) + "\n")
		b.WriteString(" " + dimStyle.Render("loading...") + "\n")
		return b.String()
	}
	o := m.order
	b.WriteString(" " + titleStyle.Render("Order #"+shortID(o.ID)) + "  " + StatusBadge(string(o.Status)) + "  " + metaStyle.Render(formatDate(o.CreatedAt)) + "\n")
	b.WriteString(" " + separator(m.width) + "\n")

	if m.mode == orderAddMode {
		return b.String() + m.viewAdd()
	}

	if len(o.Items) == 0 {
		b.WriteString("\n " + dimStyle.Render("no items in this order") + "\n")
	}
	for i, it := range o.Items {
		label := normalStyle.Render(truncStr(it.Label(), 32))
		if i == m.cursor {
			label = selectedStyle.Render(truncStr(it.Label(), 32))
		}
		line := fmt.Sprintf(" %s%-34s %s  %s",
			cursorPrefix(i == m.cursor),
			label,
			metaStyle.Render(fmt.Sprintf("%d × %s", it.Quantity, money(it.UnitPrice, o.Currency))),
			goldStyle.Render(money(it.LineTotal, o.Currency)),
		)
		if it.ID == m.removing {
			line += "  " + dimStyle.Render("removing...")
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "   %s  %s\n", dimStyle.Render(fmt.Sprintf("%-10s", "Subtotal")), normalStyle.Render(money(o.Subtotal, o.Currency)))
	if o.Discount > 0 {
		fmt.Fprintf(&b, "   %s  %s\n", dimStyle.Render(fmt.Sprintf("%-10s", "Discount")), successStyle.Render("-"+money(o.Discount, o.Currency)))
	}
	if o.Tax > 0 {
		fmt.Fprintf(&b, "   %s  %s\n", dimStyle.Render(fmt.Sprintf("%-10s", "Tax")), normalStyle.Render(money(o.Tax, o.Currency)))
	}
	fmt.Fprintf(&b, "   %s  %s\n", selectedStyle.Render(fmt.Sprintf("%-10s", "Total")), goldStyle.Bold(true).Render(money(o.Total, o.Currency)))
	if o.Notes != "" {
		b.WriteString("\n   " + dimStyle.Render(oneLine(o.Notes)) + "\n")
	}

	switch {
	case m.mode == orderCouponMode:
		cursor := " "
		if m.cursorOn {
			cursor = accentStyle.Render("█")
		}
		b.WriteString("\n " + inputPromptStyle.Render("coupon> ") + normalStyle.Render(m.coupon) + cursor + "\n")
	case m.confirmCancel:
		b.WriteString("\n " + rejectStyle.Render("Cancel this order? press c again to confirm") + "\n")
	case m.paying:
		b.WriteString("\n " + dimStyle.Render("opening checkout...") + "\n")
	case m.checkout != nil:
		b.WriteString("\n " + goldStyle.Render("Complete payment in your browser, then press v to confirm.") + "\n")
		b.WriteString(" " + metaStyle.Render(truncStr(m.checkout.URL, max(m.width-4, 20))) + "\n")
	}
	return b.String()
}

func (m orderModel) viewAdd() string {
	var b strings.Builder
	b.WriteString(" " + sectionHeaderStyle.Render("ADD A SERVICE") + "\n")
	if m.services == nil {
		b.WriteString(" " + dimStyle.Render("loading services...") + "\n")
		return b.String()
	}
	for i, s := range m.services {
		name := normalStyle.Render(s.Name)
		if i == m.svcCursor {
			name = selectedStyle.Render(s.Name)
		}
		fmt.Fprintf(&b, " %s%s  %s\n", cursorPrefix(i == m.svcCursor), name, goldStyle.Render(money(s.BasePrice, "")))
	}
	return b.String()
}

func (m orderModel) helpKeys() string {
	switch m.mode {
	case orderAddMode:
		return helpBar(helpEntry("j/k", "nav"), helpEntry("enter", "add"), helpEntry("esc", "back"))
	case orderCouponMode:
		return helpBar(helpEntry("enter", "apply"), helpEntry("esc", "cancel"))
	}
	if m.checkout != nil {
		return helpBar(helpEntry("v", "confirm payment"), helpEntry("p", "reopen checkout"), helpEntry("esc", "back"))
	}
	if m.order != nil && m.order.Cancelable() {
		return helpBar(helpEntry("j/k", "nav"), helpEntry("p", "pay"), helpEntry("a", "add"), helpEntry("d", "remove"), helpEntry("C", "coupon"), helpEntry("c", "cancel order"), helpEntry("esc", "back"))
	}
	if m.order != nil && m.order.Editable() {
		return helpBar(helpEntry("j/k", "nav"), helpEntry("p", "pay"), helpEntry("a", "add"), helpEntry("d", "remove"), helpEntry("C", "coupon"), helpEntry("esc", "back"))
	}
	return helpBar(helpEntry("j/k", "nav"), helpEntry("r", "refresh"), helpEntry("esc", "back"))
}

func (m orderModel) editing() bool { return m.mode != orderViewMode }

func (m orderModel) update(msg tea.Msg) (page, tea.Cmd) { return m.Update(msg) }
