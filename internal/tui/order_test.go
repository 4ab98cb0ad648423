package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/crowncreative/portal/internal/fakeapi"
	"github.com/crowncreative/portal/pkg/domain"
)

func seedOrder(env testEnv, status domain.OrderStatus) domain.Order {
	o := domain.Order{
		ID:       "ord-1",
		UserID:   "u-ana",
		Status:   status,
		Currency: "usd",
		Items: []domain.OrderItem{
			{ID: "it-1", ServiceID: "svc-brand", ServiceName: "Brand Identity", Quantity: 1, UnitPrice: 1500, LineTotal: 1500},
			{ID: "it-2", ServiceID: "svc-web", ServiceName: "Website", Quantity: 1, UnitPrice: 3000, LineTotal: 3000},
		},
		CreatedAt: domain.NewTime(time.Now()),
	}
	o.Recompute()
	env.fake.PutOrder(o)
	return o
}

func loadedOrder(t *testing.T, env testEnv, id string) orderModel {
	t.Helper()
	m := newOrderModel(env.deps, id)
	m, _ = m.Update(m.load()())
	if m.order == nil {
		t.Fatal("order did not load")
	}
	return m
}

func TestOrderViewShowsItemsAndTotals(t *testing.T) {
	env := newTestEnv(t, fakeapi.ClientEmail)
	seedOrder(env, domain.OrderPending)
	m := loadedOrder(t, env, "ord-1")

	view := m.View()
	for _, want := range []string{"Brand Identity", "Website", "$4500.00", "pending"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestOrderRemoveItem(t *testing.T) {
	env := newTestEnv(t, fakeapi.ClientEmail)
	seedOrder(env, domain.OrderPending)
	m := loadedOrder(t, env, "ord-1")

	m, cmd := m.Update(key("d"))
	if m.removing != "it-1" || cmd == nil {
		t.Fatalf("removing = %q", m.removing)
	}
	// A second remove while one is in flight is ignored.
	if _, again := m.Update(key("d")); again != nil {
		t.Error("second remove issued while the first is pending")
	}

	m, cmd = m.Update(cmd())
	if len(m.order.Items) != 1 || m.order.Items[0].ID != "it-2" {
		t.Fatalf("items = %+v", m.order.Items)
	}
	if m.order.Total != 3000 {
		t.Errorf("total = %v, want 3000", m.order.Total)
	}
	if n, ok := cmd().(notifyMsg); !ok || n.text != "Item removed" {
		t.Errorf("notice = %#v", n)
	}
	if strings.Contains(m.View(), "Brand Identity") {
		t.Error("removed item still rendered")
	}
}

func TestOrderRemoveItemFailureKeepsOrder(t *testing.T) {
	env := newTestEnv(t, fakeapi.ClientEmail)
	o := seedOrder(env, domain.OrderPending)
	m := loadedOrder(t, env, "ord-1")

	// The item disappears on the backend after the view loaded.
	gone, _ := o.WithoutItem("it-1")
	env.fake.PutOrder(gone)

	m, cmd := m.Update(key("d"))
	m, cmd = m.Update(cmd())
	if m.removing != "" {
		t.Error("removing flag not cleared after failure")
	}
	if len(m.order.Items) != 2 {
		t.Errorf("items = %d, want the view unchanged", len(m.order.Items))
	}
	n, ok := cmd().(notifyMsg)
	if !ok || !n.isErr || n.text != "Failed to remove item" {
		t.Errorf("notice = %#v", n)
	}
}

func TestOrderPaidIsReadOnly(t *testing.T) {
	env := newTestEnv(t, fakeapi.ClientEmail)
	seedOrder(env, domain.OrderPaid)
	m := loadedOrder(t, env, "ord-1")

	for _, k := range []string{"d", "a", "C", "c"} {
		next, cmd := m.Update(key(k))
		if cmd != nil || next.mode != orderViewMode || next.confirmCancel {
			t.Errorf("key %q changed a paid order view", k)
		}
	}
	if env.fake.CountCalls("DELETE ") != 0 {
		t.Error("delete issued for a paid order")
	}
}

func TestOrderCancelNeedsConfirmation(t *testing.T) {
	env := newTestEnv(t, fakeapi.ClientEmail)
	seedOrder(env, domain.OrderDraft)
	m := loadedOrder(t, env, "ord-1")

	m, cmd := m.Update(key("c"))
	if cmd != nil || !m.confirmCancel {
		t.Fatal("first c should ask for confirmation")
	}
	if !strings.Contains(m.View(), "press c again") {
		t.Errorf("confirmation prompt missing:\n%s", m.View())
	}

	// Any other key dismisses the prompt.
	dismissed, _ := m.Update(key("j"))
	if dismissed.confirmCancel {
		t.Error("prompt survived another key")
	}

	m, cmd = m.Update(key("c"))
	if cmd == nil {
		t.Fatal("second c did not cancel")
	}
	m, _ = m.Update(cmd())
	if got := env.fake.Orders["ord-1"].Status; got != domain.OrderCanceled {
		t.Errorf("backend status = %s, want canceled", got)
	}
}

func TestOrderPayRejectsZeroTotal(t *testing.T) {
	env := newTestEnv(t, fakeapi.ClientEmail)
	env.fake.PutOrder(domain.Order{ID: "ord-0", UserID: "u-ana", Status: domain.OrderDraft, Currency: "usd"})
	m := loadedOrder(t, env, "ord-0")

	m, cmd := m.Update(key("p"))
	if m.paying {
		t.Error("paying set for an empty order")
	}
	n, ok := cmd().(notifyMsg)
	if !ok || !n.isErr || !strings.Contains(n.text, "greater than 0") {
		t.Errorf("notice = %#v", n)
	}
	if env.fake.CountCalls("POST /api/payments") != 0 {
		t.Error("checkout session created for a zero total")
	}
}

func TestOrderNotFoundReturnsToList(t *testing.T) {
	env := newTestEnv(t, fakeapi.ClientEmail)
	m := newOrderModel(env.deps, "missing")
	_, cmd := m.Update(m.load()())

	msgs := msgsOf(cmd)
	var navigated bool
	for _, msg := range msgs {
		if nav, ok := msg.(navigateMsg); ok && nav.to == pageOrders {
			navigated = true
		}
	}
	if !navigated {
		t.Errorf("expected navigation to orders, got %#v", msgs)
	}
	if n, ok := findNotice(msgs); !ok || n.text != "Order not found" {
		t.Errorf("notice = %+v", n)
	}
}

func TestOrderHelpOffersConfirmAfterCheckout(t *testing.T) {
	m := newOrderModel(Deps{}, "ord-1")
	m.order = &domain.Order{ID: "ord-1", Status: domain.OrderPending}
	m.checkout = &domain.CheckoutSession{SessionID: "cs_1", URL: "https://pay.example/cs_1"}

	if !strings.Contains(m.helpKeys(), "confirm payment") {
		t.Errorf("help = %q", m.helpKeys())
	}
	_, cmd := m.Update(key("v"))
	nav, ok := cmd().(navigateMsg)
	if !ok || nav.to != pagePayment || nav.arg != "cs_1" {
		t.Errorf("v produced %#v", nav)
	}
}

func TestOrderPendingCannotBeCancelled(t *testing.T) {
	env := newTestEnv(t, fakeapi.ClientEmail)
	seedOrder(env, domain.OrderPending)
	m := loadedOrder(t, env, "ord-1")

	if strings.Contains(m.helpKeys(), "cancel order") {
		t.Errorf("pending order offers cancel: %q", m.helpKeys())
	}
	for i := 0; i < 2; i++ {
		var cmd tea.Cmd
		m, cmd = m.Update(key("c"))
		if cmd != nil || m.confirmCancel {
			t.Fatal("c acted on a pending order")
		}
	}
	if env.fake.CountCalls("PATCH /api/orders/ord-1") != 0 {
		t.Error("cancel request sent for a pending order")
	}
	if !strings.Contains(m.helpKeys(), "remove") {
		t.Error("pending order lost its item editing keys")
	}
}

func TestOrderRemoveDropsCouponDiscount(t *testing.T) {
	env := newTestEnv(t, fakeapi.ClientEmail)
	o := seedOrder(env, domain.OrderPending)
	o.Discount, o.Total, o.CouponCode = 450, 4050, "SAVE10"
	env.fake.PutOrder(o)
	m := loadedOrder(t, env, "ord-1")

	m, cmd := m.Update(key("d"))
	m, _ = m.Update(cmd())
	if m.order.Total != 3000 || m.order.Discount != 0 {
		t.Errorf("total = %v discount = %v, want 3000 and 0", m.order.Total, m.order.Discount)
	}
	if got := env.fake.Orders["ord-1"].Total; got != m.order.Total {
		t.Errorf("local total %v differs from backend %v", m.order.Total, got)
	}
}
