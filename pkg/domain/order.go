package domain

import (
	"errors"
	"math"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderDraft      OrderStatus = "draft"
	OrderPending    OrderStatus = "pending"
	OrderPaid       OrderStatus = "paid"
	OrderInProgress OrderStatus = "in_progress"
	OrderCompleted  OrderStatus = "completed"
	OrderCanceled   OrderStatus = "canceled"
	OrderRefunded   OrderStatus = "refunded"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderDraft,
	OrderPending,
	OrderPaid,
	OrderInProgress,
	OrderCompleted,
	OrderCanceled,
	OrderRefunded,
}

// ErrZeroTotal is returned when checkout is attempted on an empty order.
var ErrZeroTotal = errors.New("order total must be greater than 0")

// OrderItem is one line of an order.
type OrderItem struct {
	ID          string  `json:"id"`
	ServiceID   string  `json:"service_id,omitempty"`
	PackageID   string  `json:"package_id,omitempty"`
	ServiceName string  `json:"service_name,omitempty"`
	PackageName string  `json:"package_name,omitempty"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	LineTotal   float64 `json:"line_total"`
}

// Label returns the display name of the line.
func (i OrderItem) Label() string {
	switch {
	case i.ServiceName != "":
		return i.ServiceName
	case i.PackageName != "":
		return i.PackageName
	default:
		return "item"
	}
}

// Order is a client's order with its line items and totals.
type Order struct {
	ID         string      `json:"id"`
	UserID     string      `json:"user_id"`
	UserName   string      `json:"user_name,omitempty"`
	UserEmail  string      `json:"user_email,omitempty"`
	Status     OrderStatus `json:"status"`
	Items      []OrderItem `json:"items"`
	Subtotal   float64     `json:"subtotal"`
	Tax        float64     `json:"tax"`
	Discount   float64     `json:"discount,omitempty"`
	CouponCode string      `json:"coupon_code,omitempty"`
	Total      float64     `json:"total"`
	Currency   string      `json:"currency"`
	Notes      string      `json:"notes,omitempty"`
	CreatedAt  Time        `json:"created_at"`
}

// Editable reports whether line items may still be added or removed.
func (o Order) Editable() bool {
	return o.Status == OrderDraft || o.Status == OrderPending
}

// Cancelable reports whether a client may cancel the order. Only drafts
// qualify; anything later needs an admin.
func (o Order) Cancelable() bool {
	return o.Status == OrderDraft
}

// Payable reports whether the order can be sent to checkout.
func (o Order) Payable() bool {
	return o.Editable() && len(o.Items) > 0
}

// CheckPayable rejects orders whose total is not positive.
func (o Order) CheckPayable() error {
	if o.Total <= 0 {
		return ErrZeroTotal
	}
	return nil
}

// WithoutItem returns a copy of o with the item removed and totals
// recomputed from the remaining lines. The second result is false when no
// item has that ID.
func (o Order) WithoutItem(itemID string) (Order, bool) {
	items := make([]OrderItem, 0, len(o.Items))
	found := false
	for _, it := range o.Items {
		if it.ID == itemID && !found {
			found = true
			continue
		}
		items = append(items, it)
	}
	if !found {
		return o, false
	}
	o.Items = items
	o.Recompute()
	return o, true
}

// Recompute derives subtotal and total from the line items the way the
// backend does after any line change: total is subtotal plus tax, and a
// previously applied coupon discount no longer counts.
func (o *Order) Recompute() {
	var subtotal float64
	for _, it := range o.Items {
		subtotal += it.LineTotal
	}
	o.Subtotal = roundCents(subtotal)
	o.Discount = 0
	o.Total = roundCents(o.Subtotal + o.Tax)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
