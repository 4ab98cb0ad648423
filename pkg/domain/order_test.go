package domain

import (
	"errors"
	"testing"
)

func sampleOrder() Order {
	return Order{
		ID:     "o1",
		Status: OrderDraft,
		Items: []OrderItem{
			{ID: "a", ServiceName: "Logo", Quantity: 1, UnitPrice: 500, LineTotal: 500},
			{ID: "b", ServiceName: "Brand guide", Quantity: 2, UnitPrice: 125.5, LineTotal: 251},
			{ID: "c", PackageName: "Foundation", Quantity: 1, UnitPrice: 1999.99, LineTotal: 1999.99},
		},
		Subtotal: 2750.99,
		Total:    2750.99,
	}
}

func TestWithoutItem(t *testing.T) {
	o := sampleOrder()

	got, ok := o.WithoutItem("b")
	if !ok {
		t.Fatal("WithoutItem(b) reported missing item")
	}
	if len(got.Items) != 2 {
		t.Fatalf("len(Items) = %d, want 2", len(got.Items))
	}
	for _, it := range got.Items {
		if it.ID == "b" {
			t.Error("item b still present")
		}
	}
	if got.Subtotal != 2499.99 {
		t.Errorf("Subtotal = %v, want 2499.99", got.Subtotal)
	}
	if got.Total != 2499.99 {
		t.Errorf("Total = %v, want 2499.99", got.Total)
	}
	if len(o.Items) != 3 {
		t.Errorf("original order mutated: %d items", len(o.Items))
	}
}

func TestWithoutItem_Unknown(t *testing.T) {
	o := sampleOrder()
	got, ok := o.WithoutItem("zzz")
	if ok {
		t.Fatal("WithoutItem(zzz) = ok, want false")
	}
	if len(got.Items) != 3 || got.Total != o.Total {
		t.Errorf("order changed on unknown item: %+v", got)
	}
}

func TestRecompute_TaxDropsDiscount(t *testing.T) {
	tests := []struct {
		name      string
		items     []OrderItem
		tax       float64
		discount  float64
		wantSub   float64
		wantTotal float64
	}{
		{"empty", nil, 0, 0, 0, 0},
		{"tax only", []OrderItem{{LineTotal: 100}}, 8.25, 0, 100, 108.25},
		{"discount dropped", []OrderItem{{LineTotal: 100}, {LineTotal: 50}}, 0, 30, 150, 150},
		{"discount and tax", []OrderItem{{LineTotal: 20}}, 1.65, 50, 20, 21.65},
		{"float noise", []OrderItem{{LineTotal: 0.1}, {LineTotal: 0.2}}, 0, 0, 0.3, 0.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := Order{Items: tt.items, Tax: tt.tax, Discount: tt.discount}
			o.Recompute()
			if o.Subtotal != tt.wantSub {
				t.Errorf("Subtotal = %v, want %v", o.Subtotal, tt.wantSub)
			}
			if o.Total != tt.wantTotal {
				t.Errorf("Total = %v, want %v", o.Total, tt.wantTotal)
			}
			if o.Discount != 0 {
				t.Errorf("Discount = %v, want 0", o.Discount)
			}
		})
	}
}

func TestCancelable(t *testing.T) {
	for _, st := range []OrderStatus{OrderDraft, OrderPending, OrderPaid, OrderInProgress, OrderCompleted, OrderCanceled, OrderRefunded} {
		if got, want := (Order{Status: st}).Cancelable(), st == OrderDraft; got != want {
			t.Errorf("%s: Cancelable = %v, want %v", st, got, want)
		}
	}
}

func TestCheckPayable(t *testing.T) {
	if err := (Order{}).CheckPayable(); !errors.Is(err, ErrZeroTotal) {
		t.Errorf("empty order: err = %v, want ErrZeroTotal", err)
	}
	if err := (Order{Total: -1}).CheckPayable(); !errors.Is(err, ErrZeroTotal) {
		t.Errorf("negative total: err = %v, want ErrZeroTotal", err)
	}
	if err := sampleOrder().CheckPayable(); err != nil {
		t.Errorf("sample order: err = %v, want nil", err)
	}
	if got := ErrZeroTotal.Error(); got != "order total must be greater than 0" {
		t.Errorf("ErrZeroTotal = %q", got)
	}
}

func TestEditable(t *testing.T) {
	tests := []struct {
		status OrderStatus
		want   bool
	}{
		{OrderDraft, true},
		{OrderPending, true},
		{OrderPaid, false},
		{OrderInProgress, false},
		{OrderCompleted, false},
		{OrderCanceled, false},
		{OrderRefunded, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := (Order{Status: tt.status}).Editable(); got != tt.want {
				t.Errorf("Editable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestItemLabel(t *testing.T) {
	if got := (OrderItem{ServiceName: "Logo"}).Label(); got != "Logo" {
		t.Errorf("Label() = %q", got)
	}
	if got := (OrderItem{PackageName: "Solution"}).Label(); got != "Solution" {
		t.Errorf("Label() = %q", got)
	}
	if got := (OrderItem{}).Label(); got != "item" {
		t.Errorf("Label() = %q", got)
	}
}
