package domain

// CheckoutSession is the hosted checkout page created for an order.
type CheckoutSession struct {
	URL       string `json:"url"`
	SessionID string `json:"session_id"`
}

// CheckoutStatus is the payment processor's view of a checkout session.
type CheckoutStatus struct {
	Status        string  `json:"status"`         // "open", "complete", "expired"
	PaymentStatus string  `json:"payment_status"` // "unpaid", "paid", "no_payment_required"
	AmountTotal   float64 `json:"amount_total"`
	Currency      string  `json:"currency"`
}

// Paid reports whether the processor has captured payment.
func (s CheckoutStatus) Paid() bool {
	return s.PaymentStatus == "paid"
}

// Expired reports whether the checkout session lapsed before payment.
func (s CheckoutStatus) Expired() bool {
	return s.Status == "expired"
}

// Payment is a recorded payment transaction.
type Payment struct {
	ID            string  `json:"id"`
	OrderID       string  `json:"order_id"`
	UserID        string  `json:"user_id"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	SessionID     string  `json:"session_id"`
	Provider      string  `json:"provider"`
	Status        string  `json:"status"` // "initiated", "pending", "paid", "failed", "expired", "refunded"
	PaymentStatus string  `json:"payment_status,omitempty"`
	ReceiptURL    string  `json:"receipt_url,omitempty"`
	CreatedAt     Time    `json:"created_at"`
}
