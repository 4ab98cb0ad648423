package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/crowncreative/portal/pkg/domain"
)

// ErrNotAwaitingPayment is returned for orders past the draft/pending stage.
var ErrNotAwaitingPayment = errors.New("order is not awaiting payment")

// CheckoutCreator opens a hosted checkout. *client.Client satisfies it.
type CheckoutCreator interface {
	CreateCheckoutSession(ctx context.Context, orderID, returnURL string) (*domain.CheckoutSession, error)
}

// PreflightCheckout rejects an order that cannot be paid. The error text is
// user-facing and returned unwrapped.
func PreflightCheckout(o domain.Order) error {
	if err := o.CheckPayable(); err != nil {
		return err
	}
	if !o.Editable() {
		return ErrNotAwaitingPayment
	}
	return nil
}

// Checkout validates o locally and only then asks the backend for a
// checkout session.
func Checkout(ctx context.Context, creator CheckoutCreator, o domain.Order, returnURL string) (*domain.CheckoutSession, error) {
	if err := PreflightCheckout(o); err != nil {
		return nil, err
	}
	sess, err := creator.CreateCheckoutSession(ctx, o.ID, returnURL)
	if err != nil {
		return nil, fmt.Errorf("payment.Checkout: %w", err)
	}
	if sess.URL == "" {
		return nil, errors.New("payment.Checkout: backend returned no checkout url")
	}
	return sess, nil
}
