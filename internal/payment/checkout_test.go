package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/crowncreative/portal/internal/mocks"
	"github.com/crowncreative/portal/pkg/domain"
)

func TestCheckout_ZeroTotalRejectedBeforeAnyCall(t *testing.T) {
	ctrl := gomock.NewController(t)
	creator := mocks.NewMockCheckoutCreator(ctrl) // no expectations

	order := domain.Order{ID: "o1", Status: domain.OrderDraft}
	order.Recompute()
	require.Zero(t, order.Total)

	_, err := Checkout(context.Background(), creator, order, "http://localhost:3000")
	require.ErrorIs(t, err, domain.ErrZeroTotal)
	assert.Equal(t, "order total must be greater than 0", err.Error())
}

func TestCheckout_NotAwaitingPayment(t *testing.T) {
	ctrl := gomock.NewController(t)
	creator := mocks.NewMockCheckoutCreator(ctrl)

	order := domain.Order{ID: "o1", Status: domain.OrderPaid, Total: 100}
	_, err := Checkout(context.Background(), creator, order, "")
	assert.ErrorIs(t, err, ErrNotAwaitingPayment)
}

func TestCheckout_CreatesSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	creator := mocks.NewMockCheckoutCreator(ctrl)
	creator.EXPECT().CreateCheckoutSession(gomock.Any(), "o1", "http://localhost:3000").
		Return(&domain.CheckoutSession{URL: "https://pay.example.com/cs_1", SessionID: "cs_1"}, nil)

	order := domain.Order{ID: "o1", Status: domain.OrderPending, Total: 150}
	sess, err := Checkout(context.Background(), creator, order, "http://localhost:3000")
	require.NoError(t, err)
	assert.Equal(t, "cs_1", sess.SessionID)
}

func TestCheckout_BackendFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	creator := mocks.NewMockCheckoutCreator(ctrl)
	creator.EXPECT().CreateCheckoutSession(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("stripe down"))

	order := domain.Order{ID: "o1", Status: domain.OrderPending, Total: 150}
	_, err := Checkout(context.Background(), creator, order, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stripe down")
}
