package fakeapi

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crowncreative/portal/pkg/client"
	"github.com/crowncreative/portal/pkg/domain"
)

func TestFakeOrderFlow(t *testing.T) {
	fake := New()
	srv := fake.Start()
	defer srv.Close()

	ctx := context.Background()
	anon := client.New(srv.URL, nil)
	resp, err := anon.Login(ctx, ClientEmail, Password)
	require.NoError(t, err)

	c := client.New(srv.URL, client.StaticToken(resp.AccessToken))
	o, err := c.CreateOrder(ctx, "")
	require.NoError(t, err)
	assert.Zero(t, o.Total)

	o, err = c.AddOrderItem(ctx, o.ID, client.OrderItemInput{ServiceID: "svc-brand"})
	require.NoError(t, err)
	assert.Equal(t, 1500.0, o.Total)

	require.NoError(t, c.RemoveOrderItem(ctx, o.ID, o.Items[0].ID))
	o, err = c.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Empty(t, o.Items)

	_, err = c.Stats(ctx)
	assert.True(t, client.IsForbidden(err))
	assert.False(t, client.IsAuth(err))
}

func TestFakeRejectsBadToken(t *testing.T) {
	srv := New().Start()
	defer srv.Close()

	_, err := client.New(srv.URL, client.StaticToken("nope")).GetMe(context.Background())
	require.Error(t, err)
	assert.True(t, client.IsAuth(err))
	assert.Equal(t, "Could not validate credentials", client.Message(err))
}

func TestFakeCheckoutScript(t *testing.T) {
	fake := New()
	fake.CheckoutScript = []domain.CheckoutStatus{
		{Status: "open", PaymentStatus: "unpaid"},
		{Status: "complete", PaymentStatus: "paid"},
	}
	srv := fake.Start()
	defer srv.Close()

	c := client.New(srv.URL, client.StaticToken(fake.TokenFor(ClientEmail)))
	st, err := c.GetCheckoutStatus(context.Background(), "cs_1")
	require.NoError(t, err)
	assert.False(t, st.Paid())
	st, err = c.GetCheckoutStatus(context.Background(), "cs_1")
	require.NoError(t, err)
	assert.True(t, st.Paid())
	st, err = c.GetCheckoutStatus(context.Background(), "cs_1")
	require.NoError(t, err)
	assert.True(t, st.Paid())
	assert.Equal(t, 3, fake.CountCalls("GET /api/payments/checkout-status/"))
}

func TestFakeClientCancelsDraftsOnly(t *testing.T) {
	fake := New()
	srv := fake.Start()
	defer srv.Close()

	ctx := context.Background()
	resp, err := client.New(srv.URL, nil).Login(ctx, ClientEmail, Password)
	require.NoError(t, err)
	c := client.New(srv.URL, client.StaticToken(resp.AccessToken))

	canceled := domain.OrderCanceled
	draft, err := c.CreateOrder(ctx, "")
	require.NoError(t, err)
	o, err := c.UpdateOrder(ctx, draft.ID, client.OrderUpdate{Status: &canceled})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderCanceled, o.Status)

	fake.PutOrder(domain.Order{ID: "ord-pending", UserID: draft.UserID, Status: domain.OrderPending})
	_, err = c.UpdateOrder(ctx, "ord-pending", client.OrderUpdate{Status: &canceled})
	assert.True(t, client.IsForbidden(err))
	assert.Equal(t, domain.OrderPending, fake.Orders["ord-pending"].Status)
}
