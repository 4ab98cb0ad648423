package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/crowncreative/portal/internal/mocks"
	"github.com/crowncreative/portal/pkg/domain"
)

func TestRun_PaidOnFifthAttempt(t *testing.T) {
	ctrl := gomock.NewController(t)
	checker := mocks.NewMockStatusChecker(ctrl)
	gomock.InOrder(
		checker.EXPECT().GetCheckoutStatus(gomock.Any(), "cs_1").Return(open, nil).Times(4),
		checker.EXPECT().GetCheckoutStatus(gomock.Any(), "cs_1").Return(paid, nil).Times(1),
	)

	p := NewPoller(checker, WithInterval(time.Millisecond))
	poll, err := p.Run(context.Background(), "cs_1")
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, poll.Status)
	assert.Equal(t, 5, poll.Attempts)
}

func TestRun_TimeoutAfterMaxAttempts(t *testing.T) {
	ctrl := gomock.NewController(t)
	checker := mocks.NewMockStatusChecker(ctrl)
	checker.EXPECT().GetCheckoutStatus(gomock.Any(), "cs_1").Return(open, nil).Times(5)

	p := NewPoller(checker, WithInterval(time.Millisecond))
	poll, err := p.Run(context.Background(), "cs_1")
	require.NoError(t, err)
	assert.Equal(t, StatusTimeout, poll.Status)
}

func TestRun_ErrorsExhaustBudget(t *testing.T) {
	ctrl := gomock.NewController(t)
	checker := mocks.NewMockStatusChecker(ctrl)
	checker.EXPECT().GetCheckoutStatus(gomock.Any(), gomock.Any()).Return(nil, errors.New("503")).Times(3)

	p := NewPoller(checker, WithInterval(time.Millisecond), WithMaxAttempts(3))
	poll, err := p.Run(context.Background(), "cs_1")
	require.NoError(t, err)
	assert.Equal(t, StatusError, poll.Status)
	assert.Equal(t, 3, poll.Attempts)
}

func TestRun_ExpiredStopsEarly(t *testing.T) {
	ctrl := gomock.NewController(t)
	checker := mocks.NewMockStatusChecker(ctrl)
	checker.EXPECT().GetCheckoutStatus(gomock.Any(), gomock.Any()).Return(expired, nil).Times(1)

	p := NewPoller(checker, WithInterval(time.Millisecond))
	poll, err := p.Run(context.Background(), "cs_1")
	require.NoError(t, err)
	assert.Equal(t, StatusExpired, poll.Status)
}

func TestRun_NoSessionMakesNoCalls(t *testing.T) {
	ctrl := gomock.NewController(t)
	checker := mocks.NewMockStatusChecker(ctrl)

	poll, err := NewPoller(checker).Run(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, StatusError, poll.Status)
	assert.Zero(t, poll.Attempts)
}

func TestRun_ContextCanceled(t *testing.T) {
	ctrl := gomock.NewController(t)
	checker := mocks.NewMockStatusChecker(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	checker.EXPECT().GetCheckoutStatus(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, string) (*domain.CheckoutStatus, error) {
			cancel()
			return open, nil
		}).Times(1)

	poll, err := NewPoller(checker, WithInterval(time.Hour)).Run(ctx, "cs_1")
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StatusChecking, poll.Status)
	assert.Equal(t, 1, poll.Attempts)
}

func TestCheck_RefusesAfterTerminal(t *testing.T) {
	ctrl := gomock.NewController(t)
	checker := mocks.NewMockStatusChecker(ctrl)
	checker.EXPECT().GetCheckoutStatus(gomock.Any(), gomock.Any()).Return(paid, nil).Times(1)

	p := NewPoller(checker)
	poll := p.Start("cs_1")
	again, called := p.Check(context.Background(), poll)
	assert.False(t, again)
	assert.True(t, called)

	again, called = p.Check(context.Background(), poll)
	assert.False(t, again)
	assert.False(t, called)
}

func TestPollerDefaults(t *testing.T) {
	p := NewPoller(nil, WithInterval(0), WithMaxAttempts(-1))
	assert.Equal(t, DefaultInterval, p.Interval())
	assert.Equal(t, DefaultMaxAttempts, p.Start("cs").MaxAttempts)
}
