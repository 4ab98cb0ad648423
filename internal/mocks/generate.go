// Package mocks provides gomock implementations of the portal's consumer
// interfaces.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	backend := mocks.NewMockBackend(ctrl)
//	backend.EXPECT().GetMe(gomock.Any()).Return(user, nil)
package mocks

// Backend: Login, Register, GetMe, CheckOperator.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=session_backend_mock.go github.com/crowncreative/portal/internal/session Backend

// StatusChecker and CheckoutCreator.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=payment_mock.go github.com/crowncreative/portal/internal/payment StatusChecker,CheckoutCreator

// Gateway and MediaHost.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=upload_mock.go github.com/crowncreative/portal/internal/upload Gateway,MediaHost
