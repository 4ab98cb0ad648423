package fakeapi

import (
	"context"
	"net/http"
)

func withAccount(r *http.Request, acc *account) context.Context {
	return context.WithValue(r.Context(), ctxKey{}, acc)
}
