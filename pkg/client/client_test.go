package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/crowncreative/portal/pkg/domain"
)

// swappableToken lets a test change the token between calls.
type swappableToken struct {
	mu  sync.Mutex
	tok string
}

func (s *swappableToken) Token(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tok, nil
}

func (s *swappableToken) set(tok string) {
	s.mu.Lock()
	s.tok = tok
	s.mu.Unlock()
}

type failingToken struct{}

func (failingToken) Token(context.Context) (string, error) { return "", errors.New("keyring locked") }

func TestGetMe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/me" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "Not authenticated"}) //nolint:errcheck
			return
		}
		json.NewEncoder(w).Encode(domain.User{ //nolint:errcheck
			ID:    "u1",
			Email: "client@example.com",
			Role:  domain.RoleClient,
		})
	}))
	defer srv.Close()

	c := New(srv.URL, StaticToken("test-token"))
	me, err := c.GetMe(context.Background())
	if err != nil {
		t.Fatalf("GetMe() error: %v", err)
	}
	if me.Email != "client@example.com" {
		t.Errorf("Email = %q, want %q", me.Email, "client@example.com")
	}
	if me.Role != domain.RoleClient {
		t.Errorf("Role = %q, want %q", me.Role, domain.RoleClient)
	}
}

func TestGetMe_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Invalid token"}) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, StaticToken("bad-token"))
	_, err := c.GetMe(context.Background())
	if err == nil {
		t.Fatal("expected error for unauthorized request")
	}
	if got := err.Error(); !strings.Contains(got, "HTTP 401") {
		t.Errorf("error = %q, want it to contain 'HTTP 401'", got)
	}
	if !IsAuth(err) {
		t.Error("IsAuth() = false for 401")
	}
	if KindOf(err) != KindAuth {
		t.Errorf("KindOf() = %q, want %q", KindOf(err), KindAuth)
	}
	if got := Message(err); got != "Invalid token" {
		t.Errorf("Message() = %q, want %q", got, "Invalid token")
	}
}

func TestTokenReadPerCall(t *testing.T) {
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode([]domain.Service{}) //nolint:errcheck
	}))
	defer srv.Close()

	tokens := &swappableToken{}
	c := New(srv.URL, tokens)

	if _, err := c.ListServices(context.Background()); err != nil {
		t.Fatalf("ListServices() error: %v", err)
	}
	tokens.set("fresh")
	if _, err := c.ListServices(context.Background()); err != nil {
		t.Fatalf("ListServices() error: %v", err)
	}
	tokens.set("")
	if _, err := c.ListServices(context.Background()); err != nil {
		t.Fatalf("ListServices() error: %v", err)
	}

	want := []string{"", "Bearer fresh", ""}
	if len(seen) != len(want) {
		t.Fatalf("got %d requests, want %d", len(seen), len(want))
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("request %d Authorization = %q, want %q", i, seen[i], want[i])
		}
	}
}

func TestTokenSourceError(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := New(srv.URL, failingToken{})
	_, err := c.GetMe(context.Background())
	if err == nil || !strings.Contains(err.Error(), "keyring locked") {
		t.Fatalf("err = %v, want token error", err)
	}
	if called {
		t.Error("request sent despite token error")
	}
}

func TestDefaultHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", got)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("missing X-Request-ID")
		}
		json.NewEncoder(w).Encode([]domain.Package{{Name: "Foundation", Tier: domain.TierFoundation}}) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	pkgs, err := c.ListPackages(context.Background())
	if err != nil {
		t.Fatalf("ListPackages() error: %v", err)
	}
	if len(pkgs) != 1 || pkgs[0].Tier != domain.TierFoundation {
		t.Errorf("unexpected packages: %+v", pkgs)
	}
}

func TestWithHeaderOverridesContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Content-Type"); got != "application/vnd.portal+json" {
			t.Errorf("Content-Type = %q", got)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL, nil, WithHeader("Content-Type", "application/vnd.portal+json"))
	if err := c.DeleteFile(context.Background(), "f1"); err != nil {
		t.Fatalf("DeleteFile() error: %v", err)
	}
}

func TestErrorBodyParsing(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
		kind   ErrorKind
	}{
		{"detail string", 400, `{"detail":"Email already registered"}`, "Email already registered", KindValidation},
		{"detail list", 422, `{"detail":[{"loc":["body","email"],"msg":"value is not a valid email address"}]}`, "email: value is not a valid email address", KindValidation},
		{"message", 404, `{"message":"Order not found"}`, "Order not found", KindNotFound},
		{"error", 500, `{"error":"boom"}`, "boom", KindServer},
		{"plain text", 502, `Bad Gateway`, fallbackMessage, KindServer},
		{"empty object", 409, `{}`, fallbackMessage, KindValidation},
		{"forbidden", 403, `{"detail":"Admin access required"}`, "Admin access required", KindForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body) //nolint:errcheck
			}))
			defer srv.Close()

			_, err := New(srv.URL, nil).GetOrder(context.Background(), "o1")
			var httpErr *HTTPError
			if !errors.As(err, &httpErr) {
				t.Fatalf("err = %v, want *HTTPError", err)
			}
			if httpErr.Message != tt.want {
				t.Errorf("Message = %q, want %q", httpErr.Message, tt.want)
			}
			if httpErr.Kind() != tt.kind {
				t.Errorf("Kind() = %q, want %q", httpErr.Kind(), tt.kind)
			}
			if httpErr.RequestID == "" {
				t.Error("RequestID not recorded")
			}
			if IsAuth(err) != (tt.kind == KindAuth) || IsForbidden(err) != (tt.kind == KindForbidden) {
				t.Errorf("IsAuth = %v, IsForbidden = %v for kind %q", IsAuth(err), IsForbidden(err), tt.kind)
			}
		})
	}
}

func TestLoginAndRegister(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body) //nolint:errcheck
		switch r.URL.Path {
		case "/api/auth/login":
			if body["email"] != "a@b.co" || body["password"] != "secret1" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
		case "/api/auth/register":
			if _, ok := body["phone"]; ok {
				t.Error("phone sent although empty")
			}
		default:
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(domain.TokenResponse{ //nolint:errcheck
			AccessToken: "jwt",
			TokenType:   "bearer",
			User:        domain.User{ID: "u1", Email: "a@b.co", Role: domain.RoleClient},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	resp, err := c.Login(context.Background(), "a@b.co", "secret1")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if resp.AccessToken != "jwt" || resp.User.ID != "u1" {
		t.Errorf("unexpected login response: %+v", resp)
	}

	if _, err := c.Register(context.Background(), RegisterRequest{Name: "Ann", Email: "a@b.co", Password: "secret1"}); err != nil {
		t.Fatalf("Register() error: %v", err)
	}
}

func TestOrderEndpoints(t *testing.T) {
	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.RequestURI())
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/orders":
			json.NewEncoder(w).Encode([]domain.Order{{ID: "o1", Status: domain.OrderPaid}}) //nolint:errcheck
		case r.Method == http.MethodPost && r.URL.Path == "/api/orders/o1/items":
			var in OrderItemInput
			json.NewDecoder(r.Body).Decode(&in) //nolint:errcheck
			if in.Quantity != 1 || in.ServiceID != "s1" {
				t.Errorf("item input = %+v", in)
			}
			json.NewEncoder(w).Encode(domain.Order{ID: "o1", Total: 100}) //nolint:errcheck
		case r.Method == http.MethodDelete && r.URL.Path == "/api/orders/o1/items/i1":
			json.NewEncoder(w).Encode(map[string]string{"message": "Item removed"}) //nolint:errcheck
		case r.Method == http.MethodPatch && r.URL.Path == "/api/orders/o1":
			var upd map[string]string
			json.NewDecoder(r.Body).Decode(&upd) //nolint:errcheck
			json.NewEncoder(w).Encode(domain.Order{ID: "o1", Status: domain.OrderStatus(upd["status"])}) //nolint:errcheck
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, StaticToken("tok"))
	ctx := context.Background()

	orders, err := c.ListOrders(ctx, domain.OrderPaid)
	if err != nil || len(orders) != 1 {
		t.Fatalf("ListOrders() = %v, %v", orders, err)
	}
	if o, err := c.AddOrderItem(ctx, "o1", OrderItemInput{ServiceID: "s1"}); err != nil || o.Total != 100 {
		t.Fatalf("AddOrderItem() = %+v, %v", o, err)
	}
	if err := c.RemoveOrderItem(ctx, "o1", "i1"); err != nil {
		t.Fatalf("RemoveOrderItem() error: %v", err)
	}
	canceled := domain.OrderCanceled
	o, err := c.UpdateOrder(ctx, "o1", OrderUpdate{Status: &canceled})
	if err != nil || o.Status != domain.OrderCanceled {
		t.Fatalf("UpdateOrder() = %+v, %v", o, err)
	}

	if calls[0] != "GET /api/orders?status=paid" {
		t.Errorf("calls[0] = %q", calls[0])
	}
}

func TestUploadSignatureQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("resource_type") != "video" || q.Get("folder") != "portfolio/" {
			t.Errorf("query = %v", q)
		}
		json.NewEncoder(w).Encode(domain.UploadSignature{Signature: "sig", CloudName: "ccc", Folder: "portfolio/"}) //nolint:errcheck
	}))
	defer srv.Close()

	sig, err := New(srv.URL, StaticToken("tok")).UploadSignature(context.Background(), "video", "portfolio/")
	if err != nil {
		t.Fatalf("UploadSignature() error: %v", err)
	}
	if sig.Signature != "sig" || sig.CloudName != "ccc" {
		t.Errorf("unexpected signature: %+v", sig)
	}
}

func TestClientProjectEndpoints(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/client-projects/check-admin":
			json.NewEncoder(w).Encode(map[string]any{"is_ccc_admin": true, "email": "ops@example.com"}) //nolint:errcheck
		case r.URL.Path == "/api/client-projects/admin/client/u1/next-step":
			if r.URL.Query().Get("text") != "Send brand assets" {
				t.Errorf("text = %q", r.URL.Query().Get("text"))
			}
			json.NewEncoder(w).Encode(map[string]any{"message": "Next step added", "step": map[string]any{"id": "s9", "text": "Send brand assets"}}) //nolint:errcheck
		case r.URL.Path == "/api/client-projects/my-project/next-step/s9":
			if r.Method != http.MethodPatch || r.URL.Query().Get("completed") != "true" {
				t.Errorf("toggle request = %s %s", r.Method, r.URL.RawQuery)
			}
			json.NewEncoder(w).Encode(map[string]string{"message": "Step updated"}) //nolint:errcheck
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, StaticToken("tok"))
	ctx := context.Background()

	oc, err := c.CheckOperator(ctx)
	if err != nil || !oc.IsOperator {
		t.Fatalf("CheckOperator() = %+v, %v", oc, err)
	}
	step, err := c.AddNextStep(ctx, "u1", "Send brand assets")
	if err != nil || step.ID != "s9" {
		t.Fatalf("AddNextStep() = %+v, %v", step, err)
	}
	if err := c.ToggleNextStep(ctx, "s9", true); err != nil {
		t.Fatalf("ToggleNextStep() error: %v", err)
	}
	if _, err := c.ListClients(ctx); !IsNotFound(err) {
		t.Errorf("ListClients() err = %v, want 404", err)
	}
}

func TestDoRequest_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(domain.User{}) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, StaticToken("tok"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately

	_, err := c.GetMe(ctx)
	if err == nil {
		t.Fatal("expected error for canceled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestPackageEndpoints(t *testing.T) {
	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.RequestURI())
		switch r.Method {
		case http.MethodDelete:
			json.NewEncoder(w).Encode(map[string]string{"message": "Package deleted successfully"}) //nolint:errcheck
		case http.MethodGet:
			json.NewEncoder(w).Encode([]domain.Service{{ID: "s1", Active: false}}) //nolint:errcheck
		default:
			json.NewEncoder(w).Encode(domain.Package{ID: "p1", Tier: domain.TierSolution}) //nolint:errcheck
		}
	}))
	defer srv.Close()

	c := New(srv.URL, StaticToken("tok"))
	ctx := context.Background()

	tier := domain.TierSolution
	if _, err := c.CreatePackage(ctx, PackageInput{Tier: &tier}); err != nil {
		t.Fatalf("CreatePackage() error: %v", err)
	}
	active := false
	if _, err := c.UpdatePackage(ctx, "p1", PackageInput{Active: &active}); err != nil {
		t.Fatalf("UpdatePackage() error: %v", err)
	}
	if err := c.DeletePackage(ctx, "p1"); err != nil {
		t.Fatalf("DeletePackage() error: %v", err)
	}
	if _, err := c.ListAllServices(ctx); err != nil {
		t.Fatalf("ListAllServices() error: %v", err)
	}

	bogus := "platinum"
	if _, err := c.CreatePackage(ctx, PackageInput{Tier: &bogus}); err == nil {
		t.Fatal("CreatePackage() with unknown tier should fail")
	}

	want := []string{
		"POST /api/packages",
		"PUT /api/packages/p1",
		"DELETE /api/packages/p1",
		"GET /api/services?active_only=false",
	}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, calls[i], want[i])
		}
	}
}

// recorder answers every request with reply and keeps "METHOD uri" plus the
// raw body of each call.
type recorder struct {
	mu     sync.Mutex
	calls  []string
	bodies map[string]string
}

func newRecorder(t *testing.T, reply func(w http.ResponseWriter, r *http.Request)) (*recorder, *Client) {
	t.Helper()
	rec := &recorder{bodies: map[string]string{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		call := r.Method + " " + r.URL.RequestURI()
		rec.mu.Lock()
		rec.calls = append(rec.calls, call)
		rec.bodies[call] = string(data)
		rec.mu.Unlock()
		reply(w, r)
	}))
	t.Cleanup(srv.Close)
	return rec, New(srv.URL, StaticToken("tok"))
}

func (rec *recorder) body(t *testing.T, call string, v any) {
	t.Helper()
	rec.mu.Lock()
	raw, ok := rec.bodies[call]
	rec.mu.Unlock()
	if !ok {
		t.Fatalf("no call %q in %v", call, rec.calls)
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		t.Fatalf("%s body %q: %v", call, raw, err)
	}
}

func (rec *recorder) want(t *testing.T, calls ...string) {
	t.Helper()
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if strings.Join(rec.calls, "\n") != strings.Join(calls, "\n") {
		t.Errorf("calls:\n%s\nwant:\n%s", strings.Join(rec.calls, "\n"), strings.Join(calls, "\n"))
	}
}

func TestPasswordEndpoints(t *testing.T) {
	rec, c := newRecorder(t, func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"message": "ok"}) //nolint:errcheck
	})
	ctx := context.Background()

	if err := c.ResetPassword(ctx, "rst-1", "brand-new-pw"); err != nil {
		t.Fatalf("ResetPassword() error: %v", err)
	}
	if err := c.ChangePassword(ctx, "secret", "brand-new-pw"); err != nil {
		t.Fatalf("ChangePassword() error: %v", err)
	}
	rec.want(t, "POST /api/auth/reset-password", "POST /api/auth/change-password")

	var reset, change map[string]string
	rec.body(t, "POST /api/auth/reset-password", &reset)
	if reset["token"] != "rst-1" || reset["new_password"] != "brand-new-pw" || len(reset) != 2 {
		t.Errorf("reset body = %v", reset)
	}
	rec.body(t, "POST /api/auth/change-password", &change)
	if change["current_password"] != "secret" || change["new_password"] != "brand-new-pw" || len(change) != 2 {
		t.Errorf("change body = %v", change)
	}
}

func TestChangePassword_WrongCurrent(t *testing.T) {
	_, c := newRecorder(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"detail":"Current password is incorrect"}`) //nolint:errcheck
	})
	err := c.ChangePassword(context.Background(), "nope", "brand-new-pw")
	if !IsValidation(err) || Message(err) != "Current password is incorrect" {
		t.Errorf("err = %v", err)
	}
}

func TestLookupEndpoints(t *testing.T) {
	rec, c := newRecorder(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/api/services/"):
			json.NewEncoder(w).Encode(domain.Service{ID: "svc-1", Name: "Brand Identity"}) //nolint:errcheck
		case strings.HasPrefix(r.URL.Path, "/api/admin/users/"):
			json.NewEncoder(w).Encode(domain.User{ID: "u-1", Email: "ana@crown.test"}) //nolint:errcheck
		case strings.HasPrefix(r.URL.Path, "/api/intake/"):
			json.NewEncoder(w).Encode(domain.Intake{ID: "in-1", Type: domain.IntakeBranding}) //nolint:errcheck
		case strings.HasPrefix(r.URL.Path, "/api/threads/"):
			json.NewEncoder(w).Encode(domain.Thread{ID: "t/1", Subject: "Logo"}) //nolint:errcheck
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	if s, err := c.GetService(ctx, "svc-1"); err != nil || s.Name != "Brand Identity" {
		t.Fatalf("GetService() = %+v, %v", s, err)
	}
	if u, err := c.GetUser(ctx, "u-1"); err != nil || u.Email != "ana@crown.test" {
		t.Fatalf("GetUser() = %+v, %v", u, err)
	}
	if in, err := c.GetIntake(ctx, "in-1"); err != nil || in.ID != "in-1" {
		t.Fatalf("GetIntake() = %+v, %v", in, err)
	}
	if th, err := c.GetThread(ctx, "t/1"); err != nil || th.Subject != "Logo" {
		t.Fatalf("GetThread() = %+v, %v", th, err)
	}
	rec.want(t,
		"GET /api/services/svc-1",
		"GET /api/admin/users/u-1",
		"GET /api/intake/in-1",
		"GET /api/threads/t%2F1",
	)
}

func TestProjectEndpoints(t *testing.T) {
	rec, c := newRecorder(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/projects/p1":
			json.NewEncoder(w).Encode(domain.Project{ID: "p1", Status: domain.ProjectActive}) //nolint:errcheck
		case r.Method == http.MethodPatch && r.URL.Path == "/api/projects/p1":
			json.NewEncoder(w).Encode(domain.Project{ID: "p1", Status: domain.ProjectPaused}) //nolint:errcheck
		case r.Method == http.MethodPost && r.URL.Path == "/api/projects/p1/timeline":
			json.NewEncoder(w).Encode(domain.Project{ID: "p1", Timeline: []domain.Milestone{{Milestone: "Kickoff"}}}) //nolint:errcheck
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	if p, err := c.GetProject(ctx, "p1"); err != nil || p.Status != domain.ProjectActive {
		t.Fatalf("GetProject() = %+v, %v", p, err)
	}
	paused := domain.ProjectPaused
	if p, err := c.UpdateProject(ctx, "p1", ProjectUpdate{Status: &paused}); err != nil || p.Status != domain.ProjectPaused {
		t.Fatalf("UpdateProject() = %+v, %v", p, err)
	}
	timeline := []domain.Milestone{
		{Milestone: "Kickoff", Status: "completed", CompletedDate: "2026-01-05"},
		{Milestone: "First draft", Status: "pending", DueDate: "2026-02-01"},
	}
	if p, err := c.UpdateProjectTimeline(ctx, "p1", timeline); err != nil || len(p.Timeline) != 1 {
		t.Fatalf("UpdateProjectTimeline() = %+v, %v", p, err)
	}
	rec.want(t, "GET /api/projects/p1", "PATCH /api/projects/p1", "POST /api/projects/p1/timeline")

	var upd map[string]any
	rec.body(t, "PATCH /api/projects/p1", &upd)
	if upd["status"] != "paused" || len(upd) != 1 {
		t.Errorf("update body = %v, want only status", upd)
	}
	var tl struct {
		Timeline []domain.Milestone `json:"timeline"`
	}
	rec.body(t, "POST /api/projects/p1/timeline", &tl)
	if len(tl.Timeline) != 2 || tl.Timeline[0] != timeline[0] || tl.Timeline[1] != timeline[1] {
		t.Errorf("timeline body = %+v", tl.Timeline)
	}
}

func TestPaymentEndpoints(t *testing.T) {
	rec, c := newRecorder(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/payments":
			json.NewEncoder(w).Encode([]domain.Payment{{ID: "pay-1", OrderID: "o1", Amount: 1500, Status: "paid"}}) //nolint:errcheck
		case r.Method == http.MethodPost && r.URL.Path == "/api/payments/pay-1/refund":
			json.NewEncoder(w).Encode(map[string]string{"message": "Payment refunded"}) //nolint:errcheck
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	payments, err := c.ListPayments(ctx)
	if err != nil || len(payments) != 1 || payments[0].Amount != 1500 {
		t.Fatalf("ListPayments() = %+v, %v", payments, err)
	}
	if err := c.RefundPayment(ctx, "pay-1"); err != nil {
		t.Fatalf("RefundPayment() error: %v", err)
	}
	if err := c.RefundPayment(ctx, "pay-9"); !IsNotFound(err) {
		t.Errorf("RefundPayment(unknown) err = %v, want 404", err)
	}
	rec.want(t, "GET /api/payments", "POST /api/payments/pay-1/refund", "POST /api/payments/pay-9/refund")
	rec.mu.Lock()
	refundBody := rec.bodies["POST /api/payments/pay-1/refund"]
	rec.mu.Unlock()
	if refundBody != "" {
		t.Errorf("refund body = %q, want empty", refundBody)
	}
}
