// Package fakeapi is an in-memory portal backend for tests. It speaks the
// same routes and JSON shapes as the real API, plus a media host upload
// endpoint under /media.
package fakeapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/crowncreative/portal/pkg/domain"
)

// Seeded accounts. Both use Password.
const (
	AdminEmail  = "admin@crown.test"
	ClientEmail = "ana@crown.test"
	Password    = "secret"
)

type account struct {
	user     domain.User
	password string
	operator bool
}

// Server holds the fake backend state. Exported fields may be set by tests
// before requests are made.
type Server struct {
	mu sync.Mutex

	accounts map[string]*account // by email
	tokens   map[string]string   // token -> email

	Services  []domain.Service
	Orders    map[string]*domain.Order
	Projects  []domain.Project
	Threads   []domain.Thread
	Messages  map[string][]domain.Message
	Files     []domain.FileUpload
	Portfolio []domain.PortfolioItem
	Boards    map[string]*domain.ClientProject // by user id
	Board     []domain.ProjectFile

	// CheckoutScript is returned by successive checkout-status calls; the
	// last entry repeats.
	CheckoutScript []domain.CheckoutStatus
	// FailRegisterFile makes file/portfolio/project-file registration fail.
	FailRegisterFile bool

	calls []string
}

// New returns a backend seeded with one admin, one client and two services.
func New() *Server {
	now := domain.NewTime(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	s := &Server{
		accounts: map[string]*account{},
		tokens:   map[string]string{},
		Orders:   map[string]*domain.Order{},
		Messages: map[string][]domain.Message{},
		Boards:   map[string]*domain.ClientProject{},
		Services: []domain.Service{
			{ID: "svc-brand", Name: "Brand Identity", BasePrice: 1500, Category: "branding", Active: true, CreatedAt: now},
			{ID: "svc-web", Name: "Website", BasePrice: 3000, Category: "web", Active: true, CreatedAt: now},
		},
	}
	s.AddAccount(domain.User{ID: "u-admin", Name: "Studio Admin", Email: AdminEmail, Role: domain.RoleAdmin, CreatedAt: now}, Password, true)
	s.AddAccount(domain.User{ID: "u-ana", Name: "Ana Client", Email: ClientEmail, Role: domain.RoleClient, CreatedAt: now}, Password, false)
	return s
}

// AddAccount registers a user that can log in.
func (s *Server) AddAccount(u domain.User, password string, operator bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[u.Email] = &account{user: u, password: password, operator: operator}
}

// TokenFor returns a valid bearer token for email.
func (s *Server) TokenFor(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	tok := "tok-" + uuid.NewString()
	s.tokens[tok] = email
	return tok
}

// Calls returns "METHOD /path" for every request served so far.
func (s *Server) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// CountCalls counts served requests whose "METHOD /path" has prefix.
func (s *Server) CountCalls(prefix string) int {
	n := 0
	for _, c := range s.Calls() {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// Start serves the fake on an httptest server. Close it when done.
func (s *Server) Start() *httptest.Server {
	return httptest.NewServer(s.Router())
}

// Router wires the routes.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(s.record)

	r.Post("/media/{cloud}/{resourceType}/upload", s.mediaUpload)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.login)
		r.Post("/auth/register", s.register)
		r.Post("/auth/forgot-password", s.message("If the email exists, a reset link has been sent"))
		r.Get("/services", s.listServices)
		r.Get("/packages", s.listPackages)
		r.Get("/files/portfolio", s.listPortfolio)

		r.Group(func(r chi.Router) {
			r.Use(s.auth)

			r.Get("/auth/me", s.me)
			r.Post("/auth/change-password", s.changePassword)

			r.Get("/orders", s.listOrders)
			r.Post("/orders", s.createOrder)
			r.Get("/orders/{id}", s.getOrder)
			r.Patch("/orders/{id}", s.updateOrder)
			r.Post("/orders/{id}/items", s.addItem)
			r.Delete("/orders/{id}/items/{itemID}", s.removeItem)

			r.Post("/payments/create-checkout-session", s.createCheckout)
			r.Get("/payments/checkout-status/{sessionID}", s.checkoutStatus)

			r.Get("/projects", s.listProjects)
			r.Get("/intake", s.listIntakes)
			r.Post("/intake", s.createIntake)

			r.Get("/threads", s.listThreads)
			r.Post("/threads", s.createThread)
			r.Get("/threads/{id}/messages", s.listMessages)
			r.Post("/threads/{id}/messages", s.sendMessage)

			r.Get("/files/signature", s.signature)
			r.Get("/files", s.listFiles)
			r.Post("/files", s.registerFile)
			r.Delete("/files/{id}", s.deleteFile)

			r.Get("/client-projects/check-admin", s.checkOperator)
			r.Get("/client-projects/my-project", s.myProject)
			r.Patch("/client-projects/my-project/next-step/{stepID}", s.toggleStep)

			r.Group(func(r chi.Router) {
				r.Use(s.requireAdmin)
				r.Get("/admin/stats", s.stats)
				r.Get("/admin/users", s.listUsers)
				r.Patch("/admin/users/{id}/role", s.updateRole)
				r.Delete("/admin/users/{id}", s.deleteUser)
				r.Post("/files/portfolio", s.addPortfolio)
				r.Put("/files/portfolio/reorder", s.reorderPortfolio)
				r.Delete("/files/portfolio/{id}", s.deletePortfolio)
			})

			r.Group(func(r chi.Router) {
				r.Use(s.requireOperator)
				r.Get("/client-projects/admin/clients", s.listClients)
				r.Get("/client-projects/admin/client/{userID}", s.getBoard)
				r.Put("/client-projects/admin/client/{userID}", s.updateBoard)
				r.Post("/client-projects/admin/client/{userID}/next-step", s.addStep)
				r.Delete("/client-projects/admin/client/{userID}/next-step/{stepID}", s.removeStep)
				r.Get("/client-projects/files/{userID}", s.listBoardFiles)
				r.Post("/client-projects/files/{userID}", s.addBoardFile)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not Found")
	})
	return r
}

type ctxKey struct{}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls = append(s.calls, r.Method+" "+r.URL.Path)
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.mu.Lock()
		email, ok := s.tokens[tok]
		acc := s.accounts[email]
		s.mu.Unlock()
		if !ok || acc == nil {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		next.ServeHTTP(w, r.WithContext(withAccount(r, acc)))
	})
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !caller(r).user.IsAdmin() {
			writeDetail(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireOperator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !caller(r).operator {
			writeDetail(w, http.StatusForbidden, "Access denied")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	acc := s.accounts[req.Email]
	s.mu.Unlock()
	if acc == nil || acc.password != req.Password {
		writeDetail(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	writeJSON(w, http.StatusOK, domain.TokenResponse{AccessToken: s.TokenFor(req.Email), TokenType: "bearer", User: acc.user})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string  `json:"name"`
		Email    string  `json:"email"`
		Password string  `json:"password"`
		Phone    *string `json:"phone"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	_, exists := s.accounts[req.Email]
	s.mu.Unlock()
	if exists {
		writeDetail(w, http.StatusBadRequest, "Email already registered")
		return
	}
	u := domain.User{ID: "u-" + uuid.NewString()[:8], Name: req.Name, Email: req.Email, Role: domain.RoleClient, CreatedAt: domain.NewTime(time.Now())}
	if req.Phone != nil {
		u.Phone = *req.Phone
	}
	s.AddAccount(u, req.Password, false)
	writeJSON(w, http.StatusOK, domain.TokenResponse{AccessToken: s.TokenFor(req.Email), TokenType: "bearer", User: u})
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Current string `json:"current_password"`
		New     string `json:"new_password"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	acc := caller(r)
	if acc.password != req.Current {
		writeDetail(w, http.StatusBadRequest, "Current password is incorrect")
		return
	}
	acc.password = req.New
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password changed successfully"})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, caller(r).user)
}

func (s *Server) checkOperator(w http.ResponseWriter, r *http.Request) {
	acc := caller(r)
	writeJSON(w, http.StatusOK, domain.OperatorCheck{IsOperator: acc.operator, Email: acc.user.Email})
}

func (s *Server) listServices(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.Services)
}

func (s *Server) listPackages(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, []domain.Package{})
}

func (s *Server) visibleOrders(acc *account) []domain.Order {
	out := make([]domain.Order, 0, len(s.Orders))
	for _, o := range s.Orders {
		if acc.user.IsAdmin() || o.UserID == acc.user.ID {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	orders := s.visibleOrders(caller(r))
	s.mu.Unlock()
	if st := r.URL.Query().Get("status"); st != "" {
		filtered := orders[:0]
		for _, o := range orders {
			if string(o.Status) == st {
				filtered = append(filtered, o)
			}
		}
		orders = filtered
	}
	writeJSON(w, http.StatusOK, orders)
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Notes string `json:"notes"`
	}
	if !decode(w, r, &req) {
		return
	}
	acc := caller(r)
	o := &domain.Order{
		ID:        "ord-" + uuid.NewString()[:8],
		UserID:    acc.user.ID,
		UserName:  acc.user.Name,
		UserEmail: acc.user.Email,
		Status:    domain.OrderDraft,
		Items:     []domain.OrderItem{},
		Currency:  "usd",
		Notes:     req.Notes,
		CreatedAt: domain.NewTime(time.Now()),
	}
	s.PutOrder(*o)
	writeJSON(w, http.StatusOK, o)
}

// PutOrder stores or replaces an order.
func (s *Server) PutOrder(o domain.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Orders[o.ID] = &o
}

func (s *Server) order(w http.ResponseWriter, r *http.Request) (*domain.Order, bool) {
	o := s.Orders[chi.URLParam(r, "id")]
	acc := caller(r)
	if o == nil || (!acc.user.IsAdmin() && o.UserID != acc.user.ID) {
		writeDetail(w, http.StatusNotFound, "Order not found")
		return nil, false
	}
	return o, true
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.order(w, r); ok {
		writeJSON(w, http.StatusOK, o)
	}
}

func (s *Server) updateOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Notes  *string             `json:"notes"`
		Status *domain.OrderStatus `json:"status"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.order(w, r)
	if !ok {
		return
	}
	if req.Notes != nil {
		o.Notes = *req.Notes
	}
	if req.Status != nil {
		draftCancel := o.Status == domain.OrderDraft && *req.Status == domain.OrderCanceled
		if !caller(r).user.IsAdmin() && !draftCancel {
			writeDetail(w, http.StatusForbidden, "Only admin can change order status")
			return
		}
		o.Status = *req.Status
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) addItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ServiceID string `json:"service_id"`
		Quantity  int    `json:"quantity"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.order(w, r)
	if !ok {
		return
	}
	var svc *domain.Service
	for i := range s.Services {
		if s.Services[i].ID == req.ServiceID {
			svc = &s.Services[i]
		}
	}
	if svc == nil {
		writeDetail(w, http.StatusNotFound, "Service not found")
		return
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}
	o.Items = append(o.Items, domain.OrderItem{
		ID:          "item-" + uuid.NewString()[:8],
		ServiceID:   svc.ID,
		ServiceName: svc.Name,
		Quantity:    req.Quantity,
		UnitPrice:   svc.BasePrice,
		LineTotal:   svc.BasePrice * float64(req.Quantity),
	})
	o.Recompute()
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) removeItem(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.order(w, r)
	if !ok {
		return
	}
	next, found := o.WithoutItem(chi.URLParam(r, "itemID"))
	if !found {
		writeDetail(w, http.StatusNotFound, "Item not found")
		return
	}
	*o = next
	writeJSON(w, http.StatusOK, map[string]string{"message": "Item removed"})
}

func (s *Server) createCheckout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID   string `json:"order_id"`
		OriginURL string `json:"origin_url"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	o := s.Orders[req.OrderID]
	s.mu.Unlock()
	if o == nil {
		writeDetail(w, http.StatusNotFound, "Order not found")
		return
	}
	if o.Total <= 0 {
		writeDetail(w, http.StatusBadRequest, "Order total must be greater than 0")
		return
	}
	sid := "cs_test_" + uuid.NewString()[:8]
	writeJSON(w, http.StatusOK, domain.CheckoutSession{URL: "https://checkout.example.com/pay/" + sid, SessionID: sid})
}

func (s *Server) checkoutStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	var st domain.CheckoutStatus
	switch len(s.CheckoutScript) {
	case 0:
		st = domain.CheckoutStatus{Status: "open", PaymentStatus: "unpaid"}
	case 1:
		st = s.CheckoutScript[0]
	default:
		st = s.CheckoutScript[0]
		s.CheckoutScript = s.CheckoutScript[1:]
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc := caller(r)
	out := []domain.Project{}
	for _, p := range s.Projects {
		if acc.user.IsAdmin() || p.UserID == acc.user.ID {
			out = append(out, p)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) listIntakes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, []domain.Intake{})
}

func (s *Server) createIntake(w http.ResponseWriter, r *http.Request) {
	var in domain.Intake
	if !decode(w, r, &in) {
		return
	}
	if !domain.ValidIntakeType(in.Type) {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid intake type")
		return
	}
	in.ID = "int-" + uuid.NewString()[:8]
	in.UserID = caller(r).user.ID
	in.CreatedAt = domain.NewTime(time.Now())
	writeJSON(w, http.StatusOK, in)
}

func (s *Server) listThreads(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc := caller(r)
	out := []domain.Thread{}
	for _, t := range s.Threads {
		if acc.user.IsAdmin() || t.UserID == acc.user.ID {
			out = append(out, t)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createThread(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Subject string `json:"subject"`
	}
	if !decode(w, r, &req) {
		return
	}
	acc := caller(r)
	now := domain.NewTime(time.Now())
	t := domain.Thread{ID: "thr-" + uuid.NewString()[:8], UserID: acc.user.ID, UserName: acc.user.Name, Subject: req.Subject, CreatedAt: now, UpdatedAt: now}
	s.mu.Lock()
	s.Threads = append(s.Threads, t)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) listMessages(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.Messages[chi.URLParam(r, "id")]
	if msgs == nil {
		msgs = []domain.Message{}
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (s *Server) sendMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Body        string   `json:"body"`
		Attachments []string `json:"attachments"`
	}
	if !decode(w, r, &req) {
		return
	}
	acc := caller(r)
	id := chi.URLParam(r, "id")
	m := domain.Message{
		ID:          "msg-" + uuid.NewString()[:8],
		ThreadID:    id,
		SenderID:    acc.user.ID,
		SenderName:  acc.user.Name,
		SenderRole:  acc.user.Role,
		Body:        req.Body,
		Attachments: req.Attachments,
		CreatedAt:   domain.NewTime(time.Now()),
	}
	s.mu.Lock()
	s.Messages[id] = append(s.Messages[id], m)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) signature(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, domain.UploadSignature{
		Signature:    "sig-" + uuid.NewString()[:8],
		Timestamp:    time.Now().Unix(),
		CloudName:    "crown",
		APIKey:       "key-123",
		Folder:       q.Get("folder"),
		ResourceType: q.Get("resource_type"),
	})
}

func (s *Server) mediaUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": map[string]string{"message": err.Error()}})
		return
	}
	if r.FormValue("signature") == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": map[string]string{"message": "Missing signature"}})
		return
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": map[string]string{"message": "Missing file"}})
		return
	}
	f.Close() //nolint:errcheck
	publicID := r.FormValue("folder") + strings.TrimSuffix(hdr.Filename, "."+lastExt(hdr.Filename))
	writeJSON(w, http.StatusOK, domain.MediaAsset{
		SecureURL:    fmt.Sprintf("https://cdn.example.com/%s/%s", chi.URLParam(r, "cloud"), publicID),
		PublicID:     publicID,
		Bytes:        hdr.Size,
		ResourceType: chi.URLParam(r, "resourceType"),
	})
}

func (s *Server) listFiles(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc := caller(r)
	out := []domain.FileUpload{}
	for _, f := range s.Files {
		if acc.user.IsAdmin() || f.UserID == acc.user.ID {
			out = append(out, f)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) registerFile(w http.ResponseWriter, r *http.Request) {
	var f domain.FileUpload
	if !decode(w, r, &f) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailRegisterFile {
		writeDetail(w, http.StatusInternalServerError, "Database unavailable")
		return
	}
	f.ID = "file-" + uuid.NewString()[:8]
	f.UserID = caller(r).user.ID
	f.CreatedAt = domain.NewTime(time.Now())
	s.Files = append(s.Files, f)
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) deleteFile(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := chi.URLParam(r, "id")
	for i, f := range s.Files {
		if f.ID == id {
			s.Files = append(s.Files[:i], s.Files[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "File deleted"})
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "File not found")
}

func (s *Server) listPortfolio(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]domain.PortfolioItem{}, s.Portfolio...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) addPortfolio(w http.ResponseWriter, r *http.Request) {
	var item domain.PortfolioItem
	if !decode(w, r, &item) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailRegisterFile {
		writeDetail(w, http.StatusInternalServerError, "Database unavailable")
		return
	}
	item.ID = "pf-" + uuid.NewString()[:8]
	item.CreatedAt = domain.NewTime(time.Now())
	s.Portfolio = append(s.Portfolio, item)
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) reorderPortfolio(w http.ResponseWriter, r *http.Request) {
	var positions []domain.PortfolioPosition
	if !decode(w, r, &positions) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range positions {
		for i := range s.Portfolio {
			if s.Portfolio[i].ID == p.ID {
				s.Portfolio[i].OrderIndex = p.OrderIndex
			}
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Portfolio reordered"})
}

func (s *Server) deletePortfolio(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := chi.URLParam(r, "id")
	for i, it := range s.Portfolio {
		if it.ID == id {
			s.Portfolio = append(s.Portfolio[:i], s.Portfolio[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Portfolio item deleted"})
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "Portfolio item not found")
}

func (s *Server) stats(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := domain.AdminStats{Users: len(s.accounts), Projects: len(s.Projects), RecentOrders: []domain.RecentOrder{}, RecentIntakes: []domain.RecentIntake{}}
	for _, o := range s.Orders {
		st.Orders.Total++
		switch o.Status {
		case domain.OrderPaid:
			st.Orders.Paid++
			st.Revenue += o.Total
		case domain.OrderPending, domain.OrderDraft:
			st.Orders.Pending++
		case domain.OrderCompleted:
			st.Orders.Completed++
			st.Revenue += o.Total
		}
		st.RecentOrders = append(st.RecentOrders, domain.RecentOrder{ID: o.ID, Status: o.Status, Total: o.Total, CreatedAt: o.CreatedAt})
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(r.URL.Query().Get("search"))
	role := r.URL.Query().Get("role")
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.User{}
	for _, acc := range s.accounts {
		u := acc.user
		if role != "" && string(u.Role) != role {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(u.Name), q) && !strings.Contains(strings.ToLower(u.Email), q) {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) findAccount(id string) *account {
	for _, acc := range s.accounts {
		if acc.user.ID == id {
			return acc
		}
	}
	return nil
}

func (s *Server) updateRole(w http.ResponseWriter, r *http.Request) {
	role := domain.Role(r.URL.Query().Get("role"))
	if role != domain.RoleAdmin && role != domain.RoleClient {
		writeDetail(w, http.StatusBadRequest, "Invalid role")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	acc := s.findAccount(chi.URLParam(r, "id"))
	if acc == nil {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	acc.user.Role = role
	writeJSON(w, http.StatusOK, map[string]string{"message": "Role updated"})
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc := s.findAccount(chi.URLParam(r, "id"))
	if acc == nil {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	delete(s.accounts, acc.user.Email)
	writeJSON(w, http.StatusOK, map[string]string{"message": "User deleted"})
}

// board returns (creating on first access) the board for userID. Caller
// holds s.mu.
func (s *Server) board(userID string) *domain.ClientProject {
	if b, ok := s.Boards[userID]; ok {
		return b
	}
	acc := s.findAccount(userID)
	b := &domain.ClientProject{ID: "cp-" + userID, UserID: userID, StatusText: "Getting started", NextSteps: []domain.NextStep{}}
	if acc != nil {
		b.UserName, b.UserEmail = acc.user.Name, acc.user.Email
	}
	s.Boards[userID] = b
	return b
}

func (s *Server) myProject(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.board(caller(r).user.ID))
}

func (s *Server) toggleStep(w http.ResponseWriter, r *http.Request) {
	completed := r.URL.Query().Get("completed") == "true"
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.board(caller(r).user.ID)
	next, ok := b.WithStepToggled(chi.URLParam(r, "stepID"), completed)
	if !ok {
		writeDetail(w, http.StatusNotFound, "Step not found")
		return
	}
	*b = next
	writeJSON(w, http.StatusOK, map[string]string{"message": "Step updated"})
}

func (s *Server) listClients(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.ClientOverview{}
	for _, acc := range s.accounts {
		if acc.user.Role != domain.RoleClient {
			continue
		}
		ov := domain.ClientOverview{ID: acc.user.ID, Name: acc.user.Name, Email: acc.user.Email, CreatedAt: acc.user.CreatedAt}
		if b, ok := s.Boards[acc.user.ID]; ok {
			ov.HasProject = true
			ov.StatusText = b.StatusText
			ov.ProgressPercentage = b.ProgressPercentage
		}
		out = append(out, ov)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getBoard(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.board(chi.URLParam(r, "userID")))
}

func (s *Server) updateBoard(w http.ResponseWriter, r *http.Request) {
	var upd struct {
		StatusText         *string           `json:"status_text"`
		ProgressPercentage *int              `json:"progress_percentage"`
		NextSteps          []domain.NextStep `json:"next_steps"`
		Notes              *string           `json:"notes"`
	}
	if !decode(w, r, &upd) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.board(chi.URLParam(r, "userID"))
	if upd.StatusText != nil {
		b.StatusText = *upd.StatusText
	}
	if upd.ProgressPercentage != nil {
		b.ProgressPercentage = *upd.ProgressPercentage
	}
	if upd.NextSteps != nil {
		b.NextSteps = upd.NextSteps
	}
	if upd.Notes != nil {
		b.Notes = *upd.Notes
	}
	b.UpdatedAt = domain.NewTime(time.Now())
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) addStep(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("text")
	if text == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "text is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.board(chi.URLParam(r, "userID"))
	step := domain.NextStep{ID: uuid.NewString(), Text: text}
	b.NextSteps = append(b.NextSteps, step)
	writeJSON(w, http.StatusOK, map[string]any{"message": "Step added", "step": step})
}

func (s *Server) removeStep(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.board(chi.URLParam(r, "userID"))
	id := chi.URLParam(r, "stepID")
	for i, st := range b.NextSteps {
		if st.ID == id {
			b.NextSteps = append(b.NextSteps[:i:i], b.NextSteps[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Step removed"})
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "Step not found")
}

func (s *Server) listBoardFiles(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	uid := chi.URLParam(r, "userID")
	out := []domain.ProjectFile{}
	for _, f := range s.Board {
		if f.UserID == uid {
			out = append(out, f)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) addBoardFile(w http.ResponseWriter, r *http.Request) {
	var f domain.ProjectFile
	if !decode(w, r, &f) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailRegisterFile {
		writeDetail(w, http.StatusInternalServerError, "Database unavailable")
		return
	}
	f.ID = "pfile-" + uuid.NewString()[:8]
	f.UserID = chi.URLParam(r, "userID")
	f.ProjectID = s.board(f.UserID).ID
	f.CreatedAt = domain.NewTime(time.Now())
	s.Board = append(s.Board, f)
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) message(msg string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": msg})
	}
}

func caller(r *http.Request) *account {
	acc, _ := r.Context().Value(ctxKey{}).(*account)
	if acc == nil {
		return &account{}
	}
	return acc
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func lastExt(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return ""
}
