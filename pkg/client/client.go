package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/crowncreative/portal/pkg/domain"
)

// TokenSource yields the bearer token to attach to a request. It is consulted
// on every call, so a login or logout takes effect on the next request.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

// Token implements TokenSource.
func (s StaticToken) Token(context.Context) (string, error) { return string(s), nil }

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithHeader sets a header on every request. It overrides the JSON defaults.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers.Set(key, value) }
}

// Client is the portal API client.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	headers    http.Header
}

// New creates a new API client. tokens may be nil for anonymous use.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		headers: http.Header{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// --- Auth ---

// RegisterRequest is the payload for creating a client account.
type RegisterRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Phone    *string `json:"phone,omitempty"`
}

// Register creates an account and returns its first token.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*domain.TokenResponse, error) {
	var resp domain.TokenResponse
	if err := c.post(ctx, "/api/auth/register", req, &resp); err != nil {
		return nil, fmt.Errorf("client.Register: %w", err)
	}
	return &resp, nil
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.TokenResponse, error) {
	var resp domain.TokenResponse
	if err := c.post(ctx, "/api/auth/login", map[string]string{"email": email, "password": password}, &resp); err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}
	return &resp, nil
}

// GetMe returns the identity behind the current token.
func (c *Client) GetMe(ctx context.Context) (*domain.User, error) {
	var u domain.User
	if err := c.get(ctx, "/api/auth/me", &u); err != nil {
		return nil, fmt.Errorf("client.GetMe: %w", err)
	}
	return &u, nil
}

// ForgotPassword asks the backend to email a reset link.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	if err := c.post(ctx, "/api/auth/forgot-password", map[string]string{"email": email}, nil); err != nil {
		return fmt.Errorf("client.ForgotPassword: %w", err)
	}
	return nil
}

// ResetPassword sets a new password using an emailed reset token.
func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) error {
	body := map[string]string{"token": token, "new_password": newPassword}
	if err := c.post(ctx, "/api/auth/reset-password", body, nil); err != nil {
		return fmt.Errorf("client.ResetPassword: %w", err)
	}
	return nil
}

// ChangePassword changes the signed-in user's password.
func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	body := map[string]string{"current_password": current, "new_password": next}
	if err := c.post(ctx, "/api/auth/change-password", body, nil); err != nil {
		return fmt.Errorf("client.ChangePassword: %w", err)
	}
	return nil
}

// --- Services & packages ---

// ServiceInput is the payload for creating or updating a service. Nil fields
// are left unchanged on update.
type ServiceInput struct {
	Name             *string  `json:"name,omitempty"`
	Description      *string  `json:"description,omitempty"`
	BasePrice        *float64 `json:"base_price,omitempty"`
	Category         *string  `json:"category,omitempty"`
	DeliverablesText *string  `json:"deliverables_text,omitempty"`
	Active           *bool    `json:"active,omitempty"`
}

// ListServices returns the service catalog.
func (c *Client) ListServices(ctx context.Context) ([]domain.Service, error) {
	var services []domain.Service
	if err := c.get(ctx, "/api/services", &services); err != nil {
		return nil, fmt.Errorf("client.ListServices: %w", err)
	}
	return services, nil
}

// GetService fetches a single service by ID.
func (c *Client) GetService(ctx context.Context, id string) (*domain.Service, error) {
	var s domain.Service
	if err := c.get(ctx, "/api/services/"+url.PathEscape(id), &s); err != nil {
		return nil, fmt.Errorf("client.GetService: %w", err)
	}
	return &s, nil
}

// CreateService adds a service to the catalog.
func (c *Client) CreateService(ctx context.Context, in ServiceInput) (*domain.Service, error) {
	var s domain.Service
	if err := c.post(ctx, "/api/services", in, &s); err != nil {
		return nil, fmt.Errorf("client.CreateService: %w", err)
	}
	return &s, nil
}

// UpdateService patches a service.
func (c *Client) UpdateService(ctx context.Context, id string, in ServiceInput) (*domain.Service, error) {
	var s domain.Service
	if err := c.doRequest(ctx, http.MethodPut, "/api/services/"+url.PathEscape(id), in, &s); err != nil {
		return nil, fmt.Errorf("client.UpdateService: %w", err)
	}
	return &s, nil
}

// DeleteService removes a service.
func (c *Client) DeleteService(ctx context.Context, id string) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/api/services/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("client.DeleteService: %w", err)
	}
	return nil
}

// ListPackages returns the package tiers.
func (c *Client) ListPackages(ctx context.Context) ([]domain.Package, error) {
	var pkgs []domain.Package
	if err := c.get(ctx, "/api/packages", &pkgs); err != nil {
		return nil, fmt.Errorf("client.ListPackages: %w", err)
	}
	return pkgs, nil
}

// ListAllServices returns the catalog including inactive services.
func (c *Client) ListAllServices(ctx context.Context) ([]domain.Service, error) {
	var services []domain.Service
	if err := c.get(ctx, "/api/services?active_only=false", &services); err != nil {
		return nil, fmt.Errorf("client.ListAllServices: %w", err)
	}
	return services, nil
}

// PackageInput is the payload for creating or updating a package. Nil fields
// are left unchanged on update.
type PackageInput struct {
	Name             *string  `json:"name,omitempty"`
	Tier             *string  `json:"tier,omitempty"`
	Price            *float64 `json:"price,omitempty"`
	IncludedServices []string `json:"included_services,omitempty"`
	Active           *bool    `json:"active,omitempty"`
}

// CreatePackage adds a package tier.
func (c *Client) CreatePackage(ctx context.Context, in PackageInput) (*domain.Package, error) {
	if in.Tier != nil && !domain.ValidTier(*in.Tier) {
		return nil, fmt.Errorf("client.CreatePackage: unknown tier %q", *in.Tier)
	}
	var p domain.Package
	if err := c.post(ctx, "/api/packages", in, &p); err != nil {
		return nil, fmt.Errorf("client.CreatePackage: %w", err)
	}
	return &p, nil
}

// UpdatePackage patches a package.
func (c *Client) UpdatePackage(ctx context.Context, id string, in PackageInput) (*domain.Package, error) {
	var p domain.Package
	if err := c.doRequest(ctx, http.MethodPut, "/api/packages/"+url.PathEscape(id), in, &p); err != nil {
		return nil, fmt.Errorf("client.UpdatePackage: %w", err)
	}
	return &p, nil
}

// DeletePackage removes a package.
func (c *Client) DeletePackage(ctx context.Context, id string) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/api/packages/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("client.DeletePackage: %w", err)
	}
	return nil
}

// --- Orders ---

// OrderItemInput adds one line to an order. Exactly one of ServiceID and
// PackageID should be set.
type OrderItemInput struct {
	ServiceID string `json:"service_id,omitempty"`
	PackageID string `json:"package_id,omitempty"`
	Quantity  int    `json:"quantity"`
}

// OrderUpdate patches an order.
type OrderUpdate struct {
	Notes  *string             `json:"notes,omitempty"`
	Status *domain.OrderStatus `json:"status,omitempty"`
}

// CouponResult is the outcome of applying a coupon.
type CouponResult struct {
	Message  string  `json:"message"`
	Discount float64 `json:"discount"`
	NewTotal float64 `json:"new_total"`
}

// CreateOrder opens a draft order.
func (c *Client) CreateOrder(ctx context.Context, notes string) (*domain.Order, error) {
	body := map[string]string{}
	if notes != "" {
		body["notes"] = notes
	}
	var o domain.Order
	if err := c.post(ctx, "/api/orders", body, &o); err != nil {
		return nil, fmt.Errorf("client.CreateOrder: %w", err)
	}
	return &o, nil
}

// GetOrder fetches a single order by ID.
func (c *Client) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	if err := c.get(ctx, "/api/orders/"+url.PathEscape(id), &o); err != nil {
		return nil, fmt.Errorf("client.GetOrder: %w", err)
	}
	return &o, nil
}

// ListOrders returns orders, optionally filtered by status.
func (c *Client) ListOrders(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	path := "/api/orders"
	if status != "" {
		path += "?" + url.Values{"status": {string(status)}}.Encode()
	}
	var orders []domain.Order
	if err := c.get(ctx, path, &orders); err != nil {
		return nil, fmt.Errorf("client.ListOrders: %w", err)
	}
	return orders, nil
}

// UpdateOrder patches an order's notes or status.
func (c *Client) UpdateOrder(ctx context.Context, id string, upd OrderUpdate) (*domain.Order, error) {
	var o domain.Order
	if err := c.doRequest(ctx, http.MethodPatch, "/api/orders/"+url.PathEscape(id), upd, &o); err != nil {
		return nil, fmt.Errorf("client.UpdateOrder: %w", err)
	}
	return &o, nil
}

// AddOrderItem appends a line item and returns the repriced order.
func (c *Client) AddOrderItem(ctx context.Context, orderID string, in OrderItemInput) (*domain.Order, error) {
	if in.Quantity < 1 {
		in.Quantity = 1
	}
	var o domain.Order
	if err := c.post(ctx, "/api/orders/"+url.PathEscape(orderID)+"/items", in, &o); err != nil {
		return nil, fmt.Errorf("client.AddOrderItem: %w", err)
	}
	return &o, nil
}

// RemoveOrderItem deletes a line item.
func (c *Client) RemoveOrderItem(ctx context.Context, orderID, itemID string) error {
	path := "/api/orders/" + url.PathEscape(orderID) + "/items/" + url.PathEscape(itemID)
	if err := c.doRequest(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("client.RemoveOrderItem: %w", err)
	}
	return nil
}

// ApplyCoupon applies a discount code to an order.
func (c *Client) ApplyCoupon(ctx context.Context, orderID, code string) (*CouponResult, error) {
	var res CouponResult
	if err := c.post(ctx, "/api/orders/"+url.PathEscape(orderID)+"/apply-coupon", map[string]string{"code": code}, &res); err != nil {
		return nil, fmt.Errorf("client.ApplyCoupon: %w", err)
	}
	return &res, nil
}

// --- Payments ---

// CreateCheckoutSession opens a hosted checkout page for an order. The
// processor redirects back to returnURL when the client finishes.
func (c *Client) CreateCheckoutSession(ctx context.Context, orderID, returnURL string) (*domain.CheckoutSession, error) {
	body := map[string]string{"order_id": orderID, "origin_url": returnURL}
	var s domain.CheckoutSession
	if err := c.post(ctx, "/api/payments/create-checkout-session", body, &s); err != nil {
		return nil, fmt.Errorf("client.CreateCheckoutSession: %w", err)
	}
	return &s, nil
}

// GetCheckoutStatus reports the processor's status for a checkout session.
func (c *Client) GetCheckoutStatus(ctx context.Context, sessionID string) (*domain.CheckoutStatus, error) {
	var s domain.CheckoutStatus
	if err := c.get(ctx, "/api/payments/checkout-status/"+url.PathEscape(sessionID), &s); err != nil {
		return nil, fmt.Errorf("client.GetCheckoutStatus: %w", err)
	}
	return &s, nil
}

// ListPayments returns recorded payments.
func (c *Client) ListPayments(ctx context.Context) ([]domain.Payment, error) {
	var payments []domain.Payment
	if err := c.get(ctx, "/api/payments", &payments); err != nil {
		return nil, fmt.Errorf("client.ListPayments: %w", err)
	}
	return payments, nil
}

// RefundPayment refunds a payment in full.
func (c *Client) RefundPayment(ctx context.Context, paymentID string) error {
	if err := c.post(ctx, "/api/payments/"+url.PathEscape(paymentID)+"/refund", nil, nil); err != nil {
		return fmt.Errorf("client.RefundPayment: %w", err)
	}
	return nil
}

// --- Intake ---

// CreateIntake submits a questionnaire.
func (c *Client) CreateIntake(ctx context.Context, t domain.IntakeType, orderID string, answers map[string]any) (*domain.Intake, error) {
	body := struct {
		Type    domain.IntakeType `json:"type"`
		OrderID string            `json:"order_id,omitempty"`
		Answers map[string]any    `json:"answers"`
	}{t, orderID, answers}
	var in domain.Intake
	if err := c.post(ctx, "/api/intake", body, &in); err != nil {
		return nil, fmt.Errorf("client.CreateIntake: %w", err)
	}
	return &in, nil
}

// GetIntake fetches a single questionnaire.
func (c *Client) GetIntake(ctx context.Context, id string) (*domain.Intake, error) {
	var in domain.Intake
	if err := c.get(ctx, "/api/intake/"+url.PathEscape(id), &in); err != nil {
		return nil, fmt.Errorf("client.GetIntake: %w", err)
	}
	return &in, nil
}

// ListIntakes returns questionnaires, optionally filtered by type.
func (c *Client) ListIntakes(ctx context.Context, t domain.IntakeType) ([]domain.Intake, error) {
	path := "/api/intake"
	if t != "" {
		path += "?" + url.Values{"type": {string(t)}}.Encode()
	}
	var intakes []domain.Intake
	if err := c.get(ctx, path, &intakes); err != nil {
		return nil, fmt.Errorf("client.ListIntakes: %w", err)
	}
	return intakes, nil
}

// --- Projects ---

// ProjectUpdate patches a project.
type ProjectUpdate struct {
	Status *domain.ProjectStatus `json:"status,omitempty"`
	Title  *string               `json:"title,omitempty"`
}

// ListProjects returns projects, optionally filtered by status.
func (c *Client) ListProjects(ctx context.Context, status domain.ProjectStatus) ([]domain.Project, error) {
	path := "/api/projects"
	if status != "" {
		path += "?" + url.Values{"status": {string(status)}}.Encode()
	}
	var projects []domain.Project
	if err := c.get(ctx, path, &projects); err != nil {
		return nil, fmt.Errorf("client.ListProjects: %w", err)
	}
	return projects, nil
}

// GetProject fetches a single project.
func (c *Client) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	var p domain.Project
	if err := c.get(ctx, "/api/projects/"+url.PathEscape(id), &p); err != nil {
		return nil, fmt.Errorf("client.GetProject: %w", err)
	}
	return &p, nil
}

// UpdateProject patches a project's status or title.
func (c *Client) UpdateProject(ctx context.Context, id string, upd ProjectUpdate) (*domain.Project, error) {
	var p domain.Project
	if err := c.doRequest(ctx, http.MethodPatch, "/api/projects/"+url.PathEscape(id), upd, &p); err != nil {
		return nil, fmt.Errorf("client.UpdateProject: %w", err)
	}
	return &p, nil
}

// UpdateProjectTimeline replaces a project's milestones.
func (c *Client) UpdateProjectTimeline(ctx context.Context, id string, timeline []domain.Milestone) (*domain.Project, error) {
	var p domain.Project
	body := map[string][]domain.Milestone{"timeline": timeline}
	if err := c.post(ctx, "/api/projects/"+url.PathEscape(id)+"/timeline", body, &p); err != nil {
		return nil, fmt.Errorf("client.UpdateProjectTimeline: %w", err)
	}
	return &p, nil
}

// --- Threads ---

// CreateThread opens a conversation with the studio.
func (c *Client) CreateThread(ctx context.Context, subject string) (*domain.Thread, error) {
	var t domain.Thread
	if err := c.post(ctx, "/api/threads", map[string]string{"subject": subject}, &t); err != nil {
		return nil, fmt.Errorf("client.CreateThread: %w", err)
	}
	return &t, nil
}

// ListThreads returns the caller's threads (all threads for admins).
func (c *Client) ListThreads(ctx context.Context) ([]domain.Thread, error) {
	var threads []domain.Thread
	if err := c.get(ctx, "/api/threads", &threads); err != nil {
		return nil, fmt.Errorf("client.ListThreads: %w", err)
	}
	return threads, nil
}

// GetThread fetches a single thread.
func (c *Client) GetThread(ctx context.Context, id string) (*domain.Thread, error) {
	var t domain.Thread
	if err := c.get(ctx, "/api/threads/"+url.PathEscape(id), &t); err != nil {
		return nil, fmt.Errorf("client.GetThread: %w", err)
	}
	return &t, nil
}

// GetMessages returns messages in a thread.
func (c *Client) GetMessages(ctx context.Context, threadID string) ([]domain.Message, error) {
	var msgs []domain.Message
	if err := c.get(ctx, "/api/threads/"+url.PathEscape(threadID)+"/messages", &msgs); err != nil {
		return nil, fmt.Errorf("client.GetMessages: %w", err)
	}
	return msgs, nil
}

// SendMessage sends a message to a thread.
func (c *Client) SendMessage(ctx context.Context, threadID, body string, attachments []string) (*domain.Message, error) {
	if attachments == nil {
		attachments = []string{}
	}
	payload := struct {
		Body        string   `json:"body"`
		Attachments []string `json:"attachments"`
	}{body, attachments}
	var msg domain.Message
	if err := c.post(ctx, "/api/threads/"+url.PathEscape(threadID)+"/messages", payload, &msg); err != nil {
		return nil, fmt.Errorf("client.SendMessage: %w", err)
	}
	return &msg, nil
}

// --- Files ---

// RegisterFileRequest records an uploaded asset against the caller.
type RegisterFileRequest struct {
	Filename  string `json:"filename"`
	URL       string `json:"url"`
	PublicID  string `json:"public_id"`
	MimeType  string `json:"mime_type"`
	Size      int64  `json:"size"`
	OrderID   string `json:"order_id,omitempty"`
	ProjectID string `json:"project_id,omitempty"`
}

// PortfolioItemRequest records an uploaded showcase asset.
type PortfolioItemRequest struct {
	Title      string `json:"title,omitempty"`
	URL        string `json:"url"`
	PublicID   string `json:"public_id"`
	MimeType   string `json:"mime_type"`
	Size       int64  `json:"size"`
	OrderIndex int    `json:"order_index"`
}

// UploadSignature asks the backend to authorize one direct upload to the
// media host.
func (c *Client) UploadSignature(ctx context.Context, resourceType, folder string) (*domain.UploadSignature, error) {
	if resourceType == "" {
		resourceType = domain.ResourceImage
	}
	if folder == "" {
		folder = domain.FolderUploads
	}
	params := url.Values{}
	params.Set("resource_type", resourceType)
	params.Set("folder", folder)

	var sig domain.UploadSignature
	if err := c.get(ctx, "/api/files/signature?"+params.Encode(), &sig); err != nil {
		return nil, fmt.Errorf("client.UploadSignature: %w", err)
	}
	return &sig, nil
}

// RegisterFile records an uploaded asset.
func (c *Client) RegisterFile(ctx context.Context, req RegisterFileRequest) (*domain.FileUpload, error) {
	var f domain.FileUpload
	if err := c.post(ctx, "/api/files", req, &f); err != nil {
		return nil, fmt.Errorf("client.RegisterFile: %w", err)
	}
	return &f, nil
}

// ListFiles returns files, optionally filtered by project or order.
func (c *Client) ListFiles(ctx context.Context, projectID, orderID string) ([]domain.FileUpload, error) {
	params := url.Values{}
	if projectID != "" {
		params.Set("project_id", projectID)
	}
	if orderID != "" {
		params.Set("order_id", orderID)
	}
	path := "/api/files"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	var files []domain.FileUpload
	if err := c.get(ctx, path, &files); err != nil {
		return nil, fmt.Errorf("client.ListFiles: %w", err)
	}
	return files, nil
}

// DeleteFile removes a file record.
func (c *Client) DeleteFile(ctx context.Context, id string) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/api/files/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("client.DeleteFile: %w", err)
	}
	return nil
}

// ListPortfolio returns showcase items in display order.
func (c *Client) ListPortfolio(ctx context.Context) ([]domain.PortfolioItem, error) {
	var items []domain.PortfolioItem
	if err := c.get(ctx, "/api/files/portfolio", &items); err != nil {
		return nil, fmt.Errorf("client.ListPortfolio: %w", err)
	}
	return items, nil
}

// AddPortfolioItem records an uploaded showcase asset.
func (c *Client) AddPortfolioItem(ctx context.Context, req PortfolioItemRequest) (*domain.PortfolioItem, error) {
	var item domain.PortfolioItem
	if err := c.post(ctx, "/api/files/portfolio", req, &item); err != nil {
		return nil, fmt.Errorf("client.AddPortfolioItem: %w", err)
	}
	return &item, nil
}

// DeletePortfolioItem removes a showcase item.
func (c *Client) DeletePortfolioItem(ctx context.Context, id string) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/api/files/portfolio/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("client.DeletePortfolioItem: %w", err)
	}
	return nil
}

// ReorderPortfolio assigns new display positions.
func (c *Client) ReorderPortfolio(ctx context.Context, order []domain.PortfolioPosition) error {
	if err := c.doRequest(ctx, http.MethodPut, "/api/files/portfolio/reorder", order, nil); err != nil {
		return fmt.Errorf("client.ReorderPortfolio: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	for k, vs := range c.headers {
		req.Header[k] = append([]string(nil), vs...)
	}

	if c.tokens != nil {
		tok, err := c.tokens.Token(ctx)
		if err != nil {
			return fmt.Errorf("read token: %w", err)
		}
		if tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode >= 400 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max error body
		if readErr != nil {
			return &HTTPError{StatusCode: resp.StatusCode, Message: fallbackMessage, RequestID: requestID}
		}
		return &HTTPError{StatusCode: resp.StatusCode, Message: parseErrorBody(respBody), RequestID: requestID}
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// boolParam formats a query-string boolean the way the backend expects.
func boolParam(b bool) string {
	return strconv.FormatBool(b)
}
