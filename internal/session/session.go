// Package session owns who is logged in. It persists the session token,
// hydrates the identity at boot, and exposes login, register and logout.
//
// A Store is passed explicitly to every view that needs it; there is no
// package-level session.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/crowncreative/portal/pkg/client"
	"github.com/crowncreative/portal/pkg/domain"
)

// State is the session lifecycle state.
type State int

const (
	Booting State = iota
	Anonymous
	Authenticated
)

func (s State) String() string {
	switch s {
	case Booting:
		return "booting"
	case Anonymous:
		return "anonymous"
	case Authenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Backend is the slice of the API the session needs. *client.Client
// satisfies it.
type Backend interface {
	Login(ctx context.Context, email, password string) (*domain.TokenResponse, error)
	Register(ctx context.Context, req client.RegisterRequest) (*domain.TokenResponse, error)
	GetMe(ctx context.Context) (*domain.User, error)
	CheckOperator(ctx context.Context) (*domain.OperatorCheck, error)
}

// Snapshot is a consistent read of the session.
type Snapshot struct {
	State    State
	User     *domain.User
	Operator bool
}

// ErrMissingCredentials is returned before any request when email or
// password is blank.
var ErrMissingCredentials = errors.New("email and password are required")

// Store is the single writer of the token/identity pair.
type Store struct {
	backend Backend
	tokens  TokenStore
	logger  *zap.Logger
	now     func() time.Time

	mu       sync.RWMutex
	state    State
	user     *domain.User
	operator bool
}

// New creates a store in the Booting state. Call Boot once before use.
func New(backend Backend, tokens TokenStore, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		backend: backend,
		tokens:  tokens,
		logger:  logger,
		now:     time.Now,
		state:   Booting,
	}
}

// Token returns the persisted token. It lets the store act as the gateway's
// token source.
func (s *Store) Token(ctx context.Context) (string, error) {
	return s.tokens.Token(ctx)
}

// Boot hydrates the identity from a persisted token. Failures are logged and
// leave the store Anonymous with the token purged; they are never returned.
// Boot does nothing once the store has left Booting.
func (s *Store) Boot(ctx context.Context) State {
	if s.State() != Booting {
		return s.State()
	}

	tok, err := s.tokens.Token(ctx)
	if err != nil {
		s.logger.Warn("read persisted token", zap.Error(err))
		s.setAnonymous()
		return Anonymous
	}
	if tok == "" {
		s.setAnonymous()
		return Anonymous
	}
	if Expired(tok, s.now()) {
		s.logger.Info("persisted token expired, discarding")
		s.purge(ctx)
		return Anonymous
	}

	user, err := s.backend.GetMe(ctx)
	if err != nil {
		s.logger.Info("identity refresh failed, discarding token", zap.Error(err))
		s.purge(ctx)
		return Anonymous
	}

	s.setAuthenticated(user, s.checkOperator(ctx))
	s.logger.Debug("session restored", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return Authenticated
}

// Login authenticates and persists the returned token. The backend's
// rejection message is preserved in the returned error.
func (s *Store) Login(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	resp, err := s.backend.Login(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("session.Login: %w", err)
	}
	return s.establish(ctx, resp)
}

// Register creates an account and logs into it. An empty phone is sent as
// absent.
func (s *Store) Register(ctx context.Context, name, email, password, phone string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	req := client.RegisterRequest{
		Name:     strings.TrimSpace(name),
		Email:    email,
		Password: password,
	}
	if p := strings.TrimSpace(phone); p != "" {
		req.Phone = &p
	}
	resp, err := s.backend.Register(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("session.Register: %w", err)
	}
	return s.establish(ctx, resp)
}

// Logout clears the identity and purges the token. No request is made and
// calling it while Anonymous is a no-op. The local state is cleared even
// when the token store fails; that failure is returned.
func (s *Store) Logout(ctx context.Context) error {
	s.setAnonymous()
	if err := s.tokens.Clear(ctx); err != nil {
		return fmt.Errorf("session.Logout: %w", err)
	}
	return nil
}

// Expire drops a session the backend has rejected mid-use (a 401 from any
// view).
func (s *Store) Expire(ctx context.Context) {
	if s.State() != Authenticated {
		return
	}
	s.logger.Info("session rejected by backend, logging out")
	s.purge(ctx)
}

// State returns the current lifecycle state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// User returns a copy of the identity, or nil when not authenticated.
func (s *Store) User() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// IsOperator reports the server-granted client-project workspace permission.
func (s *Store) IsOperator() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.operator
}

// Snapshot returns state, identity and permissions read together.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{State: s.state, Operator: s.operator}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	return snap
}

func (s *Store) establish(ctx context.Context, resp *domain.TokenResponse) (*domain.User, error) {
	if resp == nil || resp.AccessToken == "" {
		return nil, errors.New("session: backend returned no token")
	}
	if err := s.tokens.Save(ctx, resp.AccessToken); err != nil {
		return nil, fmt.Errorf("session: persist token: %w", err)
	}
	user := resp.User
	s.setAuthenticated(&user, s.checkOperator(ctx))
	s.logger.Info("logged in", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	out := user
	return &out, nil
}

// checkOperator asks for the workspace permission. Any failure means no.
func (s *Store) checkOperator(ctx context.Context) bool {
	oc, err := s.backend.CheckOperator(ctx)
	if err != nil {
		s.logger.Debug("operator check failed", zap.Error(err))
		return false
	}
	return oc != nil && oc.IsOperator
}

func (s *Store) purge(ctx context.Context) {
	if err := s.tokens.Clear(ctx); err != nil {
		s.logger.Warn("purge token", zap.Error(err))
	}
	s.setAnonymous()
}

func (s *Store) setAnonymous() {
	s.mu.Lock()
	s.state = Anonymous
	s.user = nil
	s.operator = false
	s.mu.Unlock()
}

func (s *Store) setAuthenticated(u *domain.User, operator bool) {
	s.mu.Lock()
	s.state = Authenticated
	s.user = u
	s.operator = operator
	s.mu.Unlock()
}
