package client

import (
	"context"
	"net/http"
	"sync"

	"garmentFactory/domain"
)

type User struct {
	ID                uint        `json:"_id"`
	Name              string      `json:"name"`
	Email             string      `json:"email"`
	Role              domain.Role `json:"role"`
	IsAccountVerified bool        `json:"isAccountVerified"`
}

// SessionState is a point-in-time copy of the session.
type SessionState struct {
	Initialized      bool
	BackendReachable bool
	LoggedIn         bool
	User             User
}

func (s SessionState) Role() domain.Role {
	return s.User.Role
}

// Can reports whether the logged in user's role grants cap.
func (s SessionState) Can(cap domain.Capability) bool {
	return s.LoggedIn && s.User.Role.Can(cap)
}

// Session holds the authentication state of one API consumer. A 401 from any call made
// through its client logs the session out.
type Session struct {
	client *Client

	mu    sync.RWMutex
	state SessionState
}

func NewSession(c *Client) *Session {
	s := &Session{client: c}
	c.OnUnauthorized(s.clear)
	return s
}

func (s *Session) Client() *Client {
	return s.client
}

func (s *Session) Snapshot() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) clear() {
	s.mu.Lock()
	s.state.LoggedIn = false
	s.state.User = User{}
	s.mu.Unlock()
}

func (s *Session) setUser(u User) {
	s.mu.Lock()
	s.state.LoggedIn = true
	s.state.User = u
	s.mu.Unlock()
}

// Init checks that the backend answers, then asks who the current token belongs to.
// A degraded health response still counts as reachable; only transport failures do not.
// Older servers without /api/auth/is-auth are asked through /api/user/data instead.
func (s *Session) Init(ctx context.Context) SessionState {
	reachable := true
	if err := s.client.Health(ctx); err != nil {
		apiErr, ok := AsAPIError(err)
		reachable = ok && apiErr.Kind != KindNetwork
	}

	s.mu.Lock()
	s.state.BackendReachable = reachable
	s.mu.Unlock()

	u, err := s.whoAmI(ctx, "/api/auth/is-auth")
	if IsNotFound(err) {
		u, err = s.whoAmI(ctx, "/api/user/data")
	}
	if err != nil {
		s.clear()
	} else {
		s.setUser(u)
	}

	s.mu.Lock()
	s.state.Initialized = true
	state := s.state
	s.mu.Unlock()
	return state
}

func (s *Session) whoAmI(ctx context.Context, path string) (User, error) {
	var out struct {
		UserData User `json:"userData"`
	}
	if err := s.client.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return User{}, err
	}
	return out.UserData, nil
}

func (s *Session) Login(ctx context.Context, email, password string) (User, error) {
	var out struct {
		Token string `json:"token"`
		User  User   `json:"user"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := s.client.do(ctx, http.MethodPost, "/api/auth/login", nil, body, &out); err != nil {
		return User{}, err
	}

	s.client.SetToken(out.Token)
	s.setUser(out.User)
	return out.User, nil
}

// Logout revokes the token on the server. Local state is cleared even if that fails.
func (s *Session) Logout(ctx context.Context) error {
	err := s.client.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, nil)
	s.client.SetToken("")
	s.clear()
	return err
}

// Register creates an account. The account has to be verified by email before Login
// succeeds, so the session stays logged out.
func (s *Session) Register(ctx context.Context, name, email, password string) (User, error) {
	var out struct {
		User User `json:"user"`
	}
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := s.client.do(ctx, http.MethodPost, "/api/auth/register", nil, body, &out); err != nil {
		return User{}, err
	}

	s.clear()
	return out.User, nil
}
