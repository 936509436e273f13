package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"garmentFactory/domain"

	"github.com/AMFarhan21/fres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionInit_LoggedIn(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/health":
			writeData(w, http.StatusOK, nil)
		case "/api/auth/is-auth":
			writeData(w, http.StatusOK, map[string]any{
				"userData": map[string]any{"_id": 2, "name": "Mia", "role": "manager"},
			})
		default:
			t.Errorf("unexpected request %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	s := NewSession(New(srv.URL, WithToken("tok")))
	state := s.Init(context.Background())

	assert.True(t, state.Initialized)
	assert.True(t, state.BackendReachable)
	assert.True(t, state.LoggedIn)
	assert.Equal(t, domain.RoleManager, state.Role())
	assert.Equal(t, DecisionRender, Decide(state, RouteAdmin))
}

func TestSessionInit_FallsBackToUserData(t *testing.T) {
	var userDataCalls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/health":
			writeData(w, http.StatusOK, nil)
		case "/api/auth/is-auth":
			writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "code": "NOT_FOUND", "message": "Not Found"})
		case "/api/user/data":
			userDataCalls++
			writeData(w, http.StatusOK, map[string]any{
				"userData": map[string]any{"_id": 5, "name": "Ana", "role": "user"},
			})
		}
	}))
	defer srv.Close()

	state := NewSession(New(srv.URL, WithToken("tok"))).Init(context.Background())

	assert.Equal(t, 1, userDataCalls)
	assert.True(t, state.LoggedIn)
	assert.Equal(t, uint(5), state.User.ID)
	assert.Equal(t, DecisionRedirectHome, Decide(state, RouteAdmin))
	assert.Equal(t, DecisionRender, Decide(state, RouteProtected))
}

func TestSessionInit_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/health" {
			writeData(w, http.StatusOK, nil)
			return
		}
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Missing authorization header"})
	}))
	defer srv.Close()

	state := NewSession(New(srv.URL)).Init(context.Background())

	assert.True(t, state.Initialized)
	assert.False(t, state.LoggedIn)
	for _, kind := range []RouteKind{RouteProtected, RouteAdmin} {
		d := Decide(state, kind)
		assert.Equal(t, DecisionRedirectLogin, d)
		assert.Equal(t, "/login", d.RedirectPath())
	}
	assert.Equal(t, DecisionRender, Decide(state, RoutePublic))
}

func TestSessionInit_BackendDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	state := NewSession(New(url)).Init(context.Background())
	assert.True(t, state.Initialized)
	assert.False(t, state.BackendReachable)
	assert.False(t, state.LoggedIn)
}

func TestSessionInit_DegradedBackendIsReachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/health" {
			writeJSON(w, http.StatusServiceUnavailable, fres.DefaultErrorResponse{
				Success: false,
				Status:  "degraded",
				Message: "Some dependencies are unavailable",
				Error:   map[string]any{"checks": map[string]string{"database": "down"}},
			})
			return
		}
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "code": "UNAUTHORIZED", "message": "Missing authorization header"})
	}))
	defer srv.Close()

	state := NewSession(New(srv.URL)).Init(context.Background())
	assert.True(t, state.Initialized)
	assert.True(t, state.BackendReachable)
	assert.False(t, state.LoggedIn)
}

func TestSession_LoginThen401LogsOut(t *testing.T) {
	expired := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			writeData(w, http.StatusOK, map[string]any{
				"token": "jwt-1",
				"user":  map[string]any{"_id": 9, "name": "Fin", "role": "finance"},
			})
		case "/api/orders/stats":
			if expired {
				writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Token expired or invalid"})
				return
			}
			assert.Equal(t, "Bearer jwt-1", r.Header.Get("Authorization"))
			writeData(w, http.StatusOK, map[string]any{"stats": map[string]any{"totalOrders": 3}})
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	s := NewSession(c)
	ctx := context.Background()

	u, err := s.Login(ctx, "fin@factory.test", "secret1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleFinance, u.Role)
	assert.Equal(t, "jwt-1", c.Token())
	assert.True(t, s.Snapshot().Can(domain.CapFinanceView))

	stats, err := c.GetOrderStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalOrders)

	expired = true
	_, err = c.GetOrderStatistics(ctx)
	assert.True(t, IsUnauthorized(err))
	assert.False(t, s.Snapshot().LoggedIn)
}

func TestSession_Logout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, fres.DefaultSuccessResponse{Success: true, Message: "Logout successful"})
	}))
	defer srv.Close()

	c := New(srv.URL, WithToken("jwt-1"))
	s := NewSession(c)
	s.setUser(User{ID: 1, Role: domain.RoleAdmin})

	require.NoError(t, s.Logout(context.Background()))
	assert.Empty(t, c.Token())
	assert.False(t, s.Snapshot().LoggedIn)
}

func TestDecide(t *testing.T) {
	loading := SessionState{}
	guest := SessionState{Initialized: true}
	customer := SessionState{Initialized: true, LoggedIn: true, User: User{Role: domain.RoleUser}}
	staff := SessionState{Initialized: true, LoggedIn: true, User: User{Role: domain.RoleSales}}

	cases := []struct {
		state SessionState
		kind  RouteKind
		want  Decision
	}{
		{loading, RouteProtected, DecisionLoading},
		{loading, RoutePublic, DecisionLoading},
		{guest, RouteProtected, DecisionRedirectLogin},
		{guest, RouteAdmin, DecisionRedirectLogin},
		{guest, RoutePublic, DecisionRender},
		{customer, RouteProtected, DecisionRender},
		{customer, RouteAdmin, DecisionRedirectHome},
		{customer, RoutePublic, DecisionRedirectHome},
		{staff, RouteAdmin, DecisionRender},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Decide(tc.state, tc.kind), "%+v kind=%d", tc.state, tc.kind)
	}
}

func TestGuard_DecisionIsTerminal(t *testing.T) {
	g := NewGuard(RouteProtected)

	assert.Equal(t, DecisionLoading, g.Evaluate(SessionState{}))
	assert.Equal(t, DecisionRedirectLogin, g.Evaluate(SessionState{Initialized: true}))
	assert.Equal(t, DecisionRedirectLogin, g.Evaluate(SessionState{Initialized: true, LoggedIn: true, User: User{Role: domain.RoleUser}}))
}
