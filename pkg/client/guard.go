package client

import (
	"sync"

	"garmentFactory/domain"
)

type RouteKind int

const (
	// RouteProtected needs a logged in user.
	RouteProtected RouteKind = iota
	// RouteAdmin needs a user whose role may see the dashboard.
	RouteAdmin
	// RoutePublic is for logged out users only, such as the login page.
	RoutePublic
)

type Decision int

const (
	DecisionLoading Decision = iota
	DecisionRender
	DecisionRedirectLogin
	DecisionRedirectHome
)

func (d Decision) String() string {
	switch d {
	case DecisionLoading:
		return "loading"
	case DecisionRender:
		return "render"
	case DecisionRedirectLogin:
		return "redirect:/login"
	case DecisionRedirectHome:
		return "redirect:/"
	}
	return "unknown"
}

// RedirectPath is the target of a redirect decision, empty otherwise.
func (d Decision) RedirectPath() string {
	switch d {
	case DecisionRedirectLogin:
		return "/login"
	case DecisionRedirectHome:
		return "/"
	}
	return ""
}

// Decide says what a route of the given kind does for the session state.
func Decide(state SessionState, kind RouteKind) Decision {
	if !state.Initialized {
		return DecisionLoading
	}

	switch kind {
	case RouteProtected:
		if !state.LoggedIn {
			return DecisionRedirectLogin
		}
	case RouteAdmin:
		if !state.LoggedIn {
			return DecisionRedirectLogin
		}
		if !state.Can(domain.CapDashboardView) {
			return DecisionRedirectHome
		}
	case RoutePublic:
		if state.LoggedIn {
			return DecisionRedirectHome
		}
	}
	return DecisionRender
}

// Guard remembers the first decision other than loading for one route visit.
type Guard struct {
	kind RouteKind

	mu       sync.Mutex
	decision Decision
}

func NewGuard(kind RouteKind) *Guard {
	return &Guard{kind: kind}
}

func (g *Guard) Evaluate(state SessionState) Decision {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.decision != DecisionLoading {
		return g.decision
	}
	g.decision = Decide(state, g.kind)
	return g.decision
}
