// Package guard decides whether a view may open for the current session.
// It holds no state and has no side effects; callers perform the redirect.
package guard

import (
	"github.com/crowncreative/portal/internal/session"
	"github.com/crowncreative/portal/pkg/domain"
)

// Requirement is what a route demands of the session.
type Requirement int

const (
	None Requirement = iota
	Auth
	Admin
	Operator
)

func (r Requirement) String() string {
	switch r {
	case None:
		return "none"
	case Auth:
		return "auth"
	case Admin:
		return "admin"
	case Operator:
		return "operator"
	default:
		return "unknown"
	}
}

// Decision is the outcome for one navigation.
type Decision int

const (
	// Defer means the session is still booting; show a neutral loading view.
	Defer Decision = iota
	Allow
	RedirectLogin
	RedirectHome
)

func (d Decision) String() string {
	switch d {
	case Defer:
		return "defer"
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect-login"
	case RedirectHome:
		return "redirect-home"
	default:
		return "unknown"
	}
}

// Route names the top-level destinations used in redirects.
type Route string

const (
	RouteLogin      Route = "login"
	RoutePortal     Route = "portal"
	RouteAdmin      Route = "admin"
	RouteOperator   Route = "operator"
	RoutePublicHome Route = "home"
)

// Decide applies the navigation rules to a session snapshot.
func Decide(snap session.Snapshot, req Requirement) Decision {
	switch snap.State {
	case session.Booting:
		return Defer
	case session.Anonymous:
		if req == None {
			return Allow
		}
		return RedirectLogin
	}

	switch req {
	case Admin:
		if !IsAdmin(snap.User) {
			return RedirectHome
		}
	case Operator:
		if !snap.Operator {
			return RedirectHome
		}
	}
	return Allow
}

// IsAdmin is the single admin capability check.
func IsAdmin(u *domain.User) bool {
	return u.IsAdmin()
}

// LandingFor is where a user goes after login and where RedirectHome points.
func LandingFor(u *domain.User) Route {
	if u == nil {
		return RouteLogin
	}
	if IsAdmin(u) {
		return RouteAdmin
	}
	return RoutePortal
}

// Target resolves a decision into the route to show. It returns want for
// Allow and "" for Defer.
func Target(d Decision, snap session.Snapshot, want Route) Route {
	switch d {
	case Allow:
		return want
	case RedirectLogin:
		return RouteLogin
	case RedirectHome:
		return LandingFor(snap.User)
	default:
		return ""
	}
}
