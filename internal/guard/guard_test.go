package guard

import (
	"testing"

	"github.com/crowncreative/portal/internal/session"
	"github.com/crowncreative/portal/pkg/domain"
)

var (
	client = &domain.User{ID: "c1", Role: domain.RoleClient}
	admin  = &domain.User{ID: "a1", Role: domain.RoleAdmin}
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name string
		snap session.Snapshot
		req  Requirement
		want Decision
	}{
		{"booting defers none", session.Snapshot{State: session.Booting}, None, Defer},
		{"booting defers admin", session.Snapshot{State: session.Booting}, Admin, Defer},
		{"anonymous public", session.Snapshot{State: session.Anonymous}, None, Allow},
		{"anonymous auth", session.Snapshot{State: session.Anonymous}, Auth, RedirectLogin},
		{"anonymous admin", session.Snapshot{State: session.Anonymous}, Admin, RedirectLogin},
		{"anonymous operator", session.Snapshot{State: session.Anonymous}, Operator, RedirectLogin},
		{"client auth", session.Snapshot{State: session.Authenticated, User: client}, Auth, Allow},
		{"client none", session.Snapshot{State: session.Authenticated, User: client}, None, Allow},
		{"client admin", session.Snapshot{State: session.Authenticated, User: client}, Admin, RedirectHome},
		{"admin admin", session.Snapshot{State: session.Authenticated, User: admin}, Admin, Allow},
		{"admin none", session.Snapshot{State: session.Authenticated, User: admin}, None, Allow},
		{"admin without operator bit", session.Snapshot{State: session.Authenticated, User: admin}, Operator, RedirectHome},
		{"client with operator bit", session.Snapshot{State: session.Authenticated, User: client, Operator: true}, Operator, Allow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decide(tt.snap, tt.req); got != tt.want {
				t.Errorf("Decide() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestLandingFor(t *testing.T) {
	if got := LandingFor(client); got != RoutePortal {
		t.Errorf("client lands on %s, want portal", got)
	}
	if got := LandingFor(admin); got != RouteAdmin {
		t.Errorf("admin lands on %s, want admin", got)
	}
	if got := LandingFor(nil); got != RouteLogin {
		t.Errorf("nil user lands on %s, want login", got)
	}
}

func TestTarget(t *testing.T) {
	anon := session.Snapshot{State: session.Anonymous}
	if got := Target(Decide(anon, Admin), anon, RouteAdmin); got != RouteLogin {
		t.Errorf("anonymous admin path -> %s, want login", got)
	}
	cl := session.Snapshot{State: session.Authenticated, User: client}
	if got := Target(Decide(cl, Admin), cl, RouteAdmin); got != RoutePortal {
		t.Errorf("client admin path -> %s, want portal", got)
	}
	boot := session.Snapshot{State: session.Booting}
	if got := Target(Decide(boot, Admin), boot, RouteAdmin); got != "" {
		t.Errorf("booting -> %q, want empty", got)
	}
}
