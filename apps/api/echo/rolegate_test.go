package echoapi

import (
	"testing"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name string
		role Role
		area Area
		want Decision
	}{
		// public is open to everyone
		{name: "anonymous on public", role: RoleAnonymous, area: AreaPublic, want: Decision{Allowed: true}},
		{name: "candidate on public", role: RoleCandidate, area: AreaPublic, want: Decision{Allowed: true}},
		{name: "admin on public", role: RoleAdmin, area: AreaPublic, want: Decision{Allowed: true}},

		// dashboard
		{name: "anonymous on dashboard", role: RoleAnonymous, area: AreaDashboard, want: Decision{RedirectTo: "/login"}},
		{name: "candidate on dashboard", role: RoleCandidate, area: AreaDashboard, want: Decision{Allowed: true}},
		{name: "intern on dashboard", role: RoleIntern, area: AreaDashboard, want: Decision{Allowed: true}},
		{name: "admin on dashboard", role: RoleAdmin, area: AreaDashboard, want: Decision{RedirectTo: "/admin"}},

		// admin area
		{name: "anonymous on admin", role: RoleAnonymous, area: AreaAdmin, want: Decision{RedirectTo: "/login"}},
		{name: "candidate on admin", role: RoleCandidate, area: AreaAdmin, want: Decision{RedirectTo: "/dashboard"}},
		{name: "intern on admin", role: RoleIntern, area: AreaAdmin, want: Decision{RedirectTo: "/dashboard"}},
		{name: "admin on admin", role: RoleAdmin, area: AreaAdmin, want: Decision{Allowed: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decide(tt.role, tt.area); got != tt.want {
				t.Errorf("Decide() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestResolveRole(t *testing.T) {
	tests := []struct {
		name   string
		claims *Claims
		want   Role
	}{
		{name: "no claims", want: RoleAnonymous},
		{name: "no roles", claims: &Claims{}, want: RoleAnonymous},
		{name: "candidate", claims: &Claims{IsCandidate: true}, want: RoleCandidate},
		{name: "intern", claims: &Claims{IsIntern: true}, want: RoleIntern},
		{name: "admin", claims: &Claims{IsAdmin: true}, want: RoleAdmin},
		// an accepted intern keeps their candidate history; the stronger band wins
		{name: "intern and candidate", claims: &Claims{IsCandidate: true, IsIntern: true}, want: RoleIntern},
		{name: "admin and intern", claims: &Claims{IsIntern: true, IsAdmin: true}, want: RoleAdmin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveRole(tt.claims); got != tt.want {
				t.Errorf("ResolveRole() = %v, want %v", got, tt.want)
			}
		})
	}
}
