package tests

import (
	"net/http"
	"testing"
)

func Test_areaNavigation(t *testing.T) {
	resetDB(t)

	_, candToken := createCandidate(t, "awe")
	_, internToken := createIntern(t, "mdr")
	_, adminToken := createAdmin(t)

	t.Run("sign-in page is public", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/login")
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("failed! code = %v; body = %v", rec.Code, rec.Body.String())
		}
	})

	tests := []struct {
		name         string
		path         string
		token        string
		wantCode     int
		wantLocation string
	}{
		{name: "anonymous to dashboard", path: "/dashboard", wantCode: http.StatusTemporaryRedirect, wantLocation: "/login"},
		{name: "anonymous to admin", path: "/admin", wantCode: http.StatusTemporaryRedirect, wantLocation: "/login"},
		{name: "candidate on dashboard", path: "/dashboard", token: candToken, wantCode: http.StatusOK},
		{name: "intern on dashboard", path: "/dashboard", token: internToken, wantCode: http.StatusOK},
		{name: "admin belongs in the admin area", path: "/dashboard", token: adminToken, wantCode: http.StatusTemporaryRedirect, wantLocation: "/admin"},
		{name: "candidate kept out of admin", path: "/admin", token: candToken, wantCode: http.StatusTemporaryRedirect, wantLocation: "/dashboard"},
		{name: "intern kept out of admin", path: "/admin", token: internToken, wantCode: http.StatusTemporaryRedirect, wantLocation: "/dashboard"},
		{name: "admin on admin", path: "/admin", token: adminToken, wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("failed! code = %v; wantCode %v; body = %v", rec.Code, tt.wantCode, rec.Body.String())
			}
			if loc := rec.Header().Get("Location"); loc != tt.wantLocation {
				t.Errorf("Location = %q, want %q", loc, tt.wantLocation)
			}
		})
	}
}
