package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/trezcool/stagi/core/user"
	testutil "github.com/trezcool/stagi/tests"
)

func Test_userApi_login(t *testing.T) {
	resetDB(t)

	usr := testutil.CreateUser(t, usrRepo, "Awe", "awemdr", "awe@test.cd", "passwd", []string{user.RoleCandidate}, true)
	testutil.CreateUser(t, usrRepo, "Naughty", "ndog", "ndog@test.cd", "passwd", []string{user.RoleCandidate}, false)

	login := func(uname, pwd string) []byte {
		return []byte(`{"username": "` + uname + `", "password": "` + pwd + `"}`)
	}

	tests := []httpTest{
		{
			name: "empty payload", body: login("", ""), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": "this field is required", "password": "this field is required"}),
		},
		{
			name: "unknown user", body: login("lol", "passwd"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "wrong password", body: login(usr.Username, "lol"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "deactivated account", body: login("ndog", "passwd"), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{name: "login with username", body: login(usr.Username, "passwd"), wantCode: http.StatusOK},
		{name: "login with email", body: login(usr.Email, "passwd"), wantCode: http.StatusOK},
		{name: "username is case-insensitive", body: login("AweMdr", "passwd"), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/api/users/login", tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				if rec.Code != http.StatusOK {
					t.Fatalf("failed! code = %v; body = %v", rec.Code, rec.Body.String())
				}
				var resp struct {
					Token string `json:"token"`
				}
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.Token == "" {
					t.Errorf("failed! no token in body = %v", rec.Body.String())
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_me(t *testing.T) {
	resetDB(t)

	usr, token := createCandidate(t, "awe")

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Get self", token: token, wantCode: http.StatusOK, wantData: marchallObj(t, usr)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/api/users/me", tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_adminOnly(t *testing.T) {
	resetDB(t)

	_, candToken := createCandidate(t, "awe")
	admin, adminToken := createAdmin(t)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Admin required", token: candToken, wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "Admin allowed", token: adminToken, wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/api/users", tt.token)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				if rec.Code != http.StatusOK {
					t.Fatalf("failed! code = %v; body = %v", rec.Code, rec.Body.String())
				}
				var users []user.User
				if err := json.Unmarshal(rec.Body.Bytes(), &users); err != nil {
					t.Fatalf("unmarshalling body: %v", err)
				}
				if len(users) != 2 {
					t.Errorf("len(users) = %v, want 2", len(users))
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}

	// the detail endpoint 404s for other users' accounts
	t.Run("Detail is owner-or-admin", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/users/"+admin.ID, candToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusNotFound)
		}
	})
}
