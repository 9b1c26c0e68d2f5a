package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/trezcool/stagi/core/application"
	"github.com/trezcool/stagi/core/internship"
	testutil "github.com/trezcool/stagi/tests"
)

func Test_internshipApi_list(t *testing.T) {
	resetDB(t)

	open := testutil.CreateInternship(t, inshipRepo, "Backend Intern", "Kin Tech", true)
	closed := testutil.CreateInternship(t, inshipRepo, "Data Intern", "Kin Tech", false)
	_, adminToken := createAdmin(t)

	fetch := func(t *testing.T, token string) []internship.Internship {
		t.Helper()
		req, rec := newAuthRequest(http.MethodGet, "/api/internships", token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body = %v", rec.Code, rec.Body.String())
		}
		var inships []internship.Internship
		if err := json.Unmarshal(rec.Body.Bytes(), &inships); err != nil {
			t.Fatalf("unmarshalling body: %v", err)
		}
		return inships
	}

	t.Run("anonymous only sees open internships", func(t *testing.T) {
		inships := fetch(t, "")
		if len(inships) != 1 || inships[0].ID != open.ID {
			t.Errorf("inships = %+v, want only the open one", inships)
		}
	})

	t.Run("admin sees everything", func(t *testing.T) {
		inships := fetch(t, adminToken)
		if len(inships) != 2 {
			t.Errorf("len(inships) = %v, want 2", len(inships))
		}
	})

	t.Run("retrieve", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/api/internships/"+closed.ID)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, closed)}, rec)
	})

	t.Run("retrieve unknown", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/api/internships/lol")
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "internship not found"}),
		}, rec)
	})

	// the guarded POST on the same path must not shadow the public GET
	t.Run("admin routes do not shadow the public list", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/api/internships", []byte(`{}`))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)

		req, rec = newRequest(http.MethodGet, "/api/internships")
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("failed! code = %v; body = %v", rec.Code, rec.Body.String())
		}
	})
}

func Test_internshipApi_steps(t *testing.T) {
	resetDB(t)

	inship := testutil.CreateInternship(t, inshipRepo, "Backend Intern", "Kin Tech", true)

	fetchSteps := func(t *testing.T) []application.Step {
		t.Helper()
		req, rec := newRequest(http.MethodGet, "/api/internships/"+inship.ID+"/steps")
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body = %v", rec.Code, rec.Body.String())
		}
		var steps []application.Step
		if err := json.Unmarshal(rec.Body.Bytes(), &steps); err != nil {
			t.Fatalf("unmarshalling body: %v", err)
		}
		return steps
	}

	t.Run("default flow when none authored", func(t *testing.T) {
		steps := fetchSteps(t)
		if len(steps) != 3 || steps[0].ID != "default-details" {
			t.Errorf("steps = %+v, want the default flow", steps)
		}
	})

	t.Run("authored flow, ordered", func(t *testing.T) {
		testutil.CreateStep(t, appRepo, inship.ID, "Second", 2)
		testutil.CreateStep(t, appRepo, inship.ID, "First", 1)

		steps := fetchSteps(t)
		if len(steps) != 2 || steps[0].Title != "First" || steps[1].Title != "Second" {
			t.Errorf("steps = %+v, want First then Second", steps)
		}
	})

	t.Run("unknown internship", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/api/internships/lol/steps")
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "internship not found"}),
		}, rec)
	})
}

func Test_internshipApi_adminCRUD(t *testing.T) {
	resetDB(t)

	_, candToken := createCandidate(t, "awe")
	_, adminToken := createAdmin(t)

	payload := []byte(`{"title": "Backend Intern", "company": "Kin Tech", "description": "Build APIs"}`)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Admin required", token: candToken, wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{
			name: "missing fields", token: adminToken, body: []byte(`{"title": "Backend Intern"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"company": "this field is required", "description": "this field is required"}),
		},
		{name: "create", token: adminToken, body: payload, wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/api/internships", tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != http.StatusCreated {
					t.Fatalf("failed! code = %v; body = %v", rec.Code, rec.Body.String())
				}
				var inship internship.Internship
				if err := json.Unmarshal(rec.Body.Bytes(), &inship); err != nil {
					t.Fatalf("unmarshalling body: %v", err)
				}
				if inship.ID == "" || !inship.Open() {
					t.Errorf("inship = %+v, want an ID and open by default", inship)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("update and delete", func(t *testing.T) {
		inship := testutil.CreateInternship(t, inshipRepo, "Data Intern", "Kin Tech", true)

		req, rec := newAuthRequest(http.MethodPut, "/api/internships/"+inship.ID, adminToken, []byte(`{"title": "ML Intern"}`))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body = %v", rec.Code, rec.Body.String())
		}
		var updated internship.Internship
		if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
			t.Fatalf("unmarshalling body: %v", err)
		}
		if updated.Title != "ML Intern" || updated.Company != "Kin Tech" {
			t.Errorf("updated = %+v", updated)
		}

		req, rec = newAuthRequest(http.MethodDelete, "/api/internships/"+inship.ID, adminToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("failed! code = %v; body = %v", rec.Code, rec.Body.String())
		}

		req, rec = newRequest(http.MethodGet, "/api/internships/"+inship.ID)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusNotFound)
		}
	})
}
