package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/trezcool/stagi/core/learning"
	testutil "github.com/trezcool/stagi/tests"
)

func Test_learningApi(t *testing.T) {
	resetDB(t)

	path := testutil.CreatePath(t, learnRepo, "Backend Onboarding", "Go basics", "APIs")
	_, candToken := createCandidate(t, "awe")
	intern, internToken := createIntern(t, "mdr")
	_, adminToken := createAdmin(t)

	t.Run("dashboard requires an intern", func(t *testing.T) {
		for _, tt := range []httpTest{
			{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
			{name: "candidate", token: candToken, wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		} {
			t.Run(tt.name, func(t *testing.T) {
				req, rec := newAuthRequest(http.MethodGet, "/api/learning/me", tt.token)
				app.ServeHTTP(rec, req)
				checkCodeAndData(t, tt, rec)
			})
		}
	})

	t.Run("no path assigned yet", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/learning/me", internToken)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "no learning path assigned"}),
		}, rec)
	})

	t.Run("assign requires admin", func(t *testing.T) {
		body := marchallObj(t, learning.AssignPath{UserID: intern.ID, PathID: path.ID})
		req, rec := newAuthRequest(http.MethodPost, "/api/learning/paths/assign", internToken, body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}, rec)
	})

	t.Run("assign and progress", func(t *testing.T) {
		body := marchallObj(t, learning.AssignPath{UserID: intern.ID, PathID: path.ID})
		req, rec := newAuthRequest(http.MethodPost, "/api/learning/paths/assign", adminToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; body = %v", rec.Code, rec.Body.String())
		}

		// assigning twice is a conflict
		req, rec = newAuthRequest(http.MethodPost, "/api/learning/paths/assign", adminToken, body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "a learning path is already assigned to this intern"}),
		}, rec)

		// the intern sees their path with zero progress
		req, rec = newAuthRequest(http.MethodGet, "/api/learning/me", internToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body = %v", rec.Code, rec.Body.String())
		}
		var prog learning.PathProgress
		if err := json.Unmarshal(rec.Body.Bytes(), &prog); err != nil {
			t.Fatalf("unmarshalling body: %v", err)
		}
		if prog.Path.ID != path.ID || prog.Percent != 0 {
			t.Errorf("progress = %+v, want path %v at 0%%", prog, path.ID)
		}
		if prog.Path.TaskCount() != 4 {
			t.Fatalf("TaskCount() = %v, want 4", prog.Path.TaskCount())
		}

		// tick a task off
		taskID := prog.Path.Modules[0].Tasks[0].ID
		req, rec = newAuthRequest(http.MethodPut, "/api/learning/me/tasks/"+taskID, internToken, []byte(`{"done": true}`))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body = %v", rec.Code, rec.Body.String())
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &prog); err != nil {
			t.Fatalf("unmarshalling body: %v", err)
		}
		if prog.Percent != 25 || !prog.Progress.IsTaskDone(taskID) {
			t.Errorf("progress = %+v, want 25%% with task done", prog)
		}

		// untick it
		req, rec = newAuthRequest(http.MethodPut, "/api/learning/me/tasks/"+taskID, internToken, []byte(`{"done": false}`))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body = %v", rec.Code, rec.Body.String())
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &prog); err != nil {
			t.Fatalf("unmarshalling body: %v", err)
		}
		if prog.Percent != 0 {
			t.Errorf("Percent = %v, want 0", prog.Percent)
		}

		// a task outside the assigned path 404s
		req, rec = newAuthRequest(http.MethodPut, "/api/learning/me/tasks/lol", internToken, []byte(`{"done": true}`))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "task not found"}),
		}, rec)
	})
}
