package application_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/stagi/core"
	"github.com/trezcool/stagi/core/application"
	"github.com/trezcool/stagi/core/internship"
	emailsvc "github.com/trezcool/stagi/services/email"
	dummydb "github.com/trezcool/stagi/storage/database/dummy"
	testutil "github.com/trezcool/stagi/tests"
)

func setup(t *testing.T) (*dummydb.DB, application.Service, internship.Repository, application.Repository) {
	db := testutil.OpenDB(t)
	inshipRepo := dummydb.NewInternshipRepository(db)
	appRepo := dummydb.NewApplicationRepository(db)
	inshipSvc := internship.NewService(nil, inshipRepo)
	appSvc := application.NewService(nil, appRepo, inshipSvc, emailsvc.NewConsoleServiceMock())
	return db, appSvc, inshipRepo, appRepo
}

func TestService_Submit(t *testing.T) {
	_, svc, inshipRepo, appRepo := setup(t)
	ctx := context.Background()

	open := testutil.CreateInternship(t, inshipRepo, "Backend Intern", "Kin Tech", true)
	closed := testutil.CreateInternship(t, inshipRepo, "Data Intern", "Kin Tech", false)

	countApps := func() int {
		apps, err := appRepo.QueryApplications(ctx, nil, nil)
		if err != nil {
			t.Fatalf("QueryApplications() failed: %v", err)
		}
		return len(apps)
	}

	// unknown internship
	if _, err := svc.Submit(ctx, "usr1", testutil.SubmitPayload("lol")); errors.Cause(err) != internship.ErrNotFound {
		t.Errorf("Submit() error = %v, want %v", err, internship.ErrNotFound)
	}

	// closed internship
	if _, err := svc.Submit(ctx, "usr1", testutil.SubmitPayload(closed.ID)); errors.Cause(err) != application.ErrInternshipClosed {
		t.Errorf("Submit() error = %v, want %v", err, application.ErrInternshipClosed)
	}

	// incomplete payload
	sub := testutil.SubmitPayload(open.ID)
	sub.Email = ""
	sub.Phone = "abc"
	if _, err := svc.Submit(ctx, "usr1", sub); err == nil {
		t.Errorf("Submit() = nil, want a validation error")
	}

	// no row may exist after any failed precondition
	if n := countApps(); n != 0 {
		t.Fatalf("countApps() = %v, want 0", n)
	}

	// happy path
	app, err := svc.Submit(ctx, "usr1", testutil.SubmitPayload(open.ID))
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if app.ID == "" {
		t.Errorf("Submit() returned an application without an ID")
	}
	if app.Status != application.StatusPending {
		t.Errorf("Status = %v, want %v", app.Status, application.StatusPending)
	}
	if app.SubmittedAt.IsZero() {
		t.Errorf("SubmittedAt is zero")
	}

	// second attempt by the same applicant
	if _, err := svc.Submit(ctx, "usr1", testutil.SubmitPayload(open.ID)); errors.Cause(err) != application.ErrAlreadyApplied {
		t.Errorf("Submit() error = %v, want %v", err, application.ErrAlreadyApplied)
	}
	// another applicant is fine
	if _, err := svc.Submit(ctx, "usr2", testutil.SubmitPayload(open.ID)); err != nil {
		t.Errorf("Submit() error = %v", err)
	}
	if n := countApps(); n != 2 {
		t.Errorf("countApps() = %v, want 2", n)
	}
}

func TestService_Submit_deadlinePassed(t *testing.T) {
	_, svc, inshipRepo, _ := setup(t)
	ctx := context.Background()

	past := testutil.CreateInternship(t, inshipRepo, "Late Intern", "Kin Tech", true, yesterday())
	if _, err := svc.Submit(ctx, "usr1", testutil.SubmitPayload(past.ID)); errors.Cause(err) != application.ErrInternshipClosed {
		t.Errorf("Submit() error = %v, want %v", err, application.ErrInternshipClosed)
	}
}

// Two concurrent submissions for the same (applicant, internship) pair must
// yield exactly one stored application; the storage uniqueness constraint is
// the tie-breaker.
func TestService_Submit_concurrentDuplicate(t *testing.T) {
	_, svc, inshipRepo, appRepo := setup(t)
	ctx := context.Background()

	inship := testutil.CreateInternship(t, inshipRepo, "Backend Intern", "Kin Tech", true)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Submit(ctx, "usr1", testutil.SubmitPayload(inship.ID))
		}(i)
	}
	wg.Wait()

	var succeeded, duplicated int
	for _, err := range errs {
		switch errors.Cause(err) {
		case nil:
			succeeded++
		case application.ErrAlreadyApplied:
			duplicated++
		default:
			t.Errorf("Submit() unexpected error = %v", err)
		}
	}
	if succeeded != 1 || duplicated != 1 {
		t.Errorf("succeeded = %v, duplicated = %v; want 1 and 1", succeeded, duplicated)
	}

	apps, err := appRepo.QueryApplications(ctx, nil, nil)
	if err != nil {
		t.Fatalf("QueryApplications() failed: %v", err)
	}
	if len(apps) != 1 {
		t.Errorf("len(apps) = %v, want 1", len(apps))
	}
}

func TestService_GetSchema(t *testing.T) {
	_, svc, inshipRepo, appRepo := setup(t)
	ctx := context.Background()

	inship := testutil.CreateInternship(t, inshipRepo, "Backend Intern", "Kin Tech", true)

	// unknown internship
	if _, err := svc.GetSchema(ctx, "lol"); errors.Cause(err) != internship.ErrNotFound {
		t.Errorf("GetSchema() error = %v, want %v", err, internship.ErrNotFound)
	}

	// no authored steps: default flow
	steps, err := svc.GetSchema(ctx, inship.ID)
	if err != nil {
		t.Fatalf("GetSchema() error = %v", err)
	}
	if len(steps) != 3 || steps[0].ID != "default-details" {
		t.Errorf("GetSchema() = %+v, want the default flow", steps)
	}

	// authored steps win, ordered by position
	testutil.CreateStep(t, appRepo, inship.ID, "Second", 2)
	testutil.CreateStep(t, appRepo, inship.ID, "First", 1,
		application.Field{Label: "Name", Type: application.FieldShortText, Required: true, Position: 1},
	)
	steps, err = svc.GetSchema(ctx, inship.ID)
	if err != nil {
		t.Fatalf("GetSchema() error = %v", err)
	}
	if len(steps) != 2 {
		t.Fatalf("len(steps) = %v, want 2", len(steps))
	}
	if steps[0].Title != "First" || steps[1].Title != "Second" {
		t.Errorf("steps out of order: %q, %q", steps[0].Title, steps[1].Title)
	}
	if len(steps[0].Fields) != 1 {
		t.Errorf("len(steps[0].Fields) = %v, want 1", len(steps[0].Fields))
	}
}

func TestService_stepAndFieldCRUD(t *testing.T) {
	_, svc, inshipRepo, _ := setup(t)
	ctx := context.Background()

	inship := testutil.CreateInternship(t, inshipRepo, "Backend Intern", "Kin Tech", true)

	// steps
	if _, err := svc.CreateStep(ctx, "lol", application.NewStep{Title: "One", Position: 1}); errors.Cause(err) != internship.ErrNotFound {
		t.Errorf("CreateStep() error = %v, want %v", err, internship.ErrNotFound)
	}
	step1, err := svc.CreateStep(ctx, inship.ID, application.NewStep{Title: "One", Position: 1})
	if err != nil {
		t.Fatalf("CreateStep() error = %v", err)
	}
	step2, err := svc.CreateStep(ctx, inship.ID, application.NewStep{Title: "Two", Position: 2})
	if err != nil {
		t.Fatalf("CreateStep() error = %v", err)
	}

	// duplicate step position is a field-level validation error
	_, err = svc.CreateStep(ctx, inship.ID, application.NewStep{Title: "Sneaky", Position: 1})
	assertPositionTaken(t, err)
	_, err = svc.UpdateStep(ctx, step2.ID, application.UpdateStep{Position: 1})
	assertPositionTaken(t, err)

	// renaming in place is fine
	step2, err = svc.UpdateStep(ctx, step2.ID, application.UpdateStep{Title: "Deux"})
	if err != nil {
		t.Fatalf("UpdateStep() error = %v", err)
	}
	if step2.Title != "Deux" || step2.Position != 2 {
		t.Errorf("UpdateStep() = %+v", step2)
	}

	// fields
	if _, err := svc.CreateField(ctx, "lol", application.NewField{Label: "Name", Type: application.FieldShortText, Position: 1}); errors.Cause(err) != application.ErrStepNotFound {
		t.Errorf("CreateField() error = %v, want %v", err, application.ErrStepNotFound)
	}
	fld1, err := svc.CreateField(ctx, step1.ID, application.NewField{Label: "Name", Type: application.FieldShortText, Required: true, Position: 1})
	if err != nil {
		t.Fatalf("CreateField() error = %v", err)
	}
	_, err = svc.CreateField(ctx, step1.ID, application.NewField{Label: "Twin", Type: application.FieldShortText, Position: 1})
	assertPositionTaken(t, err)

	// required-ness is dropped for non-input types
	heading, err := svc.CreateField(ctx, step1.ID, application.NewField{Label: "About", Type: application.FieldHeading, Required: true, Position: 2})
	if err != nil {
		t.Fatalf("CreateField() error = %v", err)
	}
	if heading.Required {
		t.Errorf("heading.Required = true, want false")
	}

	fld1, err = svc.UpdateField(ctx, fld1.ID, application.UpdateField{Label: "Full name"})
	if err != nil {
		t.Fatalf("UpdateField() error = %v", err)
	}
	if fld1.Label != "Full name" || !fld1.Required {
		t.Errorf("UpdateField() = %+v", fld1)
	}

	// deletion cascades from step to its fields
	if err := svc.DeleteSteps(ctx, step1.ID); err != nil {
		t.Fatalf("DeleteSteps() error = %v", err)
	}
	steps, err := svc.GetSchema(ctx, inship.ID)
	if err != nil {
		t.Fatalf("GetSchema() error = %v", err)
	}
	if len(steps) != 1 || steps[0].ID != step2.ID {
		t.Errorf("GetSchema() = %+v, want only step two", steps)
	}
}

func TestService_UpdateStatus(t *testing.T) {
	_, svc, inshipRepo, _ := setup(t)
	ctx := context.Background()

	inship := testutil.CreateInternship(t, inshipRepo, "Backend Intern", "Kin Tech", true)
	app, err := svc.Submit(ctx, "usr1", testutil.SubmitPayload(inship.ID))
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if _, err := svc.UpdateStatus(ctx, "lol", application.UpdateStatus{Status: application.StatusReviewing}); errors.Cause(err) != application.ErrNotFound {
		t.Errorf("UpdateStatus() error = %v, want %v", err, application.ErrNotFound)
	}

	app, err = svc.UpdateStatus(ctx, app.ID, application.UpdateStatus{Status: application.StatusAccepted})
	if err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	if app.Status != application.StatusAccepted {
		t.Errorf("Status = %v, want %v", app.Status, application.StatusAccepted)
	}
}

func assertPositionTaken(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatalf("want %v, got nil", application.ErrPositionTaken)
	}
	vErr, ok := err.(*core.ValidationError)
	if !ok {
		t.Fatalf("error = %T (%v), want *core.ValidationError", err, err)
	}
	if len(vErr.Fields) != 1 || vErr.Fields[0].Field != "position" {
		t.Errorf("Fields = %+v, want a position error", vErr.Fields)
	}
}

func yesterday() time.Time {
	return time.Now().UTC().Add(-24 * time.Hour)
}
