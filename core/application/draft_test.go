package application

import (
	"context"
	"testing"

	"github.com/pkg/errors"
)

// fillStep enters valid values for every required field of the draft's
// current step.
func fillStep(t *testing.T, d *Draft, values Values) {
	t.Helper()
	for _, fld := range d.CurrentStep().Fields {
		val, ok := values[fld.ID]
		if !ok {
			continue
		}
		if err := d.UpdateField(fld.ID, val); err != nil {
			t.Fatalf("UpdateField(%q) error = %v", fld.ID, err)
		}
	}
}

var validDraftValues = Values{
	"full_name":      "Awe Mdr",
	"email":          "awe@test.cd",
	"phone":          "+243970000000",
	"education":      "CS, Unikin",
	"experience":     "2 summers of Go",
	"why_interested": "I want to learn",
	"availability":   "June - September",
}

func TestNewDraft_defaultSchemaFallback(t *testing.T) {
	d := NewDraft(nil, "inship1")

	if d.InternshipID() != "inship1" {
		t.Errorf("InternshipID() = %v, want inship1", d.InternshipID())
	}
	if d.TotalSteps() != 3 {
		t.Errorf("TotalSteps() = %v, want 3", d.TotalSteps())
	}
	if d.Step() != 1 {
		t.Errorf("Step() = %v, want 1", d.Step())
	}
	if d.CurrentStep().ID != "default-details" {
		t.Errorf("CurrentStep().ID = %v, want default-details", d.CurrentStep().ID)
	}
	if d.Phase() != PhaseEditing {
		t.Errorf("Phase() = %v, want %v", d.Phase(), PhaseEditing)
	}
}

func TestNewDraft_sortsSchema(t *testing.T) {
	steps := []Step{
		{ID: "s2", Title: "Second", Position: 2},
		{ID: "s1", Title: "First", Position: 1, Fields: []Field{
			{ID: "f2", Label: "F2", Type: FieldShortText, Position: 2},
			{ID: "f1", Label: "F1", Type: FieldShortText, Position: 1},
		}},
	}
	d := NewDraft(steps, "inship1")

	if d.CurrentStep().ID != "s1" {
		t.Errorf("CurrentStep().ID = %v, want s1", d.CurrentStep().ID)
	}
	if flds := d.CurrentStep().Fields; flds[0].ID != "f1" || flds[1].ID != "f2" {
		t.Errorf("fields not ordered by position: %+v", flds)
	}
}

func TestDraft_UpdateField(t *testing.T) {
	steps := []Step{
		{ID: "s1", Title: "Step", Position: 1, Fields: []Field{
			{ID: "name", Label: "Name", Type: FieldShortText, Required: true, Position: 1},
			{ID: "blurb", Label: "About us", Type: FieldParagraph, Position: 2},
		}},
	}
	d := NewDraft(steps, "inship1")

	if err := d.UpdateField("name", "Awe"); err != nil {
		t.Errorf("UpdateField() error = %v", err)
	}
	if err := d.UpdateField("lol", "x"); err != ErrUnknownField {
		t.Errorf("UpdateField(unknown) error = %v, want %v", err, ErrUnknownField)
	}
	// non-input fields never take values
	if err := d.UpdateField("blurb", "x"); err != ErrUnknownField {
		t.Errorf("UpdateField(paragraph) error = %v, want %v", err, ErrUnknownField)
	}

	if got := d.Values()["name"]; got != "Awe" {
		t.Errorf("Values()[name] = %v, want Awe", got)
	}

	// Values returns a copy: mutating it leaves the draft untouched
	vals := d.Values()
	vals["name"] = "Mdr"
	if got := d.Values()["name"]; got != "Awe" {
		t.Errorf("Values()[name] = %v, want Awe", got)
	}
}

func TestDraft_Previous(t *testing.T) {
	d := NewDraft(nil, "inship1")

	// no-op at step 1
	if err := d.Previous(); err != nil {
		t.Errorf("Previous() error = %v", err)
	}
	if d.Step() != 1 {
		t.Errorf("Step() = %v, want 1", d.Step())
	}

	fillStep(t, d, validDraftValues)
	if _, err := d.Next(context.Background(), nil); err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if d.Step() != 2 {
		t.Fatalf("Step() = %v, want 2", d.Step())
	}

	// Previous never validates and preserves data
	if err := d.Previous(); err != nil {
		t.Errorf("Previous() error = %v", err)
	}
	if d.Step() != 1 {
		t.Errorf("Step() = %v, want 1", d.Step())
	}
	if got := d.Values()["full_name"]; got != "Awe Mdr" {
		t.Errorf("Values()[full_name] = %v, want Awe Mdr", got)
	}
}

func TestDraft_Next_blocksOnMissingRequired(t *testing.T) {
	d := NewDraft(nil, "inship1")

	fldErrs, err := d.Next(context.Background(), nil)
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if len(fldErrs) != 4 { // full_name, email, phone, education
		t.Errorf("len(fldErrs) = %v, want 4", len(fldErrs))
	}
	if d.Step() != 1 {
		t.Errorf("Step() = %v, want 1 (draft must stay put)", d.Step())
	}

	// a present but invalid value is also reported
	_ = d.UpdateField("email", "not-an-email")
	fldErrs, _ = d.Next(context.Background(), nil)
	var emailErr bool
	for _, fe := range fldErrs {
		if fe.Field == "email" {
			emailErr = true
		}
	}
	if !emailErr {
		t.Errorf("fldErrs = %+v, want an email error", fldErrs)
	}
}

func TestDraft_fullWalkAndSubmit(t *testing.T) {
	d := NewDraft(nil, "inship1")

	var submitted Values
	submit := func(ctx context.Context, values Values) error {
		if d.Phase() != PhaseSubmitting {
			t.Errorf("Phase() during submit = %v, want %v", d.Phase(), PhaseSubmitting)
		}
		submitted = values
		return nil
	}

	for step := 1; step <= d.TotalSteps(); step++ {
		fillStep(t, d, validDraftValues)
		fldErrs, err := d.Next(context.Background(), submit)
		if err != nil {
			t.Fatalf("Next() step %d error = %v", step, err)
		}
		if fldErrs != nil {
			t.Fatalf("Next() step %d fldErrs = %+v", step, fldErrs)
		}
	}

	if d.Phase() != PhaseSubmitted {
		t.Errorf("Phase() = %v, want %v", d.Phase(), PhaseSubmitted)
	}
	if submitted["full_name"] != "Awe Mdr" {
		t.Errorf("submitted[full_name] = %v, want Awe Mdr", submitted["full_name"])
	}
	if len(d.Values()) != 0 {
		t.Errorf("Values() = %+v, want empty after submission", d.Values())
	}

	// a submitted draft rejects any further transition
	if err := d.UpdateField("full_name", "x"); err != ErrAlreadySubmitted {
		t.Errorf("UpdateField() error = %v, want %v", err, ErrAlreadySubmitted)
	}
	if err := d.Previous(); err != ErrAlreadySubmitted {
		t.Errorf("Previous() error = %v, want %v", err, ErrAlreadySubmitted)
	}
	if _, err := d.Next(context.Background(), submit); err != ErrAlreadySubmitted {
		t.Errorf("Next() error = %v, want %v", err, ErrAlreadySubmitted)
	}
}

func TestDraft_failedSubmitRetainsValues(t *testing.T) {
	d := NewDraft(nil, "inship1")

	submitErr := errors.New("kaboom")
	failing := func(ctx context.Context, values Values) error { return submitErr }

	for step := 1; step <= d.TotalSteps(); step++ {
		fillStep(t, d, validDraftValues)
		if _, err := d.Next(context.Background(), failing); err != nil && err != submitErr {
			t.Fatalf("Next() step %d error = %v", step, err)
		}
	}

	if d.Phase() != PhaseFailed {
		t.Fatalf("Phase() = %v, want %v", d.Phase(), PhaseFailed)
	}
	if d.Err() != submitErr {
		t.Errorf("Err() = %v, want %v", d.Err(), submitErr)
	}
	// entered data survives the failure so the user may retry as-is
	if got := d.Values()["full_name"]; got != "Awe Mdr" {
		t.Errorf("Values()[full_name] = %v, want Awe Mdr", got)
	}

	// retreat into editing, then retry successfully
	if err := d.Previous(); err != nil {
		t.Fatalf("Previous() error = %v", err)
	}
	if d.Phase() != PhaseEditing {
		t.Errorf("Phase() = %v, want %v", d.Phase(), PhaseEditing)
	}
	if _, err := d.Next(context.Background(), nil); err != nil { // back to last step
		t.Fatalf("Next() error = %v", err)
	}
	ok := func(ctx context.Context, values Values) error { return nil }
	if _, err := d.Next(context.Background(), ok); err != nil {
		t.Fatalf("Next() retry error = %v", err)
	}
	if d.Phase() != PhaseSubmitted {
		t.Errorf("Phase() = %v, want %v", d.Phase(), PhaseSubmitted)
	}
	if d.Err() != nil {
		t.Errorf("Err() = %v, want nil", d.Err())
	}
}

func TestDraft_Reset(t *testing.T) {
	d := NewDraft(nil, "inship1")
	fillStep(t, d, validDraftValues)
	if _, err := d.Next(context.Background(), nil); err != nil {
		t.Fatalf("Next() error = %v", err)
	}

	d.Reset()

	if d.Step() != 1 {
		t.Errorf("Step() = %v, want 1", d.Step())
	}
	if len(d.Values()) != 0 {
		t.Errorf("Values() = %+v, want empty", d.Values())
	}
	if d.Phase() != PhaseEditing {
		t.Errorf("Phase() = %v, want %v", d.Phase(), PhaseEditing)
	}
}
