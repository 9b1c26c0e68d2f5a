package application

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/stagi/core"
)

// Draft phases. A draft spends its life in PhaseEditing stepping through the
// schema; the submission round trip is the only suspension point.
type Phase string

const (
	PhaseEditing    Phase = "editing"
	PhaseSubmitting Phase = "submitting"
	PhaseSubmitted  Phase = "submitted"
	PhaseFailed     Phase = "failed"
)

var (
	ErrSubmissionPending = errors.New("a submission is already in progress")
	ErrAlreadySubmitted  = errors.New("this application has already been submitted")
	ErrUnknownField      = errors.New("unknown field")
)

// SubmitFunc performs the actual submission of the accumulated values.
type SubmitFunc func(ctx context.Context, values Values) error

// Draft is the transient, per-session state of an in-progress application
// form. It is an explicitly scoped value owned by exactly one actor: create
// one per session with NewDraft and drive it through its transitions; it holds
// no package-level state so concurrent sessions cannot cross-contaminate.
type Draft struct {
	internshipID string
	steps        []Step
	step         int // 1-based; invariant: 1 <= step <= len(steps)
	values       Values
	phase        Phase
	submitErr    error
}

// NewDraft starts a draft at step 1 with no values. An empty schema falls
// back to DefaultSteps.
func NewDraft(steps []Step, internshipID string) *Draft {
	if len(steps) == 0 {
		steps = DefaultSteps()
	}
	SortSteps(steps)
	return &Draft{
		internshipID: internshipID,
		steps:        steps,
		step:         1,
		values:       make(Values),
		phase:        PhaseEditing,
	}
}

func (d *Draft) InternshipID() string { return d.internshipID }
func (d *Draft) Step() int            { return d.step }
func (d *Draft) TotalSteps() int      { return len(d.steps) }
func (d *Draft) CurrentStep() Step    { return d.steps[d.step-1] }
func (d *Draft) Phase() Phase         { return d.phase }

// Err returns the submission error retained by a failed draft.
func (d *Draft) Err() error { return d.submitErr }

// Values returns a copy of the entered values.
func (d *Draft) Values() Values {
	vals := make(Values, len(d.values))
	for k, v := range d.values {
		vals[k] = v
	}
	return vals
}

// UpdateField merges one field's value into the draft without changing step.
// It never validates; errors surface only on an attempted advance.
func (d *Draft) UpdateField(fieldID string, val interface{}) error {
	if err := d.checkEditable(); err != nil {
		return err
	}
	for _, step := range d.steps {
		for _, fld := range step.Fields {
			if fld.ID == fieldID && fld.Type.IsInput() {
				d.values[fieldID] = val
				return nil
			}
		}
	}
	return ErrUnknownField
}

// Previous retreats one step. It never validates and preserves entered data;
// from step 1 it is a no-op. A failed submission retreats back into editing.
func (d *Draft) Previous() error {
	if err := d.checkEditable(); err != nil {
		return err
	}
	d.phase = PhaseEditing
	if d.step > 1 {
		d.step--
	}
	return nil
}

// Next advances to the following step if the current step's required fields
// validate; field errors are returned as a normal result and the draft stays
// put. From the final step, Next instead submits: the draft enters
// PhaseSubmitting (rejecting all other transitions), invokes `submit`, then
// lands in PhaseSubmitted (values discarded) or PhaseFailed (error retained,
// values preserved so the user may retry without re-entering data).
func (d *Draft) Next(ctx context.Context, submit SubmitFunc) ([]core.FieldError, error) {
	if err := d.checkEditable(); err != nil {
		return nil, err
	}
	d.phase = PhaseEditing

	if fldErrs := ValidateStep(d.CurrentStep(), d.values); fldErrs != nil {
		return fldErrs, nil
	}

	if d.step < len(d.steps) {
		d.step++
		return nil, nil
	}

	// past the last step: submit
	d.phase = PhaseSubmitting
	if err := submit(ctx, d.Values()); err != nil {
		d.phase = PhaseFailed
		d.submitErr = err
		return nil, err
	}
	d.phase = PhaseSubmitted
	d.submitErr = nil
	d.values = make(Values)
	return nil, nil
}

// Reset returns to step 1 with an empty value map, from any state.
func (d *Draft) Reset() {
	d.step = 1
	d.values = make(Values)
	d.phase = PhaseEditing
	d.submitErr = nil
}

func (d *Draft) checkEditable() error {
	switch d.phase {
	case PhaseSubmitting:
		return ErrSubmissionPending
	case PhaseSubmitted:
		return ErrAlreadySubmitted
	}
	return nil
}
