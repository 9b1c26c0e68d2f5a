package application

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/stagi/core"
	"github.com/trezcool/stagi/core/internship"
)

var (
	// errors
	ErrNotFound         = errors.New("application not found")
	ErrStepNotFound     = errors.New("step not found")
	ErrFieldNotFound    = errors.New("field not found")
	ErrInternshipClosed = errors.New("this internship is no longer accepting applications")
	ErrAlreadyApplied   = errors.New("you have already applied to this internship")
	ErrPositionTaken    = errors.New("this position is already taken")
)

type (
	Repository interface {
		// GetSteps returns the authored steps of an internship with their
		// fields, ordered by position.
		GetSteps(ctx context.Context, internshipID string, exec ...core.DBExecutor) ([]Step, error)
		GetStepByID(ctx context.Context, id string, exec ...core.DBExecutor) (Step, error)
		// CreateStep maps a (internship, position) conflict to ErrPositionTaken.
		CreateStep(ctx context.Context, step Step, exec ...core.DBExecutor) (Step, error)
		UpdateStep(ctx context.Context, step Step, exec ...core.DBExecutor) (Step, error)
		DeleteStepsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error)
		GetFieldByID(ctx context.Context, id string, exec ...core.DBExecutor) (Field, error)
		// CreateField maps a (step, position) conflict to ErrPositionTaken.
		CreateField(ctx context.Context, fld Field, exec ...core.DBExecutor) (Field, error)
		UpdateField(ctx context.Context, fld Field, exec ...core.DBExecutor) (Field, error)
		DeleteFieldsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error)

		// CreateApplication persists exactly one row; the storage layer holds
		// a uniqueness constraint on (applicant_id, internship_id) and a
		// violation of it is reported as ErrAlreadyApplied. This makes the
		// insert the authoritative duplicate check: the service's pre-check
		// alone would be vulnerable to a time-of-check/time-of-use race.
		CreateApplication(ctx context.Context, app Application, exec ...core.DBExecutor) (Application, error)
		ApplicationExists(ctx context.Context, applicantID, internshipID string, exec ...core.DBExecutor) (bool, error)
		GetApplicationByID(ctx context.Context, id string, exec ...core.DBExecutor) (Application, error)
		// QueryApplications applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of FullName or Email.
		QueryApplications(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Application, error)
		UpdateApplicationStatus(ctx context.Context, id string, status Status, exec ...core.DBExecutor) (Application, error)
	}

	Service interface {
		// GetSchema returns the ordered application flow of an internship,
		// falling back to DefaultSteps when none was authored.
		GetSchema(ctx context.Context, internshipID string) ([]Step, error)
		// Submit validates and persists a completed application.
		// Expected business outcomes are returned as sentinel errors
		// (internship.ErrNotFound, ErrInternshipClosed, ErrAlreadyApplied) or
		// a core.ValidationError; anything else is an infrastructure fault.
		Submit(ctx context.Context, applicantID string, sub SubmitApplication) (Application, error)
		GetByID(ctx context.Context, id string) (Application, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Application, error)
		UpdateStatus(ctx context.Context, id string, us UpdateStatus) (Application, error)

		CreateStep(ctx context.Context, internshipID string, ns NewStep) (Step, error)
		UpdateStep(ctx context.Context, id string, us UpdateStep) (Step, error)
		DeleteSteps(ctx context.Context, ids ...string) error
		CreateField(ctx context.Context, stepID string, nf NewField) (Field, error)
		UpdateField(ctx context.Context, id string, uf UpdateField) (Field, error)
		DeleteFields(ctx context.Context, ids ...string) error
	}

	service struct {
		db        core.DB
		repo      Repository
		inshipSvc internship.Service
		mailSvc   core.EmailService
	}
)

var _ Service = (*service)(nil)

func NewService(db core.DB, repo Repository, inshipSvc internship.Service, mailSvc core.EmailService) Service {
	return &service{
		db:        db,
		repo:      repo,
		inshipSvc: inshipSvc,
		mailSvc:   mailSvc,
	}
}

func (svc *service) GetSchema(ctx context.Context, internshipID string) ([]Step, error) {
	if _, err := svc.inshipSvc.GetByID(ctx, internshipID); err != nil {
		return nil, err
	}
	steps, err := svc.repo.GetSteps(ctx, internshipID)
	if err != nil {
		return nil, err
	}
	if len(steps) == 0 {
		// no custom flow authored for this internship
		return DefaultSteps(), nil
	}
	SortSteps(steps)
	return steps, nil
}

func (svc *service) Submit(ctx context.Context, applicantID string, sub SubmitApplication) (Application, error) {
	inship, err := svc.inshipSvc.GetByID(ctx, sub.InternshipID)
	if err != nil {
		return Application{}, err // internship.ErrNotFound
	}

	now := time.Now().UTC()
	if !inship.AcceptsApplications(now) {
		return Application{}, ErrInternshipClosed
	}

	exists, err := svc.repo.ApplicationExists(ctx, applicantID, sub.InternshipID)
	if err != nil {
		return Application{}, errors.Wrap(err, "checking existing application")
	}
	if exists {
		return Application{}, ErrAlreadyApplied
	}

	if err := sub.Validate(); err != nil {
		return Application{}, err
	}

	app := Application{
		ApplicantID:   applicantID,
		InternshipID:  sub.InternshipID,
		FullName:      sub.FullName,
		Email:         sub.Email,
		Phone:         sub.Phone,
		Education:     sub.Education,
		Experience:    sub.Experience,
		WhyInterested: sub.WhyInterested,
		Availability:  sub.Availability,
		ResumeURL:     sub.ResumeURL,
		CoverLetter:   sub.CoverLetter,
		LinkedinURL:   sub.LinkedinURL,
		GithubURL:     sub.GithubURL,
		Answers:       sub.Answers,
		Status:        StatusPending,
		SubmittedAt:   now,
		UpdatedAt:     now,
	}
	// the unique (applicant_id, internship_id) index backs the pre-check:
	// a concurrent duplicate surfaces here as ErrAlreadyApplied
	app, err = svc.repo.CreateApplication(ctx, app)
	if err != nil {
		return Application{}, err
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: app.FullName, Address: app.Email}},
		Subject:      "Application received: " + inship.Title,
		TemplateName: "application-received",
		TemplateData: struct {
			Application Application
			Internship  internship.Internship
		}{app, inship},
	})
	return app, nil
}

func (svc *service) GetByID(ctx context.Context, id string) (Application, error) {
	return svc.repo.GetApplicationByID(ctx, id)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Application, error) {
	if ordering == nil {
		ordering = []core.DBOrdering{{Field: "submitted_at"}}
	}
	return svc.repo.QueryApplications(ctx, filter, ordering)
}

func (svc *service) UpdateStatus(ctx context.Context, id string, us UpdateStatus) (Application, error) {
	if _, err := svc.repo.GetApplicationByID(ctx, id); err != nil {
		return Application{}, err
	}
	return svc.repo.UpdateApplicationStatus(ctx, id, us.Status)
}

func (svc *service) CreateStep(ctx context.Context, internshipID string, ns NewStep) (Step, error) {
	if _, err := svc.inshipSvc.GetByID(ctx, internshipID); err != nil {
		return Step{}, err
	}
	step := Step{
		InternshipID: internshipID,
		Title:        ns.Title,
		Intro:        ns.Intro,
		Position:     ns.Position,
	}
	return svc.createStep(ctx, step)
}

func (svc *service) createStep(ctx context.Context, step Step) (Step, error) {
	step, err := svc.repo.CreateStep(ctx, step)
	if errors.Cause(err) == ErrPositionTaken {
		return Step{}, core.NewValidationError(err, core.FieldError{Field: "position", Error: err.Error()})
	}
	return step, err
}

func (svc *service) UpdateStep(ctx context.Context, id string, us UpdateStep) (Step, error) {
	orig, err := svc.repo.GetStepByID(ctx, id)
	if err != nil {
		return Step{}, err
	}
	if err := us.Validate(orig); err != nil {
		return Step{}, err
	}
	orig.Title = us.Title
	orig.Intro = us.Intro
	orig.Position = us.Position
	step, err := svc.repo.UpdateStep(ctx, orig)
	if errors.Cause(err) == ErrPositionTaken {
		return Step{}, core.NewValidationError(err, core.FieldError{Field: "position", Error: err.Error()})
	}
	return step, err
}

func (svc *service) DeleteSteps(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteStepsByID(ctx, ids)
	return err
}

func (svc *service) CreateField(ctx context.Context, stepID string, nf NewField) (Field, error) {
	if _, err := svc.repo.GetStepByID(ctx, stepID); err != nil {
		return Field{}, err
	}
	fld := Field{
		StepID:      stepID,
		Label:       nf.Label,
		Type:        nf.Type,
		Required:    nf.Required && nf.Type.IsInput(),
		MustBeTrue:  nf.MustBeTrue,
		Position:    nf.Position,
		Options:     nf.Options,
		Placeholder: nf.Placeholder,
		HelpText:    nf.HelpText,
	}
	fld, err := svc.repo.CreateField(ctx, fld)
	if errors.Cause(err) == ErrPositionTaken {
		return Field{}, core.NewValidationError(err, core.FieldError{Field: "position", Error: err.Error()})
	}
	return fld, err
}

func (svc *service) UpdateField(ctx context.Context, id string, uf UpdateField) (Field, error) {
	orig, err := svc.repo.GetFieldByID(ctx, id)
	if err != nil {
		return Field{}, err
	}
	if err := uf.Validate(orig); err != nil {
		return Field{}, err
	}
	orig.Label = uf.Label
	if uf.Required != nil {
		orig.Required = *uf.Required && orig.Type.IsInput()
	}
	if uf.MustBeTrue != nil {
		orig.MustBeTrue = *uf.MustBeTrue && orig.Type == FieldCheckbox
	}
	orig.Position = uf.Position
	orig.Options = uf.Options
	orig.Placeholder = uf.Placeholder
	orig.HelpText = uf.HelpText
	fld, err := svc.repo.UpdateField(ctx, orig)
	if errors.Cause(err) == ErrPositionTaken {
		return Field{}, core.NewValidationError(err, core.FieldError{Field: "position", Error: err.Error()})
	}
	return fld, err
}

func (svc *service) DeleteFields(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteFieldsByID(ctx, ids)
	return err
}
