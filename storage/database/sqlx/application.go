package sqlxrepos

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/stagi/core"
	"github.com/trezcool/stagi/core/application"
)

type stepRow struct {
	ID           string      `db:"id"`
	InternshipID string      `db:"internship_id"`
	Title        string      `db:"title"`
	Intro        null.String `db:"intro"`
	Position     int         `db:"position"`
}

func packStep(step application.Step) stepRow {
	return stepRow{
		ID:           step.ID,
		InternshipID: step.InternshipID,
		Title:        step.Title,
		Intro:        null.NewString(step.Intro, step.Intro != ""),
		Position:     step.Position,
	}
}

func (row stepRow) unpack() application.Step {
	return application.Step{
		ID:           row.ID,
		InternshipID: row.InternshipID,
		Title:        row.Title,
		Intro:        row.Intro.String,
		Position:     row.Position,
	}
}

type fieldRow struct {
	ID          string         `db:"id"`
	StepID      string         `db:"step_id"`
	Label       string         `db:"label"`
	Type        string         `db:"type"`
	Required    bool           `db:"required"`
	MustBeTrue  bool           `db:"must_be_true"`
	Position    int            `db:"position"`
	Options     pq.StringArray `db:"options"`
	Placeholder null.String    `db:"placeholder"`
	HelpText    null.String    `db:"help_text"`
}

func packField(fld application.Field) fieldRow {
	return fieldRow{
		ID:          fld.ID,
		StepID:      fld.StepID,
		Label:       fld.Label,
		Type:        string(fld.Type),
		Required:    fld.Required,
		MustBeTrue:  fld.MustBeTrue,
		Position:    fld.Position,
		Options:     fld.Options,
		Placeholder: null.NewString(fld.Placeholder, fld.Placeholder != ""),
		HelpText:    null.NewString(fld.HelpText, fld.HelpText != ""),
	}
}

func (row fieldRow) unpack() application.Field {
	return application.Field{
		ID:          row.ID,
		StepID:      row.StepID,
		Label:       row.Label,
		Type:        application.FieldType(row.Type),
		Required:    row.Required,
		MustBeTrue:  row.MustBeTrue,
		Position:    row.Position,
		Options:     row.Options,
		Placeholder: row.Placeholder.String,
		HelpText:    row.HelpText.String,
	}
}

type applicationRow struct {
	ID            string         `db:"id"`
	ApplicantID   string         `db:"applicant_id"`
	InternshipID  string         `db:"internship_id"`
	FullName      string         `db:"full_name"`
	Email         string         `db:"email"`
	Phone         string         `db:"phone"`
	Education     string         `db:"education"`
	Experience    string         `db:"experience"`
	WhyInterested string         `db:"why_interested"`
	Availability  string         `db:"availability"`
	ResumeURL     null.String    `db:"resume_url"`
	CoverLetter   null.String    `db:"cover_letter"`
	LinkedinURL   null.String    `db:"linkedin_url"`
	GithubURL     null.String    `db:"github_url"`
	Answers       types.JSONText `db:"answers"`
	Status        string         `db:"status"`
	SubmittedAt   null.Time      `db:"submitted_at"`
	UpdatedAt     null.Time      `db:"updated_at"`
}

func packApplication(app application.Application) (applicationRow, error) {
	row := applicationRow{
		ID:            app.ID,
		ApplicantID:   app.ApplicantID,
		InternshipID:  app.InternshipID,
		FullName:      app.FullName,
		Email:         app.Email,
		Phone:         app.Phone,
		Education:     app.Education,
		Experience:    app.Experience,
		WhyInterested: app.WhyInterested,
		Availability:  app.Availability,
		ResumeURL:     null.NewString(app.ResumeURL, app.ResumeURL != ""),
		CoverLetter:   null.NewString(app.CoverLetter, app.CoverLetter != ""),
		LinkedinURL:   null.NewString(app.LinkedinURL, app.LinkedinURL != ""),
		GithubURL:     null.NewString(app.GithubURL, app.GithubURL != ""),
		Status:        string(app.Status),
		SubmittedAt:   null.NewTime(app.SubmittedAt.UTC(), !app.SubmittedAt.IsZero()),
		UpdatedAt:     null.NewTime(app.UpdatedAt.UTC(), !app.UpdatedAt.IsZero()),
	}
	if app.Answers != nil {
		answers, err := json.Marshal(app.Answers)
		if err != nil {
			return applicationRow{}, errors.Wrap(err, "marshalling answers")
		}
		row.Answers = answers
	}
	return row, nil
}

func (row applicationRow) unpack() (application.Application, error) {
	app := application.Application{
		ID:            row.ID,
		ApplicantID:   row.ApplicantID,
		InternshipID:  row.InternshipID,
		FullName:      row.FullName,
		Email:         row.Email,
		Phone:         row.Phone,
		Education:     row.Education,
		Experience:    row.Experience,
		WhyInterested: row.WhyInterested,
		Availability:  row.Availability,
		ResumeURL:     row.ResumeURL.String,
		CoverLetter:   row.CoverLetter.String,
		LinkedinURL:   row.LinkedinURL.String,
		GithubURL:     row.GithubURL.String,
		Status:        application.Status(row.Status),
		SubmittedAt:   row.SubmittedAt.Time,
		UpdatedAt:     row.UpdatedAt.Time,
	}
	if len(row.Answers) > 0 {
		if err := json.Unmarshal(row.Answers, &app.Answers); err != nil {
			return application.Application{}, errors.Wrap(err, "unmarshalling answers")
		}
	}
	return app, nil
}

type applicationRepository struct {
	db *sqlx.DB
}

var _ application.Repository = (*applicationRepository)(nil) // interface compliance check

func NewApplicationRepository(db *sqlx.DB) *applicationRepository {
	return &applicationRepository{db: db}
}

func (repo applicationRepository) GetSteps(ctx context.Context, internshipID string, exec ...core.DBExecutor) ([]application.Step, error) {
	exe := getExec(repo.db, exec)

	var stepRows []stepRow
	q := `SELECT * FROM application_step WHERE internship_id = $1 ORDER BY position`
	if err := sqlx.SelectContext(ctx, exe, &stepRows, q, internshipID); err != nil {
		return nil, errors.Wrap(err, "querying steps")
	}
	if len(stepRows) == 0 {
		return nil, nil
	}

	var fieldRows []fieldRow
	q = `
SELECT * FROM application_field
WHERE step_id IN (SELECT id FROM application_step WHERE internship_id = $1)
ORDER BY position`
	if err := sqlx.SelectContext(ctx, exe, &fieldRows, q, internshipID); err != nil {
		return nil, errors.Wrap(err, "querying fields")
	}

	fieldsByStep := make(map[string][]application.Field, len(stepRows))
	for _, row := range fieldRows {
		fieldsByStep[row.StepID] = append(fieldsByStep[row.StepID], row.unpack())
	}
	steps := make([]application.Step, 0, len(stepRows))
	for _, row := range stepRows {
		step := row.unpack()
		step.Fields = fieldsByStep[step.ID]
		steps = append(steps, step)
	}
	return steps, nil
}

func (repo applicationRepository) GetStepByID(ctx context.Context, id string, exec ...core.DBExecutor) (application.Step, error) {
	if _, err := uuid.Parse(id); err != nil {
		return application.Step{}, application.ErrStepNotFound
	}
	exe := getExec(repo.db, exec)

	var row stepRow
	if err := sqlx.GetContext(ctx, exe, &row, `SELECT * FROM application_step WHERE id = $1`, id); err != nil {
		return application.Step{}, trapNoRowsErr(err, application.ErrStepNotFound, "finding step")
	}
	step := row.unpack()

	var fieldRows []fieldRow
	q := `SELECT * FROM application_field WHERE step_id = $1 ORDER BY position`
	if err := sqlx.SelectContext(ctx, exe, &fieldRows, q, id); err != nil {
		return application.Step{}, errors.Wrap(err, "querying fields")
	}
	for _, fldRow := range fieldRows {
		step.Fields = append(step.Fields, fldRow.unpack())
	}
	return step, nil
}

func (repo applicationRepository) CreateStep(ctx context.Context, step application.Step, exec ...core.DBExecutor) (application.Step, error) {
	step.ID = uuid.New().String()
	row := packStep(step)
	q := `INSERT INTO application_step (id, internship_id, title, intro, position) VALUES ($1, $2, $3, $4, $5)`
	_, err := getExec(repo.db, exec).ExecContext(ctx, q, row.ID, row.InternshipID, row.Title, row.Intro, row.Position)
	if err != nil {
		if isUniqueViolation(err, "application_step_internship_id_position_key") {
			return application.Step{}, application.ErrPositionTaken
		}
		return application.Step{}, errors.Wrap(err, "inserting step")
	}
	return row.unpack(), nil
}

func (repo applicationRepository) UpdateStep(ctx context.Context, step application.Step, exec ...core.DBExecutor) (application.Step, error) {
	row := packStep(step)
	q := `UPDATE application_step SET title = $2, intro = $3, position = $4 WHERE id = $1 RETURNING *`
	var updated stepRow
	err := sqlx.GetContext(ctx, getExec(repo.db, exec), &updated, q, row.ID, row.Title, row.Intro, row.Position)
	if err != nil {
		if isUniqueViolation(err, "application_step_internship_id_position_key") {
			return application.Step{}, application.ErrPositionTaken
		}
		return application.Step{}, trapNoRowsErr(err, application.ErrStepNotFound, "updating step")
	}
	return updated.unpack(), nil
}

func (repo applicationRepository) DeleteStepsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	res, err := getExec(repo.db, exec).ExecContext(ctx, `DELETE FROM application_step WHERE id = ANY($1)`, pq.StringArray(ids))
	if err != nil {
		return 0, errors.Wrap(err, "deleting steps")
	}
	cnt, _ := res.RowsAffected()
	return int(cnt), nil
}

func (repo applicationRepository) GetFieldByID(ctx context.Context, id string, exec ...core.DBExecutor) (application.Field, error) {
	if _, err := uuid.Parse(id); err != nil {
		return application.Field{}, application.ErrFieldNotFound
	}
	var row fieldRow
	if err := sqlx.GetContext(ctx, getExec(repo.db, exec), &row, `SELECT * FROM application_field WHERE id = $1`, id); err != nil {
		return application.Field{}, trapNoRowsErr(err, application.ErrFieldNotFound, "finding field")
	}
	return row.unpack(), nil
}

func (repo applicationRepository) CreateField(ctx context.Context, fld application.Field, exec ...core.DBExecutor) (application.Field, error) {
	fld.ID = uuid.New().String()
	row := packField(fld)
	q := `
INSERT INTO application_field (id, step_id, label, type, required, must_be_true, position, options, placeholder, help_text)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := getExec(repo.db, exec).ExecContext(ctx, q,
		row.ID, row.StepID, row.Label, row.Type, row.Required, row.MustBeTrue,
		row.Position, row.Options, row.Placeholder, row.HelpText,
	)
	if err != nil {
		if isUniqueViolation(err, "application_field_step_id_position_key") {
			return application.Field{}, application.ErrPositionTaken
		}
		return application.Field{}, errors.Wrap(err, "inserting field")
	}
	return row.unpack(), nil
}

func (repo applicationRepository) UpdateField(ctx context.Context, fld application.Field, exec ...core.DBExecutor) (application.Field, error) {
	row := packField(fld)
	q := `
UPDATE application_field SET
    label        = $2,
    required     = $3,
    must_be_true = $4,
    position     = $5,
    options      = $6,
    placeholder  = $7,
    help_text    = $8
WHERE id = $1
RETURNING *`
	var updated fieldRow
	err := sqlx.GetContext(ctx, getExec(repo.db, exec), &updated, q,
		row.ID, row.Label, row.Required, row.MustBeTrue, row.Position,
		row.Options, row.Placeholder, row.HelpText,
	)
	if err != nil {
		if isUniqueViolation(err, "application_field_step_id_position_key") {
			return application.Field{}, application.ErrPositionTaken
		}
		return application.Field{}, trapNoRowsErr(err, application.ErrFieldNotFound, "updating field")
	}
	return updated.unpack(), nil
}

func (repo applicationRepository) DeleteFieldsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	res, err := getExec(repo.db, exec).ExecContext(ctx, `DELETE FROM application_field WHERE id = ANY($1)`, pq.StringArray(ids))
	if err != nil {
		return 0, errors.Wrap(err, "deleting fields")
	}
	cnt, _ := res.RowsAffected()
	return int(cnt), nil
}

func (repo applicationRepository) CreateApplication(ctx context.Context, app application.Application, exec ...core.DBExecutor) (application.Application, error) {
	app.ID = uuid.New().String()
	row, err := packApplication(app)
	if err != nil {
		return application.Application{}, err
	}
	q := `
INSERT INTO application (id, applicant_id, internship_id, full_name, email, phone, education, experience,
                         why_interested, availability, resume_url, cover_letter, linkedin_url, github_url,
                         answers, status, submitted_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err = getExec(repo.db, exec).ExecContext(ctx, q,
		row.ID, row.ApplicantID, row.InternshipID, row.FullName, row.Email, row.Phone,
		row.Education, row.Experience, row.WhyInterested, row.Availability,
		row.ResumeURL, row.CoverLetter, row.LinkedinURL, row.GithubURL,
		row.Answers, row.Status, row.SubmittedAt, row.UpdatedAt,
	)
	if err != nil {
		// one application per (applicant, internship); the unique index is
		// the authoritative duplicate check
		if isUniqueViolation(err, "application_applicant_id_internship_id_key") {
			return application.Application{}, application.ErrAlreadyApplied
		}
		return application.Application{}, errors.Wrap(err, "inserting application")
	}
	return row.unpack()
}

func (repo applicationRepository) ApplicationExists(ctx context.Context, applicantID, internshipID string, exec ...core.DBExecutor) (bool, error) {
	var exists bool
	q := `SELECT EXISTS (SELECT 1 FROM application WHERE applicant_id = $1 AND internship_id = $2)`
	if err := sqlx.GetContext(ctx, getExec(repo.db, exec), &exists, q, applicantID, internshipID); err != nil {
		return false, errors.Wrap(err, "checking application existence")
	}
	return exists, nil
}

func (repo applicationRepository) GetApplicationByID(ctx context.Context, id string, exec ...core.DBExecutor) (application.Application, error) {
	if _, err := uuid.Parse(id); err != nil {
		return application.Application{}, application.ErrNotFound
	}
	var row applicationRow
	if err := sqlx.GetContext(ctx, getExec(repo.db, exec), &row, `SELECT * FROM application WHERE id = $1`, id); err != nil {
		return application.Application{}, trapNoRowsErr(err, application.ErrNotFound, "finding application")
	}
	return row.unpack()
}

func (repo applicationRepository) QueryApplications(ctx context.Context, filter *application.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]application.Application, error) {
	q := `SELECT * FROM application WHERE true`
	var args []interface{}
	arg := func(val interface{}) string {
		args = append(args, val)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter != nil {
		if filter.InternshipID != "" {
			q += fmt.Sprintf(" AND internship_id = %s", arg(filter.InternshipID))
		}
		if filter.ApplicantID != "" {
			q += fmt.Sprintf(" AND applicant_id = %s", arg(filter.ApplicantID))
		}
		if filter.Status != "" {
			q += fmt.Sprintf(" AND status = %s", arg(string(filter.Status)))
		}
		// applications with FullName or Email matching the search keyword
		if filter.Search != "" {
			val := arg("%" + filter.Search + "%")
			q += fmt.Sprintf(" AND (full_name ILIKE %[1]s OR email ILIKE %[1]s)", val)
		}
	}
	q += orderBy(ordering)

	var rows []applicationRow
	if err := sqlx.SelectContext(ctx, getExec(repo.db, exec), &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying applications")
	}
	apps := make([]application.Application, 0, len(rows))
	for _, row := range rows {
		app, err := row.unpack()
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, nil
}

func (repo applicationRepository) UpdateApplicationStatus(ctx context.Context, id string, status application.Status, exec ...core.DBExecutor) (application.Application, error) {
	q := `UPDATE application SET status = $2, updated_at = NOW() WHERE id = $1 RETURNING *`
	var row applicationRow
	if err := sqlx.GetContext(ctx, getExec(repo.db, exec), &row, q, id, string(status)); err != nil {
		return application.Application{}, trapNoRowsErr(err, application.ErrNotFound, "updating application status")
	}
	return row.unpack()
}
