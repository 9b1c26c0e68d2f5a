package sqlxrepos

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/stagi/core"
	"github.com/trezcool/stagi/core/internship"
)

type internshipRow struct {
	ID           string      `db:"id"`
	Title        string      `db:"title"`
	Company      string      `db:"company"`
	Location     null.String `db:"location"`
	Description  null.String `db:"description"`
	Requirements null.String `db:"requirements"`
	Duration     null.String `db:"duration"`
	IsOpen       null.Bool   `db:"is_open"`
	Deadline     null.Time   `db:"deadline"`
	CreatedAt    null.Time   `db:"created_at"`
	UpdatedAt    null.Time   `db:"updated_at"`
}

func packInternship(inship internship.Internship) internshipRow {
	return internshipRow{
		ID:           inship.ID,
		Title:        inship.Title,
		Company:      inship.Company,
		Location:     null.NewString(inship.Location, inship.Location != ""),
		Description:  null.NewString(inship.Description, inship.Description != ""),
		Requirements: null.NewString(inship.Requirements, inship.Requirements != ""),
		Duration:     null.NewString(inship.Duration, inship.Duration != ""),
		IsOpen:       null.BoolFromPtr(inship.IsOpen),
		Deadline:     null.NewTime(inship.Deadline.UTC(), !inship.Deadline.IsZero()),
		CreatedAt:    null.NewTime(inship.CreatedAt.UTC(), !inship.CreatedAt.IsZero()),
		UpdatedAt:    null.NewTime(inship.UpdatedAt.UTC(), !inship.UpdatedAt.IsZero()),
	}
}

func (row internshipRow) unpack() internship.Internship {
	return internship.Internship{
		ID:           row.ID,
		Title:        row.Title,
		Company:      row.Company,
		Location:     row.Location.String,
		Description:  row.Description.String,
		Requirements: row.Requirements.String,
		Duration:     row.Duration.String,
		IsOpen:       row.IsOpen.Ptr(),
		Deadline:     row.Deadline.Time,
		CreatedAt:    row.CreatedAt.Time,
		UpdatedAt:    row.UpdatedAt.Time,
	}
}

type internshipRepository struct {
	db *sqlx.DB
}

var _ internship.Repository = (*internshipRepository)(nil) // interface compliance check

func NewInternshipRepository(db *sqlx.DB) *internshipRepository {
	return &internshipRepository{db: db}
}

func (repo internshipRepository) CreateInternship(ctx context.Context, inship internship.Internship, exec ...core.DBExecutor) (internship.Internship, error) {
	inship.ID = uuid.New().String()
	row := packInternship(inship)
	q := `
INSERT INTO internship (id, title, company, location, description, requirements, duration, is_open, deadline, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := getExec(repo.db, exec).ExecContext(ctx, q,
		row.ID, row.Title, row.Company, row.Location, row.Description, row.Requirements,
		row.Duration, row.IsOpen, row.Deadline, row.CreatedAt, row.UpdatedAt,
	)
	if err != nil {
		return internship.Internship{}, errors.Wrap(err, "inserting internship")
	}
	return row.unpack(), nil
}

func (repo internshipRepository) QueryInternships(ctx context.Context, filter *internship.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]internship.Internship, error) {
	q := `SELECT * FROM internship WHERE true`
	var args []interface{}
	arg := func(val interface{}) string {
		args = append(args, val)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter != nil {
		// internships with Title, Company or Location matching the search keyword
		if filter.Search != "" {
			val := arg("%" + filter.Search + "%")
			q += fmt.Sprintf(" AND (title ILIKE %[1]s OR company ILIKE %[1]s OR location ILIKE %[1]s)", val)
		}
		if filter.IsOpen != nil {
			q += fmt.Sprintf(" AND is_open = %s", arg(*filter.IsOpen))
		}
	}
	q += orderBy(ordering)

	var rows []internshipRow
	if err := sqlx.SelectContext(ctx, getExec(repo.db, exec), &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying internships")
	}
	inships := make([]internship.Internship, 0, len(rows))
	for _, row := range rows {
		inships = append(inships, row.unpack())
	}
	return inships, nil
}

func (repo internshipRepository) GetInternshipByID(ctx context.Context, id string, exec ...core.DBExecutor) (internship.Internship, error) {
	if _, err := uuid.Parse(id); err != nil {
		return internship.Internship{}, internship.ErrNotFound
	}
	var row internshipRow
	if err := sqlx.GetContext(ctx, getExec(repo.db, exec), &row, `SELECT * FROM internship WHERE id = $1`, id); err != nil {
		return internship.Internship{}, trapNoRowsErr(err, internship.ErrNotFound, "finding internship")
	}
	return row.unpack(), nil
}

func (repo internshipRepository) UpdateInternship(ctx context.Context, inship internship.Internship, exec ...core.DBExecutor) (internship.Internship, error) {
	row := packInternship(inship)
	q := `
UPDATE internship SET
    title        = COALESCE(NULLIF($2, ''), title),
    company      = COALESCE(NULLIF($3, ''), company),
    location     = COALESCE($4, location),
    description  = COALESCE($5, description),
    requirements = COALESCE($6, requirements),
    duration     = COALESCE($7, duration),
    is_open      = COALESCE($8, is_open),
    deadline     = COALESCE($9, deadline),
    updated_at   = COALESCE($10, updated_at)
WHERE id = $1
RETURNING *`
	var updated internshipRow
	err := sqlx.GetContext(ctx, getExec(repo.db, exec), &updated, q,
		row.ID, row.Title, row.Company, row.Location, row.Description, row.Requirements,
		row.Duration, row.IsOpen, row.Deadline, row.UpdatedAt,
	)
	if err != nil {
		return internship.Internship{}, trapNoRowsErr(err, internship.ErrNotFound, "updating internship")
	}
	return updated.unpack(), nil
}

func (repo internshipRepository) DeleteInternshipsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	res, err := getExec(repo.db, exec).ExecContext(ctx, `DELETE FROM internship WHERE id = ANY($1)`, pq.StringArray(ids))
	if err != nil {
		return 0, errors.Wrap(err, "deleting internships")
	}
	cnt, _ := res.RowsAffected()
	return int(cnt), nil
}
