package internship

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/stagi/core"
)

var (
	// errors
	ErrNotFound = errors.New("internship not found")
)

type (
	Repository interface {
		CreateInternship(ctx context.Context, inship Internship, exec ...core.DBExecutor) (Internship, error)
		// QueryInternships applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of Title, Company or Location.
		QueryInternships(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Internship, error)
		GetInternshipByID(ctx context.Context, id string, exec ...core.DBExecutor) (Internship, error)
		UpdateInternship(ctx context.Context, inship Internship, exec ...core.DBExecutor) (Internship, error)
		DeleteInternshipsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error)
	}

	Service interface {
		Create(ctx context.Context, ni NewInternship) (Internship, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Internship, error)
		GetByID(ctx context.Context, id string) (Internship, error)
		Update(ctx context.Context, id string, ui UpdateInternship) (Internship, error)
		Delete(ctx context.Context, ids ...string) error
	}

	service struct {
		db   core.DB
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(db core.DB, repo Repository) Service {
	return &service{
		db:   db,
		repo: repo,
	}
}

func (svc *service) Create(ctx context.Context, ni NewInternship) (Internship, error) {
	now := time.Now().UTC()
	inship := Internship{
		Title:        ni.Title,
		Company:      ni.Company,
		Location:     ni.Location,
		Description:  ni.Description,
		Requirements: ni.Requirements,
		Duration:     ni.Duration,
		Deadline:     ni.Deadline,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if ni.IsOpen != nil {
		inship.IsOpen = ni.IsOpen
	} else {
		inship.SetOpen(true)
	}
	return svc.repo.CreateInternship(ctx, inship)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Internship, error) {
	if ordering == nil {
		ordering = []core.DBOrdering{{Field: "created_at"}}
	}
	return svc.repo.QueryInternships(ctx, filter, ordering)
}

func (svc *service) GetByID(ctx context.Context, id string) (Internship, error) {
	return svc.repo.GetInternshipByID(ctx, id)
}

func (svc *service) Update(ctx context.Context, id string, ui UpdateInternship) (Internship, error) {
	inship := Internship{
		ID:           id,
		Title:        ui.Title,
		Company:      ui.Company,
		Location:     ui.Location,
		Description:  ui.Description,
		Requirements: ui.Requirements,
		Duration:     ui.Duration,
		IsOpen:       ui.IsOpen,
		Deadline:     ui.Deadline,
		UpdatedAt:    time.Now().UTC(),
	}
	return svc.repo.UpdateInternship(ctx, inship)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteInternshipsByID(ctx, ids)
	return err
}
