package dummydb

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/trezcool/stagi/core"
	"github.com/trezcool/stagi/core/internship"
)

type internshipRepository struct {
	db *DB
}

var _ internship.Repository = (*internshipRepository)(nil)

func NewInternshipRepository(db *DB) internship.Repository {
	return &internshipRepository{db: db}
}

func (repo *internshipRepository) CreateInternship(ctx context.Context, inship internship.Internship, exec ...core.DBExecutor) (internship.Internship, error) {
	repo.db.internship.Lock()
	defer repo.db.internship.Unlock()

	inship.ID = uuid.New().String()
	repo.db.internship.table[inship.ID] = &inship
	return inship, nil
}

func (repo *internshipRepository) QueryInternships(ctx context.Context, filter *internship.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]internship.Internship, error) {
	repo.db.internship.RLock()
	defer repo.db.internship.RUnlock()

	matches := make([]internship.Internship, 0, len(repo.db.internship.table))
	for _, inship := range repo.db.internship.table {
		if filter == nil || filter.IsEmpty() || internshipMatches(inship, filter) {
			matches = append(matches, *inship)
		}
	}
	return matches, nil
}

func internshipMatches(inship *internship.Internship, filter *internship.QueryFilter) bool {
	if filter.Search != "" {
		search := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(inship.Title), search) &&
			!strings.Contains(strings.ToLower(inship.Company), search) &&
			!strings.Contains(strings.ToLower(inship.Location), search) {
			return false
		}
	}
	if filter.IsOpen != nil && inship.Open() != *filter.IsOpen {
		return false
	}
	return true
}

func (repo *internshipRepository) GetInternshipByID(ctx context.Context, id string, exec ...core.DBExecutor) (internship.Internship, error) {
	repo.db.internship.RLock()
	defer repo.db.internship.RUnlock()

	if inship, ok := repo.db.internship.table[id]; ok {
		return *inship, nil
	}
	return internship.Internship{}, internship.ErrNotFound
}

func (repo *internshipRepository) UpdateInternship(ctx context.Context, inship internship.Internship, exec ...core.DBExecutor) (internship.Internship, error) {
	repo.db.internship.Lock()
	defer repo.db.internship.Unlock()

	orig, ok := repo.db.internship.table[inship.ID]
	if !ok {
		return internship.Internship{}, internship.ErrNotFound
	}
	if inship.Title != "" {
		orig.Title = inship.Title
	}
	if inship.Company != "" {
		orig.Company = inship.Company
	}
	if inship.Location != "" {
		orig.Location = inship.Location
	}
	if inship.Description != "" {
		orig.Description = inship.Description
	}
	if inship.Requirements != "" {
		orig.Requirements = inship.Requirements
	}
	if inship.Duration != "" {
		orig.Duration = inship.Duration
	}
	if inship.IsOpen != nil {
		orig.IsOpen = inship.IsOpen
	}
	if !inship.Deadline.IsZero() {
		orig.Deadline = inship.Deadline
	}
	if !inship.UpdatedAt.IsZero() {
		orig.UpdatedAt = inship.UpdatedAt
	}
	return *orig, nil
}

func (repo *internshipRepository) DeleteInternshipsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	repo.db.internship.Lock()
	defer repo.db.internship.Unlock()

	var n int
	for _, id := range ids {
		if _, ok := repo.db.internship.table[id]; ok {
			delete(repo.db.internship.table, id)
			n++
		}
	}
	return n, nil
}
