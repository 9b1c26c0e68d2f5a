package dummydb

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/stagi/core"
	"github.com/trezcool/stagi/core/application"
)

type applicationRepository struct {
	db *DB
}

var _ application.Repository = (*applicationRepository)(nil)

func NewApplicationRepository(db *DB) application.Repository {
	return &applicationRepository{db: db}
}

func (repo *applicationRepository) GetSteps(ctx context.Context, internshipID string, exec ...core.DBExecutor) ([]application.Step, error) {
	repo.db.application.RLock()
	defer repo.db.application.RUnlock()

	var steps []application.Step
	for _, step := range repo.db.application.steps {
		if step.InternshipID == internshipID {
			steps = append(steps, repo.withFields(*step))
		}
	}
	application.SortSteps(steps)
	return steps, nil
}

// withFields attaches a step's fields; callers hold the lock.
func (repo *applicationRepository) withFields(step application.Step) application.Step {
	step.Fields = nil
	for _, fld := range repo.db.application.fields {
		if fld.StepID == step.ID {
			step.Fields = append(step.Fields, *fld)
		}
	}
	return step
}

func (repo *applicationRepository) GetStepByID(ctx context.Context, id string, exec ...core.DBExecutor) (application.Step, error) {
	repo.db.application.RLock()
	defer repo.db.application.RUnlock()

	if step, ok := repo.db.application.steps[id]; ok {
		return repo.withFields(*step), nil
	}
	return application.Step{}, application.ErrStepNotFound
}

func (repo *applicationRepository) CreateStep(ctx context.Context, step application.Step, exec ...core.DBExecutor) (application.Step, error) {
	repo.db.application.Lock()
	defer repo.db.application.Unlock()

	for _, s := range repo.db.application.steps {
		if s.InternshipID == step.InternshipID && s.Position == step.Position {
			return application.Step{}, application.ErrPositionTaken
		}
	}
	step.ID = uuid.New().String()
	repo.db.application.steps[step.ID] = &step
	return step, nil
}

func (repo *applicationRepository) UpdateStep(ctx context.Context, step application.Step, exec ...core.DBExecutor) (application.Step, error) {
	repo.db.application.Lock()
	defer repo.db.application.Unlock()

	orig, ok := repo.db.application.steps[step.ID]
	if !ok {
		return application.Step{}, application.ErrStepNotFound
	}
	for _, s := range repo.db.application.steps {
		if s.ID != step.ID && s.InternshipID == orig.InternshipID && s.Position == step.Position {
			return application.Step{}, application.ErrPositionTaken
		}
	}
	orig.Title = step.Title
	orig.Intro = step.Intro
	orig.Position = step.Position
	return repo.withFields(*orig), nil
}

func (repo *applicationRepository) DeleteStepsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	repo.db.application.Lock()
	defer repo.db.application.Unlock()

	var n int
	for _, id := range ids {
		if _, ok := repo.db.application.steps[id]; ok {
			delete(repo.db.application.steps, id)
			for fid, fld := range repo.db.application.fields {
				if fld.StepID == id {
					delete(repo.db.application.fields, fid)
				}
			}
			n++
		}
	}
	return n, nil
}

func (repo *applicationRepository) GetFieldByID(ctx context.Context, id string, exec ...core.DBExecutor) (application.Field, error) {
	repo.db.application.RLock()
	defer repo.db.application.RUnlock()

	if fld, ok := repo.db.application.fields[id]; ok {
		return *fld, nil
	}
	return application.Field{}, application.ErrFieldNotFound
}

func (repo *applicationRepository) CreateField(ctx context.Context, fld application.Field, exec ...core.DBExecutor) (application.Field, error) {
	repo.db.application.Lock()
	defer repo.db.application.Unlock()

	for _, f := range repo.db.application.fields {
		if f.StepID == fld.StepID && f.Position == fld.Position {
			return application.Field{}, application.ErrPositionTaken
		}
	}
	fld.ID = uuid.New().String()
	repo.db.application.fields[fld.ID] = &fld
	return fld, nil
}

func (repo *applicationRepository) UpdateField(ctx context.Context, fld application.Field, exec ...core.DBExecutor) (application.Field, error) {
	repo.db.application.Lock()
	defer repo.db.application.Unlock()

	orig, ok := repo.db.application.fields[fld.ID]
	if !ok {
		return application.Field{}, application.ErrFieldNotFound
	}
	for _, f := range repo.db.application.fields {
		if f.ID != fld.ID && f.StepID == orig.StepID && f.Position == fld.Position {
			return application.Field{}, application.ErrPositionTaken
		}
	}
	orig.Label = fld.Label
	orig.Required = fld.Required
	orig.MustBeTrue = fld.MustBeTrue
	orig.Position = fld.Position
	orig.Options = fld.Options
	orig.Placeholder = fld.Placeholder
	orig.HelpText = fld.HelpText
	return *orig, nil
}

func (repo *applicationRepository) DeleteFieldsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	repo.db.application.Lock()
	defer repo.db.application.Unlock()

	var n int
	for _, id := range ids {
		if _, ok := repo.db.application.fields[id]; ok {
			delete(repo.db.application.fields, id)
			n++
		}
	}
	return n, nil
}

func (repo *applicationRepository) CreateApplication(ctx context.Context, app application.Application, exec ...core.DBExecutor) (application.Application, error) {
	repo.db.application.Lock()
	defer repo.db.application.Unlock()

	// the uniqueness check and the insert happen under the same lock,
	// mirroring the unique index of the real storage
	for _, a := range repo.db.application.apps {
		if a.ApplicantID == app.ApplicantID && a.InternshipID == app.InternshipID {
			return application.Application{}, application.ErrAlreadyApplied
		}
	}
	app.ID = uuid.New().String()
	repo.db.application.apps[app.ID] = &app
	return app, nil
}

func (repo *applicationRepository) ApplicationExists(ctx context.Context, applicantID, internshipID string, exec ...core.DBExecutor) (bool, error) {
	repo.db.application.RLock()
	defer repo.db.application.RUnlock()

	for _, a := range repo.db.application.apps {
		if a.ApplicantID == applicantID && a.InternshipID == internshipID {
			return true, nil
		}
	}
	return false, nil
}

func (repo *applicationRepository) GetApplicationByID(ctx context.Context, id string, exec ...core.DBExecutor) (application.Application, error) {
	repo.db.application.RLock()
	defer repo.db.application.RUnlock()

	if app, ok := repo.db.application.apps[id]; ok {
		return *app, nil
	}
	return application.Application{}, application.ErrNotFound
}

func (repo *applicationRepository) QueryApplications(ctx context.Context, filter *application.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]application.Application, error) {
	repo.db.application.RLock()
	defer repo.db.application.RUnlock()

	matches := make([]application.Application, 0, len(repo.db.application.apps))
	for _, app := range repo.db.application.apps {
		if filter == nil || filter.IsEmpty() || applicationMatches(app, filter) {
			matches = append(matches, *app)
		}
	}
	return matches, nil
}

func applicationMatches(app *application.Application, filter *application.QueryFilter) bool {
	if filter.InternshipID != "" && app.InternshipID != filter.InternshipID {
		return false
	}
	if filter.ApplicantID != "" && app.ApplicantID != filter.ApplicantID {
		return false
	}
	if filter.Status != "" && app.Status != filter.Status {
		return false
	}
	if filter.Search != "" {
		search := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(app.FullName), search) &&
			!strings.Contains(strings.ToLower(app.Email), search) {
			return false
		}
	}
	return true
}

func (repo *applicationRepository) UpdateApplicationStatus(ctx context.Context, id string, status application.Status, exec ...core.DBExecutor) (application.Application, error) {
	repo.db.application.Lock()
	defer repo.db.application.Unlock()

	app, ok := repo.db.application.apps[id]
	if !ok {
		return application.Application{}, application.ErrNotFound
	}
	app.Status = status
	app.UpdatedAt = time.Now().UTC()
	return *app, nil
}
