package learning

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/stagi/core"
)

var (
	// errors
	ErrPathNotFound     = errors.New("learning path not found")
	ErrTaskNotFound     = errors.New("task not found")
	ErrProgressNotFound = errors.New("no learning path assigned")
	ErrAlreadyAssigned  = errors.New("a learning path is already assigned to this intern")
)

type (
	Repository interface {
		CreatePath(ctx context.Context, path Path, exec ...core.DBExecutor) (Path, error)
		QueryPaths(ctx context.Context, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Path, error)
		// GetPathByID loads the path with its modules and tasks.
		GetPathByID(ctx context.Context, id string, exec ...core.DBExecutor) (Path, error)
		DeletePathsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error)

		// CreateProgress maps a duplicate (user) assignment to ErrAlreadyAssigned.
		CreateProgress(ctx context.Context, prog Progress, exec ...core.DBExecutor) (Progress, error)
		GetProgressByUserID(ctx context.Context, userID string, exec ...core.DBExecutor) (Progress, error)
		// SetTaskCompletion records or clears one task completion.
		SetTaskCompletion(ctx context.Context, progressID, taskID string, done bool, exec ...core.DBExecutor) error
	}

	Service interface {
		CreatePath(ctx context.Context, np NewPath) (Path, error)
		QueryPaths(ctx context.Context, ordering []core.DBOrdering) ([]Path, error)
		GetPathByID(ctx context.Context, id string) (Path, error)
		DeletePaths(ctx context.Context, ids ...string) error
		Assign(ctx context.Context, ap AssignPath) (Progress, error)
		// GetProgress returns the intern-facing view of their assigned path.
		GetProgress(ctx context.Context, userID string) (PathProgress, error)
		// SetTaskDone toggles one task's completion for the intern's progress.
		SetTaskDone(ctx context.Context, userID, taskID string, done bool) (PathProgress, error)
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

func (svc *service) CreatePath(ctx context.Context, np NewPath) (Path, error) {
	now := time.Now().UTC()
	path := Path{
		Title:       np.Title,
		Description: np.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for i, m := range np.Modules {
		mod := Module{Title: core.CleanString(m.Title), Position: i + 1}
		for j, t := range m.Tasks {
			mod.Tasks = append(mod.Tasks, Task{
				Title:       core.CleanString(t.Title),
				Description: t.Description,
				Position:    j + 1,
			})
		}
		path.Modules = append(path.Modules, mod)
	}
	return svc.repo.CreatePath(ctx, path)
}

func (svc *service) QueryPaths(ctx context.Context, ordering []core.DBOrdering) ([]Path, error) {
	if ordering == nil {
		ordering = []core.DBOrdering{{Field: "created_at"}}
	}
	return svc.repo.QueryPaths(ctx, ordering)
}

func (svc *service) GetPathByID(ctx context.Context, id string) (Path, error) {
	path, err := svc.repo.GetPathByID(ctx, id)
	if err != nil {
		return Path{}, err
	}
	SortPath(&path)
	return path, nil
}

func (svc *service) DeletePaths(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeletePathsByID(ctx, ids)
	return err
}

func (svc *service) Assign(ctx context.Context, ap AssignPath) (Progress, error) {
	if _, err := svc.repo.GetPathByID(ctx, ap.PathID); err != nil {
		return Progress{}, err
	}
	now := time.Now().UTC()
	prog := Progress{
		UserID:    ap.UserID,
		PathID:    ap.PathID,
		StartedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateProgress(ctx, prog)
}

func (svc *service) GetProgress(ctx context.Context, userID string) (PathProgress, error) {
	prog, err := svc.repo.GetProgressByUserID(ctx, userID)
	if err != nil {
		return PathProgress{}, err
	}
	path, err := svc.GetPathByID(ctx, prog.PathID)
	if err != nil {
		return PathProgress{}, err
	}
	return PathProgress{Path: path, Progress: prog, Percent: prog.Percent(path)}, nil
}

func (svc *service) SetTaskDone(ctx context.Context, userID, taskID string, done bool) (PathProgress, error) {
	prog, err := svc.repo.GetProgressByUserID(ctx, userID)
	if err != nil {
		return PathProgress{}, err
	}
	path, err := svc.GetPathByID(ctx, prog.PathID)
	if err != nil {
		return PathProgress{}, err
	}

	// the task must belong to the assigned path
	var found bool
	for _, mod := range path.Modules {
		for _, task := range mod.Tasks {
			if task.ID == taskID {
				found = true
				break
			}
		}
	}
	if !found {
		return PathProgress{}, ErrTaskNotFound
	}

	if err := svc.repo.SetTaskCompletion(ctx, prog.ID, taskID, done); err != nil {
		return PathProgress{}, errors.Wrap(err, "setting task completion")
	}
	prog, err = svc.repo.GetProgressByUserID(ctx, userID)
	if err != nil {
		return PathProgress{}, err
	}
	return PathProgress{Path: path, Progress: prog, Percent: prog.Percent(path)}, nil
}
