package sqlxrepos

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/stagi/core"
	"github.com/trezcool/stagi/core/learning"
)

type pathRow struct {
	ID          string      `db:"id"`
	Title       string      `db:"title"`
	Description null.String `db:"description"`
	CreatedAt   null.Time   `db:"created_at"`
	UpdatedAt   null.Time   `db:"updated_at"`
}

func (row pathRow) unpack() learning.Path {
	return learning.Path{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description.String,
		CreatedAt:   row.CreatedAt.Time,
		UpdatedAt:   row.UpdatedAt.Time,
	}
}

type moduleRow struct {
	ID       string `db:"id"`
	PathID   string `db:"path_id"`
	Title    string `db:"title"`
	Position int    `db:"position"`
}

type taskRow struct {
	ID          string      `db:"id"`
	ModuleID    string      `db:"module_id"`
	Title       string      `db:"title"`
	Description null.String `db:"description"`
	Position    int         `db:"position"`
}

type progressRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	PathID    string    `db:"path_id"`
	StartedAt null.Time `db:"started_at"`
	UpdatedAt null.Time `db:"updated_at"`
}

type learningRepository struct {
	db *sqlx.DB
}

var _ learning.Repository = (*learningRepository)(nil) // interface compliance check

func NewLearningRepository(db *sqlx.DB) *learningRepository {
	return &learningRepository{db: db}
}

func (repo learningRepository) CreatePath(ctx context.Context, path learning.Path, exec ...core.DBExecutor) (learning.Path, error) {
	exe := getExec(repo.db, exec)

	path.ID = uuid.New().String()
	q := `INSERT INTO learning_path (id, title, description, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`
	_, err := exe.ExecContext(ctx, q,
		path.ID, path.Title, null.NewString(path.Description, path.Description != ""),
		null.NewTime(path.CreatedAt.UTC(), !path.CreatedAt.IsZero()),
		null.NewTime(path.UpdatedAt.UTC(), !path.UpdatedAt.IsZero()),
	)
	if err != nil {
		return learning.Path{}, errors.Wrap(err, "inserting path")
	}

	for i := range path.Modules {
		mod := &path.Modules[i]
		mod.ID = uuid.New().String()
		mod.PathID = path.ID
		q = `INSERT INTO learning_module (id, path_id, title, position) VALUES ($1, $2, $3, $4)`
		if _, err = exe.ExecContext(ctx, q, mod.ID, mod.PathID, mod.Title, mod.Position); err != nil {
			return learning.Path{}, errors.Wrap(err, "inserting module")
		}
		for j := range mod.Tasks {
			task := &mod.Tasks[j]
			task.ID = uuid.New().String()
			task.ModuleID = mod.ID
			q = `INSERT INTO learning_task (id, module_id, title, description, position) VALUES ($1, $2, $3, $4, $5)`
			_, err = exe.ExecContext(ctx, q,
				task.ID, task.ModuleID, task.Title,
				null.NewString(task.Description, task.Description != ""), task.Position,
			)
			if err != nil {
				return learning.Path{}, errors.Wrap(err, "inserting task")
			}
		}
	}
	return path, nil
}

func (repo learningRepository) QueryPaths(ctx context.Context, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]learning.Path, error) {
	var rows []pathRow
	q := `SELECT * FROM learning_path` + orderBy(ordering)
	if err := sqlx.SelectContext(ctx, getExec(repo.db, exec), &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying paths")
	}
	paths := make([]learning.Path, 0, len(rows))
	for _, row := range rows {
		paths = append(paths, row.unpack())
	}
	return paths, nil
}

func (repo learningRepository) GetPathByID(ctx context.Context, id string, exec ...core.DBExecutor) (learning.Path, error) {
	if _, err := uuid.Parse(id); err != nil {
		return learning.Path{}, learning.ErrPathNotFound
	}
	exe := getExec(repo.db, exec)

	var row pathRow
	if err := sqlx.GetContext(ctx, exe, &row, `SELECT * FROM learning_path WHERE id = $1`, id); err != nil {
		return learning.Path{}, trapNoRowsErr(err, learning.ErrPathNotFound, "finding path")
	}
	path := row.unpack()

	var modRows []moduleRow
	q := `SELECT * FROM learning_module WHERE path_id = $1 ORDER BY position`
	if err := sqlx.SelectContext(ctx, exe, &modRows, q, id); err != nil {
		return learning.Path{}, errors.Wrap(err, "querying modules")
	}

	var taskRows []taskRow
	q = `
SELECT * FROM learning_task
WHERE module_id IN (SELECT id FROM learning_module WHERE path_id = $1)
ORDER BY position`
	if err := sqlx.SelectContext(ctx, exe, &taskRows, q, id); err != nil {
		return learning.Path{}, errors.Wrap(err, "querying tasks")
	}

	tasksByModule := make(map[string][]learning.Task, len(modRows))
	for _, row := range taskRows {
		tasksByModule[row.ModuleID] = append(tasksByModule[row.ModuleID], learning.Task{
			ID:          row.ID,
			ModuleID:    row.ModuleID,
			Title:       row.Title,
			Description: row.Description.String,
			Position:    row.Position,
		})
	}
	for _, row := range modRows {
		path.Modules = append(path.Modules, learning.Module{
			ID:       row.ID,
			PathID:   row.PathID,
			Title:    row.Title,
			Position: row.Position,
			Tasks:    tasksByModule[row.ID],
		})
	}
	return path, nil
}

func (repo learningRepository) DeletePathsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	res, err := getExec(repo.db, exec).ExecContext(ctx, `DELETE FROM learning_path WHERE id = ANY($1)`, pq.StringArray(ids))
	if err != nil {
		return 0, errors.Wrap(err, "deleting paths")
	}
	cnt, _ := res.RowsAffected()
	return int(cnt), nil
}

func (repo learningRepository) CreateProgress(ctx context.Context, prog learning.Progress, exec ...core.DBExecutor) (learning.Progress, error) {
	prog.ID = uuid.New().String()
	q := `INSERT INTO intern_progress (id, user_id, path_id, started_at, updated_at) VALUES ($1, $2, $3, $4, $5)`
	_, err := getExec(repo.db, exec).ExecContext(ctx, q,
		prog.ID, prog.UserID, prog.PathID,
		null.NewTime(prog.StartedAt.UTC(), !prog.StartedAt.IsZero()),
		null.NewTime(prog.UpdatedAt.UTC(), !prog.UpdatedAt.IsZero()),
	)
	if err != nil {
		if isUniqueViolation(err, "intern_progress_user_id_key") {
			return learning.Progress{}, learning.ErrAlreadyAssigned
		}
		return learning.Progress{}, errors.Wrap(err, "inserting progress")
	}
	return prog, nil
}

func (repo learningRepository) GetProgressByUserID(ctx context.Context, userID string, exec ...core.DBExecutor) (learning.Progress, error) {
	exe := getExec(repo.db, exec)

	var row progressRow
	if err := sqlx.GetContext(ctx, exe, &row, `SELECT * FROM intern_progress WHERE user_id = $1`, userID); err != nil {
		return learning.Progress{}, trapNoRowsErr(err, learning.ErrProgressNotFound, "finding progress")
	}
	prog := learning.Progress{
		ID:        row.ID,
		UserID:    row.UserID,
		PathID:    row.PathID,
		StartedAt: row.StartedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}

	q := `SELECT task_id FROM task_completion WHERE progress_id = $1`
	if err := sqlx.SelectContext(ctx, exe, &prog.CompletedTasks, q, prog.ID); err != nil {
		return learning.Progress{}, errors.Wrap(err, "querying task completions")
	}
	return prog, nil
}

func (repo learningRepository) SetTaskCompletion(ctx context.Context, progressID, taskID string, done bool, exec ...core.DBExecutor) error {
	exe := getExec(repo.db, exec)

	var err error
	if done {
		q := `INSERT INTO task_completion (progress_id, task_id, completed_at) VALUES ($1, $2, NOW()) ON CONFLICT DO NOTHING`
		_, err = exe.ExecContext(ctx, q, progressID, taskID)
	} else {
		_, err = exe.ExecContext(ctx, `DELETE FROM task_completion WHERE progress_id = $1 AND task_id = $2`, progressID, taskID)
	}
	if err != nil {
		return errors.Wrap(err, "setting task completion")
	}
	_, err = exe.ExecContext(ctx, `UPDATE intern_progress SET updated_at = NOW() WHERE id = $1`, progressID)
	return errors.Wrap(err, "touching progress")
}
