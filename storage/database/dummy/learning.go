package dummydb

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/stagi/core"
	"github.com/trezcool/stagi/core/learning"
)

type learningRepository struct {
	db *DB
}

var _ learning.Repository = (*learningRepository)(nil)

func NewLearningRepository(db *DB) learning.Repository {
	return &learningRepository{db: db}
}

func (repo *learningRepository) CreatePath(ctx context.Context, path learning.Path, exec ...core.DBExecutor) (learning.Path, error) {
	repo.db.learning.Lock()
	defer repo.db.learning.Unlock()

	path.ID = uuid.New().String()
	for i := range path.Modules {
		mod := &path.Modules[i]
		mod.ID = uuid.New().String()
		mod.PathID = path.ID
		for j := range mod.Tasks {
			mod.Tasks[j].ID = uuid.New().String()
			mod.Tasks[j].ModuleID = mod.ID
		}
	}
	repo.db.learning.paths[path.ID] = &path
	return path, nil
}

func (repo *learningRepository) QueryPaths(ctx context.Context, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]learning.Path, error) {
	repo.db.learning.RLock()
	defer repo.db.learning.RUnlock()

	paths := make([]learning.Path, 0, len(repo.db.learning.paths))
	for _, path := range repo.db.learning.paths {
		paths = append(paths, *path)
	}
	return paths, nil
}

func (repo *learningRepository) GetPathByID(ctx context.Context, id string, exec ...core.DBExecutor) (learning.Path, error) {
	repo.db.learning.RLock()
	defer repo.db.learning.RUnlock()

	if path, ok := repo.db.learning.paths[id]; ok {
		return *path, nil
	}
	return learning.Path{}, learning.ErrPathNotFound
}

func (repo *learningRepository) DeletePathsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	repo.db.learning.Lock()
	defer repo.db.learning.Unlock()

	var n int
	for _, id := range ids {
		if _, ok := repo.db.learning.paths[id]; ok {
			delete(repo.db.learning.paths, id)
			n++
		}
	}
	return n, nil
}

func (repo *learningRepository) CreateProgress(ctx context.Context, prog learning.Progress, exec ...core.DBExecutor) (learning.Progress, error) {
	repo.db.learning.Lock()
	defer repo.db.learning.Unlock()

	for _, p := range repo.db.learning.progress {
		if p.UserID == prog.UserID {
			return learning.Progress{}, learning.ErrAlreadyAssigned
		}
	}
	prog.ID = uuid.New().String()
	repo.db.learning.progress[prog.ID] = &prog
	return prog, nil
}

func (repo *learningRepository) GetProgressByUserID(ctx context.Context, userID string, exec ...core.DBExecutor) (learning.Progress, error) {
	repo.db.learning.RLock()
	defer repo.db.learning.RUnlock()

	for _, prog := range repo.db.learning.progress {
		if prog.UserID == userID {
			return *prog, nil
		}
	}
	return learning.Progress{}, learning.ErrProgressNotFound
}

func (repo *learningRepository) SetTaskCompletion(ctx context.Context, progressID, taskID string, done bool, exec ...core.DBExecutor) error {
	repo.db.learning.Lock()
	defer repo.db.learning.Unlock()

	prog, ok := repo.db.learning.progress[progressID]
	if !ok {
		return learning.ErrProgressNotFound
	}
	completed := prog.CompletedTasks[:0:0]
	for _, id := range prog.CompletedTasks {
		if id != taskID {
			completed = append(completed, id)
		}
	}
	if done {
		completed = append(completed, taskID)
	}
	prog.CompletedTasks = completed
	prog.UpdatedAt = time.Now().UTC()
	return nil
}
