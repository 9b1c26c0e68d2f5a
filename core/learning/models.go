package learning

import (
	"sort"
	"time"

	"github.com/trezcool/stagi/core"
)

// Path is a curriculum an accepted intern follows: ordered modules of tasks.
type Path struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Modules     []Module  `json:"modules"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

type Module struct {
	ID       string `json:"id"`
	PathID   string `json:"path_id"`
	Title    string `json:"title"`
	Position int    `json:"position"`
	Tasks    []Task `json:"tasks"`
}

type Task struct {
	ID          string `json:"id"`
	ModuleID    string `json:"module_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Position    int    `json:"position"`
}

// SortPath orders modules and their tasks by position.
func SortPath(p *Path) {
	sort.SliceStable(p.Modules, func(i, j int) bool { return p.Modules[i].Position < p.Modules[j].Position })
	for i := range p.Modules {
		tasks := p.Modules[i].Tasks
		sort.SliceStable(tasks, func(a, b int) bool { return tasks[a].Position < tasks[b].Position })
	}
}

// TaskCount returns the total number of tasks across all modules.
func (p *Path) TaskCount() int {
	var n int
	for _, m := range p.Modules {
		n += len(m.Tasks)
	}
	return n
}

// Progress tracks one intern against one Path.
type Progress struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	PathID         string    `json:"path_id"`
	CompletedTasks []string  `json:"completed_tasks"` // task IDs
	StartedAt      time.Time `json:"started_at"`      // UTC
	UpdatedAt      time.Time `json:"updated_at"`      // UTC
}

func (pr *Progress) IsTaskDone(taskID string) bool {
	for _, id := range pr.CompletedTasks {
		if id == taskID {
			return true
		}
	}
	return false
}

// Percent computes completion against the path's total task count.
func (pr *Progress) Percent(path Path) int {
	total := path.TaskCount()
	if total == 0 {
		return 0
	}
	return 100 * len(pr.CompletedTasks) / total
}

// PathProgress is the intern-facing view: the path plus their progress.
type PathProgress struct {
	Path     Path     `json:"path"`
	Progress Progress `json:"progress"`
	Percent  int      `json:"percent"`
}

// NewPath contains information needed to author a Path with its content.
type NewPath struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Modules     []struct {
		Title string `json:"title" validate:"required"`
		Tasks []struct {
			Title       string `json:"title" validate:"required"`
			Description string `json:"description"`
		} `json:"tasks" validate:"dive"`
	} `json:"modules" validate:"dive"`
}

func (np *NewPath) Validate() error {
	np.Title = core.CleanString(np.Title)
	return core.Validate.Struct(np)
}

// AssignPath links an intern to a Path, starting empty Progress.
type AssignPath struct {
	UserID string `json:"user_id" validate:"required"`
	PathID string `json:"path_id" validate:"required"`
}

func (ap AssignPath) Validate() error { return core.Validate.Struct(ap) }
