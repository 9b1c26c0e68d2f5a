package dummydb

import (
	"sync"

	"github.com/trezcool/stagi/core/application"
	"github.com/trezcool/stagi/core/internship"
	"github.com/trezcool/stagi/core/learning"
	"github.com/trezcool/stagi/core/user"
)

type (
	DB struct {
		user        *userTable
		internship  *internshipTable
		application *applicationTable
		learning    *learningTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	internshipTable struct {
		sync.RWMutex
		table map[string]*internship.Internship
	}

	applicationTable struct {
		sync.RWMutex
		steps  map[string]*application.Step
		fields map[string]*application.Field
		apps   map[string]*application.Application
	}

	learningTable struct {
		sync.RWMutex
		paths    map[string]*learning.Path
		progress map[string]*learning.Progress // by progress ID
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:       &userTable{table: make(map[string]*user.User)},
		internship: &internshipTable{table: make(map[string]*internship.Internship)},
		application: &applicationTable{
			steps:  make(map[string]*application.Step),
			fields: make(map[string]*application.Field),
			apps:   make(map[string]*application.Application),
		},
		learning: &learningTable{
			paths:    make(map[string]*learning.Path),
			progress: make(map[string]*learning.Progress),
		},
	}
	return db, nil
}

// Reset empties all tables.
func (db *DB) Reset() {
	db.user.Lock()
	db.user.table = make(map[string]*user.User)
	db.user.Unlock()

	db.internship.Lock()
	db.internship.table = make(map[string]*internship.Internship)
	db.internship.Unlock()

	db.application.Lock()
	db.application.steps = make(map[string]*application.Step)
	db.application.fields = make(map[string]*application.Field)
	db.application.apps = make(map[string]*application.Application)
	db.application.Unlock()

	db.learning.Lock()
	db.learning.paths = make(map[string]*learning.Path)
	db.learning.progress = make(map[string]*learning.Progress)
	db.learning.Unlock()
}
