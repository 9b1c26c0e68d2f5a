package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/stagi/core/application"
	"github.com/trezcool/stagi/core/internship"
	"github.com/trezcool/stagi/core/learning"
	"github.com/trezcool/stagi/core/user"
	dummydb "github.com/trezcool/stagi/storage/database/dummy"
)

// OpenDB returns a fresh in-memory DB for a test run.
func OpenDB(t *testing.T) *dummydb.DB {
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("openDB() failed: %v", err)
	}
	return db
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	usr.SetActive(isActive)
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

func CreateInternship(
	t *testing.T,
	repo internship.Repository,
	title, company string,
	isOpen bool,
	deadline ...time.Time,
) internship.Internship {
	now := time.Now().UTC()
	inship := internship.Internship{
		Title:       title,
		Company:     company,
		Description: title + " at " + company,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	inship.SetOpen(isOpen)
	if len(deadline) > 0 {
		inship.Deadline = deadline[0].UTC()
	}
	inship, err := repo.CreateInternship(context.Background(), inship)
	if err != nil {
		t.Fatalf("createInternship() failed: %v", err)
	}
	return inship
}

func CreateStep(
	t *testing.T,
	repo application.Repository,
	internshipID, title string,
	position int,
	fields ...application.Field,
) application.Step {
	step, err := repo.CreateStep(context.Background(), application.Step{
		InternshipID: internshipID,
		Title:        title,
		Position:     position,
	})
	if err != nil {
		t.Fatalf("createStep() failed: %v", err)
	}
	for _, fld := range fields {
		fld.StepID = step.ID
		if _, err := repo.CreateField(context.Background(), fld); err != nil {
			t.Fatalf("createStep() failed: %v", err)
		}
	}
	step, err = repo.GetStepByID(context.Background(), step.ID)
	if err != nil {
		t.Fatalf("createStep() failed: %v", err)
	}
	return step
}

func CreatePath(
	t *testing.T,
	repo learning.Repository,
	title string,
	moduleTitles ...string,
) learning.Path {
	now := time.Now().UTC()
	path := learning.Path{
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for i, mt := range moduleTitles {
		path.Modules = append(path.Modules, learning.Module{
			Title:    mt,
			Position: i + 1,
			Tasks: []learning.Task{
				{Title: mt + " - task 1", Position: 1},
				{Title: mt + " - task 2", Position: 2},
			},
		})
	}
	path, err := repo.CreatePath(context.Background(), path)
	if err != nil {
		t.Fatalf("createPath() failed: %v", err)
	}
	return path
}

// SubmitPayload returns a valid submission for an internship.
func SubmitPayload(internshipID string) application.SubmitApplication {
	return application.SubmitApplication{
		InternshipID:  internshipID,
		FullName:      "Awe Mdr",
		Email:         "awe@test.cd",
		Phone:         "+243970000000",
		Education:     "CS, Unikin",
		Experience:    "2 summers of Go",
		WhyInterested: "I want to learn",
		Availability:  "June - September",
	}
}
