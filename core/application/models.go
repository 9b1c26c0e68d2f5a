package application

import (
	"time"

	"github.com/trezcool/stagi/core"
)

// Status of a submitted Application. The writer always creates "pending";
// later transitions are driven by admin review tooling.
type Status string

const (
	StatusPending   Status = "pending"
	StatusReviewing Status = "reviewing"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
)

var AllStatuses = []Status{StatusPending, StatusReviewing, StatusAccepted, StatusRejected}

func (s Status) Valid() bool {
	for _, st := range AllStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// Values maps a Field identifier to the value entered for it.
// The dynamic type depends on Field.Type: string for text-likes, bool for
// checkboxes, []string for multi-selects and uploads.
type Values map[string]interface{}

// Application is the immutable record of a completed submission.
// At most one exists per (applicant, internship) pair.
type Application struct {
	ID            string    `json:"id"`
	ApplicantID   string    `json:"applicant_id"`
	InternshipID  string    `json:"internship_id"`
	FullName      string    `json:"full_name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Education     string    `json:"education"`
	Experience    string    `json:"experience"`
	WhyInterested string    `json:"why_interested"`
	Availability  string    `json:"availability"`
	ResumeURL     string    `json:"resume_url,omitempty"`
	CoverLetter   string    `json:"cover_letter,omitempty"`
	LinkedinURL   string    `json:"linkedin_url,omitempty"`
	GithubURL     string    `json:"github_url,omitempty"`
	Answers       Values    `json:"answers,omitempty"` // custom-schema answers
	Status        Status    `json:"status"`
	SubmittedAt   time.Time `json:"submitted_at"` // UTC
	UpdatedAt     time.Time `json:"updated_at"`   // UTC
}

// SubmitApplication is the payload accepted by the writer.
type SubmitApplication struct {
	InternshipID  string `json:"internship_id" validate:"required"`
	FullName      string `json:"full_name" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone" validate:"required,phone"`
	Education     string `json:"education" validate:"required"`
	Experience    string `json:"experience" validate:"required"`
	WhyInterested string `json:"why_interested" validate:"required"`
	Availability  string `json:"availability" validate:"required"`
	ResumeURL     string `json:"resume_url" validate:"omitempty,url"`
	CoverLetter   string `json:"cover_letter"`
	LinkedinURL   string `json:"linkedin_url" validate:"omitempty,url"`
	GithubURL     string `json:"github_url" validate:"omitempty,url"`
	Answers       Values `json:"answers"`
}

func (sa *SubmitApplication) Validate() error {
	sa.FullName = core.CleanString(sa.FullName)
	sa.Email = core.CleanString(sa.Email, true /* lower */)
	sa.Phone = core.CleanString(sa.Phone)
	sa.Education = core.CleanString(sa.Education)
	sa.Experience = core.CleanString(sa.Experience)
	sa.WhyInterested = core.CleanString(sa.WhyInterested)
	sa.Availability = core.CleanString(sa.Availability)
	return core.Validate.Struct(sa)
}

// UpdateStatus is the admin payload mutating an Application's status.
type UpdateStatus struct {
	Status Status `json:"status" validate:"required"`
	Note   string `json:"note"`
}

func (us *UpdateStatus) Validate() error {
	if err := core.Validate.Struct(us); err != nil {
		return err
	}
	if !us.Status.Valid() || us.Status == StatusPending {
		return core.NewValidationError(nil, core.FieldError{Field: "status", Error: "invalid status"})
	}
	return nil
}

type QueryFilter struct {
	InternshipID string `query:"internship_id"`
	ApplicantID  string `query:"applicant_id"`
	Status       Status `query:"status"`
	Search       string `query:"search"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.InternshipID == "" && qf.ApplicantID == "" && qf.Status == "" && qf.Search == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
