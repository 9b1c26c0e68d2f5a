package internship

import (
	"time"

	"github.com/trezcool/stagi/core"
)

// Internship is a published position candidates may apply to.
type Internship struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Company      string    `json:"company"`
	Location     string    `json:"location"`
	Description  string    `json:"description"`
	Requirements string    `json:"requirements"`
	Duration     string    `json:"duration"`
	IsOpen       *bool     `json:"is_open"`
	Deadline     time.Time `json:"deadline"`   // zero == no deadline
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

func (i *Internship) SetOpen(open bool) {
	i.IsOpen = &open
}

func (i *Internship) Open() bool {
	return i.IsOpen != nil && *i.IsOpen
}

// AcceptsApplications reports whether a submission at `now` is allowed:
// the internship must be open and its deadline (when set) not passed.
func (i *Internship) AcceptsApplications(now time.Time) bool {
	if !i.Open() {
		return false
	}
	return i.Deadline.IsZero() || !now.After(i.Deadline)
}

// NewInternship contains information needed to publish an Internship.
type NewInternship struct {
	Title        string    `json:"title" validate:"required"`
	Company      string    `json:"company" validate:"required"`
	Location     string    `json:"location"`
	Description  string    `json:"description" validate:"required"`
	Requirements string    `json:"requirements"`
	Duration     string    `json:"duration"`
	IsOpen       *bool     `json:"is_open"`
	Deadline     time.Time `json:"deadline"`
}

func (ni *NewInternship) Validate() error {
	ni.Title = core.CleanString(ni.Title)
	ni.Company = core.CleanString(ni.Company)
	ni.Location = core.CleanString(ni.Location)
	return core.Validate.Struct(ni)
}

// UpdateInternship defines what information may be provided to modify an Internship.
type UpdateInternship struct {
	Title        string    `json:"title"`
	Company      string    `json:"company"`
	Location     string    `json:"location"`
	Description  string    `json:"description"`
	Requirements string    `json:"requirements"`
	Duration     string    `json:"duration"`
	IsOpen       *bool     `json:"is_open"`
	Deadline     time.Time `json:"deadline"`
}

func (ui *UpdateInternship) Validate(orig Internship) error {
	if title := core.CleanString(ui.Title); title != "" {
		ui.Title = title
	} else {
		ui.Title = orig.Title
	}
	if company := core.CleanString(ui.Company); company != "" {
		ui.Company = company
	} else {
		ui.Company = orig.Company
	}
	if ui.Description == "" {
		ui.Description = orig.Description
	}
	return core.Validate.Struct(ui)
}

type QueryFilter struct {
	Search string `query:"search"`
	IsOpen *bool  `query:"is_open"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.IsOpen == nil
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
