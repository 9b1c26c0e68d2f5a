package application

import (
	"sort"

	"github.com/trezcool/stagi/core"
)

// FieldType enumerates the input controls an application step may collect.
type FieldType string

const (
	FieldShortText   FieldType = "short_text"
	FieldLongText    FieldType = "long_text"
	FieldEmail       FieldType = "email"
	FieldPhone       FieldType = "phone"
	FieldURL         FieldType = "url"
	FieldSelect      FieldType = "select"
	FieldMultiSelect FieldType = "multi_select"
	FieldChoice      FieldType = "choice"
	FieldCheckbox    FieldType = "checkbox"
	FieldDate        FieldType = "date"
	FieldImage       FieldType = "image"
	FieldDocument    FieldType = "document"
	FieldNumber      FieldType = "number"

	// non-input types; never subject to required-ness checks
	FieldHeading   FieldType = "heading"
	FieldParagraph FieldType = "paragraph"
)

var AllFieldTypes = []FieldType{
	FieldShortText, FieldLongText, FieldEmail, FieldPhone, FieldURL,
	FieldSelect, FieldMultiSelect, FieldChoice, FieldCheckbox, FieldDate,
	FieldImage, FieldDocument, FieldNumber, FieldHeading, FieldParagraph,
}

// IsInput reports whether the type collects a value from the candidate.
func (t FieldType) IsInput() bool {
	return !(t == FieldHeading || t == FieldParagraph)
}

// HasOptions reports whether the type requires a declared option list.
func (t FieldType) HasOptions() bool {
	return t == FieldSelect || t == FieldMultiSelect || t == FieldChoice
}

// IsUpload reports whether the value is one or more stored file URLs.
func (t FieldType) IsUpload() bool {
	return t == FieldImage || t == FieldDocument
}

func (t FieldType) Valid() bool {
	for _, ft := range AllFieldTypes {
		if t == ft {
			return true
		}
	}
	return false
}

// Field is one input control within a Step. Read-only to candidates.
type Field struct {
	ID       string    `json:"id"`
	StepID   string    `json:"step_id"`
	Label    string    `json:"label"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
	// MustBeTrue only applies to required checkbox fields: when set, the box
	// must be explicitly affirmed; otherwise any explicit answer satisfies it.
	MustBeTrue  bool     `json:"must_be_true,omitempty"`
	Position    int      `json:"position"`
	Options     []string `json:"options,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
	HelpText    string   `json:"help_text,omitempty"`
}

func (f *Field) HasOption(opt string) bool {
	for _, o := range f.Options {
		if o == opt {
			return true
		}
	}
	return false
}

// Step is an ordered stage of the application process for one Internship.
// A Step with no input fields is informational and never blocks progress.
type Step struct {
	ID           string  `json:"id"`
	InternshipID string  `json:"internship_id"`
	Title        string  `json:"title"`
	Intro        string  `json:"intro,omitempty"`
	Position     int     `json:"position"`
	Fields       []Field `json:"fields"`
}

// SortSteps orders steps and their fields by position, as authored.
func SortSteps(steps []Step) {
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].Position < steps[j].Position })
	for i := range steps {
		flds := steps[i].Fields
		sort.SliceStable(flds, func(a, b int) bool { return flds[a].Position < flds[b].Position })
	}
}

// DefaultSteps is the fixed fallback flow used when an internship has no
// authored steps. It covers exactly the core submission fields, so a draft
// validated against it is ready for Submit.
func DefaultSteps() []Step {
	return []Step{
		{
			ID:       "default-details",
			Title:    "Your details",
			Position: 1,
			Fields: []Field{
				{ID: "full_name", Label: "Full name", Type: FieldShortText, Required: true, Position: 1},
				{ID: "email", Label: "Email", Type: FieldEmail, Required: true, Position: 2},
				{ID: "phone", Label: "Phone", Type: FieldPhone, Required: true, Position: 3},
				{ID: "education", Label: "Education", Type: FieldLongText, Required: true, Position: 4},
			},
		},
		{
			ID:       "default-motivation",
			Title:    "Experience & motivation",
			Position: 2,
			Fields: []Field{
				{ID: "experience", Label: "Relevant experience", Type: FieldLongText, Required: true, Position: 1},
				{ID: "why_interested", Label: "Why are you interested?", Type: FieldLongText, Required: true, Position: 2},
				{ID: "availability", Label: "Availability", Type: FieldShortText, Required: true, Position: 3},
			},
		},
		{
			ID:       "default-links",
			Title:    "Links & documents",
			Position: 3,
			Fields: []Field{
				{ID: "resume_url", Label: "Resume", Type: FieldDocument, Position: 1},
				{ID: "cover_letter", Label: "Cover letter", Type: FieldLongText, Position: 2},
				{ID: "linkedin_url", Label: "LinkedIn", Type: FieldURL, Position: 3},
				{ID: "github_url", Label: "GitHub", Type: FieldURL, Position: 4},
			},
		},
	}
}

// NewStep contains information needed to author a Step.
type NewStep struct {
	Title    string `json:"title" validate:"required"`
	Intro    string `json:"intro"`
	Position int    `json:"position" validate:"min=1"`
}

func (ns *NewStep) Validate() error {
	ns.Title = core.CleanString(ns.Title)
	return core.Validate.Struct(ns)
}

// UpdateStep defines what information may be provided to modify a Step.
type UpdateStep struct {
	Title    string `json:"title"`
	Intro    string `json:"intro"`
	Position int    `json:"position" validate:"omitempty,min=1"`
}

func (us *UpdateStep) Validate(orig Step) error {
	if title := core.CleanString(us.Title); title != "" {
		us.Title = title
	} else {
		us.Title = orig.Title
	}
	if us.Position == 0 {
		us.Position = orig.Position
	}
	return core.Validate.Struct(us)
}

// NewField contains information needed to author a Field.
type NewField struct {
	Label       string    `json:"label" validate:"required"`
	Type        FieldType `json:"type" validate:"required"`
	Required    bool      `json:"required"`
	MustBeTrue  bool      `json:"must_be_true"`
	Position    int       `json:"position" validate:"min=1"`
	Options     []string  `json:"options"`
	Placeholder string    `json:"placeholder"`
	HelpText    string    `json:"help_text"`
}

func (nf *NewField) Validate() error {
	nf.Label = core.CleanString(nf.Label)
	if err := core.Validate.Struct(nf); err != nil {
		return err
	}
	if !nf.Type.Valid() {
		return core.NewValidationError(nil, core.FieldError{Field: "type", Error: "unknown field type"})
	}
	if nf.Type.HasOptions() && len(nf.Options) == 0 {
		return core.NewValidationError(nil, core.FieldError{Field: "options", Error: "at least one option is required for this field type"})
	}
	if nf.MustBeTrue && nf.Type != FieldCheckbox {
		return core.NewValidationError(nil, core.FieldError{Field: "must_be_true", Error: "only applies to checkbox fields"})
	}
	return nil
}

// UpdateField defines what information may be provided to modify a Field.
type UpdateField struct {
	Label       string   `json:"label"`
	Required    *bool    `json:"required"`
	MustBeTrue  *bool    `json:"must_be_true"`
	Position    int      `json:"position" validate:"omitempty,min=1"`
	Options     []string `json:"options"`
	Placeholder string   `json:"placeholder"`
	HelpText    string   `json:"help_text"`
}

func (uf *UpdateField) Validate(orig Field) error {
	if label := core.CleanString(uf.Label); label != "" {
		uf.Label = label
	} else {
		uf.Label = orig.Label
	}
	if uf.Position == 0 {
		uf.Position = orig.Position
	}
	if uf.Options == nil {
		uf.Options = orig.Options
	}
	if err := core.Validate.Struct(uf); err != nil {
		return err
	}
	if orig.Type.HasOptions() && len(uf.Options) == 0 {
		return core.NewValidationError(nil, core.FieldError{Field: "options", Error: "at least one option is required for this field type"})
	}
	return nil
}
