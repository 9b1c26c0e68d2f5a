package application

import (
	"testing"

	"github.com/trezcool/stagi/core"
)

func TestValidateStep(t *testing.T) {
	step := Step{
		ID:       "s1",
		Title:    "Everything",
		Position: 1,
		Fields: []Field{
			{ID: "heading", Type: FieldHeading, Position: 1},
			{ID: "name", Type: FieldShortText, Required: true, Position: 2},
			{ID: "bio", Type: FieldLongText, Position: 3},
			{ID: "email", Type: FieldEmail, Required: true, Position: 4},
			{ID: "phone", Type: FieldPhone, Position: 5},
			{ID: "site", Type: FieldURL, Position: 6},
			{ID: "track", Type: FieldSelect, Required: true, Options: []string{"backend", "frontend"}, Position: 7},
			{ID: "langs", Type: FieldMultiSelect, Options: []string{"go", "py"}, Position: 8},
			{ID: "terms", Type: FieldCheckbox, Required: true, MustBeTrue: true, Position: 9},
			{ID: "newsletter", Type: FieldCheckbox, Required: true, Position: 10},
			{ID: "start", Type: FieldDate, Position: 11},
			{ID: "years", Type: FieldNumber, Position: 12},
			{ID: "resume", Type: FieldDocument, Position: 13},
		},
	}

	validValues := Values{
		"name":       "Awe",
		"email":      "awe@test.cd",
		"track":      "backend",
		"terms":      true,
		"newsletter": false, // an explicit answer satisfies a plain required checkbox
	}

	tests := []struct {
		name       string
		values     Values
		wantFields []string // offending field IDs, in schema order
	}{
		{
			name:       "empty values",
			values:     Values{},
			wantFields: []string{"name", "email", "track", "terms", "newsletter"},
		},
		{name: "all valid", values: validValues},
		{
			name: "optional fields may stay empty",
			values: Values{
				"name": "Awe", "email": "awe@test.cd", "track": "backend",
				"terms": true, "newsletter": true,
				"bio": "", "phone": "", "site": "",
			},
		},
		{
			name:       "whitespace-only text counts as empty",
			values:     merge(validValues, Values{"name": "   "}),
			wantFields: []string{"name"},
		},
		{
			name:       "invalid email",
			values:     merge(validValues, Values{"email": "nope"}),
			wantFields: []string{"email"},
		},
		{
			name:       "invalid phone",
			values:     merge(validValues, Values{"phone": "abc"}),
			wantFields: []string{"phone"},
		},
		{
			name:       "invalid url",
			values:     merge(validValues, Values{"site": "not a url"}),
			wantFields: []string{"site"},
		},
		{
			name:       "select: undeclared option",
			values:     merge(validValues, Values{"track": "devops"}),
			wantFields: []string{"track"},
		},
		{
			name:   "multi-select: declared options",
			values: merge(validValues, Values{"langs": []string{"go", "py"}}),
		},
		{
			name:       "multi-select: undeclared option",
			values:     merge(validValues, Values{"langs": []string{"go", "rust"}}),
			wantFields: []string{"langs"},
		},
		{
			name:   "multi-select tolerates JSON-decoded values",
			values: merge(validValues, Values{"langs": []interface{}{"go"}}),
		},
		{
			name:       "must-be-true checkbox left unchecked",
			values:     merge(validValues, Values{"terms": false}),
			wantFields: []string{"terms"},
		},
		{
			name:       "checkbox with a non-bool answer",
			values:     merge(validValues, Values{"newsletter": "yes"}),
			wantFields: []string{"newsletter"},
		},
		{
			name:   "date formats",
			values: merge(validValues, Values{"start": "2026-09-01"}),
		},
		{
			name:       "invalid date",
			values:     merge(validValues, Values{"start": "September 1st"}),
			wantFields: []string{"start"},
		},
		{name: "number as int", values: merge(validValues, Values{"years": 2})},
		{name: "number as float", values: merge(validValues, Values{"years": 2.5})},
		{name: "number as numeric string", values: merge(validValues, Values{"years": "2.5"})},
		{
			name:       "invalid number",
			values:     merge(validValues, Values{"years": "two"}),
			wantFields: []string{"years"},
		},
		{
			name:   "upload: valid url list",
			values: merge(validValues, Values{"resume": []string{"https://cdn.test.cd/cv.pdf"}}),
		},
		{
			name:       "upload: invalid url",
			values:     merge(validValues, Values{"resume": []string{"nope"}}),
			wantFields: []string{"resume"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateStep(step, tt.values)
			if !sameFields(got, tt.wantFields) {
				t.Errorf("ValidateStep() = %+v, want errors on %v", got, tt.wantFields)
			}
		})
	}
}

func TestValidateStep_noInputFields(t *testing.T) {
	step := Step{
		ID:    "info",
		Title: "About the program",
		Fields: []Field{
			{ID: "h", Type: FieldHeading},
			{ID: "p", Type: FieldParagraph},
		},
	}
	if got := ValidateStep(step, Values{}); got != nil {
		t.Errorf("ValidateStep() = %+v, want nil (informational steps never block)", got)
	}
}

func TestValidateStep_uploadCountCap(t *testing.T) {
	step := Step{
		ID: "docs",
		Fields: []Field{
			{ID: "resume", Type: FieldDocument},
		},
	}
	max := core.Conf.Uploads.Document.MaxCount
	urls := make([]string, max+1)
	for i := range urls {
		urls[i] = "https://cdn.test.cd/f.pdf"
	}
	got := ValidateStep(step, Values{"resume": urls})
	if !sameFields(got, []string{"resume"}) {
		t.Errorf("ValidateStep() = %+v, want an error on resume", got)
	}
}

func merge(base, over Values) Values {
	vals := make(Values, len(base)+len(over))
	for k, v := range base {
		vals[k] = v
	}
	for k, v := range over {
		vals[k] = v
	}
	return vals
}

func sameFields(errs []core.FieldError, fields []string) bool {
	if len(errs) != len(fields) {
		return false
	}
	for i, fe := range errs {
		if fe.Field != fields[i] {
			return false
		}
	}
	return true
}
