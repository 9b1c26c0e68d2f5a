package application

import (
	"fmt"
	"strconv"
	"time"

	"github.com/trezcool/stagi/core"
)

// validation error texts
var (
	requiredText      = "this field is required"
	mustAffirmText    = "this box must be checked"
	invalidOptionText = "select a valid option"
	invalidEmailText  = "invalid email address"
	invalidPhoneText  = "invalid phone number"
	invalidURLText    = "invalid URL"
	invalidDateText   = "invalid date"
	invalidNumberText = "invalid number"
)

// ValidateStep checks a draft's values against one Step: every required input
// field must hold a non-empty, type-appropriate value. Non-input fields are
// never checked. A non-nil result is a normal outcome, not a fault; it lists
// one error per offending field.
func ValidateStep(step Step, values Values) []core.FieldError {
	var errs []core.FieldError
	for _, fld := range step.Fields {
		if !fld.Type.IsInput() {
			continue
		}
		if msg := validateValue(fld, values[fld.ID]); msg != "" {
			errs = append(errs, core.FieldError{Field: fld.ID, Error: msg})
		}
	}
	return errs
}

func validateValue(fld Field, val interface{}) string {
	if isEmpty(fld, val) {
		if fld.Required {
			return requiredText
		}
		return ""
	}

	switch fld.Type {
	case FieldEmail:
		if core.Validate.Var(asString(val), "email") != nil {
			return invalidEmailText
		}
	case FieldPhone:
		if core.Validate.Var(asString(val), "phone") != nil {
			return invalidPhoneText
		}
	case FieldURL:
		if core.Validate.Var(asString(val), "url") != nil {
			return invalidURLText
		}
	case FieldSelect, FieldChoice:
		if !fld.HasOption(asString(val)) {
			return invalidOptionText
		}
	case FieldMultiSelect:
		for _, opt := range asStringSlice(val) {
			if !fld.HasOption(opt) {
				return invalidOptionText
			}
		}
	case FieldCheckbox:
		b, ok := val.(bool)
		if !ok {
			return mustAffirmText
		}
		// a required checkbox may merely need an explicit answer;
		// MustBeTrue additionally demands affirmation
		if fld.Required && fld.MustBeTrue && !b {
			return mustAffirmText
		}
	case FieldDate:
		s := asString(val)
		if _, err := time.Parse("2006-01-02", s); err != nil {
			if _, err := time.Parse(time.RFC3339, s); err != nil {
				return invalidDateText
			}
		}
	case FieldNumber:
		switch v := val.(type) {
		case int, int64, float64:
		case string:
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				return invalidNumberText
			}
		default:
			return invalidNumberText
		}
	case FieldImage, FieldDocument:
		urls := asStringSlice(val)
		if max := uploadMaxCount(fld.Type); len(urls) > max {
			return fmt.Sprintf("at most %d files allowed", max)
		}
		for _, u := range urls {
			if core.Validate.Var(u, "url") != nil {
				return invalidURLText
			}
		}
	}
	return ""
}

// isEmpty decides whether a value counts as "not answered" for the field type.
// An unchecked checkbox is an answer; a missing one is not.
func isEmpty(fld Field, val interface{}) bool {
	if val == nil {
		return true
	}
	switch fld.Type {
	case FieldCheckbox:
		_, ok := val.(bool)
		return !ok
	case FieldMultiSelect, FieldImage, FieldDocument:
		return len(asStringSlice(val)) == 0
	default:
		return core.CleanString(asString(val)) == ""
	}
}

func asString(val interface{}) string {
	switch v := val.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}

// asStringSlice tolerates both []string and the []interface{} produced by
// unmarshalling JSON.
func asStringSlice(val interface{}) []string {
	switch v := val.(type) {
	case []string:
		return v
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func uploadMaxCount(t FieldType) int {
	if t == FieldImage {
		return core.Conf.Uploads.Image.MaxCount
	}
	return core.Conf.Uploads.Document.MaxCount
}
