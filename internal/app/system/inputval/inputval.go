// Package inputval validates decoded request bodies using
// waffle/pantry/validate.
//
// Define an input struct with validate tags, decode into it, and call
// Validate to get user-friendly error messages:
//
//	type categoryRequest struct {
//	    Name string `json:"name" validate:"required,max=100" label:"Category name"`
//	}
//
//	if res := inputval.Validate(in); res.HasErrors() {
//	    jsonutil.Invalid(w, res.First(), res.Fields())
//	    return
//	}
package inputval

import (
	"reflect"
	"strings"
	"sync"

	"github.com/dalemusser/stratafolders/internal/app/system/status"
	"github.com/dalemusser/waffle/pantry/validate"
)

// Result holds validation results with user-friendly messages.
type Result struct {
	Errors []FieldError
}

// FieldError represents a validation error for a single field.
type FieldError struct {
	Field   string
	Label   string
	Message string
}

// HasErrors returns true if there are any validation errors.
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// First returns the first error message, or empty string if no errors.
func (r *Result) First() string {
	if len(r.Errors) > 0 {
		return r.Errors[0].Message
	}
	return ""
}

// Fields returns field -> message, the "fields" member of a 400 body.
func (r *Result) Fields() map[string]string {
	out := make(map[string]string, len(r.Errors))
	for _, e := range r.Errors {
		out[e.Field] = e.Message
	}
	return out
}

var (
	customValidator *validate.Validator
	validatorOnce   sync.Once
)

func getValidator() *validate.Validator {
	validatorOnce.Do(func() {
		customValidator = validate.New(validate.WithStopOnFirstError())

		// folderstatus: empty, canonical, or a legacy alias
		customValidator.RegisterRuleFunc("folderstatus", func(value any) bool {
			if s, ok := value.(string); ok {
				return IsValidStatus(s)
			}
			return false
		}, "folderstatus")
	})
	return customValidator
}

// Validate validates a struct and returns a Result with user-friendly errors.
//
// Supported rules (from pantry/validate): required, oneof, min=N, max=N.
// Custom rules registered here:
//   - folderstatus: empty, a canonical status, or a legacy alias
func Validate(s any) *Result {
	result := &Result{}

	err := getValidator().Struct(s)
	if err == nil {
		return result
	}

	labels := getFieldLabels(s)
	if errs, ok := err.(validate.Errors); ok {
		for _, e := range errs {
			label := labels[e.Field]
			if label == "" {
				label = e.Field
			}
			result.Errors = append(result.Errors, FieldError{
				Field:   e.Field,
				Label:   label,
				Message: formatMessage(label, e.Rule, e.Param),
			})
		}
	}
	return result
}

// getFieldLabels maps field name (json tag if present) to its label tag.
func getFieldLabels(s any) map[string]string {
	labels := make(map[string]string)

	val := reflect.ValueOf(s)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return labels
	}

	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		name := field.Name
		if tag := field.Tag.Get("json"); tag != "" {
			if part := strings.Split(tag, ",")[0]; part != "" && part != "-" {
				name = part
			}
		}
		if label := field.Tag.Get("label"); label != "" {
			labels[name] = label
		}
	}
	return labels
}

func formatMessage(label, rule, param string) string {
	switch rule {
	case "required":
		return label + " is required."
	case "oneof", "enum":
		return label + " must be one of: " + strings.ReplaceAll(param, " ", ", ") + "."
	case "min":
		return label + " must be at least " + param + " characters."
	case "max":
		return label + " must be at most " + param + " characters."
	case "folderstatus":
		return label + " must be one of: " + strings.Join(status.All(), ", ") + "."
	default:
		return label + " is invalid."
	}
}

// IsValidStatus reports whether s is accepted as a folder status on write.
func IsValidStatus(s string) bool {
	_, ok := status.Canonicalize(strings.TrimSpace(s))
	return ok
}
