// Package validation collects field violations as short machine codes
// ("required", "blank", "max_length", ...) keyed by JSON field name.
package validation

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Add records code for field unless the field already has a violation.
func (v Violations) Add(field, code string) {
	if _, ok := v[field]; !ok {
		v[field] = code
	}
}

// Merge copies other into v, keeping existing entries.
func (v Violations) Merge(other Violations) {
	for field, code := range other {
		v.Add(field, code)
	}
}

// Err returns nil when v is empty, an *Error otherwise.
func (v Violations) Err() error {
	if v.Empty() {
		return nil
	}
	return &Error{Violations: v}
}

// Error is returned by operations rejecting their input.
type Error struct {
	Violations Violations
}

func (e *Error) Error() string {
	fields := make([]string, 0, len(e.Violations))
	for f := range e.Violations {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	var b strings.Builder
	b.WriteString("validation failed:")
	for _, f := range fields {
		b.WriteString(" " + f + "=" + e.Violations[f])
	}
	return b.String()
}

// AsError extracts violations from err.
func AsError(err error) (Violations, bool) {
	var ve *Error
	if errors.As(err, &ve) {
		return ve.Violations, true
	}
	return nil, false
}

var validate = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return val
}

// Struct runs the `validate` tags of s and records one violation per field.
// A `required` failure on a present field means the value is blank.
func Struct(s any, v Violations) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	for _, fe := range fieldErrs {
		v.Add(fe.Field(), codeFor(fe.Tag()))
	}
	return nil
}

func codeFor(tag string) string {
	switch tag {
	case "required":
		return "blank"
	case "max":
		return "max_length"
	case "min":
		return "min_length"
	case "email":
		return "invalid_email"
	case "oneof":
		return "invalid_choice"
	default:
		return "invalid"
	}
}
