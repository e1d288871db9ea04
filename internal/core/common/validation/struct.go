package validation

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	errors "github.com/frahmantamala/worklog/internal"
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	structValidator *validator.Validate
	once            sync.Once
)

func engine() *validator.Validate {
	once.Do(func() {
		structValidator = validator.New(validator.WithRequiredStructEnabled())
		structValidator.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return structValidator
}

// Struct runs the `validate` tags of a DTO and returns a VALIDATION_ERROR listing every failed field.
func Struct(s interface{}) *errors.AppError {
	err := engine().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return errors.ErrInvalidInput.WithCause(err)
	}

	var out errors.ValidationErrors
	for _, fe := range verrs {
		message, code := describe(fe)
		out.Add(fe.Field(), message, code)
	}
	return errors.NewValidationError("Validation failed", errors.ErrCodeValidationFailed).WithDetails(out)
}

// Merge folds several validation results into one, skipping nils.
func Merge(results ...*errors.AppError) *errors.AppError {
	var out errors.ValidationErrors
	for _, r := range results {
		if r == nil {
			continue
		}
		if details, ok := r.Details.(errors.ValidationErrors); ok {
			out.Errors = append(out.Errors, details.Errors...)
			continue
		}
		out.Add("", r.Message, r.Code)
	}
	if !out.HasErrors() {
		return nil
	}
	return errors.NewValidationError("Validation failed", errors.ErrCodeValidationFailed).WithDetails(out)
}

func describe(fe validator.FieldError) (string, errors.ErrorCode) {
	field := humanize(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field), errors.ErrCodeRequired
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must not exceed %s characters", field, fe.Param()), errors.ErrCodeTooLong
		}
		return fmt.Sprintf("%s must not exceed %s", field, fe.Param()), errors.ErrCodeOutOfRange
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param()), errors.ErrCodeTooShort
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param()), errors.ErrCodeOutOfRange
	case "gte", "lte", "gt", "lt":
		return fmt.Sprintf("%s is out of range", field), errors.ErrCodeOutOfRange
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field), errors.ErrCodeInvalidFormat
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param()), errors.ErrCodeInvalidFormat
	case "hexcolor":
		return fmt.Sprintf("%s must be a hex color", field), errors.ErrCodeInvalidFormat
	case "datetime":
		return fmt.Sprintf("%s must match the format %s", field, fe.Param()), errors.ErrCodeInvalidDate
	default:
		return fmt.Sprintf("%s is invalid", field), errors.ErrCodeInvalidFormat
	}
}

// humanize turns department_id into "Department id" for messages.
func humanize(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	if s == "" {
		return s
	}
	words := strings.SplitN(s, " ", 2)
	words[0] = cases.Title(language.English).String(words[0])
	return strings.Join(words, " ")
}
