// Package validation checks decoded request parameters with
// go-playground/validator and turns failures into VALIDATION_ERROR responses.
package validation

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	apperrors "orders-dashboard/internal/errors"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError is one failed rule on one field.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

type RequestValidationError struct {
	Fields []FieldError
}

func (e *RequestValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	messages := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		messages[i] = f.Message
	}
	return strings.Join(messages, "; ")
}

// ToAppError converts the failure into the API error envelope.
func (e *RequestValidationError) ToAppError() *apperrors.AppError {
	appErr := apperrors.ValidationWrap(e, e.Error())
	if len(e.Fields) == 1 {
		f := e.Fields[0]
		return appErr.WithDetails(map[string]any{"field": f.Field, "tag": f.Tag})
	}
	return appErr.WithDetails(map[string]any{"fields": e.Fields})
}

func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(sf reflect.StructField) string {
			name := strings.SplitN(sf.Tag.Get("query"), ",", 2)[0]
			if name == "" || name == "-" {
				return sf.Name
			}
			return name
		})
	})
	return validate
}

// ValidateStruct returns nil when s passes its validate tags.
func ValidateStruct(s any) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return &RequestValidationError{Fields: []FieldError{{
			Field:   "unknown",
			Tag:     "unknown",
			Message: err.Error(),
		}}}
	}

	fields := make([]FieldError, len(fieldErrs))
	for i, fe := range fieldErrs {
		fields[i] = FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Message: translate(fe),
		}
	}
	return &RequestValidationError{Fields: fields}
}

var messageWithParam = map[string]string{
	"oneof": "%s must be one of: %s",
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
	"max":   "%s must be at most %s characters",
}

func translate(fe validator.FieldError) string {
	if tmpl, ok := messageWithParam[fe.Tag()]; ok {
		return fmt.Sprintf(tmpl, fe.Field(), fe.Param())
	}
	if fe.Tag() == "required" {
		return fmt.Sprintf("%s is required", fe.Field())
	}
	return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
}
