// Package validation wraps go-playground/validator with the struct tags used
// by request models and configuration, and renders the first failure as a
// CodeValidation domain error.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	id "zkid/pkg/domain"
	dErrors "zkid/pkg/domain-errors"
	pstrings "zkid/pkg/platform/strings"
)

var structs = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	v.RegisterValidation("principal", func(fl validator.FieldLevel) bool {
		_, err := id.ParsePrincipal(fl.Field().String())
		return err == nil
	})
	return v
}()

// Validate checks req's validate tags.
func Validate(req any) error {
	if err := structs.Struct(req); err != nil {
		return dErrors.New(dErrors.CodeValidation, ErrorMessage(err))
	}
	return nil
}

var tagMessages = map[string]string{
	"required":      "is required",
	"required_with": "is required",
	"notblank":      "must not be blank",
	"principal":     "must be a valid principal",
	"url":           "must be a valid url",
	"min":           "must be at least %s",
	"max":           "must be at most %s",
	"gt":            "must be greater than %s",
	"gte":           "must be at least %s",
	"oneof":         "must be one of [%s]",
}

// ErrorMessage describes the first field failure using the field's
// snake_case name.
func ErrorMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return "invalid request body"
	}
	fe := fieldErrs[0]
	name := fe.Field()
	if name == "" {
		name = fe.StructField()
	}
	field := pstrings.SnakeCase(name)
	if field == "" {
		return "invalid request body"
	}

	msg, ok := tagMessages[fe.ActualTag()]
	if !ok {
		return field + " is invalid"
	}
	if strings.Contains(msg, "%s") {
		msg = fmt.Sprintf(msg, fe.Param())
	}
	return field + " " + msg
}
