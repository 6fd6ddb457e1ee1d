// Package validator
package validator

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Validator interface {
	Validate(payload any) map[string]string
}

type StructValidator struct {
	validate *validator.Validate
}

// New reports field errors keyed by the json tag, falling back to the form tag.
func New() *StructValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})

	return &StructValidator{validate: v}
}

func (s *StructValidator) Validate(payload any) map[string]string {
	err := s.validate.Struct(payload)
	if err == nil {
		return nil
	}

	errors := make(map[string]string)

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			field := e.Field()
			label := humanize(e.StructField())
			switch e.Tag() {
			case "required":
				errors[field] = fmt.Sprintf("The %s field is required.", label)
			case "email":
				errors[field] = fmt.Sprintf("The %s must be a valid email address.", label)
			case "min":
				errors[field] = fmt.Sprintf("The %s must be at least %s characters.", label, e.Param())
			case "eqfield":
				errors[field] = fmt.Sprintf("The %s field must be equal to %s field.", label, humanize(e.Param()))
			case "oneof":
				errors[field] = fmt.Sprintf("The %s must be one of: %s.", label, e.Param())
			default:
				errors[field] = fmt.Sprintf("The %s field is invalid.", label)
			}
		}
	}

	return errors
}

// humanize turns ConfirmPassword into "confirm password".
func humanize(name string) string {
	var b strings.Builder
	for i, r := range name {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}
