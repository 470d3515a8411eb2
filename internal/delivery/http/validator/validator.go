// Package validator plugs go-playground/validator into echo.
package validator

import (
	"reflect"
	"strings"

	"etwin/internal/domain/entity"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// Validator implements echo.Validator.
type Validator struct {
	validate *validator.Validate
}

// New creates a validator with the rules of the account names.
func New() *Validator {
	validate := validator.New(validator.WithRequiredStructEnabled())

	// Report json field names instead of Go field names.
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	must(validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return entity.IsUsername(fl.Field().String())
	}))
	must(validate.RegisterValidation("displayname", func(fl validator.FieldLevel) bool {
		return entity.IsDisplayName(fl.Field().String())
	}))
	must(validate.RegisterValidation("clientkey", func(fl validator.FieldLevel) bool {
		return entity.ParseLogin(fl.Field().String()) == entity.LoginTypeOauthClientKey
	}))

	return &Validator{validate: validate}
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// Validate checks the struct tags of i.
func (v *Validator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// Describe turns validation failures into a short message naming the
// offending fields.
func Describe(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err.Error()
	}

	parts := make([]string, 0, len(validationErrs))
	for _, fieldErr := range validationErrs {
		parts = append(parts, fieldErr.Field()+": failed "+fieldErr.Tag())
	}

	return strings.Join(parts, "; ")
}
