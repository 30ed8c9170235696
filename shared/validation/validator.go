// Package validation validates request payloads with go-playground/validator and renders
// failures as English messages keyed by the JSON field name.
package validation

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	entranslations "github.com/go-playground/validator/v10/translations/en"
)

// addressPattern is the deliberately loose e-mail shape accepted at signup.
var addressPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// Errors is a list of translated validation messages.
type Errors []string

func (e Errors) Error() string {
	return strings.Join(e, "; ")
}

// Validator validates structs tagged with `validate:"..."`.
type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
}

// New creates a Validator with English translations and the custom "address" and "notblank" tags registered.
func New() *Validator {
	validate := validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")

	// Registration only fails on duplicate keys, which would be a programming error.
	if err := entranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		panic(err)
	}

	register(validate, trans, "address", "{0} must be a valid email address", func(fl validator.FieldLevel) bool {
		return addressPattern.MatchString(fl.Field().String())
	})
	register(validate, trans, "notblank", "{0} must not be blank", validators.NotBlank)

	return &Validator{validate: validate, trans: trans}
}

// Struct validates s. It returns Errors when s violates its tags and the raw error when s is not a struct.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	msgs := make(Errors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fe.Translate(v.trans))
	}

	return msgs
}

// register adds a custom tag together with its English message.
func register(validate *validator.Validate, trans ut.Translator, tag, msg string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}

	if err := validate.RegisterTranslation(tag, trans,
		func(ut ut.Translator) error {
			return ut.Add(tag, msg, true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T(tag, fe.Field())
			return t
		},
	); err != nil {
		panic(err)
	}
}
