// Package validation wires go-playground/validator with English messages
// keyed by the json field names clients send.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

const requiredText = "{0} is required"

// Validator bundles a validator with the translator its messages were registered on.
type Validator struct {
	*validator.Validate
	translator ut.Translator
}

// New returns a validator using json tag names and English translations.
func New() *Validator {
	validate := validator.New(validator.WithRequiredStructEnabled())
	translator, _ := ut.New(en.New()).GetTranslator("en")

	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})

	registerTranslation(validate, translator, "required", requiredText, true)

	return &Validator{Validate: validate, translator: translator}
}

func registerTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override bool) {
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, override) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// FieldErrors flattens validator errors into field -> message pairs. It
// returns nil when err does not come from the validator.
func (v *Validator) FieldErrors(err error) map[string]string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return nil
	}

	fields := make(map[string]string, len(validationErrs))
	for _, fieldErr := range validationErrs {
		key := fieldErr.Namespace()
		if idx := strings.Index(key, "."); idx >= 0 {
			key = key[idx+1:]
		}
		if key == "" {
			key = fieldErr.Field()
		}
		fields[key] = fieldErr.Translate(v.translator)
	}
	return fields
}
