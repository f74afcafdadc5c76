package app

import (
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/alnifu/orgsync-web-sub000/model"
)

var (
	validate   *validator.Validate
	translator ut.Translator
)

// Instantiate the validator for use.
func init() {
	validate = validator.New()

	// Register the english error messages for validation errors.
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// ValidateFormResponses checks submitted answers against a feedback post's
// field definitions. Failures come back as a per-field message map; a nil
// return means the submission may be sent.
func ValidateFormResponses(fields []model.FormField, responses map[string]string) *ValidationError {
	fieldErrors := make(map[string]string)
	for _, field := range fields {
		answer := strings.TrimSpace(responses[field.Question])
		if answer == "" {
			if field.Required {
				fieldErrors[field.Question] = "this field is required"
			}
			continue
		}
		rule := rulesFor(field.Type)
		if rule == "" {
			continue
		}
		if err := validate.Var(answer, rule); err != nil {
			fieldErrors[field.Question] = translateFirst(err, field.Type)
		}
	}
	if len(fieldErrors) > 0 {
		return &ValidationError{Fields: fieldErrors}
	}
	return nil
}

func rulesFor(fieldType model.FieldType) string {
	switch fieldType {
	case model.FieldTypeEmail:
		return "email"
	case model.FieldTypeNumber:
		return "numeric"
	default:
		return ""
	}
}

func translateFirst(err error, fieldType model.FieldType) string {
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		return errs[0].Translate(translator)
	}
	return "invalid value for " + string(fieldType) + " field"
}
