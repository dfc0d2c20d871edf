// Package validation checks request payloads with go-playground/validator and
// reports failures keyed by JSON field name with English messages.
package validation

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"spellingbee/internal/models"
)

var (
	validate   *validator.Validate
	translator ut.Translator

	notBlankTag   = "notblank"
	gradeTag      = "grade"
	difficultyTag = "difficulty"
)

func init() {
	validate = validator.New()

	english := en.New()
	uni := ut.New(english, english)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(notBlankTag, notBlank)
	_ = validate.RegisterValidation(gradeTag, validGrade)
	_ = validate.RegisterValidation(difficultyTag, validDifficulty)

	registerTranslation(notBlankTag, "{0} cannot be blank")
	registerTranslation(gradeTag, "{0} must be between 1 and 12")
	registerTranslation(difficultyTag, "{0} must be Easy, Medium or Hard")
}

func registerTranslation(tag, text string) {
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func validGrade(fl validator.FieldLevel) bool {
	return models.Grade(fl.Field().Int()).Valid()
}

func validDifficulty(fl validator.FieldLevel) bool {
	return models.Difficulty(fl.Field().String()).Valid()
}

// Errors maps JSON field names to messages
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+e[field])
	}
	return strings.Join(parts, "; ")
}

// Struct validates v by its `validate` tags. It returns Errors or nil.
func Struct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := make(Errors, len(fieldErrs))
	for _, fe := range fieldErrs {
		out[fe.Field()] = fe.Translate(translator)
	}
	return out
}

// Field validates a single value against tags, reporting failures under field
func Field(field string, value interface{}, tags string) error {
	err := validate.Var(value, tags)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	msg := fieldErrs[0].Translate(translator)
	return Errors{field: field + " " + strings.TrimSpace(msg)}
}

// account is what every admin or moderator account must satisfy
type account struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required,min=2"`
}

// Account checks a new password account, reporting every bad field at once
func Account(email, password, name string) error {
	return Struct(account{
		Email:    strings.TrimSpace(email),
		Password: password,
		Name:     strings.TrimSpace(name),
	})
}

// Email checks a single address, as shared by an OAuth provider
func Email(email string) error {
	return Field("email", strings.TrimSpace(email), "required,email")
}

// IsValidationError reports whether err came from this package
func IsValidationError(err error) bool {
	var v Errors
	return errors.As(err, &v)
}
