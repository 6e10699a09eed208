// Package validation wraps go-playground/validator with the tags and English messages used by
// the login form and the directory tooling.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	domainauth "github.com/revanth-rampal/trail/internal/domain/auth"
	apperrors "github.com/revanth-rampal/trail/internal/errors"
)

const (
	notBlankTag = "notblank"
	roleTag     = "role"
)

// Validator validates structs and renders failures as AppError validation errors.
type Validator struct {
	v  *validator.Validate
	tr ut.Translator
}

// New builds a Validator with JSON field names, English messages, and the custom tags.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	tr, _ := uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v, tr)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation(notBlankTag, notBlank)
	_ = v.RegisterValidation(roleTag, validRole)

	noop := func(ut.Translator) error { return nil }
	for _, tag := range []string{notBlankTag, roleTag} {
		_ = v.RegisterTranslation(tag, tr, noop, translateCustom)
	}

	return &Validator{v: v, tr: tr}
}

// Struct validates s. The returned error is an AppError with code validation whose Field is
// the first offending field.
func (val *Validator) Struct(s any) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid input")
	}
	first := verrs[0]
	return &apperrors.AppError{
		Code:    apperrors.ErrCodeValidation,
		Message: first.Translate(val.tr),
		Field:   first.Field(),
		Cause:   err,
	}
}

func translateCustom(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case notBlankTag:
		return fe.Field() + " cannot be blank"
	case roleTag:
		return fe.Field() + " must be one of admin, teacher, parent, student"
	default:
		return fe.Error()
	}
}

func notBlank(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	return strings.TrimSpace(fl.Field().String()) != ""
}

func validRole(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	return domainauth.Role(fl.Field().String()).Valid()
}
