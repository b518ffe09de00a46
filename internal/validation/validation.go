// Package validation checks and normalizes request payloads before any
// business logic runs. Everything here is pure: no I/O, no side effects.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"

	apperrors "acquisitions/internal/errors"
	"acquisitions/internal/model"
)

// Validator wraps go-playground/validator with English messages keyed by JSON field names.
// It implements echo.Validator.
type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
}

// New builds a Validator with English translations registered.
func New() (*Validator, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	locale := en.New()
	trans, found := ut.New(locale, locale).GetTranslator(locale.Locale())
	if !found {
		return nil, fmt.Errorf("translator %q not found", locale.Locale())
	}
	if err := entranslations.RegisterDefaultTranslations(v, trans); err != nil {
		return nil, fmt.Errorf("register translations: %w", err)
	}

	return &Validator{validate: v, trans: trans}, nil
}

// Validate implements echo.Validator. Failures are returned as a validation
// error carrying one FieldError per violated rule.
func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.Internal(err)
	}
	details := make([]apperrors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, apperrors.FieldError{Field: fe.Field(), Message: fe.Translate(v.trans)})
	}
	return apperrors.Validation(details...)
}

// UserID parses a path identifier. It must be all digits and a positive integer.
func (v *Validator) UserID(raw string) (uint, error) {
	if err := v.validate.Var(raw, "required,number"); err != nil {
		return 0, apperrors.Validation(apperrors.FieldError{Field: "id", Message: "ID must be a valid number"})
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.Validation(apperrors.FieldError{Field: "id", Message: "ID must be a positive number"})
	}
	return uint(id), nil
}

// SignUpInput is the body of a sign-up request.
type SignUpInput struct {
	Name     string  `json:"name" validate:"required,min=2,max=255"`
	Email    string  `json:"email" validate:"required,email,max=255"`
	Password string  `json:"password" validate:"required,min=6,max=128"`
	Role     *string `json:"role" validate:"omitnil,oneof=user admin"`
}

// Normalize trims name and email and lower-cases email.
func (in *SignUpInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
}

// RoleOrDefault returns the requested role, or user when none was given.
func (in *SignUpInput) RoleOrDefault() model.Role {
	if in.Role == nil {
		return model.RoleUser
	}
	return model.Role(*in.Role)
}

// SignInInput is the body of a sign-in request.
type SignInInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Normalize trims and lower-cases email.
func (in *SignInInput) Normalize() {
	in.Email = normalizeEmail(in.Email)
}

// UpdateUserInput is the body of a partial user update. Absent fields are nil.
type UpdateUserInput struct {
	Name     *string `json:"name" validate:"omitnil,min=2,max=255"`
	Email    *string `json:"email" validate:"omitnil,email,max=255"`
	Password *string `json:"password" validate:"omitnil,min=6,max=128"`
	Role     *string `json:"role" validate:"omitnil,oneof=user admin"`
}

// Normalize trims name and email and lower-cases email.
func (in *UpdateUserInput) Normalize() {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		in.Name = &name
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		in.Email = &email
	}
}

// Empty reports whether no field was provided.
func (in *UpdateUserInput) Empty() bool {
	return in.Name == nil && in.Email == nil && in.Password == nil && in.Role == nil
}

// ToUpdate converts the validated input into the service-level update.
func (in *UpdateUserInput) ToUpdate() model.UserUpdate {
	upd := model.UserUpdate{Name: in.Name, Email: in.Email, Password: in.Password}
	if in.Role != nil {
		role := model.Role(*in.Role)
		upd.Role = &role
	}
	return upd
}

// UpdateUser normalizes and validates an update payload. A payload without
// any field fails as a whole.
func (v *Validator) UpdateUser(in *UpdateUserInput) error {
	in.Normalize()
	if in.Empty() {
		return apperrors.Validation(apperrors.FieldError{Message: "At least one field must be provided for update"})
	}
	return v.Validate(in)
}

// SignUp normalizes and validates a sign-up payload.
func (v *Validator) SignUp(in *SignUpInput) error {
	in.Normalize()
	return v.Validate(in)
}

// SignIn normalizes and validates a sign-in payload.
func (v *Validator) SignIn(in *SignInInput) error {
	in.Normalize()
	return v.Validate(in)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
