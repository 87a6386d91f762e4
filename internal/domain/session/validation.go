package session

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/expertchat/expertchat/internal/utils/apperrors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type loginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type signupInput struct {
	Email    string `validate:"required,email"`
	Name     string `validate:"required"`
	Password string `validate:"required,min=8"`
}

// asValidationError converts a validator result into the client taxonomy so
// callers see one readable message and no request is ever issued.
func asValidationError(err error) error {
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return apperrors.New(apperrors.LayerDomain, apperrors.KindValidation, "invalid input", err)
	}
	fe := errs[0]
	field := strings.ToLower(fe.Field())
	var msg string
	switch fe.Tag() {
	case "required":
		msg = fmt.Sprintf("%s is required", field)
	case "email":
		msg = fmt.Sprintf("%s is not a valid email address", field)
	case "min":
		msg = fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	default:
		msg = fmt.Sprintf("%s is invalid", field)
	}
	return apperrors.Validation(apperrors.LayerDomain, msg)
}
