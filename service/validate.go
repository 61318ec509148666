package service

import (
	"github.com/go-playground/validator/v10"

	apperrors "github.com/boardtree-dev/boardtree/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func validateStruct(v any) error {
	if err := validate.Struct(v); err != nil {
		return &apperrors.ValidationError{Message: err.Error()}
	}
	return nil
}
