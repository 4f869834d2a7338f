package shim

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator"
)

func (s *Shim) check(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return fmt.Errorf("%w: %s", ErrValidation, ValidationMessage(verrs))
	}
	return fmt.Errorf("%w: %s", ErrValidation, err.Error())
}

func (s *Shim) checkID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: field id is a required field", ErrValidation)
	}
	return nil
}

// ValidationMessage собирает нарушения в одну строку через запятую.
func ValidationMessage(errs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("field %s must be a valid email", err.Field()))
		case "gt":
			msgs = append(msgs, fmt.Sprintf("field %s must be greater than %s", err.Field(), err.Param()))
		case "gte":
			msgs = append(msgs, fmt.Sprintf("field %s must not be negative", err.Field()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("field %s must be one of [%s]", err.Field(), err.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("field %s is not valid", err.Field()))
		}
	}
	return strings.Join(msgs, ", ")
}
