package validation

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"staybook/internal/domain/shared/fault"
)

// Validator checks command and query struct tags with go-playground/validator.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	return &Validator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate reports every violated tag as one validation fault. Messages that
// are not structs carry no tags and pass.
func (v *Validator) Validate(ctx context.Context, message any) error {
	if message == nil {
		return nil
	}
	rv := reflect.ValueOf(message)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}
	err := v.validate.StructCtx(ctx, message)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fault.Wrap(fault.KindInternal, "validation: struct check failed", err)
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		parts = append(parts, describe(fe))
	}
	return fault.Validation("invalid %s: %s", rv.Type().Name(), strings.Join(parts, "; "))
}

func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "oneof":
		return field + " must be one of [" + fe.Param() + "]"
	case "email":
		return field + " must be an email address"
	case "gt", "gte", "lt", "lte":
		return field + " must be " + fe.Tag() + " " + fe.Param()
	default:
		return field + " failed " + fe.Tag()
	}
}
