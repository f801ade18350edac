package pipeline

import (
	"context"
	"reflect"
	"strings"

	validator "gopkg.in/go-playground/validator.v9"

	"github.com/corebank-platform/core/internal/domain/event"
	"github.com/corebank-platform/core/pkg/cerr"
)

var structValidator = validator.New()

// Validation runs the declarative `validate:"..."` rules registered on
// TCmd's struct tags; on any failure it short-circuits with a cerr.KindValidation
// error listing every violation, without calling next (spec.md §4.4 stage 2).
// Grounded on the teacher's ValidateStruct
// (_examples/LerianStudio-midaz/common/net/http/withBody.go), adapted from
// an HTTP-body validator to a pipeline one.
func Validation[TCmd any, TResult any]() Middleware[TCmd, TResult] {
	return func(next Handler[TCmd, TResult]) Handler[TCmd, TResult] {
		return func(ctx context.Context, cmd TCmd) (TResult, []event.Event, error) {
			if violations := validateStruct(cmd); len(violations) > 0 {
				var zero TResult
				return zero, nil, cerr.Validation(commandName(cmd), violations)
			}

			return next(ctx, cmd)
		}
	}
}

func validateStruct(cmd any) []string {
	v := reflect.ValueOf(cmd)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return nil
	}

	err := structValidator.Struct(v.Interface())
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}

	violations := make([]string, 0, len(fieldErrs))

	for _, fe := range fieldErrs {
		violations = append(violations, formatViolation(fe))
	}

	return violations
}

func formatViolation(fe validator.FieldError) string {
	return strings.ToLower(fe.Field()) + " failed on the '" + fe.Tag() + "' rule"
}
