// Package service provides the business logic behind the project and
// upload endpoints. Every mutation goes through authorize, which validates
// the payload, asks the gate about the claimed secret and hands back only
// the payload.
package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/atinyakov/devshowcase/internal/apperr"
	"github.com/atinyakov/devshowcase/internal/gate"
	"github.com/atinyakov/devshowcase/internal/models"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// newValidator reports field errors under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validate checks shape constraints and converts failures to
// apperr.KindValidation.
func validate(v *validator.Validate, payload any) error {
	err := v.Struct(payload)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperr.Validation("invalid request", err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		default:
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		}
	}
	return apperr.Validation(strings.Join(msgs, "; "), err)
}

// authorize validates the claim payload, then verifies the claimed secret.
// The secret does not leave this function.
func authorize[T any](v *validator.Validate, g gate.Verifier, claim models.Claim[T]) (T, error) {
	var zero T
	if err := validate(v, claim.Payload); err != nil {
		return zero, err
	}
	if err := g.Verify(claim.ClaimedSecret); err != nil {
		return zero, err
	}
	return claim.Payload, nil
}

// collaboratorFailure passes classified errors through and hides anything
// else behind an opaque internal error, logging the cause.
func collaboratorFailure(log *zap.Logger, op string, err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	log.Error("collaborator failure", zap.String("op", op), zap.Error(err))
	return apperr.Internal("internal error", err)
}
