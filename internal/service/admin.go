package service

import (
	"context"

	"github.com/atinyakov/devshowcase/internal/gate"
	"github.com/atinyakov/devshowcase/internal/models"
	"github.com/go-playground/validator/v10"
)

// AdminService answers whether a key is the admin key, so clients can
// check a key before storing it.
type AdminService struct {
	gate     gate.Verifier
	validate *validator.Validate
}

// NewAdminService constructs an AdminService around verifier.
func NewAdminService(verifier gate.Verifier) *AdminService {
	return &AdminService{gate: verifier, validate: newValidator()}
}

// VerifyKey returns nil when in.AdminKey passes the gate.
func (s *AdminService) VerifyKey(_ context.Context, in models.AdminKeyInput) error {
	if err := validate(s.validate, in); err != nil {
		return err
	}
	return s.gate.Verify(in.AdminKey)
}
