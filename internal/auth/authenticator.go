package auth

import (
	"context"

	"github.com/AvavSam/split-bills/internal/models"
)

// Authenticator abstracts the credential scheme so the service layer does not
// care whether accounts are backed by passwords or something else.
type Authenticator interface {
	// Register creates a new account. The credential format is up to the
	// implementation.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate verifies the credential and returns the matching user.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks whether a credential meets the
	// implementation's minimum requirements.
	ValidateCredential(credential string) error
}
