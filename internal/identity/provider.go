// Package identity is the boundary to the external identity provider. The
// provider authenticates users and owns the account-level disabled flag;
// this service only verifies its tokens and calls its admin API.
package identity

import (
	"context"

	"scrimhub/internal/models"
)

type Provider interface {
	// Verify checks an access token and returns the caller it identifies.
	Verify(token string) (models.Caller, error)

	// SetDisabled flips the provider-side disabled flag for uid. Not
	// transactional with any local write; see the moderation service.
	SetDisabled(ctx context.Context, uid string, disabled bool) error
}
