// Package passwordresets stores pending password reset requests.
package passwordresets

import (
	"context"

	"github.com/dmitrijs2005/notekeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, r *models.PasswordReset) error

	// Consume deletes the reset identified by tokenHash and returns it, so a
	// token can be used at most once. Unknown hashes yield common.ErrorNotFound.
	Consume(ctx context.Context, tokenHash string) (*models.PasswordReset, error)

	DeleteByUser(ctx context.Context, userID string) error
}
