// Package sessions declares the server-side store of issued session tokens.
package sessions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, s *models.Session) error

	// Find returns common.ErrorNotFound when the session is absent.
	Find(ctx context.Context, id string) (*models.Session, error)

	// Delete removes one session; deleting a missing one is not an error.
	Delete(ctx context.Context, id string) error

	// DeleteByUser removes every session of userID except exceptID and
	// returns the removed ids.
	DeleteByUser(ctx context.Context, userID, exceptID string) ([]string, error)

	// DeleteExpired purges sessions that expired before the given time.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
