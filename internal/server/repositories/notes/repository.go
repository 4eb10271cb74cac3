package notes

import (
	"context"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/server/models"
)

// Filter narrows ListByOwner. The zero value lists everything.
type Filter struct {
	Category      string
	FavoritesOnly bool
	Search        string
}

// Repository is the note store. Every method is scoped by owner; a note
// that exists but belongs to someone else is reported as common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, note *models.Note) error
	GetByIDAndOwner(ctx context.Context, id, ownerID string) (*models.Note, error)
	ListByOwner(ctx context.Context, ownerID string, f Filter) ([]*models.Note, error)
	Update(ctx context.Context, note *models.Note) error
	MarkViewed(ctx context.Context, id, ownerID string, at time.Time) (*models.Note, error)
	ToggleFavorite(ctx context.Context, id, ownerID string, at time.Time) (*models.Note, error)
	Delete(ctx context.Context, id, ownerID string) error
}
