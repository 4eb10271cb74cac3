// Package notes persists notes in PostgreSQL. Image attachments live in a
// JSONB array on the note row so their order is stored with the note.
package notes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/dbx"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const noteColumns = `id, owner_id, title, category, content, images, is_favorite, template, last_viewed, created_at, updated_at`

func scanNote(row interface{ Scan(...any) error }) (*models.Note, error) {
	var (
		n        models.Note
		images   []byte
		template sql.NullString
	)

	err := row.Scan(&n.ID, &n.OwnerID, &n.Title, &n.Category, &n.Content, &images,
		&n.IsFavorite, &template, &n.LastViewed, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	n.Images = []models.Image{}
	if len(images) > 0 {
		if err := json.Unmarshal(images, &n.Images); err != nil {
			return nil, fmt.Errorf("decode images of note %s: %w", n.ID, err)
		}
	}
	if template.Valid {
		n.Template = &template.String
	}

	return &n, nil
}

func encodeImages(images []models.Image) (string, error) {
	if images == nil {
		images = []models.Image{}
	}
	b, err := json.Marshal(images)
	if err != nil {
		return "", fmt.Errorf("encode images: %w", err)
	}
	return string(b), nil
}

func (r *PostgresRepository) Create(ctx context.Context, note *models.Note) error {
	images, err := encodeImages(note.Images)
	if err != nil {
		return err
	}

	query :=
		`INSERT INTO notes (id, owner_id, title, category, content, images, is_favorite, template, last_viewed, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = r.db.ExecContext(ctx, query, note.ID, note.OwnerID, note.Title, note.Category, note.Content,
		images, note.IsFavorite, note.Template, note.LastViewed, note.CreatedAt, note.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByIDAndOwner(ctx context.Context, id, ownerID string) (*models.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE id = $1 AND owner_id = $2`
	return scanNote(r.db.QueryRowContext(ctx, query, id, ownerID))
}

// ListByOwner returns the owner's notes, newest first.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string, f Filter) ([]*models.Note, error) {
	var sb strings.Builder
	args := []any{ownerID}

	sb.WriteString(`SELECT ` + noteColumns + ` FROM notes WHERE owner_id = $1`)

	if c := strings.TrimSpace(f.Category); c != "" {
		args = append(args, c)
		sb.WriteString(` AND lower(category) = lower($` + strconv.Itoa(len(args)) + `)`)
	}
	if f.FavoritesOnly {
		sb.WriteString(` AND is_favorite`)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+escapeLike(s)+"%")
		p := strconv.Itoa(len(args))
		sb.WriteString(` AND (title ILIKE $` + p + ` OR content ILIKE $` + p + `)`)
	}

	sb.WriteString(` ORDER BY created_at DESC`)

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Note, 0)
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

// Update writes the editable fields of note (title, category, content,
// images, updated_at). Favorite and last-viewed have their own atomic
// statements. The row must match both id and owner.
func (r *PostgresRepository) Update(ctx context.Context, note *models.Note) error {
	images, err := encodeImages(note.Images)
	if err != nil {
		return err
	}

	query :=
		`UPDATE notes SET title = $3, category = $4, content = $5, images = $6, updated_at = $7
		 WHERE id = $1 AND owner_id = $2`

	res, err := r.db.ExecContext(ctx, query, note.ID, note.OwnerID, note.Title, note.Category, note.Content,
		images, note.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	switch {
	case err != nil:
		return fmt.Errorf("db error: %w", err)
	case n == 0:
		return common.ErrorNotFound
	}
	return nil
}

// MarkViewed moves last_viewed forward to at (never backwards) and returns
// the note.
func (r *PostgresRepository) MarkViewed(ctx context.Context, id, ownerID string, at time.Time) (*models.Note, error) {
	query :=
		`UPDATE notes SET last_viewed = GREATEST(last_viewed, $3)
		 WHERE id = $1 AND owner_id = $2
		 RETURNING ` + noteColumns
	return scanNote(r.db.QueryRowContext(ctx, query, id, ownerID, at))
}

// ToggleFavorite flips is_favorite in a single statement so two concurrent
// toggles cannot collapse into one.
func (r *PostgresRepository) ToggleFavorite(ctx context.Context, id, ownerID string, at time.Time) (*models.Note, error) {
	query :=
		`UPDATE notes SET is_favorite = NOT is_favorite, updated_at = $3
		 WHERE id = $1 AND owner_id = $2
		 RETURNING ` + noteColumns
	return scanNote(r.db.QueryRowContext(ctx, query, id, ownerID, at))
}

func (r *PostgresRepository) Delete(ctx context.Context, id, ownerID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	switch {
	case err != nil:
		return fmt.Errorf("db error: %w", err)
	case n == 0:
		return common.ErrorNotFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
