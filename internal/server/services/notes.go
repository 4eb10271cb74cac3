package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/logging"
	"github.com/dmitrijs2005/notekeeper/internal/server/config"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/notes"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/notekeeper/internal/server/storage"
)

var now = func() time.Time { return time.Now().UTC() }

// NoteInput carries the fields of a new note.
type NoteInput struct {
	Title    string
	Category string
	Content  string
	Template string
}

// NotePatch is a partial update. Nil fields are left alone; blank title or
// category are ignored too, while content may be cleared.
type NotePatch struct {
	Title    *string
	Category *string
	Content  *string
}

// ListFilter narrows List. The zero value lists every note of the owner.
type ListFilter struct {
	Category      string
	FavoritesOnly bool
	Search        string
}

// NoteService owns every state transition of a note. It is the only place
// that talks to both the note store and the object storage gateway, and it
// never lets a storage failure fail the request.
type NoteService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	storage     storage.Gateway
	templates   *TemplateService
	log         logging.Logger
	folder      string
	uploadLimit int
}

func NewNoteService(db *sql.DB, m repomanager.RepositoryManager, gw storage.Gateway,
	templates *TemplateService, cfg *config.Config, log logging.Logger) *NoteService {
	folder := cfg.ImageFolder
	if folder == "" {
		folder = common.DefaultImageFolder
	}
	limit := cfg.UploadConcurrency
	if limit < 1 {
		limit = 1
	}
	return &NoteService{
		db:          db,
		repomanager: m,
		storage:     gw,
		templates:   templates,
		log:         log.With("module", "notes"),
		folder:      folder,
		uploadLimit: limit,
	}
}

// Create validates input, uploads images best-effort and stores the note.
func (s *NoteService) Create(ctx context.Context, owner string, in NoteInput, files []storage.File) (*models.Note, error) {
	title := strings.TrimSpace(in.Title)
	category := strings.TrimSpace(in.Category)
	if title == "" || category == "" {
		return nil, fmt.Errorf("%w: title and category are required", common.ErrorValidation)
	}

	images := s.uploadImages(ctx, files)

	t := now()
	note := &models.Note{
		ID:         uuid.NewString(),
		OwnerID:    owner,
		Title:      title,
		Category:   category,
		Content:    strings.TrimSpace(in.Content),
		Images:     images,
		LastViewed: t,
		CreatedAt:  t,
		UpdatedAt:  t,
	}
	if tpl := strings.TrimSpace(in.Template); tpl != "" {
		note.Template = &tpl
	}

	if err := s.repomanager.Notes(s.db).Create(ctx, note); err != nil {
		s.discardImages(ctx, images)
		return nil, fmt.Errorf("error creating note: %w", err)
	}

	s.log.Info(ctx, "note created", "note_id", note.ID, "owner", owner, "images", len(images), "files", len(files))
	s.attachOwner(ctx, owner, note)
	return note, nil
}

// CreateFromTemplate creates a note whose category and content come from a
// built-in template. An empty title falls back to the template name.
func (s *NoteService) CreateFromTemplate(ctx context.Context, owner, templateID, title string) (*models.Note, error) {
	tpl, err := s.templates.Get(templateID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(title) == "" {
		title = tpl.Name
	}
	return s.Create(ctx, owner, NoteInput{
		Title:    title,
		Category: tpl.Category,
		Content:  tpl.Content,
		Template: tpl.ID,
	}, nil)
}

// Get returns the note and records the view.
func (s *NoteService) Get(ctx context.Context, owner, id string) (*models.Note, error) {
	if err := checkNoteID(id); err != nil {
		return nil, err
	}
	note, err := s.repomanager.Notes(s.db).MarkViewed(ctx, id, owner, now())
	if err != nil {
		return nil, wrapNoteErr("error loading note", err)
	}
	s.attachOwner(ctx, owner, note)
	return note, nil
}

// List returns the owner's notes, newest first.
func (s *NoteService) List(ctx context.Context, owner string, f ListFilter) ([]*models.Note, error) {
	list, err := s.repomanager.Notes(s.db).ListByOwner(ctx, owner, notes.Filter(f))
	if err != nil {
		return nil, fmt.Errorf("error listing notes: %w", err)
	}
	if len(list) > 0 {
		if o := s.loadOwner(ctx, owner); o != nil {
			for _, n := range list {
				n.Owner = o
			}
		}
	}
	return list, nil
}

// Update applies patch and appends successfully uploaded images.
func (s *NoteService) Update(ctx context.Context, owner, id string, patch NotePatch, files []storage.File) (*models.Note, error) {
	if err := checkNoteID(id); err != nil {
		return nil, err
	}
	repo := s.repomanager.Notes(s.db)

	note, err := repo.GetByIDAndOwner(ctx, id, owner)
	if err != nil {
		return nil, wrapNoteErr("error loading note", err)
	}

	if patch.Title != nil {
		if v := strings.TrimSpace(*patch.Title); v != "" {
			note.Title = v
		}
	}
	if patch.Category != nil {
		if v := strings.TrimSpace(*patch.Category); v != "" {
			note.Category = v
		}
	}
	if patch.Content != nil {
		note.Content = strings.TrimSpace(*patch.Content)
	}

	added := s.uploadImages(ctx, files)
	note.Images = append(note.Images, added...)
	note.UpdatedAt = now()

	if err := repo.Update(ctx, note); err != nil {
		s.discardImages(ctx, added)
		return nil, wrapNoteErr("error updating note", err)
	}

	s.log.Info(ctx, "note updated", "note_id", note.ID, "images_added", len(added), "files", len(files))
	s.attachOwner(ctx, owner, note)
	return note, nil
}

func (s *NoteService) ToggleFavorite(ctx context.Context, owner, id string) (*models.Note, error) {
	if err := checkNoteID(id); err != nil {
		return nil, err
	}
	note, err := s.repomanager.Notes(s.db).ToggleFavorite(ctx, id, owner, now())
	if err != nil {
		return nil, wrapNoteErr("error toggling favorite", err)
	}
	s.attachOwner(ctx, owner, note)
	return note, nil
}

// Delete tries to remove every image from storage and then deletes the
// note whatever those attempts returned.
func (s *NoteService) Delete(ctx context.Context, owner, id string) error {
	if err := checkNoteID(id); err != nil {
		return err
	}
	repo := s.repomanager.Notes(s.db)

	note, err := repo.GetByIDAndOwner(ctx, id, owner)
	if err != nil {
		return wrapNoteErr("error loading note", err)
	}

	s.discardImages(ctx, note.Images)

	if err := repo.Delete(ctx, id, owner); err != nil {
		return wrapNoteErr("error deleting note", err)
	}

	s.log.Info(ctx, "note deleted", "note_id", id, "images", len(note.Images))
	return nil
}

// DeleteImage removes one image. The note is saved without it even when
// the storage delete fails.
func (s *NoteService) DeleteImage(ctx context.Context, owner, id, imageID string) error {
	if err := checkNoteID(id); err != nil {
		return err
	}
	repo := s.repomanager.Notes(s.db)

	note, err := repo.GetByIDAndOwner(ctx, id, owner)
	if err != nil {
		return wrapNoteErr("error loading note", err)
	}

	idx := note.ImageIndex(imageID)
	if idx < 0 {
		return fmt.Errorf("%w: image %s", common.ErrorNotFound, imageID)
	}
	img := note.Images[idx]

	s.discardImages(ctx, []models.Image{img})

	note.Images = append(note.Images[:idx:idx], note.Images[idx+1:]...)
	note.UpdatedAt = now()

	if err := repo.Update(ctx, note); err != nil {
		return wrapNoteErr("error updating note", err)
	}

	s.log.Info(ctx, "note image deleted", "note_id", id, "image_id", imageID)
	return nil
}

// discardImages deletes images from storage one by one. Failures are
// logged and leave the object orphaned.
func (s *NoteService) discardImages(ctx context.Context, images []models.Image) {
	for _, img := range images {
		if err := s.storage.Delete(ctx, img.StorageHandle); err != nil {
			s.log.Warn(ctx, "image delete failed, object orphaned",
				"image_id", img.ID, "handle", img.StorageHandle, "error", err)
		}
	}
}

func (s *NoteService) loadOwner(ctx context.Context, owner string) *models.Owner {
	u, err := s.repomanager.Users(s.db).GetByID(ctx, owner)
	if err != nil {
		s.log.Warn(ctx, "owner lookup failed", "owner", owner, "error", err)
		return nil
	}
	return u.Owner()
}

func (s *NoteService) attachOwner(ctx context.Context, owner string, note *models.Note) {
	note.Owner = s.loadOwner(ctx, owner)
}

// checkNoteID turns ids that are not UUIDs into a plain not-found before
// they reach the uuid column.
func checkNoteID(id string) error {
	if uuid.Validate(id) != nil {
		return wrapNoteErr("", common.ErrorNotFound)
	}
	return nil
}

// wrapNoteErr keeps not-found messages uniform so callers cannot tell a
// missing note from someone else's.
func wrapNoteErr(msg string, err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("%w: note", common.ErrorNotFound)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
