package services

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/dmitrijs2005/notekeeper/internal/server/storage"
)

// uploadImages uploads files with bounded concurrency. Each result lands in
// the slot of its input file, so the returned images keep input order no
// matter which upload finishes first. Failed uploads are logged and skipped.
func (s *NoteService) uploadImages(ctx context.Context, files []storage.File) []models.Image {
	images := make([]models.Image, 0, len(files))
	if len(files) == 0 {
		return images
	}

	results := make([]storage.UploadResult, len(files))

	var g errgroup.Group
	g.SetLimit(s.uploadLimit)
	for i, f := range files {
		g.Go(func() error {
			results[i] = s.storage.Upload(ctx, f, s.folder)
			return nil
		})
	}
	_ = g.Wait()

	for i, r := range results {
		if !r.OK() || r.URL == "" || r.Handle == "" {
			s.log.Warn(ctx, "image upload skipped", "index", i, "file", files[i].Name, "error", r.Err)
			continue
		}
		images = append(images, models.Image{
			ID:            uuid.NewString(),
			URL:           r.URL,
			StorageHandle: r.Handle,
		})
	}
	return images
}
