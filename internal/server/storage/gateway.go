// Package storage is the object storage gateway for note images. Uploads
// report their outcome as an UploadResult instead of an error so callers
// branch on it explicitly.
package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// File is one image payload to upload.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// UploadResult is either a success carrying URL and Handle, or a failure
// carrying Err (which wraps common.ErrorDependency).
type UploadResult struct {
	URL    string
	Handle string
	Err    error
}

func (r UploadResult) OK() bool { return r.Err == nil }

// Gateway uploads and deletes binary objects. Implementations bound every
// call with their own timeout.
type Gateway interface {
	Upload(ctx context.Context, f File, folder string) UploadResult
	Delete(ctx context.Context, handle string) error
}

// NewStorageKey returns "<folder>/<yyyy>/<mm>/<dd>/<uuid><ext>", keeping the
// lowercased extension of name when it looks sane.
func NewStorageKey(folder, name string, t time.Time) string {
	ext := strings.ToLower(filepath.Ext(name))
	if len(ext) > 6 || strings.ContainsAny(ext, `/\ `) {
		ext = ""
	}
	folder = strings.Trim(folder, "/")
	if folder == "" {
		folder = "notes"
	}
	return fmt.Sprintf("%s/%04d/%02d/%02d/%s%s", folder, t.Year(), t.Month(), t.Day(), uuid.NewString(), ext)
}
