package rest

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/labstack/echo/v4"

	"github.com/dmitrijs2005/notekeeper/internal/server/storage"
)

const imagesField = "images"

func isMultipart(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm)
}

// readImages loads the "images" parts of a multipart request. Every part
// must be at most maxImageSize bytes and be an image both by its declared
// type and by its content.
func (h *noteHandler) readImages(c echo.Context) ([]storage.File, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, validationError("invalid multipart form")
	}

	parts := form.File[imagesField]
	if h.maxImages > 0 && len(parts) > h.maxImages {
		return nil, validationError("at most %d images per request", h.maxImages)
	}

	files := make([]storage.File, 0, len(parts))
	for _, fh := range parts {
		f, err := h.readImage(fh)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

func (h *noteHandler) readImage(fh *multipart.FileHeader) (storage.File, error) {
	if fh.Size > h.maxImageSize {
		return storage.File{}, validationError("image %q exceeds %d MB", fh.Filename, h.maxImageSize>>20)
	}
	if declared := fh.Header.Get(echo.HeaderContentType); !acceptableDeclaredType(declared) {
		return storage.File{}, validationError("file %q is not an image", fh.Filename)
	}

	src, err := fh.Open()
	if err != nil {
		return storage.File{}, validationError("cannot read %q", fh.Filename)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, h.maxImageSize+1))
	if err != nil {
		return storage.File{}, validationError("cannot read %q", fh.Filename)
	}
	if int64(len(data)) > h.maxImageSize {
		return storage.File{}, validationError("image %q exceeds %d MB", fh.Filename, h.maxImageSize>>20)
	}
	if len(data) == 0 {
		return storage.File{}, validationError("image %q is empty", fh.Filename)
	}

	detected := mimetype.Detect(data)
	if !strings.HasPrefix(detected.String(), "image/") {
		return storage.File{}, validationError("file %q is not an image", fh.Filename)
	}

	return storage.File{Name: fh.Filename, ContentType: detected.String(), Data: data}, nil
}

// acceptableDeclaredType lets generic types through; the sniffed type
// decides in that case.
func acceptableDeclaredType(ct string) bool {
	switch {
	case ct == "", strings.HasPrefix(ct, echo.MIMEOctetStream):
		return true
	default:
		return strings.HasPrefix(ct, "image/")
	}
}
