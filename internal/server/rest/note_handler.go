package rest

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/dmitrijs2005/notekeeper/internal/server/services"
	"github.com/dmitrijs2005/notekeeper/internal/server/storage"
)

type noteHandler struct {
	notes        NoteService
	maxImageSize int64
	maxImages    int
}

type createNoteRequest struct {
	Title    string `json:"title"`
	Category string `json:"category"`
	Content  string `json:"content"`
	Template string `json:"template"`
}

type updateNoteRequest struct {
	Title    *string `json:"title"`
	Category *string `json:"category"`
	Content  *string `json:"content"`
}

func (h *noteHandler) list(c echo.Context) error {
	favorites, _ := strconv.ParseBool(c.QueryParam("favorites"))

	list, err := h.notes.List(c.Request().Context(), identity(c).UserID, services.ListFilter{
		Category:      c.QueryParam("category"),
		FavoritesOnly: favorites,
		Search:        c.QueryParam("q"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (h *noteHandler) create(c echo.Context) error {
	var (
		req   createNoteRequest
		files []storage.File
	)

	if isMultipart(c) {
		var err error
		if files, err = h.readImages(c); err != nil {
			return err
		}
		req = createNoteRequest{
			Title:    c.FormValue("title"),
			Category: c.FormValue("category"),
			Content:  c.FormValue("content"),
			Template: c.FormValue("template"),
		}
	} else if err := c.Bind(&req); err != nil {
		return validationError("invalid request body")
	}

	note, err := h.notes.Create(c.Request().Context(), identity(c).UserID, services.NoteInput{
		Title:    req.Title,
		Category: req.Category,
		Content:  req.Content,
		Template: req.Template,
	}, files)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, note)
}

func (h *noteHandler) get(c echo.Context) error {
	note, err := h.notes.Get(c.Request().Context(), identity(c).UserID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, note)
}

func (h *noteHandler) update(c echo.Context) error {
	var (
		req   updateNoteRequest
		files []storage.File
	)

	if isMultipart(c) {
		var err error
		if files, err = h.readImages(c); err != nil {
			return err
		}
		req = updateNoteRequest{
			Title:    formField(c, "title"),
			Category: formField(c, "category"),
			Content:  formField(c, "content"),
		}
	} else if err := c.Bind(&req); err != nil {
		return validationError("invalid request body")
	}

	note, err := h.notes.Update(c.Request().Context(), identity(c).UserID, c.Param("id"), services.NotePatch{
		Title:    req.Title,
		Category: req.Category,
		Content:  req.Content,
	}, files)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, note)
}

func (h *noteHandler) toggleFavorite(c echo.Context) error {
	note, err := h.notes.ToggleFavorite(c.Request().Context(), identity(c).UserID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, note)
}

func (h *noteHandler) delete(c echo.Context) error {
	if err := h.notes.Delete(c.Request().Context(), identity(c).UserID, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Note deleted"})
}

func (h *noteHandler) deleteImage(c echo.Context) error {
	err := h.notes.DeleteImage(c.Request().Context(), identity(c).UserID, c.Param("id"), c.Param("imageId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Image deleted"})
}

// formField distinguishes an absent multipart field (nil) from an empty one.
func formField(c echo.Context, name string) *string {
	form, err := c.MultipartForm()
	if err != nil {
		return nil
	}
	values, ok := form.Value[name]
	if !ok || len(values) == 0 {
		return nil
	}
	v := values[0]
	return &v
}
