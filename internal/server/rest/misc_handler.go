package rest

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

type miscHandler struct {
	notes     NoteService
	templates TemplateService
	analytics AnalyticsService
	export    ExportService
}

type fromTemplateRequest struct {
	Title string `json:"title"`
}

func (h *miscHandler) listTemplates(c echo.Context) error {
	return c.JSON(http.StatusOK, h.templates.List())
}

func (h *miscHandler) createFromTemplate(c echo.Context) error {
	var req fromTemplateRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return validationError("invalid request body")
		}
	}

	note, err := h.notes.CreateFromTemplate(c.Request().Context(), identity(c).UserID, c.Param("id"), req.Title)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, note)
}

func (h *miscHandler) summary(c echo.Context) error {
	a, err := h.analytics.Summary(c.Request().Context(), identity(c).UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

// exportNotes streams the owner's notes as an attachment. "ids" is an
// optional comma separated subset.
func (h *miscHandler) exportNotes(c echo.Context) error {
	format := c.QueryParam("format")
	if format == "" {
		format = "json"
	}

	var ids []string
	for _, id := range strings.Split(c.QueryParam("ids"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}

	file, err := h.export.Export(c.Request().Context(), identity(c).UserID, format, ids)
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.Name))
	return c.Blob(http.StatusOK, file.ContentType, file.Body)
}
