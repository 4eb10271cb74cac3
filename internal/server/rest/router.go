package rest

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/dmitrijs2005/notekeeper/internal/server/services"
	"github.com/dmitrijs2005/notekeeper/internal/server/storage"
)

type UserService interface {
	Authenticator
	Register(ctx context.Context, in services.RegisterInput) (*services.AuthResult, error)
	Login(ctx context.Context, email, password string) (*services.AuthResult, error)
	Logout(ctx context.Context, id *services.Identity) error
	Profile(ctx context.Context, id *services.Identity) (*models.User, error)
	UpdateProfile(ctx context.Context, id *services.Identity, firstName, lastName string) (*models.User, error)
	ChangePassword(ctx context.Context, id *services.Identity, in services.ChangePasswordInput) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type NoteService interface {
	Create(ctx context.Context, owner string, in services.NoteInput, files []storage.File) (*models.Note, error)
	CreateFromTemplate(ctx context.Context, owner, templateID, title string) (*models.Note, error)
	Get(ctx context.Context, owner, id string) (*models.Note, error)
	List(ctx context.Context, owner string, f services.ListFilter) ([]*models.Note, error)
	Update(ctx context.Context, owner, id string, patch services.NotePatch, files []storage.File) (*models.Note, error)
	ToggleFavorite(ctx context.Context, owner, id string) (*models.Note, error)
	Delete(ctx context.Context, owner, id string) error
	DeleteImage(ctx context.Context, owner, id, imageID string) error
}

type TemplateService interface {
	List() []models.Template
}

type AnalyticsService interface {
	Summary(ctx context.Context, owner string) (*models.Analytics, error)
}

type ExportService interface {
	Export(ctx context.Context, owner, format string, ids []string) (*services.ExportFile, error)
}

func register(e *echo.Echo, svc Services, opts Options) {
	e.Validator = NewCustomValidator()

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	ah := &authHandler{users: svc.Users}
	nh := &noteHandler{notes: svc.Notes, maxImageSize: opts.MaxImageSize, maxImages: opts.MaxImages}
	mh := &miscHandler{notes: svc.Notes, templates: svc.Templates, analytics: svc.Analytics, export: svc.Export}

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", ah.register)
	api.POST("/auth/login", ah.login)
	api.POST("/auth/forgot-password", ah.forgotPassword)
	api.POST("/auth/reset-password", ah.resetPassword)

	secured := api.Group("", requireIdentity(svc.Users))

	secured.GET("/auth/profile", ah.profile)
	secured.PUT("/auth/profile", ah.updateProfile)
	secured.PUT("/auth/change-password", ah.changePassword)
	secured.POST("/auth/logout", ah.logout)

	secured.GET("/notes", nh.list)
	secured.POST("/notes", nh.create)
	secured.GET("/notes/:id", nh.get)
	secured.PUT("/notes/:id", nh.update)
	secured.PATCH("/notes/:id/favorite", nh.toggleFavorite)
	secured.DELETE("/notes/:id", nh.delete)
	secured.DELETE("/notes/:id/image/:imageId", nh.deleteImage)

	secured.GET("/templates", mh.listTemplates)
	secured.POST("/templates/:id/notes", mh.createFromTemplate)
	secured.GET("/analytics", mh.summary)
	secured.GET("/export", mh.exportNotes)
}
