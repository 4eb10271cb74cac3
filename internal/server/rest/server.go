// Package rest exposes the note services over a JSON/multipart HTTP API
// built on echo.
package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/dmitrijs2005/notekeeper/internal/logging"
)

const shutdownTimeout = 10 * time.Second

// Services bundles everything the handlers call.
type Services struct {
	Users     UserService
	Notes     NoteService
	Templates TemplateService
	Analytics AnalyticsService
	Export    ExportService
}

// Options are the request limits enforced before a service is called.
type Options struct {
	MaxImageSize int64
	MaxImages    int
}

type Server struct {
	address string
	echo    *echo.Echo
	logger  logging.Logger
}

func NewServer(address string, svc Services, opts Options, l logging.Logger) *Server {
	s := &Server{
		address: address,
		echo:    echo.New(),
		logger:  l.With("module", "rest_server"),
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.HTTPErrorHandler = s.handleError

	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestID())
	s.echo.Use(requestLogger(s.logger))
	s.echo.Use(middleware.BodyLimit(bodyLimit(opts)))

	register(s.echo, svc, opts)
	return s
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves until ctx is cancelled and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping REST server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "REST shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting REST server", "address", s.address)

	if err := s.echo.Start(s.address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// bodyLimit leaves room for a full set of images plus form fields.
func bodyLimit(opts Options) string {
	kb := (int64(opts.MaxImages)*opts.MaxImageSize)/1024 + 1024
	return fmt.Sprintf("%dK", kb)
}

func requestLogger(l logging.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			args := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency, "request_id", v.RequestID}
			if v.Error != nil {
				args = append(args, "error", v.Error.Error())
			}
			l.Info(c.Request().Context(), "request", args...)
			return nil
		},
	})
}
