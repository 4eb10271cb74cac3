package rest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/logging"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/dmitrijs2005/notekeeper/internal/server/services"
	"github.com/dmitrijs2005/notekeeper/internal/server/storage"
)

const goodToken = "good-token"

var testIdentity = &services.Identity{UserID: "u1", SessionID: "s1"}

type stubUsers struct {
	authErr     error
	registerIn  services.RegisterInput
	registerErr error
	loginErr    error
	changeIn    services.ChangePasswordInput
	resetToken  string
	loggedOut   bool
}

func (s *stubUsers) Authenticate(_ context.Context, token string) (*services.Identity, error) {
	if s.authErr != nil {
		return nil, s.authErr
	}
	if token != goodToken {
		return nil, common.ErrInvalidToken
	}
	return testIdentity, nil
}

func (s *stubUsers) Register(_ context.Context, in services.RegisterInput) (*services.AuthResult, error) {
	s.registerIn = in
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	return &services.AuthResult{
		User:      &models.User{ID: "u1", Email: in.Email, FirstName: in.FirstName, LastName: in.LastName, PasswordHash: "secret-hash"},
		Token:     goodToken,
		ExpiresAt: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
	}, nil
}

func (s *stubUsers) Login(_ context.Context, email, _ string) (*services.AuthResult, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &services.AuthResult{User: &models.User{ID: "u1", Email: email}, Token: goodToken}, nil
}

func (s *stubUsers) Logout(_ context.Context, id *services.Identity) error {
	s.loggedOut = id == testIdentity
	return nil
}

func (s *stubUsers) Profile(_ context.Context, id *services.Identity) (*models.User, error) {
	return &models.User{ID: id.UserID, Email: "ann@example.com", FirstName: "Ann"}, nil
}

func (s *stubUsers) UpdateProfile(_ context.Context, id *services.Identity, first, last string) (*models.User, error) {
	return &models.User{ID: id.UserID, FirstName: first, LastName: last}, nil
}

func (s *stubUsers) ChangePassword(_ context.Context, _ *services.Identity, in services.ChangePasswordInput) error {
	s.changeIn = in
	return nil
}

func (s *stubUsers) ForgotPassword(context.Context, string) error { return nil }

func (s *stubUsers) ResetPassword(_ context.Context, token, _ string) error {
	s.resetToken = token
	return nil
}

type stubNotes struct {
	err        error
	owner      string
	createIn   services.NoteInput
	patch      services.NotePatch
	files      []storage.File
	filter     services.ListFilter
	templateID string
	title      string
	deleted    []string
}

func (s *stubNotes) note(id string) *models.Note {
	return &models.Note{ID: id, Title: "t", Images: []models.Image{}}
}

func (s *stubNotes) Create(_ context.Context, owner string, in services.NoteInput, files []storage.File) (*models.Note, error) {
	s.owner, s.createIn, s.files = owner, in, files
	if s.err != nil {
		return nil, s.err
	}
	return s.note("n1"), nil
}

func (s *stubNotes) CreateFromTemplate(_ context.Context, owner, templateID, title string) (*models.Note, error) {
	s.owner, s.templateID, s.title = owner, templateID, title
	if s.err != nil {
		return nil, s.err
	}
	return s.note("n2"), nil
}

func (s *stubNotes) Get(_ context.Context, owner, id string) (*models.Note, error) {
	s.owner = owner
	if s.err != nil {
		return nil, s.err
	}
	return s.note(id), nil
}

func (s *stubNotes) List(_ context.Context, owner string, f services.ListFilter) ([]*models.Note, error) {
	s.owner, s.filter = owner, f
	return []*models.Note{s.note("a"), s.note("b")}, s.err
}

func (s *stubNotes) Update(_ context.Context, owner, id string, p services.NotePatch, files []storage.File) (*models.Note, error) {
	s.owner, s.patch, s.files = owner, p, files
	if s.err != nil {
		return nil, s.err
	}
	return s.note(id), nil
}

func (s *stubNotes) ToggleFavorite(_ context.Context, owner, id string) (*models.Note, error) {
	s.owner = owner
	n := s.note(id)
	n.IsFavorite = true
	return n, s.err
}

func (s *stubNotes) Delete(_ context.Context, owner, id string) error {
	s.owner = owner
	s.deleted = append(s.deleted, id)
	return s.err
}

func (s *stubNotes) DeleteImage(_ context.Context, owner, id, imageID string) error {
	s.owner = owner
	s.deleted = append(s.deleted, id+"/"+imageID)
	return s.err
}

type stubTemplates struct{}

func (stubTemplates) List() []models.Template {
	return []models.Template{{ID: "recipe", Name: "Recipe", Category: "Personal"}}
}

type stubAnalytics struct{ err error }

func (s stubAnalytics) Summary(context.Context, string) (*models.Analytics, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Analytics{TotalNotes: 3, ByCategory: []models.CategoryCount{}}, nil
}

type stubExport struct {
	format string
	ids    []string
}

func (s *stubExport) Export(_ context.Context, _, format string, ids []string) (*services.ExportFile, error) {
	s.format, s.ids = format, ids
	if format == "docx" {
		return nil, errors.Join(common.ErrorValidation, errors.New("unsupported export format"))
	}
	return &services.ExportFile{Name: "notes-export-2026-03-07.md", ContentType: "text/markdown; charset=utf-8", Body: []byte("# Notes")}, nil
}

type testEnv struct {
	users   *stubUsers
	notes   *stubNotes
	export  *stubExport
	handler http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{users: &stubUsers{}, notes: &stubNotes{}, export: &stubExport{}}
	srv := NewServer(":0", Services{
		Users:     env.users,
		Notes:     env.notes,
		Templates: stubTemplates{},
		Analytics: stubAnalytics{},
		Export:    env.export,
	}, Options{MaxImageSize: 1024, MaxImages: 2}, logging.Discard())
	env.handler = srv.Handler()
	return env
}

func (e *testEnv) do(method, target, body string, authed bool) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+goodToken)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}
