package rest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/notekeeper/internal/common"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

type part struct {
	field, filename, contentType string
	data                         []byte
}

func multipartRequest(t *testing.T, method, target string, fields map[string]string, parts ...part) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, p := range parts {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, p.field, p.filename))
		h.Set("Content-Type", p.contentType)
		pw, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = pw.Write(p.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+goodToken)
	return req
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodGet, "/healthz", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestAuthMiddleware(t *testing.T) {
	env := newTestEnv(t)

	t.Run("missing header", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/notes", "", false)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "UNAUTHORIZED", decodeError(t, rec).Code)
	})

	t.Run("bad token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/notes", nil)
		req.Header.Set("Authorization", "Bearer nope")
		rec := env.serve(req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("store failure is not a 401", func(t *testing.T) {
		env := newTestEnv(t)
		env.users.authErr = errors.New("db down")
		rec := env.do(http.MethodGet, "/api/notes", "", true)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "internal error", decodeError(t, rec).Error)
	})

	t.Run("valid token reaches handler", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/notes", "", true)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "u1", env.notes.owner)
	})
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/auth/register",
		`{"firstName":"Ann","lastName":"Lee","email":"ann@example.com","password":"secret1"}`, false)
	require.Equal(t, http.StatusCreated, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, goodToken, body["token"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "ann@example.com", user["email"])
	assert.NotContains(t, rec.Body.String(), "secret-hash")
	assert.Equal(t, "Ann", env.users.registerIn.FirstName)
}

func TestRegister_MissingFields(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/auth/register", `{"email":"nope"}`, false)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", body.Code)
	assert.Contains(t, body.Error, "firstName is required")
	assert.Contains(t, body.Error, "email must be a valid email")
}

func TestRegister_Conflict(t *testing.T) {
	env := newTestEnv(t)
	env.users.registerErr = fmt.Errorf("%w: email already registered", common.ErrorAlreadyExists)

	rec := env.do(http.MethodPost, "/api/auth/register",
		`{"firstName":"Ann","lastName":"Lee","email":"ann@example.com","password":"secret1"}`, false)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CONFLICT", decodeError(t, rec).Code)
}

func TestLogin_Unauthorized(t *testing.T) {
	env := newTestEnv(t)
	env.users.loginErr = errors.Join(common.ErrorUnauthorized, errors.New("invalid email or password"))

	rec := env.do(http.MethodPost, "/api/auth/login", `{"email":"a@b.c","password":"x"}`, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin_MalformedBody(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodPost, "/api/auth/login", `{"email":`, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthenticatedAccountRoutes(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/auth/profile", "", true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"ann@example.com"`)

	rec = env.do(http.MethodPut, "/api/auth/profile", `{"firstName":"Bo"}`, true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"firstName":"Bo"`)

	rec = env.do(http.MethodPut, "/api/auth/change-password",
		`{"email":"ann@example.com","currentPassword":"old","newPassword":"newpass"}`, true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "old", env.users.changeIn.CurrentPassword)

	rec = env.do(http.MethodPost, "/api/auth/logout", "", true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.users.loggedOut)
}

func TestPasswordResetRoutes(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/auth/forgot-password", `{"email":"ann@example.com"}`, false)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodPost, "/api/auth/reset-password", `{"token":"tok","newPassword":"newpass"}`, false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tok", env.users.resetToken)

	rec = env.do(http.MethodPost, "/api/auth/reset-password", `{"newPassword":"newpass"}`, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListNotes_Filters(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/notes?category=Work&favorites=true&q=plan", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Work", env.notes.filter.Category)
	assert.True(t, env.notes.filter.FavoritesOnly)
	assert.Equal(t, "plan", env.notes.filter.Search)
}

func TestCreateNote_JSON(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/notes", `{"title":"T","category":"Work","content":"c"}`, true)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "T", env.notes.createIn.Title)
	assert.Empty(t, env.notes.files)
}

func TestCreateNote_Multipart(t *testing.T) {
	env := newTestEnv(t)

	req := multipartRequest(t, http.MethodPost, "/api/notes",
		map[string]string{"title": "Trip", "category": "Travel"},
		part{field: "images", filename: "a.png", contentType: "image/png", data: pngBytes},
		part{field: "images", filename: "b.bin", contentType: "application/octet-stream", data: pngBytes},
	)
	rec := env.serve(req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	assert.Equal(t, "Trip", env.notes.createIn.Title)
	require.Len(t, env.notes.files, 2)
	assert.Equal(t, "a.png", env.notes.files[0].Name)
	assert.Equal(t, "b.bin", env.notes.files[1].Name)
	assert.Equal(t, "image/png", env.notes.files[1].ContentType)
}

func TestCreateNote_MultipartRejections(t *testing.T) {
	cases := []struct {
		name  string
		parts []part
		want  string
	}{
		{
			name:  "declared non-image",
			parts: []part{{field: "images", filename: "a.txt", contentType: "text/plain", data: pngBytes}},
			want:  "not an image",
		},
		{
			name:  "content not an image",
			parts: []part{{field: "images", filename: "a.png", contentType: "image/png", data: []byte("just text, honestly")}},
			want:  "not an image",
		},
		{
			name:  "too large",
			parts: []part{{field: "images", filename: "a.png", contentType: "image/png", data: append(pngBytes, make([]byte, 2048)...)}},
			want:  "exceeds",
		},
		{
			name: "too many",
			parts: []part{
				{field: "images", filename: "a.png", contentType: "image/png", data: pngBytes},
				{field: "images", filename: "b.png", contentType: "image/png", data: pngBytes},
				{field: "images", filename: "c.png", contentType: "image/png", data: pngBytes},
			},
			want: "at most 2 images",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			req := multipartRequest(t, http.MethodPost, "/api/notes", map[string]string{"title": "T", "category": "C"}, tc.parts...)
			rec := env.serve(req)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decodeError(t, rec).Error, tc.want)
			assert.Empty(t, env.notes.createIn.Title, "service must not be called")
		})
	}
}

func TestUpdateNote_MultipartDistinguishesAbsentFields(t *testing.T) {
	env := newTestEnv(t)

	req := multipartRequest(t, http.MethodPut, "/api/notes/n1", map[string]string{"content": ""},
		part{field: "images", filename: "a.png", contentType: "image/png", data: pngBytes})
	rec := env.serve(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Nil(t, env.notes.patch.Title)
	assert.Nil(t, env.notes.patch.Category)
	require.NotNil(t, env.notes.patch.Content)
	assert.Equal(t, "", *env.notes.patch.Content)
	assert.Len(t, env.notes.files, 1)
}

func TestUpdateNote_JSON(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPut, "/api/notes/n1", `{"title":"New"}`, true)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, env.notes.patch.Title)
	assert.Equal(t, "New", *env.notes.patch.Title)
	assert.Nil(t, env.notes.patch.Content)
}

func TestNoteErrorsMapToStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: note", common.ErrorNotFound), http.StatusNotFound, "NOT_FOUND"},
		{fmt.Errorf("%w: title is required", common.ErrorValidation), http.StatusBadRequest, "VALIDATION_ERROR"},
		{fmt.Errorf("%w: s3", common.ErrorDependency), http.StatusServiceUnavailable, "DEPENDENCY_UNAVAILABLE"},
		{errors.New("pq: connection reset"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			env := newTestEnv(t)
			env.notes.err = tc.err
			rec := env.do(http.MethodGet, "/api/notes/n1", "", true)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.code, decodeError(t, rec).Code)
		})
	}
}

func TestInternalErrorDoesNotLeakDetails(t *testing.T) {
	env := newTestEnv(t)
	env.notes.err = errors.New("pq: password authentication failed for user admin")

	rec := env.do(http.MethodGet, "/api/notes/n1", "", true)
	assert.NotContains(t, rec.Body.String(), "admin")
}

func TestNoteMutations(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPatch, "/api/notes/n1/favorite", "", true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"isFavorite":true`)

	rec = env.do(http.MethodDelete, "/api/notes/n1/image/i9", "", true)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodDelete, "/api/notes/n1", "", true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"n1/i9", "n1"}, env.notes.deleted)
}

func TestTemplatesAndAnalytics(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/templates", "", true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"recipe"`)

	rec = env.do(http.MethodPost, "/api/templates/recipe/notes", `{"title":"Soup"}`, true)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "recipe", env.notes.templateID)
	assert.Equal(t, "Soup", env.notes.title)

	rec = env.do(http.MethodPost, "/api/templates/recipe/notes", "", true)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "", env.notes.title)

	rec = env.do(http.MethodGet, "/api/analytics", "", true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"totalNotes":3`)
}

func TestExport(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/export?format=md&ids=a,%20b,,c", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "md", env.export.format)
	assert.Equal(t, []string{"a", "b", "c"}, env.export.ids)
	assert.Equal(t, `attachment; filename="notes-export-2026-03-07.md"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/markdown"))
	assert.Equal(t, "# Notes", rec.Body.String())

	rec = env.do(http.MethodGet, "/api/export", "", true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "json", env.export.format)
	assert.Nil(t, env.export.ids)

	rec = env.do(http.MethodGet, "/api/export?format=docx", "", true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, "REQUEST_ENTITY_TOO_LARGE", statusCode(http.StatusRequestEntityTooLarge))
	assert.Equal(t, "HTTP_ERROR", statusCode(799))
}

func TestBodyLimit(t *testing.T) {
	assert.Equal(t, "3072K", bodyLimit(Options{MaxImageSize: 1 << 20, MaxImages: 2}))
}
