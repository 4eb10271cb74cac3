// Package api is the HTTP client the CLI uses to talk to the NoteKeeper
// REST API. Every authenticated call takes the session token explicitly.
package api

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

type Client struct {
	http *resty.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &Client{http: c}
}

func (c *Client) request(ctx context.Context, token string) *resty.Request {
	r := c.http.R().SetContext(ctx).SetError(&errorBody{})
	if token != "" {
		r.SetAuthToken(token)
	}
	return r
}

// check turns transport failures and non-2xx responses into errors.
func check(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !resp.IsError() {
		return nil
	}
	apiErr := &Error{Status: resp.StatusCode()}
	if body, ok := resp.Error().(*errorBody); ok && body != nil {
		apiErr.Code = body.Code
		apiErr.Message = body.Error
	}
	return apiErr
}

func (c *Client) Health(ctx context.Context) error {
	return check(c.http.R().SetContext(ctx).Get("/healthz"))
}

func (c *Client) Register(ctx context.Context, in RegisterRequest) (*Session, error) {
	var s Session
	err := check(c.request(ctx, "").SetBody(in).SetResult(&s).Post("/api/auth/register"))
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var s Session
	body := map[string]string{"email": email, "password": password}
	if err := check(c.request(ctx, "").SetBody(body).SetResult(&s).Post("/api/auth/login")); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	return check(c.request(ctx, token).Post("/api/auth/logout"))
}

func (c *Client) Profile(ctx context.Context, token string) (*Owner, error) {
	var res struct {
		User *Owner `json:"user"`
	}
	if err := check(c.request(ctx, token).SetResult(&res).Get("/api/auth/profile")); err != nil {
		return nil, err
	}
	return res.User, nil
}

func (c *Client) ListNotes(ctx context.Context, token string, p ListParams) ([]Note, error) {
	var list []Note
	r := c.request(ctx, token).SetResult(&list)
	if p.Category != "" {
		r.SetQueryParam("category", p.Category)
	}
	if p.FavoritesOnly {
		r.SetQueryParam("favorites", strconv.FormatBool(true))
	}
	if p.Search != "" {
		r.SetQueryParam("q", p.Search)
	}
	if err := check(r.Get("/api/notes")); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) GetNote(ctx context.Context, token, id string) (*Note, error) {
	var n Note
	err := check(c.request(ctx, token).SetResult(&n).SetPathParam("id", id).Get("/api/notes/{id}"))
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// CreateNote posts a multipart form with the fields and the image files
// found at imagePaths.
func (c *Client) CreateNote(ctx context.Context, token string, f NoteFields, imagePaths []string) (*Note, error) {
	var n Note
	r, err := c.noteForm(ctx, token, f, imagePaths)
	if err != nil {
		return nil, err
	}
	if err := check(r.SetResult(&n).Post("/api/notes")); err != nil {
		return nil, err
	}
	return &n, nil
}

func (c *Client) UpdateNote(ctx context.Context, token, id string, f NoteFields, imagePaths []string) (*Note, error) {
	var n Note
	r, err := c.noteForm(ctx, token, f, imagePaths)
	if err != nil {
		return nil, err
	}
	if err := check(r.SetResult(&n).SetPathParam("id", id).Put("/api/notes/{id}")); err != nil {
		return nil, err
	}
	return &n, nil
}

func (c *Client) noteForm(ctx context.Context, token string, f NoteFields, imagePaths []string) (*resty.Request, error) {
	fields := map[string]string{}
	if f.Title != nil {
		fields["title"] = *f.Title
	}
	if f.Category != nil {
		fields["category"] = *f.Category
	}
	if f.Content != nil {
		fields["content"] = *f.Content
	}

	r := c.request(ctx, token).SetMultipartFormData(fields)
	for _, p := range imagePaths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read image: %w", err)
		}
		r.SetFileReader("images", filepath.Base(p), bytes.NewReader(data))
	}
	return r, nil
}

func (c *Client) ToggleFavorite(ctx context.Context, token, id string) (*Note, error) {
	var n Note
	err := check(c.request(ctx, token).SetResult(&n).SetPathParam("id", id).Patch("/api/notes/{id}/favorite"))
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (c *Client) DeleteNote(ctx context.Context, token, id string) error {
	return check(c.request(ctx, token).SetPathParam("id", id).Delete("/api/notes/{id}"))
}

func (c *Client) DeleteImage(ctx context.Context, token, id, imageID string) error {
	return check(c.request(ctx, token).
		SetPathParams(map[string]string{"id": id, "imageId": imageID}).
		Delete("/api/notes/{id}/image/{imageId}"))
}

func (c *Client) Templates(ctx context.Context, token string) ([]Template, error) {
	var list []Template
	if err := check(c.request(ctx, token).SetResult(&list).Get("/api/templates")); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) CreateFromTemplate(ctx context.Context, token, templateID, title string) (*Note, error) {
	var n Note
	err := check(c.request(ctx, token).
		SetPathParam("id", templateID).
		SetBody(map[string]string{"title": title}).
		SetResult(&n).
		Post("/api/templates/{id}/notes"))
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (c *Client) Analytics(ctx context.Context, token string) (*Analytics, error) {
	var a Analytics
	if err := check(c.request(ctx, token).SetResult(&a).Get("/api/analytics")); err != nil {
		return nil, err
	}
	return &a, nil
}

// Export downloads the owner's notes in format. The file name comes from
// Content-Disposition.
func (c *Client) Export(ctx context.Context, token, format string, ids []string) (*Export, error) {
	r := c.request(ctx, token).SetQueryParam("format", format)
	if len(ids) > 0 {
		r.SetQueryParam("ids", strings.Join(ids, ","))
	}

	resp, err := r.Get("/api/export")
	if err := check(resp, err); err != nil {
		return nil, err
	}

	name := "notes-export." + format
	if _, params, err := mime.ParseMediaType(resp.Header().Get("Content-Disposition")); err == nil && params["filename"] != "" {
		name = params["filename"]
	}
	return &Export{FileName: name, Body: resp.Body()}, nil
}
