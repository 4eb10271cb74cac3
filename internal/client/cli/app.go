package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/notekeeper/internal/client/api"
	"github.com/dmitrijs2005/notekeeper/internal/client/config"
)

// API is the subset of *api.Client the shell uses.
type API interface {
	Health(ctx context.Context) error
	Register(ctx context.Context, in api.RegisterRequest) (*api.Session, error)
	Login(ctx context.Context, email, password string) (*api.Session, error)
	Logout(ctx context.Context, token string) error
	ListNotes(ctx context.Context, token string, p api.ListParams) ([]api.Note, error)
	GetNote(ctx context.Context, token, id string) (*api.Note, error)
	CreateNote(ctx context.Context, token string, f api.NoteFields, imagePaths []string) (*api.Note, error)
	UpdateNote(ctx context.Context, token, id string, f api.NoteFields, imagePaths []string) (*api.Note, error)
	ToggleFavorite(ctx context.Context, token, id string) (*api.Note, error)
	DeleteNote(ctx context.Context, token, id string) error
	DeleteImage(ctx context.Context, token, id, imageID string) error
	Templates(ctx context.Context, token string) ([]api.Template, error)
	CreateFromTemplate(ctx context.Context, token, templateID, title string) (*api.Note, error)
	Analytics(ctx context.Context, token string) (*api.Analytics, error)
	Export(ctx context.Context, token, format string, ids []string) (*api.Export, error)
}

type App struct {
	api    API
	token  string
	user   *api.Owner
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config) *App {
	return newApp(api.New(c.ServerURL, c.RequestTimeout), os.Stdin, os.Stdout)
}

func newApp(client API, in io.Reader, out io.Writer) *App {
	return &App{api: client, reader: bufio.NewReader(in), out: out}
}

func (a *App) isLoggedIn() bool {
	return a.token != ""
}

func (a *App) status() string {
	if a.user == nil {
		return ""
	}
	return fmt.Sprintf("(%s) ", a.user.Email)
}

// Run checks the server once and then reads commands until exit or EOF.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to NoteKeeper CLI (type 'help' for commands)")
	if err := a.api.Health(ctx); err != nil {
		printErr(a.out, err)
	}
	a.repl(ctx)
}
