package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/notekeeper/internal/filex"
)

func (a *App) Templates(ctx context.Context, _ []string) error {
	list, err := a.api.Templates(ctx, a.token)
	if err != nil {
		return a.checkSession(err)
	}
	printTemplates(a.out, list)
	return nil
}

func (a *App) UseTemplate(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("use")
	}
	n, err := a.api.CreateFromTemplate(ctx, a.token, args[0], strings.Join(args[1:], " "))
	if err != nil {
		return a.checkSession(err)
	}
	printOK(a.out, "Created note %s (%s)", n.ID, n.Title)
	return nil
}

func (a *App) Stats(ctx context.Context, _ []string) error {
	s, err := a.api.Analytics(ctx, a.token)
	if err != nil {
		return a.checkSession(err)
	}
	printAnalytics(a.out, s)
	return nil
}

// Export saves the download under the server-suggested name unless a file
// is given.
func (a *App) Export(ctx context.Context, args []string) error {
	if len(args) == 0 || len(args) > 2 {
		return usage("export")
	}
	e, err := a.api.Export(ctx, a.token, args[0], nil)
	if err != nil {
		return a.checkSession(err)
	}

	path := e.FileName
	if len(args) == 2 {
		path = args[1]
	}
	if err := filex.WriteFile(path, e.Body, 0o600); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	printOK(a.out, "Saved %d bytes to %s", len(e.Body), path)
	return nil
}
