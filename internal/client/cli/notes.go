package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/notekeeper/internal/client/api"
)

// List accepts an optional category, -f for favorites and -q <text>.
func (a *App) List(ctx context.Context, args []string) error {
	var p api.ListParams
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-f":
			p.FavoritesOnly = true
		case "-q":
			if i+1 >= len(args) {
				return usage("list")
			}
			p.Search = strings.Join(args[i+1:], " ")
			i = len(args)
		default:
			p.Category = args[i]
		}
	}

	list, err := a.api.ListNotes(ctx, a.token, p)
	if err != nil {
		return a.checkSession(err)
	}
	printNoteList(a.out, list)
	return nil
}

func (a *App) Show(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("show")
	}
	n, err := a.api.GetNote(ctx, a.token, args[0])
	if err != nil {
		return a.checkSession(err)
	}
	printNote(a.out, n)
	return nil
}

func (a *App) Add(ctx context.Context, _ []string) error {
	title, err := GetSimpleText(a.reader, "Title", a.out)
	if err != nil {
		return err
	}
	category, err := GetSimpleText(a.reader, "Category", a.out)
	if err != nil {
		return err
	}
	content, err := GetMultiline(a.reader, "Content", a.out)
	if err != nil {
		return err
	}
	images, err := GetSimpleText(a.reader, "Image files, comma separated (optional)", a.out)
	if err != nil {
		return err
	}

	n, err := a.api.CreateNote(ctx, a.token, api.NoteFields{
		Title:    &title,
		Category: &category,
		Content:  &content,
	}, splitList(images))
	if err != nil {
		return a.checkSession(err)
	}
	a.reportImages(len(splitList(images)), len(n.Images))
	printOK(a.out, "Created note %s", n.ID)
	return nil
}

// Edit prompts for every field; an empty answer keeps the current value.
func (a *App) Edit(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("edit")
	}
	current, err := a.api.GetNote(ctx, a.token, args[0])
	if err != nil {
		return a.checkSession(err)
	}

	var f api.NoteFields
	title, err := GetSimpleText(a.reader, fmt.Sprintf("Title [%s]", current.Title), a.out)
	if err != nil {
		return err
	}
	if title != "" {
		f.Title = &title
	}
	category, err := GetSimpleText(a.reader, fmt.Sprintf("Category [%s]", current.Category), a.out)
	if err != nil {
		return err
	}
	if category != "" {
		f.Category = &category
	}
	content, err := GetMultiline(a.reader, "Content (empty keeps the current text)", a.out)
	if err != nil {
		return err
	}
	if content != "" {
		f.Content = &content
	}
	images, err := GetSimpleText(a.reader, "Image files to attach, comma separated (optional)", a.out)
	if err != nil {
		return err
	}

	before := len(current.Images)
	n, err := a.api.UpdateNote(ctx, a.token, current.ID, f, splitList(images))
	if err != nil {
		return a.checkSession(err)
	}
	a.reportImages(len(splitList(images)), len(n.Images)-before)
	printOK(a.out, "Updated note %s", n.ID)
	return nil
}

// reportImages warns when the server kept fewer images than were sent;
// failed uploads are skipped rather than failing the request.
func (a *App) reportImages(sent, kept int) {
	if kept < sent {
		yellow.Fprintf(a.out, "%d of %d images could not be stored\n", sent-kept, sent)
	}
}

func (a *App) Fav(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("fav")
	}
	n, err := a.api.ToggleFavorite(ctx, a.token, args[0])
	if err != nil {
		return a.checkSession(err)
	}
	if n.IsFavorite {
		printOK(a.out, "Added %q to favorites", n.Title)
	} else {
		printOK(a.out, "Removed %q from favorites", n.Title)
	}
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("delete")
	}
	answer, err := GetSimpleText(a.reader, fmt.Sprintf("Delete note %s? (y/N)", args[0]), a.out)
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
		fmt.Fprintln(a.out, "Cancelled")
		return nil
	}
	if err := a.api.DeleteNote(ctx, a.token, args[0]); err != nil {
		return a.checkSession(err)
	}
	printOK(a.out, "Deleted note %s", args[0])
	return nil
}

func (a *App) RemoveImage(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage("rmimage")
	}
	if err := a.api.DeleteImage(ctx, a.token, args[0], args[1]); err != nil {
		return a.checkSession(err)
	}
	printOK(a.out, "Removed image %s", args[1])
	return nil
}
