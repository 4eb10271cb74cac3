package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/dmitrijs2005/notekeeper/internal/client/api"
)

var (
	bold    = color.New(color.Bold)
	faint   = color.New(color.Faint)
	green   = color.New(color.FgGreen)
	red     = color.New(color.FgRed)
	yellow  = color.New(color.FgYellow)
	heading = color.New(color.FgCyan, color.Bold)
)

const timeLayout = "2006-01-02 15:04"

func printErr(w io.Writer, err error) {
	red.Fprintln(w, "error:", err)
}

func printOK(w io.Writer, format string, args ...any) {
	green.Fprintf(w, format+"\n", args...)
}

func star(fav bool) string {
	if fav {
		return yellow.Sprint("★")
	}
	return " "
}

func printNoteList(w io.Writer, list []api.Note) {
	if len(list) == 0 {
		faint.Fprintln(w, "no notes")
		return
	}
	for _, n := range list {
		fmt.Fprintf(w, "%s %s  %s  %s", star(n.IsFavorite), faint.Sprint(n.ID), bold.Sprint(n.Title), faint.Sprintf("[%s]", n.Category))
		if len(n.Images) > 0 {
			fmt.Fprintf(w, "  %d image(s)", len(n.Images))
		}
		fmt.Fprintln(w)
	}
}

func printNote(w io.Writer, n *api.Note) {
	heading.Fprintln(w, n.Title)
	fmt.Fprintf(w, "%s %s  category: %s\n", star(n.IsFavorite), faint.Sprint(n.ID), n.Category)
	if n.Template != nil {
		fmt.Fprintf(w, "template: %s\n", *n.Template)
	}
	fmt.Fprintf(w, "created: %s  updated: %s  viewed: %s\n",
		n.CreatedAt.Local().Format(timeLayout),
		n.UpdatedAt.Local().Format(timeLayout),
		n.LastViewed.Local().Format(timeLayout))
	if n.Content != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, n.Content)
	}
	if len(n.Images) > 0 {
		fmt.Fprintln(w)
		for i, img := range n.Images {
			fmt.Fprintf(w, "  [%d] %s %s\n", i+1, faint.Sprint(img.ID), img.URL)
		}
	}
}

func printTemplates(w io.Writer, list []api.Template) {
	for _, t := range list {
		fmt.Fprintf(w, "%-20s %s %s\n", t.ID, bold.Sprint(t.Name), faint.Sprintf("[%s]", t.Category))
	}
}

func printAnalytics(w io.Writer, a *api.Analytics) {
	heading.Fprintln(w, "Your notes")
	fmt.Fprintf(w, "  total:        %d\n", a.TotalNotes)
	fmt.Fprintf(w, "  favorites:    %d\n", a.FavoriteNotes)
	fmt.Fprintf(w, "  categories:   %d\n", a.Categories)
	fmt.Fprintf(w, "  with images:  %d (%d images)\n", a.NotesWithImages, a.TotalImages)
	fmt.Fprintf(w, "  last 7 days:  %d\n", a.RecentNotes)
	if len(a.ByCategory) == 0 {
		return
	}
	heading.Fprintln(w, "By category")
	for _, c := range a.ByCategory {
		fmt.Fprintf(w, "  %-16s %s %d\n", c.Category, strings.Repeat("▇", min(c.Count, 40)), c.Count)
	}
}
