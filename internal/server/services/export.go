package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mandolyte/mdtopdf"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/notes"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/repomanager"
)

// Export formats.
const (
	FormatJSON     = "json"
	FormatText     = "txt"
	FormatMarkdown = "md"
	FormatPDF      = "pdf"
)

var contentTypes = map[string]string{
	FormatJSON:     "application/json",
	FormatText:     "text/plain; charset=utf-8",
	FormatMarkdown: "text/markdown; charset=utf-8",
	FormatPDF:      "application/pdf",
}

// renderPDF writes the PDF rendition of markdown to path.
var renderPDF = func(markdown []byte, path string) error {
	r := mdtopdf.NewPdfRenderer("P", "A4", path, "", nil, mdtopdf.LIGHT)
	return r.Process(markdown)
}

// ExportFile is a rendered export ready to be sent as an attachment.
type ExportFile struct {
	Name        string
	ContentType string
	Body        []byte
}

type ExportService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewExportService(db *sql.DB, m repomanager.RepositoryManager) *ExportService {
	return &ExportService{db: db, repomanager: m}
}

// Export renders the owner's notes in format. When ids is non-empty only
// those notes are included; ids of other owners or unknown ids are ignored.
func (s *ExportService) Export(ctx context.Context, owner, format string, ids []string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	contentType, ok := contentTypes[format]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported export format %q", common.ErrorValidation, format)
	}

	list, err := s.repomanager.Notes(s.db).ListByOwner(ctx, owner, notes.Filter{})
	if err != nil {
		return nil, fmt.Errorf("error listing notes: %w", err)
	}
	list = selectNotes(list, ids)

	t := now()
	var body []byte
	switch format {
	case FormatJSON:
		body, err = json.MarshalIndent(list, "", "  ")
	case FormatText:
		body = renderText(list, t.Format("2006-01-02"))
	case FormatMarkdown:
		body = renderMarkdown(list, t.Format("2006-01-02"), true)
	case FormatPDF:
		body, err = toPDF(renderMarkdown(list, t.Format("2006-01-02"), false))
	}
	if err != nil {
		return nil, fmt.Errorf("error rendering %s export: %w", format, err)
	}

	return &ExportFile{
		Name:        fmt.Sprintf("notes-export-%s.%s", t.Format("2006-01-02"), format),
		ContentType: contentType,
		Body:        body,
	}, nil
}

func selectNotes(list []*models.Note, ids []string) []*models.Note {
	want := map[string]bool{}
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			want[id] = true
		}
	}
	if len(want) == 0 {
		return list
	}
	out := make([]*models.Note, 0, len(want))
	for _, n := range list {
		if want[n.ID] {
			out = append(out, n)
		}
	}
	return out
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func renderText(list []*models.Note, date string) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "My Notes Export\n\nExported on: %s\nTotal Notes: %d\n\n%s\n\n", date, len(list), strings.Repeat("=", 50))

	for i, n := range list {
		fmt.Fprintf(&b, "%d. %s\n", i+1, n.Title)
		fmt.Fprintf(&b, "Category: %s\n", n.Category)
		fmt.Fprintf(&b, "Created: %s\n", n.CreatedAt.Format("2006-01-02"))
		fmt.Fprintf(&b, "Favorite: %s\n\n", yesNo(n.IsFavorite))
		if n.Content != "" {
			fmt.Fprintf(&b, "Content:\n%s\n\n", n.Content)
		}
		if len(n.Images) > 0 {
			fmt.Fprintf(&b, "Images: %d attached\n", len(n.Images))
			for j, img := range n.Images {
				fmt.Fprintf(&b, "  %d. %s\n", j+1, img.URL)
			}
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s\n\n", strings.Repeat("-", 50))
	}
	return b.Bytes()
}

// renderMarkdown emits one section per note. With inlineImages false image
// URLs are listed as text, so the PDF renderer never fetches them.
func renderMarkdown(list []*models.Note, date string, inlineImages bool) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "# My Notes Export\n\nExported on: %s\n\nTotal Notes: %d\n\n", date, len(list))

	for _, n := range list {
		fmt.Fprintf(&b, "## %s\n\n", n.Title)
		fmt.Fprintf(&b, "- Category: %s\n", n.Category)
		fmt.Fprintf(&b, "- Created: %s\n", n.CreatedAt.Format("2006-01-02"))
		fmt.Fprintf(&b, "- Favorite: %s\n\n", yesNo(n.IsFavorite))
		if n.Content != "" {
			fmt.Fprintf(&b, "%s\n\n", n.Content)
		}
		for j, img := range n.Images {
			if inlineImages {
				fmt.Fprintf(&b, "![image %d](%s)\n", j+1, img.URL)
			} else {
				fmt.Fprintf(&b, "- Image %d: %s\n", j+1, img.URL)
			}
		}
		if len(n.Images) > 0 {
			b.WriteString("\n")
		}
		b.WriteString("---\n\n")
	}
	return b.Bytes()
}

// toPDF renders markdown through a temporary file; mdtopdf only writes to
// a path.
func toPDF(markdown []byte) ([]byte, error) {
	f, err := os.CreateTemp("", "notes-export-*.pdf")
	if err != nil {
		return nil, err
	}
	path := f.Name()
	_ = f.Close()
	defer os.Remove(path)

	if err := renderPDF(markdown, path); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}
