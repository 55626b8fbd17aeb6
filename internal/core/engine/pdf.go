package engine

import (
	"fmt"

	"github.com/ledongthuc/pdf"
)

// Page is one page of extracted document text.
type Page struct {
	Number int
	Text   string
}

// LoadPDF extracts plain text from every page of the PDF at path. Pages the
// reader cannot resolve are skipped rather than failing the whole document.
func LoadPDF(path string) ([]Page, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close() // nolint:errcheck // read-only handle

	total := reader.NumPage()
	pages := make([]Page, 0, total)
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract text from page %d of %s: %w", i, path, err)
		}
		pages = append(pages, Page{Number: i, Text: text})
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("pdf %s contains no readable pages", path)
	}
	return pages, nil
}
