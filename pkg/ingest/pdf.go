package ingest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"doc-chat-be/pkg/store"
)

// extractPDF extracts text per page, concatenates the pages (each followed by
// a newline) and applies the overlapping-window split.
func (g *Ingestor) extractPDF(f File) (chunks []store.Chunk, err error) {
	// The pdf package panics on some malformed documents; surface that as a
	// normal extraction error so the batch fails cleanly.
	defer func() {
		if r := recover(); r != nil {
			chunks = nil
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(f.Data), int64(len(f.Data)))
	if err != nil {
		return nil, fmt.Errorf("parse pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract pdf page %d: %w", i, err)
		}
		b.WriteString(text)
		b.WriteString("\n")
	}

	return g.windowed(b.String(), f.Name), nil
}
