package ingest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/fumiama/go-docx"

	"doc-chat-be/pkg/store"
)

// extractDocx pulls all paragraph text out of a Word document, joins the
// paragraphs with single spaces and applies the overlapping-window split.
func (g *Ingestor) extractDocx(f File) ([]store.Chunk, error) {
	doc, err := docx.Parse(bytes.NewReader(f.Data), int64(len(f.Data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	var paragraphs []string
	for _, item := range doc.Document.Body.Items {
		p, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		if text := strings.TrimSpace(p.String()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	}

	return g.windowed(strings.Join(paragraphs, " "), f.Name), nil
}
