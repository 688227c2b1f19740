package ingest

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"doc-chat-be/pkg/store"
	"doc-chat-be/pkg/utils"
)

// File is a single uploaded document: the original filename and its raw bytes.
// Bytes are staged in memory only; nothing is written to disk.
type File struct {
	Name string
	Data []byte
}

// Ingestor turns uploaded files into retrieval chunks.
//
// Files with unrecognized extensions contribute zero chunks and no error. A
// corrupt file of a recognized format fails the whole batch: a knowledge base
// silently missing content is worse than a clean failure.
type Ingestor struct {
	chunkSize int
	overlap   int
}

func NewIngestor(chunkSize, overlap int) *Ingestor {
	return &Ingestor{
		chunkSize: chunkSize,
		overlap:   overlap,
	}
}

// Ingest extracts chunks from every recognized file, in input order.
func (g *Ingestor) Ingest(files []File) ([]store.Chunk, error) {
	var chunks []store.Chunk

	for _, f := range files {
		format := DetectFormat(f.Name)
		if format == FormatUnknown {
			continue
		}

		extracted, err := g.extract(format, f)
		if err != nil {
			return nil, fmt.Errorf("extract %s: %w", f.Name, err)
		}
		chunks = append(chunks, extracted...)
	}

	return chunks, nil
}

func (g *Ingestor) extract(format Format, f File) ([]store.Chunk, error) {
	switch format {
	case FormatText:
		return g.extractText(f)
	case FormatCSV:
		return extractCSV(f)
	case FormatDocx:
		return g.extractDocx(f)
	case FormatPDF:
		return g.extractPDF(f)
	default:
		return nil, fmt.Errorf("no extractor for format %s", format)
	}
}

func (g *Ingestor) extractText(f File) ([]store.Chunk, error) {
	if !utf8.Valid(f.Data) {
		return nil, fmt.Errorf("content is not valid UTF-8 text")
	}
	return g.windowed(string(f.Data), f.Name), nil
}

// windowed applies the overlapping-window split and tags each window with its
// source filename and sequence position within the document.
func (g *Ingestor) windowed(text, source string) []store.Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	windows := utils.SplitText(text, g.chunkSize, g.overlap)
	chunks := make([]store.Chunk, 0, len(windows))
	for i, w := range windows {
		chunks = append(chunks, store.Chunk{
			Content:  w,
			Source:   source,
			Sequence: i,
		})
	}
	return chunks
}
