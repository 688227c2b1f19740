package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"doc-chat-be/pkg/store"
)

// extractCSV parses the file with the first record as header and produces
// exactly one chunk per data row: newline-terminated "field: value" lines.
// No windowing is applied to CSV rows.
func extractCSV(f File) ([]store.Chunk, error) {
	reader := csv.NewReader(bytes.NewReader(f.Data))

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	chunks := make([]store.Chunk, 0, len(records)-1)

	for i, row := range records[1:] {
		var b strings.Builder
		for col, value := range row {
			b.WriteString(header[col])
			b.WriteString(": ")
			b.WriteString(value)
			b.WriteString("\n")
		}
		chunks = append(chunks, store.Chunk{
			Content:  b.String(),
			Source:   f.Name,
			Sequence: i,
		})
	}

	return chunks, nil
}
