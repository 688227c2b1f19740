package ingest

import (
	"path/filepath"
	"strings"
)

// Format is the closed set of supported document formats. Dispatch happens on
// the detected format, not on raw filename suffixes scattered around call
// sites; unknown formats deterministically fall through to "skip".
type Format int

const (
	FormatUnknown Format = iota
	FormatText
	FormatCSV
	FormatDocx
	FormatPDF
)

func (f Format) String() string {
	switch f {
	case FormatText:
		return "txt"
	case FormatCSV:
		return "csv"
	case FormatDocx:
		return "docx"
	case FormatPDF:
		return "pdf"
	default:
		return "unknown"
	}
}

// DetectFormat maps a filename extension to a Format.
func DetectFormat(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt":
		return FormatText
	case ".csv":
		return FormatCSV
	case ".docx":
		return FormatDocx
	case ".pdf":
		return FormatPDF
	default:
		return FormatUnknown
	}
}
