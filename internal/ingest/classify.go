package ingest

import (
	"path/filepath"
	"strings"
)

// Kind is the closed set of input classifications. Every upload resolves
// to exactly one kind before any other processing happens.
type Kind string

const (
	KindPDF         Kind = "pdf"
	KindDocx        Kind = "docx"
	KindText        Kind = "text"
	KindImage       Kind = "image"
	KindUnsupported Kind = "unsupported"
)

// Classify maps a file name and declared media type to a Kind. The
// extension is checked first, the media type is the fallback. Pure
// function, no I/O.
func Classify(fileName, mediaType string) Kind {
	ext := strings.ToLower(filepath.Ext(fileName))
	mt := strings.ToLower(strings.TrimSpace(mediaType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}

	switch ext {
	case ".pdf":
		return KindPDF
	case ".docx":
		return KindDocx
	case ".txt":
		return KindText
	case ".jpg", ".jpeg", ".png", ".webp", ".avif":
		return KindImage
	}

	switch mt {
	case "application/pdf":
		return KindPDF
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return KindDocx
	case "text/plain":
		return KindText
	}
	if strings.HasPrefix(mt, "image/") {
		return KindImage
	}
	return KindUnsupported
}
