// Package textextract turns PDF documents into page-ordered plain text.
//
// Rendering is delegated to a Renderer: PDFReaderRenderer decodes page text in pure Go,
// PdftotextRenderer shells out to poppler's pdftotext. Extractor layers the full-text and
// first-page contracts on top and owns the open/close lifecycle of every document.
package textextract

import (
	"context"
)

// Renderer opens a document for page-level text access.
type Renderer interface {
	Open(ctx context.Context, path string) (Document, error)
	Name() string
}

// Document is an open rendering handle. Pages are 0-indexed.
type Document interface {
	PageCount() int
	PageText(index int) (string, error)
	Close() error
}
