package textextract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/contract-extractor/internal/common"
)

// Extractor reads documents through a Renderer. Every error it returns wraps
// common.ErrDocumentRead; there is no partial-document fallback.
type Extractor struct {
	renderer Renderer
	logger   *slog.Logger
}

func NewExtractor(r Renderer, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{renderer: r, logger: logger}
}

// NewRenderer builds the backend named by cfg.Backend.
func NewRenderer(cfg common.PDFConfig, logger *slog.Logger) (Renderer, error) {
	switch cfg.Backend {
	case "", "pdfreader":
		return NewPDFReaderRenderer(), nil
	case "pdftotext":
		return NewPdftotextRenderer(PdftotextConfig{Binary: cfg.Pdftotext}, logger), nil
	default:
		return nil, fmt.Errorf("unknown pdf backend %q", cfg.Backend)
	}
}

// ExtractPages returns the text of every page in document order.
func (e *Extractor) ExtractPages(ctx context.Context, path string) ([]string, error) {
	start := time.Now()
	doc, err := e.renderer.Open(ctx, path)
	if err != nil {
		e.logger.Warn("textextract.open.failed", "path", path, "renderer", e.renderer.Name(), "error", err)
		return nil, common.DocumentReadError(path, err)
	}
	defer e.closeDoc(path, doc)

	n := doc.PageCount()
	pages := make([]string, 0, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, common.DocumentReadError(path, err)
		}
		text, err := doc.PageText(i)
		if err != nil {
			e.logger.Warn("textextract.page.failed", "path", path, "page", i, "error", err)
			return nil, common.DocumentReadError(path, err)
		}
		pages = append(pages, text)
	}

	e.logger.Debug("textextract.pages.ok",
		"path", path,
		"renderer", e.renderer.Name(),
		"pages", n,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return pages, nil
}

// ExtractFullText concatenates all pages without a separator.
func (e *Extractor) ExtractFullText(ctx context.Context, path string) (string, error) {
	pages, err := e.ExtractPages(ctx, path)
	if err != nil {
		return "", err
	}
	return strings.Join(pages, ""), nil
}

// ExtractFirstPageText returns page 0, or "" for a document without pages.
func (e *Extractor) ExtractFirstPageText(ctx context.Context, path string) (string, error) {
	doc, err := e.renderer.Open(ctx, path)
	if err != nil {
		e.logger.Warn("textextract.open.failed", "path", path, "renderer", e.renderer.Name(), "error", err)
		return "", common.DocumentReadError(path, err)
	}
	defer e.closeDoc(path, doc)

	if doc.PageCount() == 0 {
		return "", nil
	}
	if err := ctx.Err(); err != nil {
		return "", common.DocumentReadError(path, err)
	}
	text, err := doc.PageText(0)
	if err != nil {
		e.logger.Warn("textextract.page.failed", "path", path, "page", 0, "error", err)
		return "", common.DocumentReadError(path, err)
	}
	return text, nil
}

func (e *Extractor) closeDoc(path string, doc Document) {
	if err := doc.Close(); err != nil {
		e.logger.Warn("textextract.close.failed", "path", path, "error", err)
	}
}
