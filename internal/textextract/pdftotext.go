package textextract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// PdftotextConfig configures the poppler backend.
type PdftotextConfig struct {
	Binary string // binary name or absolute path; if empty -> "pdftotext"
	Layout bool   // pass -layout (keeps columns, can split clause markers across lines)
}

// PdftotextRenderer renders the whole document in one pdftotext call and splits pages on
// the form feed pdftotext emits after every page.
type PdftotextRenderer struct {
	cfg    PdftotextConfig
	runner Runner
}

func NewPdftotextRenderer(cfg PdftotextConfig, logger *slog.Logger) *PdftotextRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	return NewPdftotextRendererWithRunner(cfg, execRunner{logger: logger})
}

func NewPdftotextRendererWithRunner(cfg PdftotextConfig, r Runner) *PdftotextRenderer {
	if cfg.Binary == "" {
		cfg.Binary = "pdftotext"
	}
	return &PdftotextRenderer{cfg: cfg, runner: r}
}

func (p *PdftotextRenderer) Name() string { return "pdftotext" }

func (p *PdftotextRenderer) Open(ctx context.Context, path string) (Document, error) {
	// pdftotext -enc UTF-8 -eol unix [-layout] <path> -
	args := []string{"-enc", "UTF-8", "-eol", "unix"}
	if p.cfg.Layout {
		args = append(args, "-layout")
	}
	args = append(args, path, "-")

	out, errb, err := p.runner.Run(ctx, p.cfg.Binary, args...)
	if err != nil {
		msg := strings.TrimSpace(string(errb))
		if msg == "" {
			return nil, fmt.Errorf("pdftotext: %w", err)
		}
		return nil, fmt.Errorf("pdftotext: %w: %s", err, msg)
	}
	return &pagedText{pages: splitFormFeeds(string(out))}, nil
}

func splitFormFeeds(text string) []string {
	if text == "" {
		return nil
	}
	pages := strings.Split(text, "\f")
	// A form feed terminates every page, so the last element is empty.
	if strings.HasSuffix(text, "\f") {
		pages = pages[:len(pages)-1]
	}
	return pages
}

// pagedText is a Document over already-rendered pages.
type pagedText struct {
	pages []string
}

func (d *pagedText) PageCount() int { return len(d.pages) }

func (d *pagedText) PageText(index int) (string, error) {
	if index < 0 || index >= len(d.pages) {
		return "", fmt.Errorf("page %d out of range (%d pages)", index, len(d.pages))
	}
	return d.pages[index], nil
}

func (d *pagedText) Close() error {
	d.pages = nil
	return nil
}
