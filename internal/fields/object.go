package fields

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
)

var (
	objectMarker = regexp.MustCompile(`(?i)POUR\s+([\s\S]{20,300})`)
	objectEnd    = regexp.MustCompile(`\n\d{4}|\nARTICLE`)
)

// FirstPageReader reads the text of a document's first page.
type FirstPageReader interface {
	ExtractFirstPageText(ctx context.Context, path string) (string, error)
}

// ObjectExtractor finds the contract's stated purpose on its first page.
type ObjectExtractor struct {
	reader FirstPageReader
	logger *slog.Logger
}

func NewObjectExtractor(r FirstPageReader, logger *slog.Logger) *ObjectExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &ObjectExtractor{reader: r, logger: logger}
}

// Extract re-reads the first page of path and applies ObjectFromText. A read failure is
// logged and reported as a miss.
func (o *ObjectExtractor) Extract(ctx context.Context, path string) (string, bool) {
	text, err := o.reader.ExtractFirstPageText(ctx, path)
	if err != nil {
		o.logger.Warn("fields.object.first_page_failed", "path", path, "error", err)
		return "", false
	}
	return ObjectFromText(text)
}

// ObjectFromText captures 20 to 300 characters after the first "POUR" and cuts them at
// the first line that starts with a four-digit year or an ARTICLE heading.
func ObjectFromText(text string) (string, bool) {
	v, ok := ExtractField(text, objectMarker, 1)
	if !ok {
		return "", false
	}
	if loc := objectEnd.FindStringIndex(v); loc != nil {
		v = v[:loc[0]]
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}
