package textextract

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFReaderRenderer reads page text in pure Go with github.com/ledongthuc/pdf, which maps
// simple-font encodings (WinAnsi, MacRoman, Differences) and ToUnicode CMaps, so
// Identity-H text from office exports decodes to letters.
type PDFReaderRenderer struct{}

func NewPDFReaderRenderer() *PDFReaderRenderer { return &PDFReaderRenderer{} }

func (PDFReaderRenderer) Name() string { return "pdfreader" }

func (PDFReaderRenderer) Open(ctx context.Context, path string) (doc Document, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	// the parser panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			_ = f.Close()
			doc, err = nil, fmt.Errorf("malformed PDF: %v", r)
		}
	}()
	reader, err := pdf.NewReader(f, info.Size())
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("pdf read: %w", err)
	}
	return &pdfReaderDocument{file: f, reader: reader, pages: reader.NumPage()}, nil
}

type pdfReaderDocument struct {
	file   *os.File
	reader *pdf.Reader
	pages  int
}

func (d *pdfReaderDocument) PageCount() int {
	if d.reader == nil {
		return 0
	}
	return d.pages
}

func (d *pdfReaderDocument) PageText(index int) (string, error) {
	if d.reader == nil {
		return "", fmt.Errorf("document closed")
	}
	if index < 0 || index >= d.pages {
		return "", fmt.Errorf("page %d out of range (%d pages)", index, d.pages)
	}
	page := d.reader.Page(index + 1)
	if page.V.IsNull() {
		return "", nil
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("page %d text: %w", index+1, err)
	}
	return cleanPageText(text), nil
}

func (d *pdfReaderDocument) Close() error {
	if d.reader == nil {
		return nil
	}
	d.reader = nil
	return d.file.Close()
}

// cleanPageText trims every line and drops blank ones. Text objects and line moves both
// produce breaks, so blank lines carry no layout meaning here. Non-empty output ends in "\n".
func cleanPageText(s string) string {
	var sb strings.Builder
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}
