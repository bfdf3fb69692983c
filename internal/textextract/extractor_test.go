package textextract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/contract-extractor/internal/common"
)

type stubDoc struct {
	pages  []string
	failAt int
	closed *bool
}

func (d *stubDoc) PageCount() int { return len(d.pages) }

func (d *stubDoc) PageText(i int) (string, error) {
	if d.failAt >= 0 && i == d.failAt {
		return "", errors.New("bad page")
	}
	return d.pages[i], nil
}

func (d *stubDoc) Close() error {
	*d.closed = true
	return nil
}

type stubRenderer struct {
	pages   []string
	openErr error
	failAt  int
	closed  bool
	opened  int
}

func (r *stubRenderer) Name() string { return "stub" }

func (r *stubRenderer) Open(_ context.Context, _ string) (Document, error) {
	r.opened++
	if r.openErr != nil {
		return nil, r.openErr
	}
	return &stubDoc{pages: r.pages, failAt: r.failAt, closed: &r.closed}, nil
}

func TestExtractFullTextJoinsPagesWithoutSeparator(t *testing.T) {
	r := &stubRenderer{pages: []string{"page one\n", "page two\n"}, failAt: -1}
	e := NewExtractor(r, nil)

	text, err := e.ExtractFullText(context.Background(), "c.pdf")
	require.NoError(t, err)
	assert.Equal(t, "page one\npage two\n", text)
	assert.True(t, r.closed)
}

func TestExtractFirstPageText(t *testing.T) {
	r := &stubRenderer{pages: []string{"first\n", "second\n"}, failAt: -1}
	e := NewExtractor(r, nil)

	text, err := e.ExtractFirstPageText(context.Background(), "c.pdf")
	require.NoError(t, err)
	assert.Equal(t, "first\n", text)
	assert.True(t, r.closed)

	empty := NewExtractor(&stubRenderer{failAt: -1}, nil)
	text, err = empty.ExtractFirstPageText(context.Background(), "c.pdf")
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestExtractOpenFailureIsDocumentRead(t *testing.T) {
	e := NewExtractor(&stubRenderer{openErr: errors.New("not a pdf"), failAt: -1}, nil)

	_, err := e.ExtractFullText(context.Background(), "broken.pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrDocumentRead)
	assert.Contains(t, err.Error(), "not a pdf")

	_, err = e.ExtractFirstPageText(context.Background(), "broken.pdf")
	assert.ErrorIs(t, err, common.ErrDocumentRead)
}

func TestExtractPageFailureHasNoPartialResult(t *testing.T) {
	r := &stubRenderer{pages: []string{"ok\n", "x", "y"}, failAt: 1}
	e := NewExtractor(r, nil)

	pages, err := e.ExtractPages(context.Background(), "c.pdf")
	assert.Nil(t, pages)
	assert.ErrorIs(t, err, common.ErrDocumentRead)
	assert.True(t, r.closed, "document must be closed on failure")
}

func TestExtractCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e := NewExtractor(&stubRenderer{pages: []string{"a"}, failAt: -1}, nil)

	_, err := e.ExtractPages(ctx, "c.pdf")
	assert.ErrorIs(t, err, common.ErrDocumentRead)
}

type closeErrDoc struct{ stubDoc }

func (d *closeErrDoc) Close() error {
	*d.closed = true
	return errors.New("close failed")
}

type closeErrRenderer struct{ stubRenderer }

func (r *closeErrRenderer) Open(_ context.Context, _ string) (Document, error) {
	return &closeErrDoc{stubDoc{pages: r.pages, failAt: -1, closed: &r.closed}}, nil
}

func TestExtractFirstPageTextCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &stubRenderer{pages: []string{"first\n"}, failAt: -1}

	text, err := NewExtractor(r, nil).ExtractFirstPageText(ctx, "c.pdf")
	assert.Empty(t, text)
	assert.ErrorIs(t, err, common.ErrDocumentRead)
	assert.Contains(t, err.Error(), context.Canceled.Error())
	assert.True(t, r.closed, "document must be closed on cancellation")
}

func TestExtractFirstPageTextPageFailureCloses(t *testing.T) {
	r := &stubRenderer{pages: []string{"x"}, failAt: 0}

	_, err := NewExtractor(r, nil).ExtractFirstPageText(context.Background(), "c.pdf")
	assert.ErrorIs(t, err, common.ErrDocumentRead)
	assert.True(t, r.closed)
}

func TestExtractFirstPageTextCloseErrorIsLoggedOnly(t *testing.T) {
	r := &closeErrRenderer{stubRenderer{pages: []string{"first\n"}}}

	text, err := NewExtractor(r, nil).ExtractFirstPageText(context.Background(), "c.pdf")
	require.NoError(t, err)
	assert.Equal(t, "first\n", text)
	assert.True(t, r.closed)
}

func TestNewRenderer(t *testing.T) {
	r, err := NewRenderer(common.PDFConfig{Backend: "pdfreader"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "pdfreader", r.Name())

	r, err = NewRenderer(common.PDFConfig{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "pdfreader", r.Name())

	r, err = NewRenderer(common.PDFConfig{Backend: "pdftotext"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "pdftotext", r.Name())

	_, err = NewRenderer(common.PDFConfig{Backend: "tika"}, nil)
	assert.Error(t, err)
}
