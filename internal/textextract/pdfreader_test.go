package textextract

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/contract-extractor/internal/common"
)

// testdata/contract.pdf: page 1 uses a WinAnsi Type1 font, page 2 a Type0 font with
// Identity-H glyph codes and a ToUnicode CMap.
const fixturePDF = "testdata/contract.pdf"

const (
	fixturePage1 = "CONTRAT N° 2023/045\n" +
		"MARCHE POUR LA FOURNITURE DE MATERIEL INFORMATIQUE\n" +
		"2023\n" +
		"Montant total : 12 500,50 EUR\n"
	fixturePage2 = "ARTICLE 12 - DOMICILE\n" +
		"For the CLIENT: ACME Corp\n" +
		"For the SUPPLIER: Globex SARL\n" +
		"Fait a Casablanca\n"
)

func TestPDFReaderRendererPages(t *testing.T) {
	doc, err := NewPDFReaderRenderer().Open(context.Background(), fixturePDF)
	require.NoError(t, err)

	require.Equal(t, 2, doc.PageCount())
	p0, err := doc.PageText(0)
	require.NoError(t, err)
	assert.Equal(t, fixturePage1, p0)

	_, err = doc.PageText(2)
	assert.Error(t, err)

	require.NoError(t, doc.Close())
	require.NoError(t, doc.Close())
	assert.Equal(t, 0, doc.PageCount())
	_, err = doc.PageText(0)
	assert.Error(t, err)
}

func TestPDFReaderRendererDecodesIdentityH(t *testing.T) {
	doc, err := NewPDFReaderRenderer().Open(context.Background(), fixturePDF)
	require.NoError(t, err)
	defer doc.Close()

	p1, err := doc.PageText(1)
	require.NoError(t, err)
	assert.Equal(t, fixturePage2, p1)
	assert.NotContains(t, p1, "\x00")
}

func TestExtractorOverPDFReaderFixture(t *testing.T) {
	e := NewExtractor(NewPDFReaderRenderer(), nil)
	ctx := context.Background()

	full, err := e.ExtractFullText(ctx, fixturePDF)
	require.NoError(t, err)
	assert.Equal(t, fixturePage1+fixturePage2, full)

	first, err := e.ExtractFirstPageText(ctx, fixturePDF)
	require.NoError(t, err)
	assert.Equal(t, fixturePage1, first)
}

func TestPDFReaderRendererRejectsBadInput(t *testing.T) {
	r := NewPDFReaderRenderer()

	_, err := r.Open(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)

	junk := filepath.Join(t.TempDir(), "junk.pdf")
	require.NoError(t, os.WriteFile(junk, []byte("%PDF-1.4\nnot really a pdf\n"), 0o644))
	_, err = r.Open(context.Background(), junk)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Open(ctx, fixturePDF)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = NewExtractor(r, nil).ExtractFullText(context.Background(), junk)
	assert.ErrorIs(t, err, common.ErrDocumentRead)
}

func TestCleanPageText(t *testing.T) {
	assert.Equal(t, "a\nb c\n", cleanPageText("\n  a  \n\n\n b c\n\n"))
	assert.Equal(t, "", cleanPageText(" \n\t\n"))
}
