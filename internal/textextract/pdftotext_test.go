package textextract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	out  string
	err  error
	args []string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.args = append([]string{name}, args...)
	if f.err != nil {
		return nil, []byte("Syntax Error: Couldn't find trailer dictionary"), f.err
	}
	return []byte(f.out), nil, nil
}

func TestPdftotextSplitsFormFeeds(t *testing.T) {
	fr := &fakeRunner{out: "page one\n\fpage two\n\f"}
	r := NewPdftotextRendererWithRunner(PdftotextConfig{}, fr)

	doc, err := r.Open(context.Background(), "c.pdf")
	require.NoError(t, err)
	defer doc.Close()

	require.Equal(t, 2, doc.PageCount())
	p0, err := doc.PageText(0)
	require.NoError(t, err)
	assert.Equal(t, "page one\n", p0)
	p1, err := doc.PageText(1)
	require.NoError(t, err)
	assert.Equal(t, "page two\n", p1)

	_, err = doc.PageText(2)
	assert.Error(t, err)
	assert.Equal(t, []string{"pdftotext", "-enc", "UTF-8", "-eol", "unix", "c.pdf", "-"}, fr.args)
}

func TestPdftotextFailureCarriesStderr(t *testing.T) {
	r := NewPdftotextRendererWithRunner(PdftotextConfig{Binary: "/usr/bin/pdftotext"}, &fakeRunner{err: errors.New("exit status 1")})

	_, err := r.Open(context.Background(), "broken.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trailer dictionary")
}
