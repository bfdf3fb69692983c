package chunk

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func words(n int) string {
	w := make([]string, n)
	for i := range w {
		w[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(w, " \n\t ")
}

func TestSplitPartitionsWordRange(t *testing.T) {
	for _, n := range []int{1, 399, 400, 401, 1000, 1203} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			chunks := All(words(n), 400)
			require.NotEmpty(t, chunks)

			next := 0
			var rejoined []string
			for _, c := range chunks {
				assert.Equal(t, next, c.WordStart, "chunks must be contiguous")
				assert.LessOrEqual(t, c.WordEnd-c.WordStart, 400)
				assert.Greater(t, c.WordEnd, c.WordStart)
				assert.Len(t, strings.Fields(c.Text), c.WordEnd-c.WordStart)
				next = c.WordEnd
				rejoined = append(rejoined, c.Text)
			}
			assert.Equal(t, n, next)
			assert.Equal(t, strings.Fields(words(n)), strings.Fields(strings.Join(rejoined, " ")))
		})
	}
}

func TestSplitBlankTextYieldsNothing(t *testing.T) {
	assert.Empty(t, All("", 400))
	assert.Empty(t, All(" \n\t  ", 400))
}

func TestSplitIsRestartable(t *testing.T) {
	seq := Split(words(900), 400)
	var first, second []Chunk
	for c := range seq {
		first = append(first, c)
	}
	for c := range seq {
		second = append(second, c)
	}
	assert.Equal(t, first, second)
	assert.Len(t, first, 3)
}

func TestSplitStopsEarly(t *testing.T) {
	n := 0
	for range Split(words(2000), 100) {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}

func TestSplitUsesSingleSpaces(t *testing.T) {
	chunks := All("a  b\n\nc\td", 3)
	require.Len(t, chunks, 2)
	assert.Equal(t, "a b c", chunks[0].Text)
	assert.Equal(t, "d", chunks[1].Text)
}

// Windows do not overlap, so a phrase straddling a boundary is split across two chunks.
func TestSplitDoesNotOverlap(t *testing.T) {
	text := "one two three signed in Casablanca"
	chunks := All(text, 4)
	require.Len(t, chunks, 2)
	assert.Equal(t, "one two three signed", chunks[0].Text)
	assert.Equal(t, "in Casablanca", chunks[1].Text)
	assert.NotContains(t, chunks[0].Text, "signed in")
	assert.NotContains(t, chunks[1].Text, "signed in")
}

func TestSplitDefaultsMaxWords(t *testing.T) {
	chunks := All(words(401), 0)
	require.Len(t, chunks, 2)
	assert.Equal(t, 400, chunks[0].WordEnd)
}
