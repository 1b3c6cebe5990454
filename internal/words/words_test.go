package words

import (
	"fmt"
	"math"
	"path/filepath"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleTokens returns n distinct lowercase six-letter tokens.
func sampleTokens(n int) []string {
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		a := byte('a' + i%26)
		b := byte('a' + (i/26)%26)
		out = append(out, fmt.Sprintf("%c%cletter", a, b)[:6])
	}
	return out
}

func TestNew_FiltersTokens(t *testing.T) {
	c := New([]string{"apple", "can't", "tea", "  ", "Zebra", "zebra", "rhythm", "o'clock"})

	assert.Equal(t, 3, c.Len())
	assert.ElementsMatch(t, []string{"apple", "zebra", "rhythm"}, c.Words())
}

func TestLoadReader_WhitespaceDelimited(t *testing.T) {
	c, err := LoadReader(strings.NewReader("alpha beta\tgamma\n\ndelta   epsilon\nit's"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alpha", "gamma", "delta", "epsilon"}, c.Words())
}

func TestLoadReader_EmptyIsError(t *testing.T) {
	_, err := LoadReader(strings.NewReader("a bb can't"))
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte("Hello World planet"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())
	assert.True(t, c.HasLength(6))
	assert.False(t, c.HasLength(3))
}

func TestLoadEmbedded(t *testing.T) {
	c, err := LoadEmbedded()
	require.NoError(t, err)
	assert.Greater(t, c.Len(), NumLevels)
	for _, w := range c.Words() {
		assert.GreaterOrEqual(t, len(w), MinLetters)
	}
}

func TestScore_Formula(t *testing.T) {
	// "hello": (5.92 + 12.02 + 3.98 + 3.98 + 7.68) / 5 × 15
	want := (5.92 + 12.02 + 3.98 + 3.98 + 7.68) / 5 * 15
	assert.InDelta(t, want, Score("hello"), 1e-9)
}

func TestScore_NoVowelPenalty(t *testing.T) {
	word := "rhythm"
	var sum float64
	for i := 0; i < len(word); i++ {
		sum += Frequency(word[i])
	}
	withVowel := sum / 6 * 21

	assert.InDelta(t, 0.75*withVowel, Score(word), 1e-9)
}

func TestScore_NeverNegative(t *testing.T) {
	for _, w := range []string{"", "12345", "zzzzz", "éclair", "rhythm"} {
		assert.GreaterOrEqual(t, Score(w), 0.0, w)
	}
}

func TestNew_SortedDescendingByScore(t *testing.T) {
	c := New(sampleTokens(80))
	list := c.Words()
	for i := 1; i < len(list); i++ {
		assert.GreaterOrEqual(t, Score(list[i-1]), Score(list[i]))
	}
}

func TestLevelIndices_Invariants(t *testing.T) {
	for _, n := range []int{0, 1, 19, 20, 21, 57, 400} {
		c := New(sampleTokens(n))
		idx := c.LevelIndices()

		require.Len(t, idx, NumLevels+1, "n=%d", n)
		assert.Equal(t, 0, idx[0])
		assert.Equal(t, c.Len(), idx[NumLevels])
		for i := 1; i < len(idx); i++ {
			assert.LessOrEqual(t, idx[i-1], idx[i], "n=%d i=%d", n, i)
		}
	}
}

func TestLevelIndices_RemainderInLastBand(t *testing.T) {
	c := New(sampleTokens(57))
	idx := c.LevelIndices()
	for l := 1; l < NumLevels; l++ {
		assert.Equal(t, 2, idx[l]-idx[l-1])
	}
	assert.Equal(t, 57-2*19, idx[NumLevels]-idx[NumLevels-1])
}

func TestWordAtLevel_StaysInBand(t *testing.T) {
	c := New(sampleTokens(130))
	for level := 1; level <= NumLevels; level++ {
		lo, hi, err := c.Band(level)
		require.NoError(t, err)
		for i := 0; i < 25; i++ {
			w, err := c.WordAtLevel(level)
			require.NoError(t, err)
			rank, ok := c.Rank(w)
			require.True(t, ok)
			assert.GreaterOrEqual(t, rank, lo)
			assert.Less(t, rank, hi)
		}
	}
}

func TestWordAtLevel_InvalidLevel(t *testing.T) {
	c := New(sampleTokens(40))
	for _, level := range []int{-1, 0, NumLevels + 1} {
		_, err := c.WordAtLevel(level)
		assert.ErrorIs(t, err, ErrInvalidLevel)
	}
}

func TestWordAtLevel_EmptyBand(t *testing.T) {
	c := New(sampleTokens(5))
	_, err := c.WordAtLevel(1)
	assert.ErrorIs(t, err, ErrEmptyBand)

	w, err := c.WordAtLevel(NumLevels)
	require.NoError(t, err)
	assert.NotEmpty(t, w)
}

func TestWordsOfLength(t *testing.T) {
	c := New([]string{"apple", "grape", "banana", "cherry", "melon"})
	assert.ElementsMatch(t, []string{"apple", "grape", "melon"}, c.WordsOfLength(5))
	assert.ElementsMatch(t, []string{"banana", "cherry"}, c.WordsOfLength(6))
	assert.Empty(t, c.WordsOfLength(7))
}

func TestScoreOf(t *testing.T) {
	c := New([]string{"apple"})
	s, ok := c.ScoreOf("APPLE")
	require.True(t, ok)
	assert.False(t, math.IsNaN(s))
	assert.InDelta(t, Score("apple"), s, 1e-12)
}
