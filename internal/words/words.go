// internal/words/words.go
//
// Word corpus for the hangman engine.
//
// Responsibilities:
//   - Load a whitespace-delimited word list from a file, a reader, or the
//     embedded default in assets/wordlist.txt.
//   - Score every word by difficulty (see scoring.go), sort easiest → hardest,
//     and partition the sorted list into NumLevels contiguous bands.
//   - Supply lookups: WordAtLevel, HasLength, WordsOfLength, Rank.
//
// Token filter (applied by every constructor):
//   • tokens containing an apostrophe are skipped (contractions);
//   • tokens shorter than MinLetters after trimming are skipped;
//   • accepted tokens are lowercased; duplicates collapse to one entry.
//
// A Corpus is read-only after construction and safe for concurrent use.

package words

import (
	"bufio"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"sort"
	"strings"

	"github.com/firebolt55439/airplay-hangman/assets"
)

const (
	// NumLevels is the number of difficulty bands.
	NumLevels = 20
	// MinLetters is the shortest word the corpus (and a human chooser) accepts.
	MinLetters = 5
)

var (
	ErrInvalidLevel = errors.New("words: level out of range")
	ErrEmptyBand    = errors.New("words: no word in level band")
	ErrEmpty        = errors.New("words: word list is empty")
)

// Corpus is the scored, sorted and leveled word list.
type Corpus struct {
	words    []string           // sorted by score, easiest (highest) first
	scores   map[string]float64 // word → difficulty score
	ranks    map[string]int     // word → index in words
	byLength map[int][]string   // length → words of that length, in sorted order
	levels   [NumLevels + 1]int // band boundaries; band L is [levels[L-1], levels[L])
}

// Load reads a word list from path.
func Load(path string) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open word list %s: %w", path, err)
	}
	defer f.Close()
	return LoadReader(f)
}

// LoadEmbedded reads the word list shipped in assets/wordlist.txt.
func LoadEmbedded() (*Corpus, error) {
	f, err := assets.OpenWordlist()
	if err != nil {
		return nil, fmt.Errorf("open embedded word list: %w", err)
	}
	defer f.Close()
	return LoadReader(f)
}

// LoadReader reads whitespace-delimited tokens from r.
// Returns ErrEmpty if no token survives the filter.
func LoadReader(r io.Reader) (*Corpus, error) {
	var tokens []string
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	for sc.Scan() {
		tokens = append(tokens, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read word list: %w", err)
	}
	c := New(tokens)
	if c.Len() == 0 {
		return nil, ErrEmpty
	}
	return c, nil
}

// New builds a corpus from raw tokens: filter, score, sort, partition.
func New(tokens []string) *Corpus {
	seen := make(map[string]struct{}, len(tokens))
	list := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		w, ok := accept(tok)
		if !ok {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		list = append(list, w)
	}

	c := &Corpus{
		scores:   make(map[string]float64, len(list)),
		ranks:    make(map[string]int, len(list)),
		byLength: make(map[int][]string),
	}
	for _, w := range list {
		c.scores[w] = Score(w)
	}

	// Highest score (easiest) first; alphabetical among equal scores so the
	// order never depends on input order.
	sort.Slice(list, func(i, j int) bool {
		si, sj := c.scores[list[i]], c.scores[list[j]]
		if si != sj {
			return si > sj
		}
		return list[i] < list[j]
	})
	c.words = list
	for i, w := range list {
		c.ranks[w] = i
		c.byLength[len(w)] = append(c.byLength[len(w)], w)
	}
	c.initLevels()
	return c
}

// accept applies the token filter and returns the normalized word.
func accept(tok string) (string, bool) {
	w := strings.TrimSpace(tok)
	if w == "" || strings.ContainsRune(w, '\'') || len(w) < MinLetters {
		return "", false
	}
	return strings.ToLower(w), true
}

// initLevels gives each band floor(N/NumLevels) words; the last band also
// takes the remainder.
func (c *Corpus) initLevels() {
	diff := len(c.words) / NumLevels
	for i := 0; i < NumLevels; i++ {
		c.levels[i] = diff * i
	}
	c.levels[NumLevels] = len(c.words)
}

// Len returns the number of words.
func (c *Corpus) Len() int { return len(c.words) }

// Words returns a copy of the sorted word list.
func (c *Corpus) Words() []string {
	return append([]string(nil), c.words...)
}

// LevelIndices returns a copy of the NumLevels+1 band boundaries.
func (c *Corpus) LevelIndices() []int {
	return append([]int(nil), c.levels[:]...)
}

// Band returns the half-open index range [lo, hi) of a level.
func (c *Corpus) Band(level int) (lo, hi int, err error) {
	if level < 1 || level > NumLevels {
		return 0, 0, fmt.Errorf("%w: %d", ErrInvalidLevel, level)
	}
	return c.levels[level-1], c.levels[level], nil
}

// WordAtLevel returns a uniformly random word from the band of level.
func (c *Corpus) WordAtLevel(level int) (string, error) {
	lo, hi, err := c.Band(level)
	if err != nil {
		return "", err
	}
	if hi <= lo {
		return "", fmt.Errorf("%w: level %d", ErrEmptyBand, level)
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(hi-lo)))
	if err != nil {
		return "", fmt.Errorf("words: random pick: %w", err)
	}
	return c.words[lo+int(n.Int64())], nil
}

// HasLength reports whether any word has exactly n letters.
func (c *Corpus) HasLength(n int) bool {
	return len(c.byLength[n]) > 0
}

// WordsOfLength returns the words of exactly n letters.
// The slice is shared; callers must not modify it.
func (c *Corpus) WordsOfLength(n int) []string {
	return c.byLength[n]
}

// Rank returns the word's position in the sorted list (0 = easiest).
func (c *Corpus) Rank(word string) (int, bool) {
	i, ok := c.ranks[strings.ToLower(word)]
	return i, ok
}

// ScoreOf returns the stored score of a corpus word.
func (c *Corpus) ScoreOf(word string) (float64, bool) {
	s, ok := c.scores[strings.ToLower(word)]
	return s, ok
}
