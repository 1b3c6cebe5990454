// internal/solver/solver.go
//
// Letter-guessing solver used when the engine must guess a hidden word.
//
// Algorithm:
//  1. Candidate subset: every word of the target length that
//     - matches each revealed position of the pattern exactly,
//     - contains no letter confirmed absent,
//     - carries no tried letter at a still-unknown position (once a letter is
//       confirmed, the human has revealed all of its positions).
//  2. For each unknown position, count how many candidates have each letter there.
//  3. probability(position, letter) = count / len(candidates).
//  4. Guess the letter of the single most probable (position, letter) pair.
//     Ties go to the lowest position, then the lowest letter.
//
// Example: pattern "a_b_c" with candidates {"axbyc", "axbcc"} guesses 'x'
// (certain at position 1) rather than a 50/50 pick at position 3.

package solver

import (
	"errors"
	"fmt"
)

var (
	ErrNoCandidate       = errors.New("solver: no candidate word matches")
	ErrInvariantViolated = errors.New("solver: picked an already-tried letter")
)

// Lexicon is the candidate universe.
type Lexicon interface {
	WordsOfLength(n int) []string
}

// Solver picks the next letter to try against a Lexicon.
type Solver struct {
	lex Lexicon
}

// New returns a Solver over lex.
func New(lex Lexicon) *Solver {
	return &Solver{lex: lex}
}

// Analysis describes how a guess was chosen.
type Analysis struct {
	Letter      byte
	Position    int     // unknown position that produced the maximum
	Probability float64 // count / Candidates at that position
	Candidates  int     // size of the candidate subset
}

// Next returns the most informative untried letter for pattern.
// pattern uses '_' for unknown positions; tried maps each tried letter to
// whether it was confirmed present.
func (s *Solver) Next(pattern string, tried map[byte]bool) (byte, error) {
	a, err := s.Analyze(pattern, tried)
	if err != nil {
		return 0, err
	}
	return a.Letter, nil
}

// Analyze is Next with the supporting numbers.
func (s *Solver) Analyze(pattern string, tried map[byte]bool) (Analysis, error) {
	candidates := s.Candidates(pattern, tried)
	if len(candidates) == 0 {
		return Analysis{}, fmt.Errorf("%w: pattern %q", ErrNoCandidate, pattern)
	}

	// counts[i][l] = candidates with letter l at position i (unknown positions only).
	counts := make([][26]int, len(pattern))
	for _, w := range candidates {
		for i := 0; i < len(pattern); i++ {
			if pattern[i] == '_' {
				counts[i][w[i]-'a']++
			}
		}
	}

	best := Analysis{Position: -1, Candidates: len(candidates)}
	total := float64(len(candidates))
	for i := 0; i < len(pattern); i++ {
		if pattern[i] != '_' {
			continue
		}
		for l := 0; l < 26; l++ {
			if counts[i][l] == 0 {
				continue
			}
			p := float64(counts[i][l]) / total
			if p > best.Probability {
				best.Probability = p
				best.Position = i
				best.Letter = byte('a' + l)
			}
		}
	}
	if best.Position < 0 {
		// No unknown position left: nothing to guess.
		return Analysis{}, fmt.Errorf("%w: pattern %q has no unknown position", ErrNoCandidate, pattern)
	}
	if _, ok := tried[best.Letter]; ok {
		return Analysis{}, fmt.Errorf("%w: %q", ErrInvariantViolated, best.Letter)
	}
	return best, nil
}

// Candidates returns the words consistent with pattern and tried.
func (s *Solver) Candidates(pattern string, tried map[byte]bool) []string {
	var out []string
	for _, w := range s.lex.WordsOfLength(len(pattern)) {
		if consistent(w, pattern, tried) {
			out = append(out, w)
		}
	}
	return out
}

func consistent(word, pattern string, tried map[byte]bool) bool {
	if len(word) != len(pattern) {
		return false
	}
	for i := 0; i < len(word); i++ {
		ch := word[i]
		if ch < 'a' || ch > 'z' {
			return false
		}
		if pattern[i] != '_' {
			if pattern[i] != ch {
				return false
			}
			continue
		}
		if _, ok := tried[ch]; ok {
			// absent: may not appear at all; present: all of its
			// positions are already revealed.
			return false
		}
	}
	for ch, present := range tried {
		if !present && containsByte(word, ch) {
			return false
		}
	}
	return true
}

func containsByte(s string, b byte) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return true
		}
	}
	return false
}
