// internal/words/scoring.go
//
// Difficulty scoring. Lower score = harder word.
//
//   score = mean letter frequency
//           × 0.75              if the word has no vowel
//           × 0.5·L·(L+1)       length amplification (short words are harder)
//   floored at 0.

package words

import "math"

// letterFrequencies is the relative frequency (percent) of each letter in
// English text.
var letterFrequencies = map[byte]float64{
	'e': 12.02, 't': 9.10, 'a': 8.12, 'o': 7.68, 'i': 7.31, 'n': 6.95,
	's': 6.28, 'r': 6.02, 'h': 5.92, 'd': 4.32, 'l': 3.98, 'u': 2.88,
	'c': 2.71, 'm': 2.61, 'f': 2.30, 'y': 2.11, 'w': 2.09, 'g': 2.03,
	'p': 1.82, 'b': 1.49, 'v': 1.11, 'k': 0.69, 'x': 0.17, 'q': 0.11,
	'j': 0.10, 'z': 0.07,
}

const noVowelFactor = 0.75

// Frequency returns the relative frequency of a lowercase letter, or 0.
func Frequency(letter byte) float64 {
	return letterFrequencies[letter]
}

// Score computes the difficulty score of a lowercase word.
func Score(word string) float64 {
	n := len(word)
	if n == 0 {
		return 0
	}
	var sum float64
	hasVowel := false
	for i := 0; i < n; i++ {
		ch := word[i]
		hasVowel = hasVowel || isVowel(ch)
		sum += letterFrequencies[ch]
	}
	score := sum / float64(n)
	if !hasVowel {
		score *= noVowelFactor
	}
	score *= 0.5 * float64(n) * float64(n+1)
	return math.Max(0, score)
}

func isVowel(ch byte) bool {
	switch ch {
	case 'a', 'e', 'i', 'o', 'u', 'A', 'E', 'I', 'O', 'U':
		return true
	}
	return false
}
