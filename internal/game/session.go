// internal/game/session.go
//
// Session is the single shared record of the round in progress.
//
// Concurrency contract:
//   - One mutex guards every field. Each exported method takes the lock,
//     performs all of its reads/writes, and releases it before returning, so
//     no caller ever observes a partially-applied update.
//   - Queries return value copies.
//   - Commands (GuessLetter, ChooseWord, ChooseLength, ConfirmGuess,
//     ApplyLetterPositions, RequestMode) validate and apply atomically; a
//     rejected command leaves the session untouched.
//   - The round controller (engine.go) is the only writer of the word, mode,
//     phase, score and level. It uses the unexported methods below and never
//     sleeps while holding the lock.

package game

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/firebolt55439/airplay-hangman/internal/words"
)

// Session holds the mutable state of one in-progress round.
type Session struct {
	mu  sync.Mutex
	lex Lexicon

	mode        Mode
	pendingMode Mode
	modeChange  bool

	phase      Phase
	level      int // 1..NumLevels; only reported in ModeEngineWord
	levelDelta int
	score      int
	scoreDelta int

	word           string // secret word, or the deduced pattern in ModeEngineGuesses
	wordLength     int    // length chosen by the human in ModeEngineGuesses
	awaitingLength bool
	waitingForWord bool

	guessed     []byte        // attempt order
	validity    map[byte]bool // ModeEngineGuesses: letter → confirmed present
	engineGuess byte          // letter awaiting confirmation, 0 if none

	alert      string
	gameIndex  int
	result     Result
	flashDelay bool
}

// NewSession returns a session in the Setup phase of mode at level.
// level is clamped to 1..NumLevels.
func NewSession(lex Lexicon, mode Mode, level int) *Session {
	return &Session{
		lex:      lex,
		mode:     mode,
		level:    clampLevel(level),
		validity: make(map[byte]bool),
		result:   ResultOngoing,
	}
}

func clampLevel(level int) int {
	if level < 1 {
		return 1
	}
	if level > words.NumLevels {
		return words.NumLevels
	}
	return level
}

// ----------------------------------------------------------------------------
// queries

// Mode returns the active mode.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Phase returns the controller's position within the round.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Level returns the current level; ok is false outside ModeEngineWord.
func (s *Session) Level() (level int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.level, s.mode == ModeEngineWord
}

// LevelDelta returns the level change applied by the last resolved round.
func (s *Session) LevelDelta() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.levelDelta
}

// Score returns the cumulative score; ok is false outside ModeEngineWord.
func (s *Session) Score() (score int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score, s.mode == ModeEngineWord
}

// GuessedLetters returns every tried letter in attempt order.
func (s *Session) GuessedLetters() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.guessed)
}

// IncorrectGuesses returns the tried letters that were wrong, in attempt order.
func (s *Session) IncorrectGuesses() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.incorrectLocked()
}

// IncorrectCount returns len(IncorrectGuesses()).
func (s *Session) IncorrectCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.incorrectLocked())
}

// BlankedWord returns the word with unguessed letters replaced by '_'.
func (s *Session) BlankedWord() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blankedLocked()
}

// WordLength returns the length of the current word or pattern.
func (s *Session) WordLength() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.word)
}

// RevealedWord returns the secret word during the flash delay, "" otherwise.
func (s *Session) RevealedWord() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.flashDelay {
		return ""
	}
	return s.word
}

// Alert returns the latest broadcast for clients.
func (s *Session) Alert() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alert
}

// GameIndex returns the round counter.
func (s *Session) GameIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gameIndex
}

// LastResult returns the result of the round in progress or just finished.
func (s *Session) LastResult() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// InFlashDelay reports whether the pause between rounds is running.
func (s *Session) InFlashDelay() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flashDelay
}

// WaitingForWord reports whether ModeHumanWord is waiting for a secret word.
func (s *Session) WaitingForWord() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.waitingForWord
}

// PendingEngineGuess returns the letter awaiting confirmation, if any.
func (s *Session) PendingEngineGuess() (byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engineGuess, s.engineGuess != 0
}

// FillForm describes the blanked word as alternating runs of known letters
// and blanks, which clients turn into an input form.
func (s *Session) FillForm() []Segment {
	s.mu.Lock()
	blanked := s.blankedLocked()
	s.mu.Unlock()

	var out []Segment
	for i := 0; i < len(blanked); {
		j := i
		if blanked[i] == '_' {
			for j < len(blanked) && blanked[j] == '_' {
				j++
			}
			out = append(out, Segment{Blanks: j - i})
		} else {
			for j < len(blanked) && blanked[j] != '_' {
				j++
			}
			out = append(out, Segment{Known: blanked[i:j]})
		}
		i = j
	}
	return out
}

// Snapshot returns a consistent copy of the whole session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		Mode:           s.mode,
		Phase:          s.phase,
		LevelDelta:     s.levelDelta,
		ScoreDelta:     s.scoreDelta,
		Blanked:        s.blankedLocked(),
		WordLength:     len(s.word),
		Guessed:        string(s.guessed),
		Incorrect:      s.incorrectLocked(),
		Alert:          s.alert,
		GameIndex:      s.gameIndex,
		Result:         s.result,
		FlashDelay:     s.flashDelay,
		WaitingForWord: s.waitingForWord,
	}
	if s.mode == ModeEngineWord {
		level, score := s.level, s.score
		snap.Level, snap.Score = &level, &score
	}
	if s.engineGuess != 0 {
		snap.EngineGuess = string(s.engineGuess)
	}
	if s.flashDelay {
		snap.Word = s.word
	}
	return snap
}

func (s *Session) incorrectLocked() string {
	var out []byte
	for _, ch := range s.guessed {
		if s.mode == ModeEngineGuesses {
			if !s.validity[ch] {
				out = append(out, ch)
			}
		} else if strings.IndexByte(s.word, ch) < 0 {
			out = append(out, ch)
		}
	}
	return string(out)
}

func (s *Session) blankedLocked() string {
	if s.mode == ModeEngineGuesses {
		return s.word
	}
	b := []byte(s.word)
	for i, ch := range b {
		if !s.triedLocked(ch) {
			b[i] = '_'
		}
	}
	return string(b)
}

func (s *Session) triedLocked(ch byte) bool {
	for _, g := range s.guessed {
		if g == ch {
			return true
		}
	}
	return false
}

// roundOverLocked: the guess limit is reached or nothing is left to reveal.
func (s *Session) roundOverLocked() bool {
	if len(s.incorrectLocked()) >= GuessLimit {
		return true
	}
	return s.word != "" && strings.IndexByte(s.blankedLocked(), '_') < 0
}

// ----------------------------------------------------------------------------
// commands

// GuessLetter records a guess and returns how many times the letter occurs
// in the word (0 = incorrect). A letter that was already tried is rejected
// with ErrAlreadyGuessed and not recorded again.
func (s *Session) GuessLetter(letter byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode == ModeEngineGuesses {
		return 0, ErrWrongMode
	}
	if letter < 'a' || letter > 'z' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLetter, letter)
	}
	switch {
	case s.phase == PhaseSetup:
		return 0, ErrNotAccepting
	case s.phase != PhasePlaying || s.roundOverLocked():
		return 0, ErrRoundOver
	}
	if s.triedLocked(letter) {
		return 0, fmt.Errorf("%w: %q", ErrAlreadyGuessed, letter)
	}

	s.guessed = append(s.guessed, letter)
	return strings.Count(s.word, string(letter)), nil
}

// ChooseWord sets the secret word in ModeHumanWord.
func (s *Session) ChooseWord(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode != ModeHumanWord {
		return ErrWrongMode
	}
	if !s.waitingForWord {
		return ErrNotAccepting
	}
	w := strings.ToLower(strings.TrimSpace(text))
	if len(w) < words.MinLetters {
		return fmt.Errorf("%w: need at least %d letters", ErrTooShort, words.MinLetters)
	}
	for i := 0; i < len(w); i++ {
		if w[i] < 'a' || w[i] > 'z' {
			return ErrInvalidWord
		}
	}

	s.word = w
	s.waitingForWord = false
	return nil
}

// ChooseLength sets the length of the human's word in ModeEngineGuesses.
func (s *Session) ChooseLength(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode != ModeEngineGuesses {
		return ErrWrongMode
	}
	if !s.awaitingLength {
		return ErrNotAccepting
	}
	if n < 1 {
		return ErrTooShort
	}
	if !s.lex.HasLength(n) {
		return fmt.Errorf("%w: %d", ErrNoSuchLength, n)
	}

	s.wordLength = n
	s.awaitingLength = false
	return nil
}

// ConfirmGuess records whether the engine's pending letter is in the word.
// answer is "yes" or "no". On "yes" the human is asked for the positions;
// on "no" the engine moves on to its next guess.
func (s *Session) ConfirmGuess(answer string) error {
	answer = strings.ToLower(strings.TrimSpace(answer))
	if answer != "yes" && answer != "no" {
		return ErrInvalidAnswer
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode != ModeEngineGuesses {
		return ErrWrongMode
	}
	if s.engineGuess == 0 {
		return ErrNoPendingGuess
	}
	if s.triedLocked(s.engineGuess) {
		return ErrAlreadyAnswered
	}

	present := answer == "yes"
	s.guessed = append(s.guessed, s.engineGuess)
	s.validity[s.engineGuess] = present
	if present {
		s.alert = positionsPrompt(s.engineGuess)
	} else {
		s.alert = ""
		s.engineGuess = 0
	}
	return nil
}

// ApplyLetterPositions merges the positions of the confirmed letter into the
// pattern. text has one character per position: the guessed letter where it
// occurs, '-' (or '_') where the position is still unknown, and the already
// revealed letters unchanged.
func (s *Session) ApplyLetterPositions(text string) error {
	text = strings.ToLower(strings.TrimSpace(text))

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode != ModeEngineGuesses {
		return ErrWrongMode
	}
	g := s.engineGuess
	if g == 0 || !s.triedLocked(g) || !s.validity[g] {
		return ErrNoPendingGuess
	}
	if len(text) != len(s.word) {
		return fmt.Errorf("%w: got %d letters, want %d", ErrLengthMismatch, len(text), len(s.word))
	}

	next := []byte(s.word)
	placed := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if s.word[i] != '_' {
			if c != s.word[i] {
				return fmt.Errorf("%w: position %d changed", ErrTamperedReveal, i+1)
			}
			continue
		}
		switch c {
		case '-', '_':
		case g:
			next[i] = g
			placed = true
		default:
			return fmt.Errorf("%w: %q is not the guessed letter %q", ErrTamperedReveal, c, g)
		}
	}
	if !placed {
		return fmt.Errorf("%w: %q", ErrLetterMissing, g)
	}

	s.word = string(next)
	s.engineGuess = 0
	s.alert = ""
	return nil
}

// RequestMode asks the controller to switch modes. The switch happens at
// the start of the next round; the current round runs to completion.
func (s *Session) RequestMode(m Mode) error {
	if !m.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidMode, int(m))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingMode = m
	s.modeChange = true
	return nil
}

// ----------------------------------------------------------------------------
// controller side (engine.go)

// beginRound applies any requested mode change and resets the per-round
// fields. It returns the mode and level the round runs with.
func (s *Session) beginRound() (Mode, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.modeChange {
		s.mode = s.pendingMode
		s.modeChange = false
	}
	s.phase = PhaseSetup
	s.word = ""
	s.alert = ""
	s.guessed = s.guessed[:0]
	s.validity = make(map[byte]bool)
	s.engineGuess = 0
	s.wordLength = 0
	s.awaitingLength = false
	s.waitingForWord = false
	s.levelDelta = 0
	s.scoreDelta = 0
	s.result = ResultOngoing
	return s.mode, s.level
}

// setSecret installs the engine-chosen word and starts play.
func (s *Session) setSecret(word string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.word = word
	s.phase = PhasePlaying
}

// awaitWord marks ModeHumanWord as waiting for ChooseWord.
func (s *Session) awaitWord() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waitingForWord = true
}

// startPlaying moves from Setup to Playing once a word is in place.
func (s *Session) startPlaying() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = PhasePlaying
}

// requestLength prompts for the length of the human's word.
func (s *Session) requestLength() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.awaitingLength = true
	s.alert = lengthPrompt
}

func (s *Session) lengthChosen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wordLength > 0
}

// beginGuessing builds the all-blank pattern and starts play.
func (s *Session) beginGuessing() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.word = strings.Repeat("_", s.wordLength)
	s.validity = make(map[byte]bool)
	s.alert = ""
	s.phase = PhasePlaying
}

// solverInput copies what the solver needs.
func (s *Session) solverInput() (pattern string, tried map[byte]bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tried = make(map[byte]bool, len(s.validity))
	for k, v := range s.validity {
		tried[k] = v
	}
	return s.word, tried
}

// setEngineGuess publishes the engine's next letter and asks for a verdict.
func (s *Session) setEngineGuess(letter byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engineGuess = letter
	s.alert = confirmPrompt(letter)
}

func (s *Session) engineGuessPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engineGuess != 0
}

func (s *Session) roundOver() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roundOverLocked()
}

// resolve decides the round, applies score and level changes
// (ModeEngineWord only) and composes the outcome alert.
func (s *Session) resolve() RoundRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	incorrect := len(s.incorrectLocked())
	switch {
	case incorrect >= GuessLimit:
		s.result = ResultLost
	case s.word != "" && strings.IndexByte(s.blankedLocked(), '_') < 0:
		s.result = ResultWon
	default:
		// the guesser gave up before either limit
		s.result = ResultLost
	}
	won := s.result == ResultWon

	rec := RoundRecord{
		GameIndex: s.gameIndex,
		Mode:      s.mode,
		Word:      s.word,
		Result:    s.result,
		Guesses:   string(s.guessed),
		Incorrect: incorrect,
	}

	switch s.mode {
	case ModeEngineWord:
		played := s.level
		s.scoreDelta = ScoreChange(won, played)
		s.score += s.scoreDelta
		s.levelDelta = 0
		if won && s.level < words.NumLevels {
			s.levelDelta = 1
		} else if !won && s.level > 1 {
			s.levelDelta = -1
		}
		s.level += s.levelDelta

		if won {
			s.alert = "You win! "
			if s.levelDelta > 0 {
				s.alert += "Level up! "
			}
		} else {
			s.alert = "You lost! "
			if s.levelDelta < 0 {
				s.alert += "Level down! "
			}
		}
		s.alert += "The word was '" + s.word + "'."
		rec.Level = &played
		rec.ScoreDelta = s.scoreDelta
		rec.LevelDelta = s.levelDelta
	case ModeHumanWord:
		if won {
			s.alert = "You win! The word was '" + s.word + "'."
		} else {
			s.alert = "You lost! The word was '" + s.word + "'."
		}
	case ModeEngineGuesses:
		if won {
			s.alert = "Computer won! The word was '" + s.word + "'."
		} else {
			s.alert = "Computer lost!"
		}
	}
	s.engineGuess = 0
	s.phase = PhaseResolved
	return rec
}

// startDelay opens the pause between rounds and returns the result frame state.
func (s *Session) startDelay() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flashDelay = true
	s.phase = PhaseDelay
	return s.snapshotLocked()
}

// endDelay closes the pause and advances the round counter.
func (s *Session) endDelay() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flashDelay = false
	s.gameIndex++
}

// ScoreChange is the score awarded for a round at level:
// round(level^(3/2)) for a win, round(-2·NumLevels/level) for a loss.
func ScoreChange(won bool, level int) int {
	lvl := float64(level)
	if won {
		return int(math.Round(math.Sqrt(lvl * lvl * lvl)))
	}
	return int(math.Round(-2 * words.NumLevels * math.Sqrt(1/(lvl*lvl))))
}

// Alert macros understood by the web client:
// %prompt(Title, /url, query_param, Label, Type)
const lengthPrompt = "%prompt(Number of letters in word, /setWordLength, length, Length, number)"

func confirmPrompt(letter byte) string {
	up := strings.ToUpper(string(letter))
	return "%prompt(Computer Guesses: " + up + ", /setLetterInWord, in_word, Is " + up + " In Your Word?, choice)"
}

func positionsPrompt(letter byte) string {
	up := strings.ToUpper(string(letter))
	return "%prompt(Letter's Location in Word, /setWordLocations, word, Where is the letter " +
		up + " in the word? Put a dash where appropriate., wordFill)"
}
