// internal/game/types.go
//
// Core type definitions for the hangman engine.
// Defines:
//   - Mode:     which side picks the word and which side guesses.
//   - Phase:    where the round controller is within a round.
//   - Result:   outcome of the current/last round (wire values -1/0/1).
//   - Snapshot: a value copy of the session, for queries and frames.
//   - Frame, Display, Recorder: the engine's outbound collaborators.

package game

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// GuessLimit is the number of incorrect guesses that ends a round.
const GuessLimit = 7

// Mode selects who picks the word and who guesses.
type Mode int

const (
	ModeEngineWord    Mode = iota // engine picks the word, humans guess
	ModeHumanWord                 // a human picks the word, other humans guess
	ModeEngineGuesses             // a human thinks of a word, the engine guesses
)

var modeNames = [...]string{"engine_word", "human_word", "engine_guesses"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return "mode(" + strconv.Itoa(int(m)) + ")"
	}
	return modeNames[m]
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool { return m >= ModeEngineWord && m <= ModeEngineGuesses }

// MarshalText encodes the mode by name.
func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText accepts anything ParseMode does.
func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// ParseMode accepts a mode name ("engine_word") or its number ("0").
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		if m := Mode(n); m.Valid() {
			return m, nil
		}
		return 0, fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
	for i, name := range modeNames {
		if s == name {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// Phase is the round controller's position within a round.
type Phase int

const (
	PhaseSetup Phase = iota
	PhasePlaying
	PhaseResolved
	PhaseDelay
)

var phaseNames = [...]string{"setup", "playing", "resolved", "delay"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "phase(" + strconv.Itoa(int(p)) + ")"
	}
	return phaseNames[p]
}

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Phase) UnmarshalText(b []byte) error {
	for i, name := range phaseNames {
		if string(b) == name {
			*p = Phase(i)
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", b)
}

// Result is the outcome of a round. The numeric values are what clients
// receive in /getGameInfo.
type Result int

const (
	ResultOngoing Result = -1
	ResultLost    Result = 0
	ResultWon     Result = 1
)

func (r Result) String() string {
	switch r {
	case ResultLost:
		return "lost"
	case ResultWon:
		return "won"
	default:
		return "ongoing"
	}
}

// Segment is one run of the fill-in-the-blanks form: either a run of known
// letters or a run of blanks.
type Segment struct {
	Known  string `json:"known,omitempty"`
	Blanks int    `json:"blanks,omitempty"`
}

// Snapshot is a consistent copy of the session taken under its lock.
// Level and Score are nil outside ModeEngineWord.
type Snapshot struct {
	Mode           Mode   `json:"mode"`
	Phase          Phase  `json:"phase"`
	Level          *int   `json:"level"`
	LevelDelta     int    `json:"levelDelta"`
	Score          *int   `json:"score"`
	ScoreDelta     int    `json:"scoreDelta"`
	Blanked        string `json:"blanked"`
	WordLength     int    `json:"wordLength"`
	Guessed        string `json:"guessed"`
	Incorrect      string `json:"incorrect"`
	Alert          string `json:"alert"`
	GameIndex      int    `json:"gameIndex"`
	Result         Result `json:"result"`
	FlashDelay     bool   `json:"flashDelay"`
	WaitingForWord bool   `json:"waitingForWord"`
	EngineGuess    string `json:"engineGuess,omitempty"`
	Word           string `json:"word,omitempty"` // revealed only during the flash delay
}

// Screen tells the display which picture to compose.
type Screen string

const (
	ScreenWaiting Screen = "waiting" // waiting for a human to supply a word or length
	ScreenPlaying Screen = "playing"
	ScreenResult  Screen = "result"
)

// Frame is what the engine hands to the display.
type Frame struct {
	Screen Screen   `json:"screen"`
	State  Snapshot `json:"state"`
	Rank   int      `json:"rank,omitempty"` // corpus rank of the word, ModeEngineWord only
	Total  int      `json:"total,omitempty"`
}

// Display delivers rendered frames somewhere (a screen, a socket).
type Display interface {
	Present(f Frame)
}

// RoundRecord describes one finished round.
type RoundRecord struct {
	ID         string    `json:"id"`
	GameIndex  int       `json:"gameIndex"`
	Mode       Mode      `json:"mode"`
	Word       string    `json:"word"`
	Result     Result    `json:"result"`
	Level      *int      `json:"level,omitempty"`
	ScoreDelta int       `json:"scoreDelta"`
	LevelDelta int       `json:"levelDelta"`
	Guesses    string    `json:"guesses"`
	Incorrect  int       `json:"incorrect"`
	FinishedAt time.Time `json:"finishedAt"`
}

// Recorder archives finished rounds.
type Recorder interface {
	RecordRound(ctx context.Context, r RoundRecord) error
	RecentRounds(ctx context.Context, limit int) ([]RoundRecord, error)
}

// Lexicon is the word source the engine and session consult.
type Lexicon interface {
	WordAtLevel(level int) (string, error)
	HasLength(n int) bool
	WordsOfLength(n int) []string
	Rank(word string) (int, bool)
	Len() int
}

type nopDisplay struct{}

func (nopDisplay) Present(Frame) {}
