// internal/httpserver/routes_game.go
//
// HTTP routes for the shared hangman session. Everything is GET so the
// browser client can drive it with plain query strings.
//
// Queries:
//   - GET /getGameInfo       → level, score, round index, result, phase, ...
//   - GET /getBlankedWord    → "_ _ z z _ _" and the word length
//   - GET /getExtantLetters  → letters nobody has tried yet
//   - GET /guessPercentage   → incorrect guesses as a share of the limit
//   - GET /getLatestAlert    → latest broadcast / prompt macro
//   - GET /getWordFillForm   → known/blank runs for the positions prompt
//   - GET /history           → recently finished rounds
//
// Commands (respond {"success": bool, "error": string}):
//   - GET /chooseWord?word=, /setWordLength?length=, /setLetterInWord?in_word=,
//     /setWordLocations?word=, /setMode?mode=
//   - GET /guessLetter?letter= responds {"error", "message", "success"} where
//     success means the letter was in the word.

package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/firebolt55439/airplay-hangman/internal/game"
	"github.com/firebolt55439/airplay-hangman/internal/metrics"
)

// mountGame registers the game routes on r.
func (s *Server) mountGame(r chi.Router) {
	r.Get("/getGameInfo", s.handleGameInfo)
	r.Get("/getBlankedWord", s.handleBlankedWord)
	r.Get("/getExtantLetters", s.handleExtantLetters)
	r.Get("/guessPercentage", s.handleGuessPercentage)
	r.Get("/getLatestAlert", s.handleLatestAlert)
	r.Get("/getWordFillForm", s.handleWordFillForm)
	r.Get("/history", s.handleHistory)

	r.Get("/guessLetter", s.handleGuessLetter)
	r.Get("/chooseWord", s.command("chooseWord", func(r *http.Request) error {
		return s.session.ChooseWord(r.URL.Query().Get("word"))
	}))
	r.Get("/setWordLength", s.command("setWordLength", func(r *http.Request) error {
		n, _ := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get("length")))
		return s.session.ChooseLength(n)
	}))
	r.Get("/setLetterInWord", s.command("setLetterInWord", func(r *http.Request) error {
		return s.session.ConfirmGuess(r.URL.Query().Get("in_word"))
	}))
	r.Get("/setWordLocations", s.command("setWordLocations", func(r *http.Request) error {
		return s.session.ApplyLetterPositions(r.URL.Query().Get("word"))
	}))
	r.Get("/setMode", s.command("setMode", func(r *http.Request) error {
		m, err := game.ParseMode(r.URL.Query().Get("mode"))
		if err != nil {
			return err
		}
		return s.session.RequestMode(m)
	}))
}

// commandRes is the response shape of every privileged command.
type commandRes struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// command adapts a session command into a handler that reports the error
// string and remembers the caller on success.
func (s *Server) command(name string, fn func(r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(r); err != nil {
			metrics.CommandRejections.WithLabelValues(name, reason(err)).Inc()
			log.Debug().Err(err).Str("command", name).Str("remote", clientIP(r)).Msg("command rejected")
			writeJSON(w, commandRes{Error: errorText(err)})
			return
		}
		s.setController(r)
		log.Info().Str("command", name).Str("remote", clientIP(r)).Msg("command accepted")
		writeJSON(w, commandRes{Success: true})
	}
}

type guessRes struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// handleGuessLetter accepts the letter itself or its character code
// (the browser client sends codes, e.g. letter=122 for 'z').
func (s *Server) handleGuessLetter(w http.ResponseWriter, r *http.Request) {
	letter := parseLetter(r.URL.Query().Get("letter"))

	n, err := s.session.GuessLetter(letter)
	if err != nil {
		metrics.CommandRejections.WithLabelValues("guessLetter", reason(err)).Inc()
		writeJSON(w, guessRes{Error: true, Message: guessErrorMessage(err, letter)})
		return
	}
	metrics.GuessesTotal.WithLabelValues("human").Inc()

	var res guessRes
	switch {
	case n == 0:
		res.Message = fmt.Sprintf("The letter '%c' was not in the word.", letter)
	case n == 1:
		res.Success = true
		res.Message = fmt.Sprintf("Correct! There was 1 instance of '%c' in the word.", letter)
	default:
		res.Success = true
		res.Message = fmt.Sprintf("Correct! There were %d instances of '%c' in the word.", n, letter)
	}
	writeJSON(w, res)
}

func parseLetter(v string) byte {
	v = strings.TrimSpace(v)
	if code, err := strconv.Atoi(v); err == nil {
		if code < 0 || code > 255 {
			return 0
		}
		return byte(code)
	}
	if len(v) == 1 {
		return v[0]
	}
	return 0
}

func guessErrorMessage(err error, letter byte) string {
	switch {
	case errors.Is(err, game.ErrRoundOver):
		return fmt.Sprintf("All %d guesses have been used.", game.GuessLimit)
	case errors.Is(err, game.ErrInvalidLetter):
		return fmt.Sprintf("Invalid character '%c'- must be a lowercase letter.", letter)
	case errors.Is(err, game.ErrAlreadyGuessed):
		return "Someone already guessed that letter!"
	default:
		return errorText(err)
	}
}

func (s *Server) handleGameInfo(w http.ResponseWriter, r *http.Request) {
	snap := s.session.Snapshot()
	writeJSON(w, map[string]any{
		"level":          snap.Level,
		"levelDelta":     snap.LevelDelta,
		"score":          snap.Score,
		"scoreDelta":     snap.ScoreDelta,
		"index":          snap.GameIndex,
		"result":         int(snap.Result),
		"word":           snap.Word,
		"mode":           snap.Mode,
		"phase":          snap.Phase,
		"flashDelay":     snap.FlashDelay,
		"waitingForWord": snap.WaitingForWord,
		"ip_addr":        clientIP(r),
		"controller":     s.Controller(),
	})
}

func (s *Server) handleBlankedWord(w http.ResponseWriter, r *http.Request) {
	blanked := s.session.BlankedWord()
	writeJSON(w, map[string]any{
		"blanked": strings.Join(strings.Split(blanked, ""), " "),
		"length":  len(blanked),
	})
}

func (s *Server) handleExtantLetters(w http.ResponseWriter, r *http.Request) {
	guessed := s.session.GuessedLetters()
	letters := make([]string, 0, 26)
	for c := byte('a'); c <= 'z'; c++ {
		if strings.IndexByte(guessed, c) < 0 {
			letters = append(letters, string(c))
		}
	}
	writeJSON(w, map[string]any{"letters": letters})
}

func (s *Server) handleGuessPercentage(w http.ResponseWriter, r *http.Request) {
	pct := float64(s.session.IncorrectCount()) / game.GuessLimit * 100
	writeJSON(w, map[string]string{"percentage": strconv.FormatFloat(pct, 'f', 2, 64)})
}

func (s *Server) handleLatestAlert(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"alert": s.session.Alert()})
}

func (s *Server) handleWordFillForm(w http.ResponseWriter, r *http.Request) {
	segments := s.session.FillForm()
	if segments == nil {
		segments = []game.Segment{}
	}
	writeJSON(w, map[string]any{"segments": segments, "length": s.session.WordLength()})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rounds := []game.RoundRecord{}
	if s.recorder != nil {
		got, err := s.recorder.RecentRounds(r.Context(), limit)
		if err != nil {
			log.Error().Err(err).Msg("load history")
			w.WriteHeader(http.StatusInternalServerError)
			writeJSON(w, map[string]string{"error": "history_unavailable"})
			return
		}
		rounds = append(rounds, got...)
	}
	writeJSON(w, rounds)
}

// errorText capitalizes the error for display.
func errorText(err error) string {
	msg := err.Error()
	if msg == "" {
		return msg
	}
	return strings.ToUpper(msg[:1]) + msg[1:] + "!"
}

// reason is a short metric label for a rejected command.
func reason(err error) string {
	for _, c := range []struct {
		err  error
		name string
	}{
		{game.ErrTooShort, "too_short"},
		{game.ErrNoSuchLength, "no_such_length"},
		{game.ErrAlreadyAnswered, "already_answered"},
		{game.ErrLengthMismatch, "length_mismatch"},
		{game.ErrTamperedReveal, "tampered"},
		{game.ErrLetterMissing, "letter_missing"},
		{game.ErrInvalidLetter, "invalid_letter"},
		{game.ErrInvalidWord, "invalid_word"},
		{game.ErrInvalidAnswer, "invalid_answer"},
		{game.ErrInvalidMode, "invalid_mode"},
		{game.ErrAlreadyGuessed, "already_guessed"},
		{game.ErrWrongMode, "wrong_mode"},
		{game.ErrNotAccepting, "not_accepting"},
		{game.ErrRoundOver, "round_over"},
		{game.ErrNoPendingGuess, "no_pending_guess"},
	} {
		if errors.Is(err, c.err) {
			return c.name
		}
	}
	return "other"
}
