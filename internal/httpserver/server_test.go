package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firebolt55439/airplay-hangman/internal/display"
	"github.com/firebolt55439/airplay-hangman/internal/game"
	"github.com/firebolt55439/airplay-hangman/internal/store"
	"github.com/firebolt55439/airplay-hangman/internal/words"
)

type fixture struct {
	srv     *httptest.Server
	session *game.Session
	corpus  *words.Corpus
	rec     *store.Memory
}

func newFixture(t *testing.T, mode game.Mode) *fixture {
	t.Helper()
	corpus := words.New([]string{
		"about", "after", "again", "below", "could", "every", "first", "found", "great", "house",
		"large", "learn", "never", "other", "place", "plant", "point", "right", "small", "sound",
	})
	f := &fixture{
		session: game.NewSession(corpus, mode, 1),
		corpus:  corpus,
		rec:     store.NewMemory(10),
	}
	hub := display.NewHub("")
	engine := game.NewEngine(f.session, corpus,
		game.WithDisplay(hub),
		game.WithRecorder(f.rec),
		game.WithTiming(time.Second, 2*time.Millisecond),
	)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = engine.Run(ctx)
	}()

	f.srv = httptest.NewServer(New(Deps{
		Session:  f.session,
		Corpus:   corpus,
		Recorder: f.rec,
		Display:  hub,
	}).Handler())

	t.Cleanup(func() {
		f.srv.Close()
		hub.Close()
		cancel()
		<-done
	})
	return f
}

func (f *fixture) get(t *testing.T, path string, header http.Header, out any) int {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, f.srv.URL+path, nil)
	require.NoError(t, err)
	for k, v := range header {
		req.Header[k] = v
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	if out != nil {
		require.NoError(t, json.Unmarshal(body, out), "body: %s", body)
	}
	return res.StatusCode
}

func TestHealthIndexAndNotFound(t *testing.T) {
	f := newFixture(t, game.ModeHumanWord)

	var health map[string]bool
	assert.Equal(t, http.StatusOK, f.get(t, "/health", nil, &health))
	assert.True(t, health["ok"])

	var index map[string]any
	assert.Equal(t, http.StatusOK, f.get(t, "/", nil, &index))
	assert.Equal(t, "hangman", index["service"])

	var nf map[string]string
	assert.Equal(t, http.StatusNotFound, f.get(t, "/nope", nil, &nf))
	assert.Equal(t, "not_found", nf["error"])
	assert.Equal(t, "/nope", nf["path"])
}

func TestDebugWordsAndMetrics(t *testing.T) {
	f := newFixture(t, game.ModeHumanWord)

	var dbg struct {
		Words  int   `json:"words"`
		Levels []int `json:"levels"`
	}
	f.get(t, "/debug/words", nil, &dbg)
	assert.Equal(t, 20, dbg.Words)
	assert.Len(t, dbg.Levels, words.NumLevels+1)

	res, err := http.Get(f.srv.URL + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), "hangman_display_viewers")
}

func TestGuessLetterFlow(t *testing.T) {
	f := newFixture(t, game.ModeEngineWord)
	require.Eventually(t, func() bool { return f.session.Phase() == game.PhasePlaying },
		time.Second, time.Millisecond)

	secret := f.corpus.Words()[0] // the only word in level 1
	first := secret[0]

	var g guessRes
	f.get(t, "/guessLetter?letter="+strconv.Itoa(int(first)), nil, &g)
	assert.False(t, g.Error)
	assert.True(t, g.Success)
	assert.Contains(t, g.Message, "Correct!")

	f.get(t, "/guessLetter?letter="+string(first), nil, &g)
	assert.True(t, g.Error)
	assert.Equal(t, "Someone already guessed that letter!", g.Message)

	f.get(t, "/guessLetter?letter=A", nil, &g)
	assert.True(t, g.Error)
	assert.Equal(t, "Invalid character 'A'- must be a lowercase letter.", g.Message)

	f.get(t, "/guessLetter?letter=q", nil, &g)
	assert.False(t, g.Error)
	assert.False(t, g.Success)
	assert.Equal(t, "The letter 'q' was not in the word.", g.Message)

	var pct map[string]string
	f.get(t, "/guessPercentage", nil, &pct)
	assert.Equal(t, "14.29", pct["percentage"])

	var extant struct{ Letters []string }
	f.get(t, "/getExtantLetters", nil, &extant)
	assert.Len(t, extant.Letters, 24)
	assert.NotContains(t, extant.Letters, "q")
	assert.NotContains(t, extant.Letters, string(first))

	var blanked struct {
		Blanked string
		Length  int
	}
	f.get(t, "/getBlankedWord", nil, &blanked)
	assert.Equal(t, 5, blanked.Length)
	assert.Len(t, blanked.Blanked, 9)
	assert.Equal(t, first, blanked.Blanked[0])

	var info map[string]any
	f.get(t, "/getGameInfo", nil, &info)
	assert.EqualValues(t, 1, info["level"])
	assert.EqualValues(t, 0, info["score"])
	assert.EqualValues(t, -1, info["result"])
	assert.Equal(t, "engine_word", info["mode"])
	assert.Equal(t, "", info["word"])

	for i := 1; i < len(secret); i++ {
		f.get(t, "/guessLetter?letter="+string(secret[i]), nil, nil)
	}

	var history []game.RoundRecord
	require.Eventually(t, func() bool {
		f.get(t, "/history", nil, &history)
		return len(history) == 1
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, secret, history[0].Word)
	assert.Equal(t, game.ResultWon, history[0].Result)

	f.get(t, "/getGameInfo", nil, &info)
	assert.Equal(t, secret, info["word"], "word is revealed during the flash delay")
	assert.EqualValues(t, 1, info["result"])

	var alert map[string]string
	f.get(t, "/getLatestAlert", nil, &alert)
	assert.Equal(t, "You win! Level up! The word was '"+secret+"'.", alert["alert"])
}

func TestHumanWordCommandsTrackController(t *testing.T) {
	f := newFixture(t, game.ModeHumanWord)
	require.Eventually(t, f.session.WaitingForWord, time.Second, time.Millisecond)

	var res commandRes
	f.get(t, "/chooseWord?word=cat", nil, &res)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "Word too short")

	var info map[string]any
	f.get(t, "/getGameInfo", nil, &info)
	assert.Equal(t, "", info["controller"])
	assert.Nil(t, info["level"])
	assert.Nil(t, info["score"])
	assert.Equal(t, true, info["waitingForWord"])

	hdr := http.Header{"X-Real-Ip": {"10.0.0.7"}}
	f.get(t, "/chooseWord?word=Hello", hdr, &res)
	assert.True(t, res.Success)
	assert.Empty(t, res.Error)

	f.get(t, "/getGameInfo", nil, &info)
	assert.Equal(t, "10.0.0.7", info["controller"])
	assert.Equal(t, false, info["waitingForWord"])
	assert.Equal(t, "human_word", info["mode"])

	f.get(t, "/setWordLength?length=5", nil, &res)
	assert.False(t, res.Success)
	assert.Equal(t, "Not available in the current mode!", res.Error)
}

func TestEngineGuessesPrompts(t *testing.T) {
	f := newFixture(t, game.ModeEngineGuesses)

	var alert map[string]string
	require.Eventually(t, func() bool {
		f.get(t, "/getLatestAlert", nil, &alert)
		return alert["alert"] == "%prompt(Number of letters in word, /setWordLength, length, Length, number)"
	}, time.Second, 2*time.Millisecond)

	var res commandRes
	f.get(t, "/setWordLength?length=3", nil, &res)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "No word with specified length in dictionary")

	f.get(t, "/setWordLength?length=abc", nil, &res)
	assert.False(t, res.Success)

	f.get(t, "/setWordLength?length=5", nil, &res)
	require.True(t, res.Success)

	require.Eventually(t, func() bool {
		f.get(t, "/getLatestAlert", nil, &alert)
		return strings.HasPrefix(alert["alert"], "%prompt(Computer Guesses: ")
	}, time.Second, 2*time.Millisecond)

	f.get(t, "/setLetterInWord?in_word=maybe", nil, &res)
	assert.False(t, res.Success)
	assert.Equal(t, "Answer must be yes or no!", res.Error)

	f.get(t, "/setLetterInWord?in_word=yes", nil, &res)
	require.True(t, res.Success)

	var form struct {
		Segments []game.Segment
		Length   int
	}
	f.get(t, "/getWordFillForm", nil, &form)
	assert.Equal(t, 5, form.Length)
	assert.Equal(t, []game.Segment{{Blanks: 5}}, form.Segments)

	f.get(t, "/setWordLocations?word=-----", nil, &res)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "The guessed letter must appear at least once")
}

func TestSetMode(t *testing.T) {
	f := newFixture(t, game.ModeHumanWord)

	var res commandRes
	f.get(t, "/setMode?mode=banana", nil, &res)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "Unknown mode")

	f.get(t, "/setMode?mode=engine_guesses", nil, &res)
	assert.True(t, res.Success)
	assert.Equal(t, game.ModeHumanWord, f.session.Mode(), "switch waits for the next round")
}
