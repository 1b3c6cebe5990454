// internal/game/engine.go
//
// Round controller. Engine.Run drives the session through
// Setup → Playing → Resolved → Delay → Setup until its context is cancelled.
//
// Responsibilities:
//   - Apply pending mode changes at the start of each round.
//   - Pick the secret word (ModeEngineWord), wait for a human-chosen word
//     (ModeHumanWord), or run the solver against a human's word
//     (ModeEngineGuesses).
//   - Wait for external input with bounded polls, presenting a frame on
//     every tick. The session lock is never held while waiting.
//   - Resolve the round, archive it, show the result and pause.

package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/firebolt55439/airplay-hangman/internal/metrics"
	"github.com/firebolt55439/airplay-hangman/internal/solver"
)

// Default timings.
const (
	DefaultRoundDelay   = 5 * time.Second
	DefaultPollInterval = 500 * time.Millisecond
)

// Engine is the round controller.
type Engine struct {
	session  *Session
	lex      Lexicon
	solver   *solver.Solver
	display  Display
	recorder Recorder

	delay time.Duration
	poll  time.Duration

	word string // word of the round in progress, engine goroutine only
}

// Option configures an Engine.
type Option func(*Engine)

// WithDisplay sets where frames are presented.
func WithDisplay(d Display) Option {
	return func(e *Engine) {
		if d != nil {
			e.display = d
		}
	}
}

// WithRecorder archives every finished round to r.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// WithTiming overrides the pause between rounds and the poll interval.
// Non-positive values keep the defaults.
func WithTiming(delay, poll time.Duration) Option {
	return func(e *Engine) {
		if delay > 0 {
			e.delay = delay
		}
		if poll > 0 {
			e.poll = poll
		}
	}
}

// NewEngine returns a controller for session backed by lex.
func NewEngine(session *Session, lex Lexicon, opts ...Option) *Engine {
	e := &Engine{
		session: session,
		lex:     lex,
		solver:  solver.New(lex),
		display: nopDisplay{},
		delay:   DefaultRoundDelay,
		poll:    DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Session returns the session the engine drives.
func (e *Engine) Session() *Session { return e.session }

// Run plays rounds until ctx is cancelled (returns nil) or a fatal error
// occurs: an empty level band or a solver invariant violation.
func (e *Engine) Run(ctx context.Context) error {
	for {
		err := e.playRound(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (e *Engine) playRound(ctx context.Context) error {
	s := e.session
	mode, level := s.beginRound()
	e.word = ""

	logger := log.With().Str("mode", mode.String()).Int("round", s.GameIndex()).Logger()
	logger.Debug().Msg("round setup")

	switch mode {
	case ModeEngineWord:
		word, err := e.lex.WordAtLevel(level)
		if err != nil {
			return fmt.Errorf("pick word at level %d: %w", level, err)
		}
		e.word = word
		s.setSecret(word)
		logger.Info().Int("level", level).Str("word", word).Msg("word chosen")
		if err := e.waitFor(ctx, ScreenPlaying, s.roundOver); err != nil {
			return err
		}

	case ModeHumanWord:
		s.awaitWord()
		if err := e.waitFor(ctx, ScreenWaiting, func() bool { return !s.WaitingForWord() }); err != nil {
			return err
		}
		s.startPlaying()
		logger.Info().Int("length", s.WordLength()).Msg("word received")
		if err := e.waitFor(ctx, ScreenPlaying, s.roundOver); err != nil {
			return err
		}

	case ModeEngineGuesses:
		s.requestLength()
		if err := e.waitFor(ctx, ScreenWaiting, s.lengthChosen); err != nil {
			return err
		}
		s.beginGuessing()
		if err := e.guessLoop(ctx); err != nil {
			return err
		}

	default:
		return fmt.Errorf("%w: %d", ErrInvalidMode, int(mode))
	}

	rec := s.resolve()
	if mode != ModeEngineGuesses {
		e.word = rec.Word
	}
	logger.Info().
		Str("word", rec.Word).
		Str("result", rec.Result.String()).
		Int("incorrect", rec.Incorrect).
		Int("score_delta", rec.ScoreDelta).
		Int("level_delta", rec.LevelDelta).
		Msg("round resolved")
	metrics.RoundsTotal.WithLabelValues(mode.String(), rec.Result.String()).Inc()
	e.archive(ctx, rec)

	e.presentSnapshot(ScreenResult, s.startDelay())
	t := time.NewTimer(e.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
	}
	s.endDelay()
	return nil
}

// guessLoop lets the solver guess until the round is over. An exhausted
// candidate set ends the round as a loss for the engine; any other solver
// error is fatal.
func (e *Engine) guessLoop(ctx context.Context) error {
	s := e.session
	for !s.roundOver() {
		pattern, tried := s.solverInput()
		a, err := e.solver.Analyze(pattern, tried)
		if errors.Is(err, solver.ErrNoCandidate) {
			log.Error().Err(err).Str("pattern", pattern).Msg("no word fits the answers, conceding")
			return nil
		}
		if err != nil {
			log.Error().Err(err).Str("pattern", pattern).Msg("solver failed")
			return err
		}

		metrics.SolverCandidates.Observe(float64(a.Candidates))
		metrics.GuessesTotal.WithLabelValues("engine").Inc()
		log.Debug().
			Str("letter", string(a.Letter)).
			Int("position", a.Position).
			Float64("probability", a.Probability).
			Int("candidates", a.Candidates).
			Msg("engine guess")

		s.setEngineGuess(a.Letter)
		if err := e.waitFor(ctx, ScreenPlaying, func() bool { return !s.engineGuessPending() }); err != nil {
			return err
		}
	}
	return nil
}

// waitFor polls done every poll interval, presenting a frame each tick.
func (e *Engine) waitFor(ctx context.Context, screen Screen, done func() bool) error {
	t := time.NewTicker(e.poll)
	defer t.Stop()
	for {
		if done() {
			return nil
		}
		e.presentSnapshot(screen, e.session.Snapshot())
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}

func (e *Engine) presentSnapshot(screen Screen, snap Snapshot) {
	f := Frame{Screen: screen, State: snap}
	if snap.Mode == ModeEngineWord && e.word != "" {
		if rank, ok := e.lex.Rank(e.word); ok {
			f.Rank, f.Total = rank+1, e.lex.Len()
		}
	}
	e.display.Present(f)
}

func (e *Engine) archive(ctx context.Context, rec RoundRecord) {
	if e.recorder == nil {
		return
	}
	rec.ID = uuid.NewString()
	rec.FinishedAt = time.Now().UTC()
	if err := e.recorder.RecordRound(ctx, rec); err != nil {
		log.Warn().Err(err).Str("id", rec.ID).Msg("failed to archive round")
	}
}
