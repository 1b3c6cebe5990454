// main.go
//
// Entry point for the hangman server.
// Responsibilities:
//   - Parse flags (cobra) on top of env/.env configuration.
//   - Load the corpus (file or embedded), open the round archive.
//   - Run the round controller and the HTTP server together (errgroup)
//     until SIGINT/SIGTERM.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/firebolt55439/airplay-hangman/internal/config"
	"github.com/firebolt55439/airplay-hangman/internal/display"
	"github.com/firebolt55439/airplay-hangman/internal/game"
	"github.com/firebolt55439/airplay-hangman/internal/httpserver"
	"github.com/firebolt55439/airplay-hangman/internal/store"
	"github.com/firebolt55439/airplay-hangman/internal/words"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func newRootCmd() *cobra.Command {
	var (
		mode     string
		port     int
		host     string
		level    int
		wordlist string
	)
	cmd := &cobra.Command{
		Use:   "hangman",
		Short: "Networked hangman: the engine picks words, humans pick words, or the engine guesses yours",
		Long: `Modes:
  0 = engine_word     the engine picks a word at the current level, everyone guesses
  1 = human_word      one player supplies a word, everyone else guesses
  2 = engine_guesses  a player thinks of a word and the engine guesses it`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("mode") {
				if cfg.Mode, err = game.ParseMode(mode); err != nil {
					return err
				}
			}
			if flags.Changed("port") {
				cfg.Port = port
			}
			if flags.Changed("host") {
				cfg.Host = host
			}
			if flags.Changed("level") {
				cfg.Level = level
			}
			if flags.Changed("wordlist") {
				cfg.Wordlist = wordlist
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVarP(&mode, "mode", "m", "0", "game mode (0-2 or name)")
	cmd.Flags().IntVarP(&port, "port", "p", 8001, "listen port")
	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "listen host")
	cmd.Flags().IntVar(&level, "level", 1, "starting level (1-20)")
	cmd.Flags().StringVar(&wordlist, "wordlist", "", "word list file (embedded list when empty)")
	return cmd
}

func run(ctx context.Context, cfg config.Config) error {
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	corpus, err := loadCorpus(cfg.Wordlist)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Wordlist).Msg("failed to load word list")
	}
	log.Info().Int("words", corpus.Len()).Msg("word list loaded")

	recorder, closeRecorder, err := openRecorder(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open round archive")
	}
	defer closeRecorder()

	hub := display.NewHub(cfg.ClientOrigin)
	defer hub.Close()

	session := game.NewSession(corpus, cfg.Mode, cfg.Level)
	engine := game.NewEngine(session, corpus,
		game.WithDisplay(hub),
		game.WithRecorder(recorder),
		game.WithTiming(cfg.RoundDelay, cfg.PollInterval),
	)
	srv := httpserver.New(httpserver.Deps{
		Session:      session,
		Corpus:       corpus,
		Recorder:     recorder,
		Display:      hub,
		ClientOrigin: cfg.ClientOrigin,
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("addr", cfg.Addr()).
		Str("mode", cfg.Mode.String()).
		Int("level", cfg.Level).
		Msg("starting hangman server")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return engine.Run(gctx) })
	g.Go(func() error { return srv.Serve(gctx, cfg.Addr()) })
	if err := g.Wait(); err != nil {
		return err
	}
	log.Info().Msg("shut down")
	return nil
}

func loadCorpus(path string) (*words.Corpus, error) {
	if path == "" {
		return words.LoadEmbedded()
	}
	return words.Load(path)
}

// openRecorder returns the SQLite archive when path is set, the in-memory
// ring otherwise.
func openRecorder(path string) (game.Recorder, func(), error) {
	if path == "" {
		return store.NewMemory(store.DefaultCapacity), func() {}, nil
	}
	db, err := store.OpenSQLite(path)
	if err != nil {
		return nil, nil, err
	}
	log.Info().Str("path", path).Msg("round archive opened")
	return db, func() { _ = db.Close() }, nil
}
