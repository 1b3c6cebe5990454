// internal/config/config.go
//
// Runtime configuration.
// Values come from the environment (optionally seeded from a .env file via
// godotenv); command line flags in main override them.
//
//   HOST, PORT          listen address (default 127.0.0.1:8001)
//   HANGMAN_MODE        engine_word | human_word | engine_guesses, or 0-2
//   HANGMAN_LEVEL       starting level 1..20
//   HANGMAN_WORDLIST    word list path; embedded list when unset
//   HANGMAN_DB          SQLite archive path; in-memory archive when unset
//   LOG_LEVEL           zerolog level name (default info)
//   CLIENT_ORIGIN       CORS / websocket origin
//   ROUND_DELAY         pause between rounds (Go duration, default 5s)
//   POLL_INTERVAL       wait loop interval (Go duration, default 500ms)

package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/firebolt55439/airplay-hangman/internal/game"
	"github.com/firebolt55439/airplay-hangman/internal/words"
)

// Config is the resolved server configuration.
type Config struct {
	Host         string
	Port         int
	Mode         game.Mode
	Level        int
	Wordlist     string
	DBPath       string
	LogLevel     string
	ClientOrigin string
	RoundDelay   time.Duration
	PollInterval time.Duration
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Host:         "127.0.0.1",
		Port:         8001,
		Mode:         game.ModeEngineWord,
		Level:        1,
		LogLevel:     "info",
		RoundDelay:   game.DefaultRoundDelay,
		PollInterval: game.DefaultPollInterval,
	}
}

// Load reads .env files (if any) and then the environment.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv, starting from Default.
func FromEnv(getenv func(string) string) (Config, error) {
	c := Default()
	if v := getenv("HOST"); v != "" {
		c.Host = v
	}
	if v := getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return c, fmt.Errorf("PORT: %w", err)
		}
		c.Port = p
	}
	if v := getenv("HANGMAN_MODE"); v != "" {
		m, err := game.ParseMode(v)
		if err != nil {
			return c, fmt.Errorf("HANGMAN_MODE: %w", err)
		}
		c.Mode = m
	}
	if v := getenv("HANGMAN_LEVEL"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c, fmt.Errorf("HANGMAN_LEVEL: %w", err)
		}
		c.Level = l
	}
	c.Wordlist = getenv("HANGMAN_WORDLIST")
	c.DBPath = getenv("HANGMAN_DB")
	if v := getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	c.ClientOrigin = getenv("CLIENT_ORIGIN")

	var err error
	if c.RoundDelay, err = duration(getenv, "ROUND_DELAY", c.RoundDelay); err != nil {
		return c, err
	}
	if c.PollInterval, err = duration(getenv, "POLL_INTERVAL", c.PollInterval); err != nil {
		return c, err
	}
	return c, c.Validate()
}

func duration(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

// Validate checks ranges.
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if !c.Mode.Valid() {
		return fmt.Errorf("%w: %d", game.ErrInvalidMode, int(c.Mode))
	}
	if c.Level < 1 || c.Level > words.NumLevels {
		return fmt.Errorf("level %d outside 1..%d", c.Level, words.NumLevels)
	}
	if c.RoundDelay <= 0 || c.PollInterval <= 0 {
		return errors.New("round delay and poll interval must be positive")
	}
	return nil
}

// Addr is the listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
