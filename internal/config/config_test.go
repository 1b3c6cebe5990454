package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firebolt55439/airplay-hangman/internal/game"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestDefaults(t *testing.T) {
	c, err := FromEnv(env(nil))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
	assert.Equal(t, "127.0.0.1:8001", c.Addr())
	assert.Equal(t, 5*time.Second, c.RoundDelay)
}

func TestFromEnv(t *testing.T) {
	c, err := FromEnv(env(map[string]string{
		"HOST":             "0.0.0.0",
		"PORT":             "9000",
		"HANGMAN_MODE":     "engine_guesses",
		"HANGMAN_LEVEL":    "7",
		"HANGMAN_WORDLIST": "/tmp/words.txt",
		"HANGMAN_DB":       "./data/hangman.db",
		"LOG_LEVEL":        "debug",
		"CLIENT_ORIGIN":    "http://tv.local",
		"ROUND_DELAY":      "2s",
		"POLL_INTERVAL":    "100ms",
	}))
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9000", c.Addr())
	assert.Equal(t, game.ModeEngineGuesses, c.Mode)
	assert.Equal(t, 7, c.Level)
	assert.Equal(t, "/tmp/words.txt", c.Wordlist)
	assert.Equal(t, "./data/hangman.db", c.DBPath)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, "http://tv.local", c.ClientOrigin)
	assert.Equal(t, 2*time.Second, c.RoundDelay)
	assert.Equal(t, 100*time.Millisecond, c.PollInterval)
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	for name, vars := range map[string]map[string]string{
		"port":     {"PORT": "http"},
		"port big": {"PORT": "70000"},
		"mode":     {"HANGMAN_MODE": "3"},
		"level":    {"HANGMAN_LEVEL": "21"},
		"delay":    {"ROUND_DELAY": "soon"},
		"poll":     {"POLL_INTERVAL": "0s"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := FromEnv(env(vars))
			assert.Error(t, err)
		})
	}
}

func TestLoadReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("HANGMAN_LEVEL=4\n"), 0o644))
	t.Setenv("HANGMAN_LEVEL", "")
	require.NoError(t, os.Unsetenv("HANGMAN_LEVEL"))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, c.Level)
}

func TestLoadWithoutEnvFile(t *testing.T) {
	chdir(t, t.TempDir())
	_, err := Load()
	assert.NoError(t, err)
}

// chdir changes the working directory for the duration of the test,
// matching testing.T.Chdir (Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatal(err)
		}
	})
}
