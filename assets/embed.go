// assets/embed.go
//
// Embedded defaults for the server:
//   - wordlist.txt: fallback corpus used when HANGMAN_WORDLIST is unset.
//   - sql/*.sql:    migrations for the optional SQLite round archive.

package assets

import (
	"embed"
	"io/fs"
)

//go:embed wordlist.txt sql/*.sql
var FS embed.FS

// OpenWordlist opens the embedded word list for reading.
func OpenWordlist() (fs.File, error) {
	return FS.Open("wordlist.txt")
}

// Migrations returns the embedded sql directory as its own filesystem,
// so callers see "001_rounds.sql" rather than "sql/001_rounds.sql".
func Migrations() (fs.FS, error) {
	return fs.Sub(FS, "sql")
}
