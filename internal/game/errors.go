package game

import "errors"

// Validation errors returned by session commands. The transport reports
// err.Error() to the caller; state is unchanged whenever one is returned.
var (
	ErrTooShort        = errors.New("word too short")
	ErrNoSuchLength    = errors.New("no word with specified length in dictionary")
	ErrAlreadyAnswered = errors.New("someone already confirmed or denied that letter")
	ErrLengthMismatch  = errors.New("word is wrong length")
	ErrTamperedReveal  = errors.New("the word was modified in an unauthorized fashion")
	ErrLetterMissing   = errors.New("the guessed letter must appear at least once")
	ErrInvalidLetter   = errors.New("must be a lowercase letter")
	ErrInvalidWord     = errors.New("word must contain only letters")
	ErrInvalidAnswer   = errors.New("answer must be yes or no")
	ErrInvalidMode     = errors.New("unknown mode")
	ErrAlreadyGuessed  = errors.New("someone already guessed that letter")
	ErrWrongMode       = errors.New("not available in the current mode")
	ErrNotAccepting    = errors.New("not waiting for that input right now")
	ErrRoundOver       = errors.New("the round is over")
	ErrNoPendingGuess  = errors.New("no engine guess is awaiting an answer")
)
