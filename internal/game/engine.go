package game

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Rejection reasons returned by Submit. These are ordinary, recoverable
// outcomes reported to the caller; none of them mutates the ledger.
var (
	ErrSessionTerminal   = errors.New("game is over")
	ErrInvalidShape      = errors.New("word must be 5 letters")
	ErrNotAcceptableWord = errors.New("word not recognized")
	ErrDuplicateGuess    = errors.New("word already guessed")
	ErrSessionNotFound   = errors.New("session not found")
)

// Engine owns session status transitions. Its collaborators are injected
// so the engine is testable with deterministic fixtures: SelectStartWord
// supplies the target word (and an optional hint) at session creation, and
// IsAcceptableWord is the dictionary-membership predicate.
type Engine struct {
	SelectStartWord  func() (word, hint string)
	IsAcceptableWord func(word string) bool
}

// NewSession creates an in-progress session with a fresh target word.
func (e *Engine) NewSession() *Session {
	word, hint := e.SelectStartWord()
	return NewSession(word, hint)
}

// Normalize trims and uppercases a guess string for comparison.
func Normalize(input string) string {
	return strings.ToUpper(strings.TrimSpace(input))
}

// ValidShape reports whether a normalized guess is exactly WordLength
// uppercase ASCII letters.
func ValidShape(word string) bool {
	if len(word) != WordLength {
		return false
	}
	for i := range WordLength {
		if word[i] < 'A' || word[i] > 'Z' {
			return false
		}
	}
	return true
}

// Submit validates and scores a guess, appends it to the session ledger,
// and recomputes the session status. It returns the new record, or one of
// the Err* rejection values; rejections leave the session untouched.
//
// The session mutex is held for the whole sequence so concurrent submits
// against the same session cannot both read the pre-append ledger state.
func (e *Engine) Submit(s *Session, guessText string) (*GuessRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Status != StatusInProgress {
		return nil, ErrSessionTerminal
	}

	guess := Normalize(guessText)
	if !ValidShape(guess) {
		return nil, ErrInvalidShape
	}
	if e.IsAcceptableWord != nil && !e.IsAcceptableWord(guess) {
		return nil, ErrNotAcceptableWord
	}
	if s.Ledger.Contains(guess) {
		return nil, ErrDuplicateGuess
	}

	rec := GuessRecord{
		ID:        uuid.NewString(),
		Text:      guess,
		Tags:      Score(s.TargetWord, guess),
		CreatedAt: time.Now(),
	}
	s.Ledger.Append(rec)
	s.UpdatedAt = time.Now()

	// One exclusive branch, win first: a winning final guess is Won,
	// never overwritten by the attempt cap.
	switch {
	case AllCorrect(rec.Tags):
		s.Status = StatusWon
	case s.Ledger.Count() >= MaxAttempts:
		s.Status = StatusLost
	}

	return &rec, nil
}
