// Package game implements the guess-scoring algorithm, the per-session
// guess ledger, and the session state machine for a five-letter
// word-guessing game.
package game

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Game configuration constants
const (
	MaxAttempts = 6 // Maximum number of guesses per session
	WordLength  = 5 // Length of the word to guess
)

// Status is the lifecycle state of a session. Won and Lost are terminal.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusWon        Status = "won"
	StatusLost       Status = "lost"
)

// LetterTag is the per-position scoring outcome for a single letter.
type LetterTag string

const (
	TagCorrect LetterTag = "correct"
	TagPresent LetterTag = "present"
	TagAbsent  LetterTag = "absent"
)

// LetterScore pairs a guessed letter with its tag.
type LetterScore struct {
	Letter string    `json:"letter"`
	Tag    LetterTag `json:"tag"`
}

// GuessRecord is one scored guess. Records belong to exactly one session
// and are ordered by creation; the slice index in the ledger is the
// attempt number.
type GuessRecord struct {
	ID        string        `json:"id"`
	Text      string        `json:"text"`
	Tags      []LetterScore `json:"tags"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Session is one game instance: a target word chosen at creation, a guess
// ledger, and a status that only ever moves InProgress -> Won or Lost.
//
// The mutex serializes guess submissions so the read-count-then-append
// sequence in Engine.Submit is atomic per session. Sessions are
// independent of each other.
type Session struct {
	ID         string
	TargetWord string
	Hint       string
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Ledger     Ledger

	mu sync.Mutex // Protects status and ledger during Submit
}

// SessionJSON is used for JSON serialization (excludes mutex).
type SessionJSON struct {
	ID         string        `json:"id"`
	TargetWord string        `json:"targetWord"`
	Hint       string        `json:"hint,omitempty"`
	Status     Status        `json:"status"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
	Records    []GuessRecord `json:"records"`
}

// NewSession creates an in-progress session with an empty ledger.
func NewSession(targetWord, hint string) *Session {
	now := time.Now()
	return &Session{
		ID:         uuid.NewString(),
		TargetWord: targetWord,
		Hint:       hint,
		Status:     StatusInProgress,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Terminal reports whether the session has ended.
func (s *Session) Terminal() bool {
	return s.Status != StatusInProgress
}

// ToJSON safely converts a Session to its JSON-serializable form.
func (s *Session) ToJSON() SessionJSON {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionJSON{
		ID:         s.ID,
		TargetWord: s.TargetWord,
		Hint:       s.Hint,
		Status:     s.Status,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
		Records:    s.Ledger.Records(),
	}
}

// FromJSON reconstructs a Session from its serialized form.
func FromJSON(sj SessionJSON) *Session {
	s := &Session{
		ID:         sj.ID,
		TargetWord: sj.TargetWord,
		Hint:       sj.Hint,
		Status:     sj.Status,
		CreatedAt:  sj.CreatedAt,
		UpdatedAt:  sj.UpdatedAt,
	}
	for _, rec := range sj.Records {
		s.Ledger.Append(rec)
	}
	return s
}
