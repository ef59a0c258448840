package game

import (
	"iter"

	"github.com/samber/lo"
)

// Ledger is the ordered, append-only sequence of guesses for one session.
// It is a plain sequence: whether a record may be appended at all is
// decided by the Engine, not here.
type Ledger struct {
	records []GuessRecord
}

// Append adds a record at the end of the ledger.
func (l *Ledger) Append(rec GuessRecord) {
	l.records = append(l.records, rec)
}

// Count returns the number of records appended so far.
func (l *Ledger) Count() int {
	return len(l.records)
}

// Latest returns the most recent record, or false if the ledger is empty.
func (l *Ledger) Latest() (GuessRecord, bool) {
	if len(l.records) == 0 {
		return GuessRecord{}, false
	}
	return l.records[len(l.records)-1], true
}

// All returns the records in submission order as a restartable sequence.
func (l *Ledger) All() iter.Seq[GuessRecord] {
	return func(yield func(GuessRecord) bool) {
		for _, rec := range l.records {
			if !yield(rec) {
				return
			}
		}
	}
}

// Records returns a copy of the ledger contents in submission order.
func (l *Ledger) Records() []GuessRecord {
	return append([]GuessRecord(nil), l.records...)
}

// Texts returns the guessed words in submission order.
func (l *Ledger) Texts() []string {
	return lo.Map(l.records, func(rec GuessRecord, _ int) string {
		return rec.Text
	})
}

// Contains reports whether the word has already been guessed.
func (l *Ledger) Contains(text string) bool {
	return lo.ContainsBy(l.records, func(rec GuessRecord) bool {
		return rec.Text == text
	})
}
