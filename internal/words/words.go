// Package words loads the playable and accepted word lists and supplies
// the dictionary collaborators consumed by the game engine: random start
// word selection and membership lookup.
package words

import (
	"crypto/rand"
	"encoding/json"
	"math/big"
	"os"
	"strings"

	"github.com/samber/lo"

	"divenludo/internal/game"
)

// Entry is one playable word with its hint.
type Entry struct {
	Word string `json:"word"`
	Hint string `json:"hint"`
}

// List represents the JSON structure for loading playable words.
type List struct {
	Words []Entry `json:"words"`
}

// Dictionary holds the playable entries plus fast membership sets.
type Dictionary struct {
	Entries  []Entry
	set      map[string]struct{}
	accepted map[string]struct{}
	hints    map[string]string
}

// New builds a Dictionary from in-memory entries and an accepted-guess
// list. Playable words are always accepted as guesses.
func New(entries []Entry, accepted []string) *Dictionary {
	d := &Dictionary{
		Entries: lo.Filter(entries, func(e Entry, _ int) bool {
			return game.ValidShape(strings.ToUpper(e.Word))
		}),
	}
	d.set = make(map[string]struct{}, len(d.Entries))
	d.hints = make(map[string]string, len(d.Entries))
	d.accepted = make(map[string]struct{}, len(accepted)+len(d.Entries))
	for i := range d.Entries {
		d.Entries[i].Word = strings.ToUpper(d.Entries[i].Word)
	}
	lo.ForEach(d.Entries, func(e Entry, _ int) {
		d.set[e.Word] = struct{}{}
		d.accepted[e.Word] = struct{}{}
		d.hints[e.Word] = e.Hint
	})
	lo.ForEach(accepted, func(w string, _ int) {
		w = strings.ToUpper(w)
		if game.ValidShape(w) {
			d.accepted[w] = struct{}{}
		}
	})
	return d
}

// Load reads the playable word list and the accepted-guess list from JSON
// files. Entries that are not exactly five letters are skipped.
func Load(wordsPath, acceptedPath string) (*Dictionary, error) {
	data, err := os.ReadFile(wordsPath)
	if err != nil {
		return nil, err
	}
	var wl List
	if err := json.Unmarshal(data, &wl); err != nil {
		return nil, err
	}

	data, err = os.ReadFile(acceptedPath)
	if err != nil {
		return nil, err
	}
	var accepted []string
	if err := json.Unmarshal(data, &accepted); err != nil {
		return nil, err
	}

	return New(wl.Words, accepted), nil
}

// Len returns the number of playable words.
func (d *Dictionary) Len() int { return len(d.Entries) }

// AcceptedLen returns the number of accepted guess words.
func (d *Dictionary) AcceptedLen() int { return len(d.accepted) }

// RandomEntry returns a uniformly random playable entry.
func (d *Dictionary) RandomEntry() Entry {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(d.Entries))))
	if err != nil {
		return d.Entries[0]
	}
	return d.Entries[n.Int64()]
}

// SelectStartWord picks a random target word and its hint. The signature
// matches what game.Engine expects of its injected collaborator.
func (d *Dictionary) SelectStartWord() (string, string) {
	entry := d.RandomEntry()
	return entry.Word, entry.Hint
}

// IsPlayable returns true if the word is in the playable word set.
func (d *Dictionary) IsPlayable(word string) bool {
	_, ok := d.set[word]
	return ok
}

// IsAccepted returns true if the word is a permitted guess.
func (d *Dictionary) IsAccepted(word string) bool {
	_, ok := d.accepted[word]
	return ok
}

// Hint returns the hint for a playable word, or an empty string.
func (d *Dictionary) Hint(word string) string {
	return d.hints[word]
}
