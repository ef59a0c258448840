package game

// Score compares a guess to the target word and returns per-letter scores
// using the classic two-pass algorithm.
//
// Pass 1 tags every exact match Correct and counts the remaining target
// letters into a pool. Pass 2 resolves the other positions: Present if the
// pool still has that letter, Absent otherwise. Pass 1 must fully complete
// before pass 2 so that a Present can never consume a pool slot owed to a
// later exact match, and so the Correct+Present total for a letter never
// exceeds its count in the target.
//
// Both inputs must be normalized, WordLength uppercase letters; callers
// validate shape before scoring.
func Score(target, guess string) []LetterScore {
	result := make([]LetterScore, WordLength)

	// Letter frequency pool for the non-exact target positions (A-Z).
	var pool [26]int

	for i := range WordLength {
		if guess[i] == target[i] {
			result[i] = LetterScore{Letter: string(guess[i]), Tag: TagCorrect}
		} else {
			pool[letterIndex(target[i])]++
		}
	}

	for i := range WordLength {
		if result[i].Tag == TagCorrect {
			continue
		}
		result[i].Letter = string(guess[i])
		if j := letterIndex(guess[i]); pool[j] > 0 {
			result[i].Tag = TagPresent
			pool[j]--
		} else {
			result[i].Tag = TagAbsent
		}
	}

	return result
}

// letterIndex maps an uppercase ASCII letter to 0..25.
func letterIndex(b byte) int { return int(b - 'A') }

// AllCorrect returns true if every position is tagged Correct.
func AllCorrect(tags []LetterScore) bool {
	for _, t := range tags {
		if t.Tag != TagCorrect {
			return false
		}
	}
	return true
}
