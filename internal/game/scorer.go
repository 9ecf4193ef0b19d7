// internal/game/scorer.go
//
// Pure guess scorer for a single row.
// Responsibilities:
//   - Normalize guess and target to uppercase before comparison.
//   - Score guesses using the classic two-pass algorithm so repeated
//     letters never earn more credit than their count in the target.
//   - Report the win flag independently of the per-cell verdicts.
//
// Notes:
//   - No state, no I/O. Callers own validation of who may guess; length is
//     re-checked here because a wrong-length row would corrupt the grid.

package game

import (
	"errors"
	"strings"
)

// ErrBadGuess is returned when a guess is not exactly WordLen letters.
var ErrBadGuess = errors.New("guess must be exactly 5 letters")

// Score evaluates guess against target and returns the scored row plus a
// win flag.
//
// Pass 1:
//   - Mark exact matches as correct.
//   - Count remaining (non-correct) target letters.
//
// Pass 2:
//   - For each unmarked guess letter: if there is remaining count for that
//     letter, mark present and decrement; otherwise mark absent.
//
// The count-limiting is what keeps duplicate guess letters honest: a letter
// guessed twice when the target holds it once yields exactly one non-absent
// cell, exact position first, then leftmost remaining.
//
// won is exact string equality after uppercasing, computed independently of
// the cells. The two must agree (all-correct iff equal); tests hold us to it.
func Score(guess, target string) ([]Cell, bool, error) {
	guess = strings.ToUpper(strings.TrimSpace(guess))
	target = strings.ToUpper(target)

	gr := []rune(guess)
	tr := []rune(target)
	if len(gr) != WordLen || len(tr) != WordLen {
		return nil, false, ErrBadGuess
	}

	row := make([]Cell, WordLen)

	// Remaining counts for target letters not consumed by exact matches.
	counts := make(map[rune]int, WordLen)

	for i := 0; i < WordLen; i++ {
		if gr[i] == tr[i] {
			row[i] = Cell{Letter: string(gr[i]), Status: StatusCorrect}
		} else {
			counts[tr[i]]++
		}
	}

	for i := 0; i < WordLen; i++ {
		if row[i].Status == StatusCorrect {
			continue
		}
		if counts[gr[i]] > 0 {
			row[i] = Cell{Letter: string(gr[i]), Status: StatusPresent}
			counts[gr[i]]--
		} else {
			row[i] = Cell{Letter: string(gr[i]), Status: StatusAbsent}
		}
	}

	return row, guess == target, nil
}
