// internal/game/types.go
//
// Core type definitions for the guess scorer.
// Defines:
//   - CellStatus: per-letter verdict for one grid cell.
//   - Cell: one letter-slot of a scored guess row.

package game

// CellStatus is the evaluation result for a single letter in a guess.
// Possible values:
//   - "empty":   the cell has not been filled yet (unscored grid rows).
//   - "correct": letter is in the target at this exact position.
//   - "present": letter is in the target but at a different position.
//   - "absent":  letter does not appear in the target (or its occurrences
//     are already accounted for by correct/present cells).
type CellStatus string

const (
	StatusEmpty   CellStatus = "empty"
	StatusCorrect CellStatus = "correct"
	StatusPresent CellStatus = "present"
	StatusAbsent  CellStatus = "absent"
)

// Cell is one letter-slot verdict. Empty cells carry an empty Letter.
type Cell struct {
	Letter string     `json:"letter"`
	Status CellStatus `json:"status"`
}

// WordLen is the fixed word length; Rows the number of guesses per game.
const (
	WordLen = 5
	Rows    = 6
)

// EmptyRow returns a fresh all-empty row of WordLen cells.
func EmptyRow() []Cell {
	row := make([]Cell, WordLen)
	for i := range row {
		row[i] = Cell{Letter: "", Status: StatusEmpty}
	}
	return row
}
