package domain

// WinResult is the winning player and the run that won, ordered along the
// run's axis from its negative end.
type WinResult struct {
	Player PlayerID `json:"player"`
	Cells  []Coord  `json:"cells"`
}

// horizontal, vertical, diagonal down-right, diagonal down-left
var Directions = [4][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}

// CheckWin only looks at the lines through (row, col): a new run can only
// be completed by the piece just placed.
//
// Each walk is capped at WinLength-1 steps. When the run is longer than
// WinLength only the first WinLength cells of the scan are returned.
func CheckWin(board *Board, row, col int, player PlayerID) *WinResult {
	if player == Empty || !board.InBounds(row, col) {
		return nil
	}

	need := board.WinLength()
	for _, d := range Directions {
		forward := board.countInDirection(row, col, d[0], d[1], player, need-1)
		backward := board.countInDirection(row, col, -d[0], -d[1], player, need-1)
		if 1+forward+backward < need {
			continue
		}

		// the run starts at the far end of the backward walk
		cells := make([]Coord, need)
		for i := range cells {
			cells[i] = Coord{Row: row + d[0]*(i-backward), Col: col + d[1]*(i-backward)}
		}
		return &WinResult{Player: player, Cells: cells}
	}
	return nil
}

// CheckDraw is only meaningful once CheckWin for the same move came back nil.
func CheckDraw(board *Board) bool {
	return board.IsTopRowFull()
}

func IsValidMove(board *Board, column int) bool {
	if column < 0 || column >= board.Columns() {
		return false
	}
	return !board.ColumnIsFull(column)
}

// ValidMoves lists the columns that can still take a piece, left to right.
func ValidMoves(board *Board) []int {
	moves := []int{}
	for col := 0; col < board.Columns(); col++ {
		if IsValidMove(board, col) {
			moves = append(moves, col)
		}
	}
	return moves
}
