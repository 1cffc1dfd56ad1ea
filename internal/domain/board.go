package domain

// Board is an owned rows x columns grid. Row 0 is the top row.
// Cells are only written through place, which keeps every column's
// empty cells stacked at the top.
type Board struct {
	rows      int
	columns   int
	winLength int
	grid      [][]PlayerID
}

func NewBoard(rules Rules) *Board {
	grid := make([][]PlayerID, rules.Rows)
	for i := range grid {
		grid[i] = make([]PlayerID, rules.Columns)
	}
	return &Board{
		rows:      rules.Rows,
		columns:   rules.Columns,
		winLength: rules.WinLength,
		grid:      grid,
	}
}

func (b *Board) Rows() int      { return b.rows }
func (b *Board) Columns() int   { return b.columns }
func (b *Board) WinLength() int { return b.winLength }

func (b *Board) Rules() Rules {
	return Rules{Rows: b.rows, Columns: b.columns, WinLength: b.winLength}
}

func (b *Board) InBounds(row, col int) bool {
	return row >= 0 && row < b.rows && col >= 0 && col < b.columns
}

// Cell returns Empty for coordinates off the board.
func (b *Board) Cell(row, col int) PlayerID {
	if !b.InBounds(row, col) {
		return Empty
	}
	return b.grid[row][col]
}

// ColumnIsFull reports whether col can take no more pieces.
// A column off the board is reported full.
func (b *Board) ColumnIsFull(col int) bool {
	if col < 0 || col >= b.columns {
		return true
	}
	// here grid[0] represents the top row
	return b.grid[0][col] != Empty
}

// ResolveLanding returns the lowest empty row of col.
func (b *Board) ResolveLanding(col int) (int, bool) {
	if col < 0 || col >= b.columns {
		return -1, false
	}
	for row := b.rows - 1; row >= 0; row-- {
		if b.grid[row][col] == Empty {
			return row, true
		}
	}
	return -1, false
}

// place writes a cell. row must come from ResolveLanding on the same
// column of the current board.
func (b *Board) place(row, col int, player PlayerID) {
	b.grid[row][col] = player
}

func (b *Board) IsTopRowFull() bool {
	for c := 0; c < b.columns; c++ {
		if b.grid[0][c] == Empty {
			return false
		}
	}
	return true
}

// countInDirection counts consecutive cells owned by player starting one
// step away from (row, col) along (deltaRow, deltaCol), stopping after
// limit steps.
func (b *Board) countInDirection(row, col, deltaRow, deltaCol int, player PlayerID, limit int) int {
	count := 0
	r, c := row+deltaRow, col+deltaCol
	for i := 0; i < limit && b.InBounds(r, c) && b.grid[r][c] == player; i++ {
		count++
		r += deltaRow
		c += deltaCol
	}
	return count
}

// Cells returns a deep copy of the grid.
func (b *Board) Cells() [][]PlayerID {
	out := make([][]PlayerID, len(b.grid))
	for i := range b.grid {
		out[i] = make([]PlayerID, len(b.grid[i]))
		copy(out[i], b.grid[i])
	}
	return out
}

// Ints converts the grid for JSON clients.
func (b *Board) Ints() [][]int {
	out := make([][]int, len(b.grid))
	for i := range b.grid {
		out[i] = make([]int, len(b.grid[i]))
		for j := range b.grid[i] {
			out[i][j] = int(b.grid[i][j])
		}
	}
	return out
}

func (b *Board) clear() {
	for i := range b.grid {
		for j := range b.grid[i] {
			b.grid[i][j] = Empty
		}
	}
}
