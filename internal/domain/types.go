package domain

import "fmt"

// PlayerID is the state of a single cell. Red and Yellow double as the
// two player identities; Empty never moves.
type PlayerID int

const (
	Empty  PlayerID = 0
	Red    PlayerID = 1
	Yellow PlayerID = 2
)

// Opponent returns the other player. Empty has no opponent.
func (p PlayerID) Opponent() PlayerID {
	switch p {
	case Red:
		return Yellow
	case Yellow:
		return Red
	}
	return Empty
}

func (p PlayerID) String() string {
	switch p {
	case Red:
		return "red"
	case Yellow:
		return "yellow"
	}
	return "empty"
}

// reference board: 6 rows, 7 columns, four in a row
const (
	Rows    = 6
	Columns = 7
	ToWin   = 4
)

// StartingPlayer always opens a fresh game.
const StartingPlayer = Red

// Rules fixes the board dimensions and the run length needed to win.
type Rules struct {
	Rows      int `json:"rows"`
	Columns   int `json:"columns"`
	WinLength int `json:"winLength"`
}

var DefaultRules = Rules{Rows: Rows, Columns: Columns, WinLength: ToWin}

func (r Rules) Validate() error {
	if r.Rows < 1 || r.Columns < 1 {
		return fmt.Errorf("%w: board must be at least 1x1, got %dx%d", ErrInvalidRules, r.Rows, r.Columns)
	}
	if r.WinLength < 2 {
		return fmt.Errorf("%w: win length must be at least 2, got %d", ErrInvalidRules, r.WinLength)
	}
	if r.WinLength > r.Rows && r.WinLength > r.Columns {
		return fmt.Errorf("%w: win length %d does not fit a %dx%d board", ErrInvalidRules, r.WinLength, r.Rows, r.Columns)
	}
	return nil
}

// to represent the game status
type GameStatus string

const (
	StatusInProgress GameStatus = "in_progress"
	StatusWon        GameStatus = "won"
	StatusDraw       GameStatus = "draw"
)

// Coord addresses a single cell, row 0 being the top row.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// basic error that can occur
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrInvalidColumn   Error = "invalid column"
	ErrColumnFull      Error = "column is full"
	ErrGameAlreadyOver Error = "game is already over"
	ErrMoveInProgress  Error = "a move is already in progress"
	ErrNoPendingMove   Error = "no move is pending"
	ErrInvalidRules    Error = "invalid rules"
)
