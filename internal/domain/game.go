package domain

// Placement is a move after gravity has been applied.
type Placement struct {
	Row    int      `json:"row"`
	Col    int      `json:"col"`
	Player PlayerID `json:"player"`
}

// State is the outcome of the game so far. Winner and WinningCells are only
// set when Status is StatusWon.
type State struct {
	Status       GameStatus `json:"status"`
	Winner       PlayerID   `json:"winner,omitempty"`
	WinningCells []Coord    `json:"winningCells,omitempty"`
}

func (s State) IsTerminal() bool {
	return s.Status == StatusWon || s.Status == StatusDraw
}

type MoveResult struct {
	Placement Placement `json:"placement"`
	State     State     `json:"state"`
}

// Game is a single session of play. It is not safe for concurrent use;
// callers serialise access.
//
// A move goes through two steps: BeginMove validates it and marks the game
// busy without touching the board, CommitMove places the piece and
// evaluates it. ApplyMove runs both back to back.
type Game struct {
	rules         Rules
	board         *Board
	currentPlayer PlayerID
	status        GameStatus
	win           *WinResult
	moveCount     int
	lastMove      *Placement
	pending       *Placement
}

// NewGame returns a game on the reference 6x7 board.
func NewGame() *Game {
	g, _ := NewGameWithRules(DefaultRules)
	return g
}

func NewGameWithRules(rules Rules) (*Game, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return &Game{
		rules:         rules,
		board:         NewBoard(rules),
		currentPlayer: StartingPlayer,
		status:        StatusInProgress,
	}, nil
}

// BeginMove checks that the current player may drop into column and
// reserves the landing cell. The board is left untouched until CommitMove.
func (g *Game) BeginMove(column int) (Placement, error) {
	if g.IsFinished() {
		return Placement{}, ErrGameAlreadyOver
	}
	if g.pending != nil {
		return Placement{}, ErrMoveInProgress
	}
	if column < 0 || column >= g.rules.Columns {
		return Placement{}, ErrInvalidColumn
	}

	row, ok := g.board.ResolveLanding(column)
	if !ok {
		return Placement{}, ErrColumnFull
	}

	g.pending = &Placement{Row: row, Col: column, Player: g.currentPlayer}
	return *g.pending, nil
}

// CommitMove places the reserved piece and moves the game on.
func (g *Game) CommitMove() (MoveResult, error) {
	if g.pending == nil {
		return MoveResult{}, ErrNoPendingMove
	}

	p := *g.pending
	g.pending = nil

	g.board.place(p.Row, p.Col, p.Player)
	g.moveCount++
	g.lastMove = &p

	if win := CheckWin(g.board, p.Row, p.Col, p.Player); win != nil {
		g.status = StatusWon
		g.win = win
	} else if CheckDraw(g.board) {
		g.status = StatusDraw
	} else {
		g.currentPlayer = g.currentPlayer.Opponent()
	}

	return MoveResult{Placement: p, State: g.State()}, nil
}

func (g *Game) ApplyMove(column int) (MoveResult, error) {
	if _, err := g.BeginMove(column); err != nil {
		return MoveResult{}, err
	}
	return g.CommitMove()
}

// PreviewLanding is where a piece dropped into column would land right now.
// It reads the committed board only, so during a pending move it still
// shows the cell that move is about to fill.
func (g *Game) PreviewLanding(column int) (int, bool) {
	if g.IsFinished() || !IsValidMove(g.board, column) {
		return -1, false
	}
	return g.board.ResolveLanding(column)
}

// Reset drops everything, including a pending move.
func (g *Game) Reset() {
	g.board.clear()
	g.currentPlayer = StartingPlayer
	g.status = StatusInProgress
	g.win = nil
	g.moveCount = 0
	g.lastMove = nil
	g.pending = nil
}

func (g *Game) Rules() Rules { return g.rules }

func (g *Game) Cell(row, col int) PlayerID { return g.board.Cell(row, col) }

func (g *Game) CurrentPlayer() PlayerID { return g.currentPlayer }

func (g *Game) MoveCount() int { return g.moveCount }

func (g *Game) IsBusy() bool { return g.pending != nil }

func (g *Game) IsFinished() bool {
	return g.status == StatusWon || g.status == StatusDraw
}

func (g *Game) LastMove() (Placement, bool) {
	if g.lastMove == nil {
		return Placement{}, false
	}
	return *g.lastMove, true
}

// PendingMove is the reserved placement between BeginMove and CommitMove.
func (g *Game) PendingMove() (Placement, bool) {
	if g.pending == nil {
		return Placement{}, false
	}
	return *g.pending, true
}

func (g *Game) State() State {
	s := State{Status: g.status}
	if g.win != nil {
		s.Winner = g.win.Player
		s.WinningCells = append([]Coord(nil), g.win.Cells...)
	}
	return s
}

// Snapshot is the whole game in a form the presentation layer can render
// without re-deriving anything.
type Snapshot struct {
	Rules         Rules      `json:"rules"`
	Board         [][]int    `json:"board"`
	CurrentPlayer PlayerID   `json:"currentPlayer"`
	Status        GameStatus `json:"status"`
	Winner        PlayerID   `json:"winner,omitempty"`
	WinningCells  []Coord    `json:"winningCells,omitempty"`
	LastMove      *Placement `json:"lastMove,omitempty"`
	PendingMove   *Placement `json:"pendingMove,omitempty"`
	MoveCount     int        `json:"moveCount"`
	Busy          bool       `json:"busy"`
	// PlayableColumns is empty once the game is over.
	PlayableColumns []int `json:"playableColumns"`
}

func (g *Game) Snapshot() Snapshot {
	state := g.State()
	s := Snapshot{
		Rules:         g.rules,
		Board:         g.board.Ints(),
		CurrentPlayer: g.currentPlayer,
		Status:        state.Status,
		Winner:        state.Winner,
		WinningCells:  state.WinningCells,
		MoveCount:     g.moveCount,
		Busy:          g.pending != nil,
	}
	if g.IsFinished() {
		s.PlayableColumns = []int{}
	} else {
		s.PlayableColumns = ValidMoves(g.board)
	}
	if last, ok := g.LastMove(); ok {
		s.LastMove = &last
	}
	if pending, ok := g.PendingMove(); ok {
		s.PendingMove = &pending
	}
	return s
}
