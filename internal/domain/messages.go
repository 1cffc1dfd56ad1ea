package domain

// client -> server message types
const (
	MsgInit     = "init"
	MsgMakeMove = "make_move"
	MsgPreview  = "preview"
	MsgReset    = "reset"
	MsgPing     = "ping"
)

// server -> client message types
const (
	MsgState       = "state"
	MsgMoveStarted = "move_started"
	MsgMoveMade    = "move_made"
	MsgGameOver    = "game_over"
	MsgPong        = "pong"
	MsgError       = "error"
	MsgClosed      = "game_closed"
)

type ClientMessage struct {
	Type   string `json:"type"`
	Token  string `json:"token,omitempty"`
	Column int    `json:"column"`
}

type Preview struct {
	Column int  `json:"column"`
	Row    int  `json:"row"`
	OK     bool `json:"ok"`
}

type ServerMessage struct {
	Type      string     `json:"type"`
	Message   string     `json:"message,omitempty"`
	GameID    string     `json:"gameId,omitempty"`
	Seated    bool       `json:"seated,omitempty"`
	Placement *Placement `json:"placement,omitempty"`
	State     *State     `json:"state,omitempty"`
	Preview   *Preview   `json:"preview,omitempty"`
	Snapshot  *Snapshot  `json:"snapshot,omitempty"`
}
