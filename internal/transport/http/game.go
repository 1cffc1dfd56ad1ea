package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/join-dots/internal/domain"
	"github.com/iamasit07/join-dots/internal/service/game"
	"github.com/iamasit07/join-dots/pkg/httputil"
)

type GameHandler struct {
	Service      *game.Service
	SeatTTL      time.Duration
	SecureCookie bool
	// MoveTimeout bounds how long a waiting move request blocks.
	MoveTimeout time.Duration
}

func NewGameHandler(svc *game.Service, seatTTL time.Duration, secureCookie bool) *GameHandler {
	return &GameHandler{
		Service:      svc,
		SeatTTL:      seatTTL,
		SecureCookie: secureCookie,
		MoveTimeout:  10 * time.Second,
	}
}

type createGameResponse struct {
	GameID   string          `json:"gameId"`
	Token    string          `json:"token"`
	Snapshot domain.Snapshot `json:"snapshot"`
}

type snapshotResponse struct {
	GameID   string          `json:"gameId"`
	Live     bool            `json:"live"`
	Snapshot domain.Snapshot `json:"snapshot"`
}

type moveRequest struct {
	Column *int `json:"column"`
	Wait   bool `json:"wait"`
}

type moveResponse struct {
	Placement domain.Placement `json:"placement"`
	State     *domain.State    `json:"state,omitempty"`
	Committed bool             `json:"committed"`
}

// CreateGame opens a new game and hands the caller its seat
func (h *GameHandler) CreateGame(c *gin.Context) {
	session, token, err := h.Service.CreateGame()
	if err != nil {
		writeError(c, err)
		return
	}

	httputil.SetSeatCookie(c.Writer, token, h.SeatTTL, h.SecureCookie)
	c.JSON(http.StatusCreated, createGameResponse{
		GameID:   session.GameID,
		Token:    token,
		Snapshot: session.Snapshot(),
	})
}

// GetLiveGames lists the games this process is hosting
func (h *GameHandler) GetLiveGames(c *gin.Context) {
	c.JSON(http.StatusOK, h.Service.Sessions.GetActiveGames())
}

// GetGame returns the snapshot of a game, falling back to the mirrored
// copy when this process does not hold it
func (h *GameHandler) GetGame(c *gin.Context) {
	gameID := c.Param("id")

	if session, ok := h.Service.Sessions.GetSession(gameID); ok {
		c.JSON(http.StatusOK, snapshotResponse{GameID: gameID, Live: true, Snapshot: session.Snapshot()})
		return
	}

	snap, err := h.Service.Sessions.CachedSnapshot(c.Request.Context(), gameID)
	if err != nil {
		writeError(c, game.ErrSessionNotFound)
		return
	}
	c.JSON(http.StatusOK, snapshotResponse{GameID: gameID, Live: false, Snapshot: *snap})
}

// Preview answers hover queries: where would a piece dropped in :col land
func (h *GameHandler) Preview(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	col, err := strconv.Atoi(c.Param("col"))
	if err != nil {
		writeError(c, domain.ErrInvalidColumn)
		return
	}

	row, landed := session.PreviewLanding(col)
	c.JSON(http.StatusOK, domain.Preview{Column: col, Row: row, OK: landed})
}

// MakeMove drops a piece for the player on turn. Without wait the request
// returns as soon as the move is accepted; the commit follows after the
// drop delay and is pushed over the websocket.
func (h *GameHandler) MakeMove(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Column == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "column is required"})
		return
	}

	if !req.Wait {
		placement, err := session.HandleMove(*req.Column)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, moveResponse{Placement: placement})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.MoveTimeout)
	defer cancel()

	result, err := session.ApplyMove(ctx, *req.Column)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, moveResponse{Placement: result.Placement, State: &result.State, Committed: true})
}

func (h *GameHandler) Reset(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	snap, err := session.Reset()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshotResponse{GameID: session.GameID, Live: true, Snapshot: snap})
}

func (h *GameHandler) DeleteGame(c *gin.Context) {
	if err := h.Service.Sessions.RemoveSession(c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	httputil.ClearSeatCookie(c.Writer)
	c.Status(http.StatusNoContent)
}

func (h *GameHandler) session(c *gin.Context) (*game.GameSession, bool) {
	session, ok := h.Service.Sessions.GetSession(c.Param("id"))
	if !ok {
		writeError(c, game.ErrSessionNotFound)
		return nil, false
	}
	return session, true
}

// writeError maps service and rule errors onto HTTP statuses
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidColumn):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrColumnFull),
		errors.Is(err, domain.ErrGameAlreadyOver),
		errors.Is(err, domain.ErrMoveInProgress),
		errors.Is(err, game.ErrDropDiscarded):
		status = http.StatusConflict
	case errors.Is(err, game.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, game.ErrSessionLimit):
		status = http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		status = http.StatusGatewayTimeout
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
