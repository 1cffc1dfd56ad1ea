package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/iamasit07/join-dots/internal/domain"
	"github.com/iamasit07/join-dots/internal/service/game"
	"github.com/iamasit07/join-dots/pkg/httputil"
	"github.com/iamasit07/join-dots/pkg/uid"
)

// Handler manages WebSocket dependencies
type Handler struct {
	ConnManager *ConnectionManager
	Service     *game.Service
	Upgrader    websocket.Upgrader
}

// NewHandler creates a new WebSocket handler. An empty allowedOrigins
// accepts any origin.
func NewHandler(cm *ConnectionManager, svc *game.Service, allowedOrigins []string) *Handler {
	return &Handler{
		ConnManager: cm,
		Service:     svc,
		Upgrader: websocket.Upgrader{
			CheckOrigin:     originChecker(allowedOrigins),
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, o := range allowed {
			if o == origin {
				return true
			}
		}
		log.Printf("[WS] Rejected origin %s", origin)
		return false
	}
}

// HandleWebSocket upgrades GET /ws?gameId=... for a live game
func (h *Handler) HandleWebSocket(c *gin.Context) {
	gameID := c.Query("gameId")
	session, ok := h.Service.Sessions.GetSession(gameID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": game.ErrSessionNotFound.Error()})
		return
	}

	// a seat token on the upgrade request (header or cookie) seats the client up front
	token, _ := httputil.GetTokenFromRequest(c.Request)

	conn, err := h.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	client := NewClient(uid.GenerateConnectionID(), gameID, conn)
	client.Seated = h.Service.Seated(gameID, token)
	h.handleConnection(client, session)
}

// handleConnection manages the lifecycle of a single WebSocket connection
func (h *Handler) handleConnection(client *Client, session *game.GameSession) {
	conn := client.conn
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	h.ConnManager.AddClient(client)
	go client.writePump()
	log.Printf("[WS] Client %s attached to game %s (seated: %t)", client.ID, client.GameID, client.Seated)

	defer func() {
		h.ConnManager.RemoveClient(client)
		log.Printf("[WS] Client %s left game %s", client.ID, client.GameID)
	}()

	h.sendState(client, session)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] Client %s disconnected unexpectedly: %v", client.ID, err)
			}
			return
		}

		var msg domain.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("[WS] Invalid message format from %s: %v", client.ID, err)
			client.Send(domain.ServerMessage{Type: domain.MsgError, Message: "Invalid message format"})
			continue
		}

		h.processMessage(client, session, msg)
	}
}

// processMessage routes specific actions
func (h *Handler) processMessage(client *Client, session *game.GameSession, msg domain.ClientMessage) {
	switch msg.Type {
	case domain.MsgInit:
		if msg.Token != "" {
			if !h.Service.Seated(client.GameID, msg.Token) {
				client.Send(domain.ServerMessage{Type: domain.MsgError, Message: "Invalid seat token"})
				return
			}
			client.Seated = true
		}
		h.sendState(client, session)

	case domain.MsgMakeMove:
		if !client.Seated {
			client.Send(domain.ServerMessage{Type: domain.MsgError, Message: "Not seated at this game"})
			return
		}
		if _, err := session.HandleMove(msg.Column); err != nil {
			client.Send(domain.ServerMessage{Type: domain.MsgError, Message: err.Error()})
		}

	case domain.MsgPreview:
		row, ok := session.PreviewLanding(msg.Column)
		client.Send(domain.ServerMessage{
			Type:    domain.MsgPreview,
			GameID:  client.GameID,
			Preview: &domain.Preview{Column: msg.Column, Row: row, OK: ok},
		})

	case domain.MsgReset:
		if !client.Seated {
			client.Send(domain.ServerMessage{Type: domain.MsgError, Message: "Not seated at this game"})
			return
		}
		if _, err := session.Reset(); err != nil {
			client.Send(domain.ServerMessage{Type: domain.MsgError, Message: err.Error()})
		}

	case domain.MsgPing:
		client.Send(domain.ServerMessage{Type: domain.MsgPong})

	default:
		client.Send(domain.ServerMessage{Type: domain.MsgError, Message: "Unknown message type"})
	}
}

func (h *Handler) sendState(client *Client, session *game.GameSession) {
	snap := session.Snapshot()
	client.Send(domain.ServerMessage{
		Type:     domain.MsgState,
		GameID:   client.GameID,
		Seated:   client.Seated,
		Snapshot: &snap,
	})
}
