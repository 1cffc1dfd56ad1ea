package websocket

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/iamasit07/join-dots/internal/domain"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second

	// sendBuffer is how many pushes a client may fall behind before it is dropped.
	sendBuffer = 64
)

var (
	ErrClientClosed = errors.New("client closed")
	ErrSlowClient   = errors.New("client send buffer full")
)

// Client is one websocket attached to a game. Seated clients may move and
// reset; the rest only watch.
type Client struct {
	ID     string
	GameID string
	Seated bool

	conn      *websocket.Conn
	send      chan domain.ServerMessage
	done      chan struct{}
	flush     chan struct{}
	closeOnce sync.Once
	flushOnce sync.Once
}

func NewClient(id, gameID string, conn *websocket.Conn) *Client {
	return &Client{
		ID:     id,
		GameID: gameID,
		conn:   conn,
		send:   make(chan domain.ServerMessage, sendBuffer),
		done:   make(chan struct{}),
		flush:  make(chan struct{}),
	}
}

// Send queues message for the writer goroutine. It never blocks.
func (c *Client) Send(message domain.ServerMessage) error {
	select {
	case <-c.done:
		return ErrClientClosed
	default:
	}

	select {
	case c.send <- message:
		return nil
	default:
		return ErrSlowClient
	}
}

// writePump is the only goroutine that writes to the socket. It also
// sends the keep-alive pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case <-c.flush:
			for {
				select {
				case msg := <-c.send:
					if c.write(msg) != nil {
						return
					}
				default:
					return
				}
			}
		case msg := <-c.send:
			if c.write(msg) != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (c *Client) write(msg domain.ServerMessage) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	err := c.conn.WriteJSON(msg)
	if err != nil {
		log.Printf("[WS] Write to client %s failed: %v", c.ID, err)
	}
	return err
}

// closeAfterFlush has the writer send whatever is queued and then close.
func (c *Client) closeAfterFlush() {
	c.flushOnce.Do(func() { close(c.flush) })
}

// Close stops the writer and closes the socket. Safe to call more than once.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		if c.conn != nil {
			err = c.conn.Close()
		}
	})
	return err
}

// ConnectionManager handles the websockets watching each game thread-safely
type ConnectionManager struct {
	games map[string]map[*Client]struct{}
	mu    sync.RWMutex // Protects the map itself
}

func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		games: make(map[string]map[*Client]struct{}),
	}
}

func (cm *ConnectionManager) AddClient(c *Client) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	clients, ok := cm.games[c.GameID]
	if !ok {
		clients = make(map[*Client]struct{})
		cm.games[c.GameID] = clients
	}
	clients[c] = struct{}{}
}

// RemoveClient forgets c and closes its socket
func (cm *ConnectionManager) RemoveClient(c *Client) {
	cm.mu.Lock()
	clients, ok := cm.games[c.GameID]
	if ok {
		delete(clients, c)
		if len(clients) == 0 {
			delete(cm.games, c.GameID)
		}
	}
	cm.mu.Unlock()

	c.Close()
}

// SendMessage queues a message for everyone watching gameID. Clients that
// have fallen a full buffer behind are disconnected; the count of them is
// reported as an error.
func (cm *ConnectionManager) SendMessage(gameID string, message domain.ServerMessage) error {
	var dropped int
	for _, c := range cm.clients(gameID) {
		if err := c.Send(message); err != nil {
			if errors.Is(err, ErrSlowClient) {
				log.Printf("[WS] Dropping slow client %s from game %s", c.ID, gameID)
			}
			cm.RemoveClient(c)
			dropped++
		}
	}
	if dropped > 0 {
		return fmt.Errorf("dropped %d clients of game %s: %w", dropped, gameID, ErrSlowClient)
	}
	return nil
}

// RemoveGame disconnects every client of gameID once their queued
// messages are flushed or the write deadline passes.
func (cm *ConnectionManager) RemoveGame(gameID string) {
	cm.mu.Lock()
	clients := cm.games[gameID]
	delete(cm.games, gameID)
	cm.mu.Unlock()

	for c := range clients {
		c.closeAfterFlush()
	}
}

func (cm *ConnectionManager) Count(gameID string) int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.games[gameID])
}

func (cm *ConnectionManager) clients(gameID string) []*Client {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	out := make([]*Client, 0, len(cm.games[gameID]))
	for c := range cm.games[gameID] {
		out = append(out, c)
	}
	return out
}
