package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/iamasit07/join-dots/internal/domain"
	"github.com/iamasit07/join-dots/internal/service/game"
	"github.com/iamasit07/join-dots/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type wsFixture struct {
	server *httptest.Server
	cm     *ConnectionManager
	svc    *game.Service
}

func newFixture(t *testing.T) *wsFixture {
	t.Helper()
	cm := NewConnectionManager()
	sm := game.NewSessionManager(game.Options{Rules: domain.DefaultRules}, cm, nil)
	svc := game.NewService(sm, auth.NewSeatIssuer("ws-secret", time.Hour))
	h := NewHandler(cm, svc, nil)

	r := gin.New()
	r.GET("/ws", h.HandleWebSocket)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &wsFixture{server: srv, cm: cm, svc: svc}
}

func (f *wsFixture) dial(t *testing.T, gameID string, header http.Header) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws?gameId=" + gameID
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readType reads until a message of type want arrives.
func readType(t *testing.T, conn *websocket.Conn, want string) domain.ServerMessage {
	t.Helper()
	for {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var msg domain.ServerMessage
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == want {
			return msg
		}
	}
}

func TestViewerGetsStateAndCannotMove(t *testing.T) {
	f := newFixture(t)
	session, _, err := f.svc.CreateGame()
	require.NoError(t, err)

	conn := f.dial(t, session.GameID, nil)
	state := readType(t, conn, domain.MsgState)
	assert.False(t, state.Seated)
	require.NotNil(t, state.Snapshot)
	assert.Equal(t, domain.Red, state.Snapshot.CurrentPlayer)

	require.NoError(t, conn.WriteJSON(domain.ClientMessage{Type: domain.MsgMakeMove, Column: 3}))
	msg := readType(t, conn, domain.MsgError)
	assert.Equal(t, "Not seated at this game", msg.Message)
	assert.Equal(t, 0, session.Snapshot().MoveCount)
}

func TestInitSeatsClientAndMovesBroadcast(t *testing.T) {
	f := newFixture(t)
	session, token, err := f.svc.CreateGame()
	require.NoError(t, err)

	viewer := f.dial(t, session.GameID, nil)
	readType(t, viewer, domain.MsgState)

	player := f.dial(t, session.GameID, nil)
	readType(t, player, domain.MsgState)

	require.NoError(t, player.WriteJSON(domain.ClientMessage{Type: domain.MsgInit, Token: token}))
	state := readType(t, player, domain.MsgState)
	assert.True(t, state.Seated)

	require.NoError(t, player.WriteJSON(domain.ClientMessage{Type: domain.MsgMakeMove, Column: 3}))

	for _, conn := range []*websocket.Conn{viewer, player} {
		started := readType(t, conn, domain.MsgMoveStarted)
		require.NotNil(t, started.Placement)
		assert.Equal(t, domain.Placement{Row: domain.Rows - 1, Col: 3, Player: domain.Red}, *started.Placement)

		made := readType(t, conn, domain.MsgMoveMade)
		require.NotNil(t, made.State)
		assert.Equal(t, domain.StatusInProgress, made.State.Status)
		require.NotNil(t, made.Snapshot)
		assert.Equal(t, domain.Yellow, made.Snapshot.CurrentPlayer)
	}
}

func TestInitRejectsForeignToken(t *testing.T) {
	f := newFixture(t)
	session, _, err := f.svc.CreateGame()
	require.NoError(t, err)
	_, otherToken, err := f.svc.CreateGame()
	require.NoError(t, err)

	conn := f.dial(t, session.GameID, nil)
	readType(t, conn, domain.MsgState)

	require.NoError(t, conn.WriteJSON(domain.ClientMessage{Type: domain.MsgInit, Token: otherToken}))
	msg := readType(t, conn, domain.MsgError)
	assert.Equal(t, "Invalid seat token", msg.Message)
}

func TestHeaderTokenSeatsOnUpgrade(t *testing.T) {
	f := newFixture(t)
	session, token, err := f.svc.CreateGame()
	require.NoError(t, err)

	conn := f.dial(t, session.GameID, http.Header{"Authorization": {"Bearer " + token}})
	state := readType(t, conn, domain.MsgState)
	assert.True(t, state.Seated)

	require.NoError(t, conn.WriteJSON(domain.ClientMessage{Type: domain.MsgReset}))
	readType(t, conn, domain.MsgReset)
}

func TestPreviewPingAndUnknown(t *testing.T) {
	f := newFixture(t)
	session, _, err := f.svc.CreateGame()
	require.NoError(t, err)

	conn := f.dial(t, session.GameID, nil)
	readType(t, conn, domain.MsgState)

	require.NoError(t, conn.WriteJSON(domain.ClientMessage{Type: domain.MsgPreview, Column: 2}))
	msg := readType(t, conn, domain.MsgPreview)
	require.NotNil(t, msg.Preview)
	assert.Equal(t, domain.Preview{Column: 2, Row: domain.Rows - 1, OK: true}, *msg.Preview)

	require.NoError(t, conn.WriteJSON(domain.ClientMessage{Type: domain.MsgPreview, Column: 42}))
	msg = readType(t, conn, domain.MsgPreview)
	assert.False(t, msg.Preview.OK)

	require.NoError(t, conn.WriteJSON(domain.ClientMessage{Type: domain.MsgPing}))
	readType(t, conn, domain.MsgPong)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"dance"}`)))
	msg = readType(t, conn, domain.MsgError)
	assert.Equal(t, "Unknown message type", msg.Message)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`not json`)))
	msg = readType(t, conn, domain.MsgError)
	assert.Equal(t, "Invalid message format", msg.Message)
}

func TestUnknownGameIsRejected(t *testing.T) {
	f := newFixture(t)
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws?gameId=missing"

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRemoveSessionClosesWatchers(t *testing.T) {
	f := newFixture(t)
	session, _, err := f.svc.CreateGame()
	require.NoError(t, err)

	conn := f.dial(t, session.GameID, nil)
	readType(t, conn, domain.MsgState)
	assert.Equal(t, 1, f.cm.Count(session.GameID))

	f.svc.Sessions.RemoveSession(session.GameID)
	readType(t, conn, domain.MsgClosed)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
	assert.Equal(t, 0, f.cm.Count(session.GameID))
}

func TestStalledViewerDoesNotBlockGame(t *testing.T) {
	f := newFixture(t)
	session, _, err := f.svc.CreateGame()
	require.NoError(t, err)

	// dialled and never read from again
	f.dial(t, session.GameID, nil)
	require.Eventually(t, func() bool { return f.cm.Count(session.GameID) == 1 }, time.Second, 5*time.Millisecond)

	stop := make(chan struct{})
	worst := make(chan time.Duration, 1)
	go func() {
		var longest time.Duration
		for {
			select {
			case <-stop:
				worst <- longest
				return
			default:
			}
			start := time.Now()
			session.PreviewLanding(3)
			if d := time.Since(start); d > longest {
				longest = d
			}
		}
	}()

	start := time.Now()
	for i := 0; i < 5000; i++ {
		_, err := session.Reset()
		require.NoError(t, err)
	}
	elapsed := time.Since(start)
	close(stop)

	assert.Less(t, elapsed, 5*time.Second)
	assert.Less(t, <-worst, time.Second)
}
