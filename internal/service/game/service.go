package game

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/iamasit07/join-dots/internal/domain"
	"github.com/iamasit07/join-dots/pkg/uid"
)

var (
	ErrSessionNotFound = errors.New("game not found")
	ErrSessionLimit    = errors.New("too many live games")
	// ErrDropDiscarded is returned to a caller waiting on a drop that a reset threw away.
	ErrDropDiscarded = errors.New("move discarded by reset")
)

const snapshotKeyPrefix = "joindots:snapshot:"

// ConnectionManagerInterface pushes updates to everyone watching a game.
type ConnectionManagerInterface interface {
	SendMessage(gameID string, message domain.ServerMessage) error
	RemoveGame(gameID string)
}

// SnapshotCache mirrors live snapshots outside the process.
type SnapshotCache interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type Options struct {
	Rules       domain.Rules
	DropDelay   time.Duration
	MaxSessions int
	SnapshotTTL time.Duration
	FinishedTTL time.Duration
	IdleTTL     time.Duration
}

// SessionManager manages live game sessions
type SessionManager struct {
	Session map[string]*GameSession // gameID → GameSession
	mu      sync.RWMutex
	opts    Options
	conn    ConnectionManagerInterface
	cache   SnapshotCache
	now     func() time.Time

	// cache writes run in order on one goroutine so a Del is never
	// overtaken by an older Set for the same game
	cacheOps    chan cacheOp
	cacheDone   chan struct{}
	cacheMu     sync.RWMutex
	cacheClosed bool
}

// cacheOp is a snapshot write, or a delete when data is nil.
type cacheOp struct {
	gameID string
	data   []byte
}

const cacheQueueSize = 256

// NewSessionManager accepts nil for conn and cache.
func NewSessionManager(opts Options, conn ConnectionManagerInterface, cache SnapshotCache) *SessionManager {
	if conn == nil {
		conn = noopConnections{}
	}
	sm := &SessionManager{
		Session: make(map[string]*GameSession),
		opts:    opts,
		conn:    conn,
		cache:   cache,
		now:     time.Now,
	}
	if cache != nil {
		sm.cacheOps = make(chan cacheOp, cacheQueueSize)
		sm.cacheDone = make(chan struct{})
		go sm.runCacheWriter()
	}
	return sm
}

// Close flushes pending cache writes and stops the writer.
func (sm *SessionManager) Close() {
	if sm.cache == nil {
		return
	}
	sm.cacheMu.Lock()
	if !sm.cacheClosed {
		sm.cacheClosed = true
		close(sm.cacheOps)
	}
	sm.cacheMu.Unlock()
	<-sm.cacheDone
}

func (sm *SessionManager) CreateSession() (*GameSession, error) {
	g, err := domain.NewGameWithRules(sm.opts.Rules)
	if err != nil {
		return nil, err
	}

	sm.mu.Lock()
	if sm.opts.MaxSessions > 0 && len(sm.Session) >= sm.opts.MaxSessions {
		sm.mu.Unlock()
		return nil, ErrSessionLimit
	}

	now := sm.now()
	session := &GameSession{
		GameID:       uid.GenerateGameID(),
		CreatedAt:    now,
		LastActivity: now,
		game:         g,
		dropDelay:    sm.opts.DropDelay,
		sm:           sm,
	}
	sm.Session[session.GameID] = session
	sm.mu.Unlock()

	log.Printf("[SESSION] Created session %s (%dx%d, %d to win)",
		session.GameID, sm.opts.Rules.Rows, sm.opts.Rules.Columns, sm.opts.Rules.WinLength)

	session.mu.Lock()
	sm.mirror(session.GameID, session.game.Snapshot())
	session.mu.Unlock()

	return session, nil
}

func (sm *SessionManager) GetSession(gameID string) (*GameSession, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	session, exists := sm.Session[gameID]
	return session, exists
}

func (sm *SessionManager) RemoveSession(gameID string) error {
	sm.mu.Lock()
	session, exists := sm.Session[gameID]
	if !exists {
		sm.mu.Unlock()
		return ErrSessionNotFound
	}
	delete(sm.Session, gameID)
	sm.mu.Unlock()

	log.Printf("[SESSION] Removing session %s", gameID)

	session.close()
	sm.conn.SendMessage(gameID, domain.ServerMessage{Type: domain.MsgClosed, GameID: gameID})
	sm.conn.RemoveGame(gameID)
	sm.forget(gameID)
	return nil
}

// LiveGame is the summary row for the live games listing.
type LiveGame struct {
	GameID        string            `json:"gameId"`
	Status        domain.GameStatus `json:"status"`
	CurrentPlayer domain.PlayerID   `json:"currentPlayer"`
	MoveCount     int               `json:"moveCount"`
	StartedAt     string            `json:"startedAt"`
}

func (sm *SessionManager) GetActiveGames() []LiveGame {
	sm.mu.RLock()
	sessions := make([]*GameSession, 0, len(sm.Session))
	for _, s := range sm.Session {
		sessions = append(sessions, s)
	}
	sm.mu.RUnlock()

	games := make([]LiveGame, 0, len(sessions))
	for _, s := range sessions {
		s.mu.Lock()
		games = append(games, LiveGame{
			GameID:        s.GameID,
			Status:        s.game.State().Status,
			CurrentPlayer: s.game.CurrentPlayer(),
			MoveCount:     s.game.MoveCount(),
			StartedAt:     s.CreatedAt.UTC().Format(time.RFC3339),
		})
		s.mu.Unlock()
	}
	return games
}

// CleanupOldSessions evicts finished games past FinishedTTL and any game
// idle past IdleTTL. It returns how many sessions were removed.
func (sm *SessionManager) CleanupOldSessions() int {
	now := sm.now()

	sm.mu.RLock()
	var stale []string
	for gameID, s := range sm.Session {
		s.mu.Lock()
		finished := s.game.IsFinished()
		expired := (finished && sm.opts.FinishedTTL > 0 && now.Sub(s.FinishedAt) > sm.opts.FinishedTTL) ||
			(sm.opts.IdleTTL > 0 && now.Sub(s.LastActivity) > sm.opts.IdleTTL)
		s.mu.Unlock()
		if expired {
			stale = append(stale, gameID)
		}
	}
	sm.mu.RUnlock()

	count := 0
	for _, gameID := range stale {
		if err := sm.RemoveSession(gameID); err == nil {
			count++
		}
	}

	if count > 0 {
		log.Printf("[SESSION] Memory cleanup: Removed %d stale game sessions", count)
	}
	return count
}

func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.Session)
}

// CachedSnapshot reads the mirrored snapshot of a game this process no
// longer holds.
func (sm *SessionManager) CachedSnapshot(ctx context.Context, gameID string) (*domain.Snapshot, error) {
	if sm.cache == nil {
		return nil, ErrSessionNotFound
	}
	raw, err := sm.cache.Get(ctx, snapshotKeyPrefix+gameID)
	if err != nil {
		log.Printf("[SESSION] Error reading mirrored snapshot for %s: %v", gameID, err)
		return nil, ErrSessionNotFound
	}
	if raw == "" {
		return nil, ErrSessionNotFound
	}
	var snap domain.Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// mirror queues the snapshot for the cache writer so game_over and
// move_made pushes are not held up by the cache. A full queue skips the
// write; the next one for the game catches up.
func (sm *SessionManager) mirror(gameID string, snap domain.Snapshot) {
	if sm.cache == nil {
		return
	}
	data, err := json.Marshal(snap)
	if err != nil {
		log.Printf("[SESSION] Error encoding snapshot for %s: %v", gameID, err)
		return
	}

	sm.cacheMu.RLock()
	defer sm.cacheMu.RUnlock()
	if sm.cacheClosed {
		return
	}
	select {
	case sm.cacheOps <- cacheOp{gameID: gameID, data: data}:
	default:
		log.Printf("[SESSION] Cache queue full, skipped mirroring %s", gameID)
	}
}

// forget queues the delete behind every mirror already queued for gameID.
func (sm *SessionManager) forget(gameID string) {
	if sm.cache == nil {
		return
	}
	sm.cacheMu.RLock()
	defer sm.cacheMu.RUnlock()
	if sm.cacheClosed {
		return
	}
	sm.cacheOps <- cacheOp{gameID: gameID}
}

func (sm *SessionManager) runCacheWriter() {
	defer close(sm.cacheDone)
	for op := range sm.cacheOps {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		key := snapshotKeyPrefix + op.gameID
		if op.data == nil {
			if err := sm.cache.Del(ctx, key); err != nil {
				log.Printf("[SESSION] Error dropping snapshot for %s: %v", op.gameID, err)
			}
		} else if err := sm.cache.Set(ctx, key, op.data, sm.opts.SnapshotTTL); err != nil {
			log.Printf("[SESSION] Error mirroring snapshot for %s: %v", op.gameID, err)
		}
		cancel()
	}
}

type noopConnections struct{}

func (noopConnections) SendMessage(string, domain.ServerMessage) error { return nil }
func (noopConnections) RemoveGame(string)                              {}
