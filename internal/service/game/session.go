package game

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/iamasit07/join-dots/internal/domain"
)

// GameSession hosts one domain.Game. Moves are accepted immediately and
// committed once the drop delay has passed; in between the game is busy
// and rejects further moves.
type GameSession struct {
	GameID       string
	CreatedAt    time.Time
	FinishedAt   time.Time
	LastActivity time.Time

	game      *domain.Game
	dropDelay time.Duration
	drop      *pendingDrop
	closed    bool
	mu        sync.Mutex
	sm        *SessionManager
}

// pendingDrop is a move between BeginMove and CommitMove.
type pendingDrop struct {
	placement domain.Placement
	timer     *time.Timer
	done      chan struct{}
	result    domain.MoveResult
	err       error
}

// HandleMove starts a move and returns where the piece will land. The
// piece is committed after the drop delay; watchers get move_made then.
func (gs *GameSession) HandleMove(column int) (domain.Placement, error) {
	d, err := gs.beginMove(column)
	if err != nil {
		return domain.Placement{}, err
	}
	return d.placement, nil
}

// ApplyMove starts a move and waits for it to commit. A cancelled ctx only
// stops the wait; the drop still lands.
func (gs *GameSession) ApplyMove(ctx context.Context, column int) (domain.MoveResult, error) {
	d, err := gs.beginMove(column)
	if err != nil {
		return domain.MoveResult{}, err
	}

	select {
	case <-d.done:
		return d.result, d.err
	case <-ctx.Done():
		return domain.MoveResult{}, ctx.Err()
	}
}

func (gs *GameSession) beginMove(column int) (*pendingDrop, error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if gs.closed {
		return nil, ErrSessionNotFound
	}

	placement, err := gs.game.BeginMove(column)
	if err != nil {
		return nil, err
	}

	gs.LastActivity = gs.sm.now()
	d := &pendingDrop{placement: placement, done: make(chan struct{})}
	gs.drop = d

	gs.sm.conn.SendMessage(gs.GameID, domain.ServerMessage{
		Type:      domain.MsgMoveStarted,
		GameID:    gs.GameID,
		Placement: &placement,
	})

	if gs.dropDelay <= 0 {
		gs.commitLocked(d)
		return d, nil
	}

	d.timer = time.AfterFunc(gs.dropDelay, func() {
		gs.mu.Lock()
		defer gs.mu.Unlock()
		gs.commitLocked(d)
	})
	return d, nil
}

// commitLocked lands d unless a reset or close already threw it away.
// Caller must hold gs.mu.
func (gs *GameSession) commitLocked(d *pendingDrop) {
	if gs.drop != d {
		return
	}
	gs.drop = nil

	result, err := gs.game.CommitMove()
	d.result, d.err = result, err
	close(d.done)
	if err != nil {
		log.Printf("[GAME] Commit failed for game %s: %v", gs.GameID, err)
		return
	}

	snap := gs.game.Snapshot()
	gs.sm.conn.SendMessage(gs.GameID, domain.ServerMessage{
		Type:      domain.MsgMoveMade,
		GameID:    gs.GameID,
		Placement: &result.Placement,
		State:     &result.State,
		Snapshot:  &snap,
	})

	if result.State.IsTerminal() {
		gs.FinishedAt = gs.sm.now()
		if result.State.Status == domain.StatusWon {
			log.Printf("[GAME] Game %s won by %s after %d moves", gs.GameID, result.State.Winner, gs.game.MoveCount())
		} else {
			log.Printf("[GAME] Game %s drawn after %d moves", gs.GameID, gs.game.MoveCount())
		}
		gs.sm.conn.SendMessage(gs.GameID, domain.ServerMessage{
			Type:     domain.MsgGameOver,
			GameID:   gs.GameID,
			State:    &result.State,
			Snapshot: &snap,
		})
	}

	gs.sm.mirror(gs.GameID, snap)
}

// discardLocked throws away a pending drop. Caller must hold gs.mu.
func (gs *GameSession) discardLocked() {
	d := gs.drop
	if d == nil {
		return
	}
	gs.drop = nil
	if d.timer != nil {
		d.timer.Stop()
	}
	d.err = ErrDropDiscarded
	close(d.done)
}

// Reset starts the game over from any state. A drop still in the air is
// discarded.
func (gs *GameSession) Reset() (domain.Snapshot, error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if gs.closed {
		return domain.Snapshot{}, ErrSessionNotFound
	}

	gs.discardLocked()
	gs.game.Reset()
	gs.FinishedAt = time.Time{}
	gs.LastActivity = gs.sm.now()

	log.Printf("[GAME] Game %s reset", gs.GameID)

	snap := gs.game.Snapshot()
	gs.sm.conn.SendMessage(gs.GameID, domain.ServerMessage{
		Type:     domain.MsgReset,
		GameID:   gs.GameID,
		Snapshot: &snap,
	})
	gs.sm.mirror(gs.GameID, snap)
	return snap, nil
}

func (gs *GameSession) PreviewLanding(column int) (int, bool) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.game.PreviewLanding(column)
}

func (gs *GameSession) Snapshot() domain.Snapshot {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.game.Snapshot()
}

func (gs *GameSession) State() domain.State {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.game.State()
}

func (gs *GameSession) CurrentPlayer() domain.PlayerID {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.game.CurrentPlayer()
}

func (gs *GameSession) Cell(row, col int) domain.PlayerID {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.game.Cell(row, col)
}

func (gs *GameSession) LastMove() (domain.Placement, bool) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.game.LastMove()
}

func (gs *GameSession) IsBusy() bool {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.game.IsBusy()
}

func (gs *GameSession) close() {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.discardLocked()
	gs.closed = true
}
