package cleanup

import (
	"context"
	"log"
	"time"
)

// Sweeper evicts stale sessions and reports how many it removed.
type Sweeper interface {
	CleanupOldSessions() int
}

type Worker struct {
	Sessions Sweeper
	Interval time.Duration
}

func NewWorker(sessions Sweeper, interval time.Duration) *Worker {
	return &Worker{Sessions: sessions, Interval: interval}
}

// Start runs a sweep immediately and then every Interval until ctx is done.
func (w *Worker) Start(ctx context.Context) {
	log.Println("[CLEANUP] Background worker started")
	w.runCleanup()

	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[CLEANUP] Background worker stopped")
			return
		case <-ticker.C:
			w.runCleanup()
		}
	}
}

func (w *Worker) runCleanup() {
	removed := w.Sessions.CleanupOldSessions()
	if removed > 0 {
		log.Printf("[CLEANUP] Removed %d stale sessions", removed)
	}
}
