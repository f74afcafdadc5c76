package app

import (
	"context"
	"sync"
	"time"

	appDb "github.com/alnifu/orgsync-web-sub000/db"
	"github.com/alnifu/orgsync-web-sub000/util/log"
)

const viewMarkerTTL = 12 * time.Hour

type viewKey struct {
	sessionId string
	postId    int64
}

// ViewTracker deduplicates view-count increments to one per (session, post).
// The marker set lives in process memory: a returning session after a
// restart double counts. That is the documented best-effort contract, not a
// correctness guarantee.
type ViewTracker struct {
	db appDb.InteractionDatabase

	mu     sync.Mutex
	seen   map[viewKey]time.Time
	ticker *time.Ticker
}

func NewViewTracker(db appDb.InteractionDatabase) *ViewTracker {
	tracker := &ViewTracker{
		db:     db,
		seen:   make(map[viewKey]time.Time),
		ticker: time.NewTicker(time.Hour),
	}
	go func() {
		for range tracker.ticker.C {
			tracker.sweep()
		}
	}()
	return tracker
}

// RecordView increments the post's view count unless this session already
// viewed it. The marker is set before the write: a failed increment is
// logged and dropped rather than retried.
func (vt *ViewTracker) RecordView(ctx context.Context, sessionId string, postId int64) {
	if sessionId == "" {
		return
	}

	vt.mu.Lock()
	key := viewKey{sessionId, postId}
	if _, viewed := vt.seen[key]; viewed {
		vt.mu.Unlock()
		return
	}
	vt.seen[key] = time.Now()
	vt.mu.Unlock()

	if err := vt.db.IncrementViewCount(ctx, postId); err != nil {
		log.Log.WithError(err).WithField("postId", postId).
			Warn("failed to increment view count")
	}
}

func (vt *ViewTracker) sweep() {
	cutoff := time.Now().Add(-viewMarkerTTL)

	vt.mu.Lock()
	defer vt.mu.Unlock()
	for key, at := range vt.seen {
		if at.Before(cutoff) {
			delete(vt.seen, key)
		}
	}
}
