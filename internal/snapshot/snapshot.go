// Package snapshot records resource state before a mutation executes so an
// operator can reconstruct what changed. Snapshots are advisory: automatic
// rollback is out of scope, the snapshot is evidence for a manual revert.
package snapshot

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dogancanbaris/WPP-mcp-servers-sub001/internal/logging"
)

type Snapshot struct {
	ID        string          `json:"id"`
	Operation string          `json:"operation"`
	Service   string          `json:"service"`
	TargetID  string          `json:"targetId"`
	State     json.RawMessage `json:"state,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Manager keeps snapshots in memory, newest-first, capped at maxEntries.
type Manager struct {
	mu         sync.Mutex
	snapshots  map[string]*Snapshot
	maxEntries int
	logger     logging.Logger
	now        func() time.Time
}

const defaultMaxEntries = 500

func NewManager(maxEntries int, logger logging.Logger) *Manager {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Manager{
		snapshots:  make(map[string]*Snapshot),
		maxEntries: maxEntries,
		logger:     logger,
		now:        time.Now,
	}
}

// Capture stores the pre-mutation state and returns the snapshot ID. A nil or
// unmarshalable state still produces a snapshot; the record of the attempt
// matters more than the payload.
func (m *Manager) Capture(operation, service, targetID string, state any) string {
	var raw json.RawMessage
	if state != nil {
		if data, err := json.Marshal(state); err == nil {
			raw = data
		} else {
			m.logger.Warn("snapshot state not serializable", "operation", operation, "error", err.Error())
		}
	}

	snap := &Snapshot{
		ID:        uuid.NewString(),
		Operation: operation,
		Service:   service,
		TargetID:  targetID,
		State:     raw,
		CreatedAt: m.now(),
	}

	m.mu.Lock()
	m.snapshots[snap.ID] = snap
	m.evictLocked()
	m.mu.Unlock()

	m.logger.Info("snapshot captured",
		"snapshot_id", snap.ID,
		"operation", operation,
		"target_id", targetID)
	return snap.ID
}

func (m *Manager) Get(id string) (*Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.snapshots[id]
	return snap, ok
}

// List returns up to limit snapshots, newest first. limit<=0 returns all.
func (m *Manager) List(limit int) []*Snapshot {
	m.mu.Lock()
	out := make([]*Snapshot, 0, len(m.snapshots))
	for _, s := range m.snapshots {
		out = append(out, s)
	}
	m.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.snapshots)
}

// evictLocked drops the oldest snapshots beyond maxEntries.
func (m *Manager) evictLocked() {
	if len(m.snapshots) <= m.maxEntries {
		return
	}
	all := make([]*Snapshot, 0, len(m.snapshots))
	for _, s := range m.snapshots {
		all = append(all, s)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})
	for _, s := range all[:len(all)-m.maxEntries] {
		delete(m.snapshots, s.ID)
	}
}
