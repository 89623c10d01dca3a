package hub

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Handle is one live push channel for a user. Handles are opaque and
// ephemeral: the hub holds them only between Register and Unregister and
// never outlives the underlying transport.
type Handle interface {
	// Enqueue offers an outbound payload to the handle. It must not block.
	// A false return means the handle can no longer accept writes (closed
	// transport or full buffer) and should be dropped.
	Enqueue(payload []byte) bool

	// Close releases the handle's transport resources. Must tolerate being
	// called more than once.
	Close()
}

// Hub tracks the set of currently registered handles per user. All methods
// are safe for concurrent use: connect, disconnect, and broadcast race
// freely against each other.
type Hub struct {
	mu     sync.RWMutex
	groups map[uuid.UUID]map[Handle]struct{}
	logger *slog.Logger
	closed bool
}

// New creates an empty Hub.
func New(logger *slog.Logger) *Hub {
	return &Hub{
		groups: make(map[uuid.UUID]map[Handle]struct{}),
		logger: logger.With("component", "hub"),
	}
}

// Register adds the handle to the user's group. Registering a handle twice
// is a no-op.
func (h *Hub) Register(userID uuid.UUID, handle Handle) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		handle.Close()
		return
	}

	group, ok := h.groups[userID]
	if !ok {
		group = make(map[Handle]struct{})
		h.groups[userID] = group
	}
	group[handle] = struct{}{}

	h.logger.Debug("connection registered",
		"user_id", userID,
		"connections", len(group))
}

// Unregister removes the handle from the user's group. It tolerates being
// called twice, or for a handle that was never registered, without erroring;
// disconnect paths and broadcast failure paths may both try to remove the
// same handle.
func (h *Hub) Unregister(userID uuid.UUID, handle Handle) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(userID, handle)
}

// removeLocked removes the handle and drops the group once empty.
// Caller must hold h.mu.
func (h *Hub) removeLocked(userID uuid.UUID, handle Handle) {
	group, ok := h.groups[userID]
	if !ok {
		return
	}
	if _, ok := group[handle]; !ok {
		return
	}

	delete(group, handle)
	if len(group) == 0 {
		delete(h.groups, userID)
	}

	h.logger.Debug("connection unregistered",
		"user_id", userID,
		"connections", len(group))
}

// Broadcast delivers the payload to every currently registered handle for
// the user and returns the number of handles it reached. Zero registered
// handles is a successful no-op: the user is simply offline for push
// purposes. A handle that refuses the payload is unregistered and closed so
// broadcasts never target a dead channel indefinitely.
func (h *Hub) Broadcast(userID uuid.UUID, payload any) int {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("failed to marshal broadcast payload",
			"user_id", userID,
			"error", err)
		return 0
	}

	h.mu.RLock()
	group := h.groups[userID]
	handles := make([]Handle, 0, len(group))
	for handle := range group {
		handles = append(handles, handle)
	}
	h.mu.RUnlock()

	delivered := 0
	var dead []Handle
	for _, handle := range handles {
		if handle.Enqueue(data) {
			delivered++
		} else {
			dead = append(dead, handle)
		}
	}

	for _, handle := range dead {
		h.logger.Warn("dropping unresponsive connection", "user_id", userID)
		h.Unregister(userID, handle)
		handle.Close()
	}

	return delivered
}

// Connections returns the number of live handles registered for the user.
func (h *Hub) Connections(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[userID])
}

// Shutdown closes every registered handle and rejects further
// registrations.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for userID, group := range h.groups {
		for handle := range group {
			handle.Close()
		}
		delete(h.groups, userID)
	}

	h.logger.Info("hub shut down")
}
