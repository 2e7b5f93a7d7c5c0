// Package live pushes party events to browsers watching a party over websockets.
package live

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"moviemate/internal/domain"
	"moviemate/internal/metrics"
)

// ErrBacklogFull is returned by Publish when the broadcast queue is saturated.
var ErrBacklogFull = errors.New("live: broadcast backlog full")

// ErrStopped is returned by Publish after the hub has shut down.
var ErrStopped = errors.New("live: hub stopped")

// Hub tracks websocket clients per party and fans party events out to them.
type Hub struct {
	mu      sync.RWMutex
	parties map[int64]map[*client]struct{}

	register   chan *client
	unregister chan *client
	broadcast  chan domain.PartyEvent
	done       chan struct{}
	stopOnce   sync.Once

	finder  PartyFinder
	origins map[string]struct{}
	logger  *slog.Logger
}

// PartyFinder looks up a party before a client is allowed to subscribe to it.
type PartyFinder interface {
	GetByID(ctx context.Context, partyID int64) (*domain.WatchParty, error)
}

// NewHub returns a hub. finder may be nil, in which case any party id is accepted.
// allowedOrigins limits browser connections; an entry of "*" allows all.
func NewHub(finder PartyFinder, allowedOrigins []string, logger *slog.Logger) *Hub {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = struct{}{}
	}
	return &Hub{
		parties:    make(map[int64]map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan domain.PartyEvent, 256),
		done:       make(chan struct{}),
		finder:     finder,
		origins:    origins,
		logger:     logger,
	}
}

// RunWithContext processes registrations and broadcasts until ctx is done,
// then closes every client.
func (h *Hub) RunWithContext(ctx context.Context) error {
	defer h.stop()
	for {
		select {
		case <-ctx.Done():
			n := h.ClientCount()
			h.closeAll()
			h.logger.Info("live hub stopped", "clients_closed", n)
			return ctx.Err()
		case c := <-h.register:
			h.add(c)
		case c := <-h.unregister:
			h.remove(c)
		case event := <-h.broadcast:
			h.fanOut(event)
		}
	}
}

// Publish queues event for delivery to the party's clients. It never blocks.
func (h *Hub) Publish(_ context.Context, event domain.PartyEvent) error {
	select {
	case <-h.done:
		return ErrStopped
	default:
	}
	select {
	case h.broadcast <- event:
		return nil
	default:
		return ErrBacklogFull
	}
}

// ClientCount returns the number of connected clients across all parties.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.parties {
		n += len(set)
	}
	return n
}

func (h *Hub) stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.parties[c.partyID]
	if !ok {
		set = make(map[*client]struct{})
		h.parties[c.partyID] = set
	}
	set[c] = struct{}{}
	metrics.WSConnectionsActive.Inc()
	h.logger.Debug("live client connected", "party_id", c.partyID, "party_clients", len(set))
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(c)
}

// dropLocked must be called with h.mu held.
func (h *Hub) dropLocked(c *client) {
	set, ok := h.parties[c.partyID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	metrics.WSConnectionsActive.Dec()
	if len(set) == 0 {
		delete(h.parties, c.partyID)
	}
}

func (h *Hub) fanOut(event domain.PartyEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("marshal live event", "type", event.Type, "err", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.parties[event.PartyID] {
		select {
		case c.send <- payload:
			metrics.WSMessagesSent.Inc()
		default:
			// Slow consumer.
			h.dropLocked(c)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.parties {
		for c := range set {
			h.dropLocked(c)
		}
	}
}
