package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// StatsSource is the subset of *scheduler.Scheduler the broadcaster polls
// on each snapshot tick.
type StatsSource interface {
	SessionCount() int
	ReadyCount() int
	RouterCounts() map[string]int
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

func newClient(conn *websocket.Conn) *client {
	c := &client{conn: conn, send: make(chan []byte, 64)}
	go c.writePump()
	return c
}

func (c *client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

func (c *client) close() {
	close(c.send)
}

// Broadcaster pushes a SnapshotPayload to every connected diagnostics
// client on a fixed tick, mirroring the source's Broadcaster.snapshotLoop.
// Unlike the source, there is no per-entity delta feed (see protocol.go);
// session spawns and removals instead debounce into an extra out-of-band
// snapshot via NotifyChanged, rather than a queue of per-entity deltas.
type Broadcaster struct {
	mu      sync.RWMutex
	clients map[*client]bool
	stats   StatsSource
	ticker  *time.Ticker
	done    chan struct{}

	throttle   time.Duration
	flushMu    sync.Mutex
	flushTimer *time.Timer
}

// NewBroadcaster starts the periodic snapshot loop at snapshotInterval.
// throttle bounds how often NotifyChanged may trigger an extra, out-of-band
// snapshot between ticks.
func NewBroadcaster(stats StatsSource, throttle, snapshotInterval time.Duration) *Broadcaster {
	b := &Broadcaster{
		clients:  make(map[*client]bool),
		stats:    stats,
		throttle: throttle,
		ticker:   time.NewTicker(snapshotInterval),
		done:     make(chan struct{}),
	}
	go b.snapshotLoop()
	return b
}

// NotifyChanged schedules an out-of-band snapshot broadcast, debounced by
// throttle so a burst of session lifecycle events (many spawns or removals
// in quick succession) collapses into a single extra broadcast instead of
// one per event. Grounded on the source's QueueUpdate/QueueRemoval debounce
// (internal/ws/broadcast.go's flushTimer), adapted from queuing per-entity
// deltas to simply re-sending the aggregate snapshot this feed carries.
func (b *Broadcaster) NotifyChanged() {
	b.flushMu.Lock()
	defer b.flushMu.Unlock()
	if b.flushTimer != nil {
		return
	}
	b.flushTimer = time.AfterFunc(b.throttle, func() {
		b.flushMu.Lock()
		b.flushTimer = nil
		b.flushMu.Unlock()
		b.broadcast(b.snapshot())
	})
}

func (b *Broadcaster) AddClient(conn *websocket.Conn) *client {
	c := newClient(conn)

	b.mu.Lock()
	b.clients[c] = true
	b.mu.Unlock()

	data, err := json.Marshal(b.snapshot())
	if err == nil {
		select {
		case c.send <- data:
		default:
		}
	}
	return c
}

func (b *Broadcaster) RemoveClient(c *client) {
	b.mu.Lock()
	if _, ok := b.clients[c]; ok {
		delete(b.clients, c)
		c.close()
	}
	b.mu.Unlock()
}

func (b *Broadcaster) snapshot() DiagnosticsMessage {
	return DiagnosticsMessage{
		Type: MsgSnapshot,
		Payload: SnapshotPayload{
			Sessions: b.stats.SessionCount(),
			Ready:    b.stats.ReadyCount(),
			Routers:  b.stats.RouterCounts(),
		},
	}
}

func (b *Broadcaster) snapshotLoop() {
	for {
		select {
		case <-b.ticker.C:
			b.broadcast(b.snapshot())
		case <-b.done:
			return
		}
	}
}

func (b *Broadcaster) broadcast(msg DiagnosticsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("diagnostics broadcast marshal error: %v", err)
		return
	}

	b.mu.RLock()
	clients := make([]*client, 0, len(b.clients))
	for c := range b.clients {
		clients = append(clients, c)
	}
	b.mu.RUnlock()

	for _, c := range clients {
		select {
		case c.send <- data:
		default:
			log.Printf("diagnostics client too slow, disconnecting")
			b.RemoveClient(c)
		}
	}
}

// ClientCount reports the number of connected diagnostics clients.
func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// Stop halts the snapshot ticker and any pending debounced NotifyChanged.
func (b *Broadcaster) Stop() {
	b.ticker.Stop()
	close(b.done)

	b.flushMu.Lock()
	if b.flushTimer != nil {
		b.flushTimer.Stop()
		b.flushTimer = nil
	}
	b.flushMu.Unlock()
}
