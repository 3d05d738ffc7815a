// Package sse implements a Server-Sent Events broker that pushes HUD state
// to the browser.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Event types pushed to clients.
const (
	TypeLayout       = "layout.updated"
	TypeApprovals    = "approvals.updated"
	TypeMode         = "mode.updated"
	TypeWorkspace    = "workspace.updated"
	TypeNotification = "notification"
	TypeStatus       = "status.updated"
	TypeSync         = "hud.sync"
)

// Event represents an SSE event to broadcast.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type changeReq struct {
	events []Event
	sync   any
}

// Broker manages SSE client connections and broadcasts events.
//
// A single internal event loop owns the client set, the last sync time and
// the pending sync payload. Public methods talk to it through channels.
type Broker struct {
	syncMin time.Duration
	gauge   func(int)

	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	changeCh      chan changeReq
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a broker. Full hud.sync snapshots are sent at most once
// per syncThrottle; the latest one is always delivered eventually. gauge,
// when non-nil, receives the client count whenever it changes.
func NewBroker(syncThrottle time.Duration, gauge func(int)) *Broker {
	if syncThrottle <= 0 {
		syncThrottle = 250 * time.Millisecond
	}
	if gauge == nil {
		gauge = func(int) {}
	}

	b := &Broker{
		syncMin:       syncThrottle,
		gauge:         gauge,
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		changeCh:      make(chan changeReq, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	var (
		lastSync    time.Time
		pendingSync any
		trailing    *time.Timer
		trailingCh  <-chan time.Time
	)

	broadcast := func(event Event) {
		payload, err := json.Marshal(event.Data)
		if err != nil {
			return
		}
		raw := []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, payload))

		for ch := range clients {
			select {
			case ch <- raw:
			default:
				// Slow client; drop rather than stall the loop.
			}
		}
	}

	flushSync := func(now time.Time) {
		if pendingSync == nil {
			return
		}
		lastSync = now
		broadcast(Event{Type: TypeSync, Data: pendingSync})
		pendingSync = nil
	}

	for {
		select {
		case <-b.stopCh:
			if trailing != nil {
				trailing.Stop()
			}
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.subscribeCh:
			clients[ch] = struct{}{}
			b.gauge(len(clients))

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
				b.gauge(len(clients))
			}

		case event := <-b.publishCh:
			broadcast(event)

		case req := <-b.changeCh:
			for _, ev := range req.events {
				broadcast(ev)
			}
			if req.sync == nil {
				continue
			}
			pendingSync = req.sync
			now := time.Now()
			if wait := b.syncMin - now.Sub(lastSync); wait > 0 {
				if trailing == nil {
					trailing = time.NewTimer(wait)
					trailingCh = trailing.C
				} else {
					trailing.Reset(wait)
				}
				continue
			}
			flushSync(now)

		case <-trailingCh:
			flushSync(time.Now())

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close gracefully stops broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a new client and returns its channel.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- ch:
	case <-b.stopped:
		close(ch)
	}

	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends one event to all connected clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// PublishChange sends the per-topic events of one state change and queues
// sync as the next throttled hud.sync snapshot. A nil sync sends only the
// events.
func (b *Broker) PublishChange(events []Event, sync any) {
	if b.closed.Load() {
		return
	}
	select {
	case b.changeCh <- changeReq{events: events, sync: sync}:
	case <-b.stopped:
	}
}

// ServeHTTP is the SSE endpoint handler (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
