package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100*time.Millisecond, nil)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublishDelivery(t *testing.T) {
	b := NewBroker(100*time.Millisecond, nil)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: TypeNotification, Data: map[string]string{"title": "Task Created"}})

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: notification") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"title":"Task Created"`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestPublishChangeThrottlesSync(t *testing.T) {
	b := NewBroker(300*time.Millisecond, nil)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// First change syncs immediately; the next two collapse into one
	// trailing sync carrying the latest payload.
	b.PublishChange([]Event{{Type: TypeLayout, Data: []string{"TASKS"}}}, map[string]int{"rev": 1})
	b.PublishChange([]Event{{Type: TypeLayout, Data: []string{}}}, map[string]int{"rev": 2})
	b.PublishChange(nil, map[string]int{"rev": 3})

	time.Sleep(50 * time.Millisecond)
	layoutCount, syncCount := drain(ch)
	if layoutCount != 2 {
		t.Errorf("layout events = %d, want 2", layoutCount)
	}
	if syncCount != 1 {
		t.Errorf("sync events before throttle = %d, want 1", syncCount)
	}

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: hud.sync") || !strings.Contains(s, `"rev":3`) {
			t.Errorf("trailing sync = %q, want rev 3", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for trailing sync")
	}
}

func drain(ch chan []byte) (layout, sync int) {
	for {
		select {
		case msg := <-ch:
			s := string(msg)
			switch {
			case strings.Contains(s, "event: hud.sync"):
				sync++
			case strings.Contains(s, "event: layout.updated"):
				layout++
			}
		default:
			return layout, sync
		}
	}
}

func TestClientGauge(t *testing.T) {
	counts := make(chan int, 4)
	b := NewBroker(time.Second, func(n int) { counts <- n })
	defer b.Close()
	ch := b.Subscribe()
	b.Unsubscribe(ch)
	if got := <-counts; got != 1 {
		t.Errorf("gauge after subscribe = %d, want 1", got)
	}
	if got := <-counts; got != 0 {
		t.Errorf("gauge after unsubscribe = %d, want 0", got)
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100*time.Millisecond, nil)
	defer b.Close()

	// Start handler in background.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req = req.WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	// Give handler time to subscribe.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.Publish(Event{Type: TypeMode, Data: map[string]string{"mode": "PLAN"}})
	time.Sleep(50 * time.Millisecond)

	// Cancel context to disconnect.
	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, "event: mode.updated") {
		t.Errorf("handler output missing event: %q", body)
	}

	// Client should be cleaned up.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second, nil)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// Fill buffer (capacity 64) and then one more should not block.
	for range 70 {
		b.Publish(Event{Type: "test", Data: map[string]string{"i": "x"}})
	}
	// If we reach here without deadlock, the test passes.
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker(100*time.Millisecond, nil)
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	// Should be safe no-op after close.
	b.Publish(Event{Type: TypeStatus, Data: map[string]bool{"offline": true}})
	b.PublishChange(nil, map[string]int{"rev": 1})
}
