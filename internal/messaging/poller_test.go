package messaging_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"podmatch/internal/marketplace"
	"podmatch/internal/messaging"
)

func chatWith(ids ...int64) marketplace.Chat {
	chat := marketplace.Chat{Messages: []marketplace.Message{}}
	for _, id := range ids {
		chat.Messages = append(chat.Messages, marketplace.Message{ID: id})
	}
	return chat
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestPollerFetchesImmediately(t *testing.T) {
	updates := make(chan marketplace.Chat, 1)
	p := &messaging.Poller{
		Interval: time.Hour,
		Fetch: func(context.Context) (marketplace.Chat, error) {
			return chatWith(1, 2), nil
		},
		OnUpdate: func(c marketplace.Chat) { updates <- c },
	}
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer p.Stop()

	select {
	case c := <-updates:
		if c.LastID() != 2 {
			t.Fatalf("unexpected chat %#v", c)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected an immediate fetch")
	}
}

func TestPollerReportsOnlyChanges(t *testing.T) {
	var (
		mu      sync.Mutex
		calls   int
		updates []int64
	)
	sequence := []marketplace.Chat{chatWith(1), chatWith(1), chatWith(1, 2), chatWith(1, 2), chatWith(1)}
	p := &messaging.Poller{
		Interval: 5 * time.Millisecond,
		Fetch: func(context.Context) (marketplace.Chat, error) {
			mu.Lock()
			defer mu.Unlock()
			chat := sequence[min(calls, len(sequence)-1)]
			calls++
			return chat, nil
		},
		OnUpdate: func(c marketplace.Chat) {
			mu.Lock()
			updates = append(updates, c.LastID())
			mu.Unlock()
		},
	}
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls >= len(sequence)+2
	})
	p.Stop()

	mu.Lock()
	defer mu.Unlock()
	want := []int64{1, 2, 1}
	if len(updates) != len(want) {
		t.Fatalf("updates = %v, want %v", updates, want)
	}
	for i := range want {
		if updates[i] != want[i] {
			t.Fatalf("updates = %v, want %v", updates, want)
		}
	}
}

func TestPollerContinuesAfterErrors(t *testing.T) {
	var calls, errs atomic.Int32
	updated := make(chan struct{}, 1)
	p := &messaging.Poller{
		Interval: 5 * time.Millisecond,
		Fetch: func(context.Context) (marketplace.Chat, error) {
			if calls.Add(1) <= 2 {
				return marketplace.Chat{}, errors.New("boom")
			}
			return chatWith(9), nil
		},
		OnError: func(error) { errs.Add(1) },
		OnUpdate: func(marketplace.Chat) {
			select {
			case updated <- struct{}{}:
			default:
			}
		},
	}
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer p.Stop()

	select {
	case <-updated:
	case <-time.After(2 * time.Second):
		t.Fatal("expected polling to recover after errors")
	}
	if errs.Load() != 2 {
		t.Fatalf("expected 2 reported errors, got %d", errs.Load())
	}
}

func TestPollerStopWaitsAndAllowsRestart(t *testing.T) {
	var inFlight atomic.Int32
	p := &messaging.Poller{
		Interval: 5 * time.Millisecond,
		Fetch: func(ctx context.Context) (marketplace.Chat, error) {
			inFlight.Add(1)
			defer inFlight.Add(-1)
			select {
			case <-ctx.Done():
			case <-time.After(time.Millisecond):
			}
			return chatWith(), nil
		},
	}
	if p.Running() {
		t.Fatal("new poller should not be running")
	}
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := p.Start(context.Background()); !errors.Is(err, messaging.ErrRunning) {
		t.Fatalf("expected ErrRunning, got %v", err)
	}
	p.Stop()
	if p.Running() {
		t.Fatal("expected poller stopped")
	}
	if inFlight.Load() != 0 {
		t.Fatal("Stop returned with a fetch in flight")
	}
	p.Stop()

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("restart: %v", err)
	}
	p.Stop()
}

func TestPollerStopsWithParentContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	p := &messaging.Poller{
		Interval: 5 * time.Millisecond,
		Fetch: func(context.Context) (marketplace.Chat, error) {
			calls.Add(1)
			return chatWith(), nil
		},
	}
	if err := p.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitFor(t, func() bool { return calls.Load() > 0 })
	cancel()
	p.Stop()

	after := calls.Load()
	time.Sleep(30 * time.Millisecond)
	if calls.Load() != after {
		t.Fatal("poller kept fetching after cancellation")
	}
}

func TestPollerRequiresFetch(t *testing.T) {
	p := &messaging.Poller{}
	if err := p.Start(context.Background()); err == nil {
		t.Fatal("expected error without fetch")
	}
}
