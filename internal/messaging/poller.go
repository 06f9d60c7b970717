package messaging

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"podmatch/internal/logging"
	"podmatch/internal/marketplace"
)

// DefaultInterval is used when Poller.Interval is not positive.
const DefaultInterval = 5 * time.Second

// ErrRunning is returned by Start when the poller is already running.
var ErrRunning = errors.New("poller already running")

// Poller fetches a chat immediately and then every Interval until stopped.
type Poller struct {
	Interval time.Duration
	Fetch    func(ctx context.Context) (marketplace.Chat, error)
	// OnUpdate receives the chat whenever its last message id or message
	// count differs from the previous successful fetch.
	OnUpdate func(marketplace.Chat)
	// OnError receives fetch errors. Polling continues afterwards.
	OnError func(error)
	Logger  *slog.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	seen   bool
	lastID int64
	count  int
}

// Start launches the polling loop. The first fetch happens before the first
// tick.
func (p *Poller) Start(ctx context.Context) error {
	if p.Fetch == nil {
		return errors.New("poller requires a fetch function")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return ErrRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.running = true
	p.seen = false

	p.wg.Add(1)
	go p.loop(runCtx)
	return nil
}

// Stop cancels the loop and waits for an in-flight fetch to return.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	cancel := p.cancel
	p.running = false
	p.cancel = nil
	p.mu.Unlock()

	cancel()
	p.wg.Wait()
}

// Running reports whether the loop is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Poller) loop(ctx context.Context) {
	defer p.wg.Done()

	interval := p.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	logger := logging.NewComponentLogger(p.Logger, "messaging-poller")

	p.poll(ctx, logger)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx, logger)
		}
	}
}

func (p *Poller) poll(ctx context.Context, logger *slog.Logger) {
	chat, err := p.Fetch(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		logger.Debug("message poll failed; will retry", logging.Error(err))
		if p.OnError != nil {
			p.OnError(err)
		}
		return
	}
	if !p.changed(chat) {
		return
	}
	logger.Debug("message thread changed",
		logging.Int64("last_id", chat.LastID()),
		logging.Int("count", len(chat.Messages)),
	)
	if p.OnUpdate != nil {
		p.OnUpdate(chat)
	}
}

func (p *Poller) changed(chat marketplace.Chat) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	lastID, count := chat.LastID(), len(chat.Messages)
	if p.seen && lastID == p.lastID && count == p.count {
		return false
	}
	p.seen = true
	p.lastID = lastID
	p.count = count
	return true
}
