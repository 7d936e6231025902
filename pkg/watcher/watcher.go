// Package watcher is the event hub of chainview. It polls the chain head,
// relays store changes and carries the status line of the mutation pipeline
// to every subscriber.
package watcher

import (
	"context"
	"io"
	"sync"
	"time"

	"chainview/pkg/models"
	"chainview/pkg/rpc"
	"chainview/pkg/tableview"
	"chainview/pkg/viewstate"

	"github.com/charmbracelet/log"
)

// DefaultInterval is used when no poll interval is configured.
const DefaultInterval = 15 * time.Second

// DataSource defines the interface for fetching chain data.
type DataSource interface {
	FetchChainHead(ctx context.Context, rpcURLs []string) (models.ChainHead, []string, error)
}

// RealDataSource implements DataSource using the rpc package.
type RealDataSource struct{}

func (d *RealDataSource) FetchChainHead(ctx context.Context, rpcURLs []string) (models.ChainHead, []string, error) {
	return rpc.FetchChainHead(ctx, rpcURLs)
}

// Watcher manages head polling and fans events out to subscribers.
type Watcher struct {
	rpcURLs  []string
	interval time.Duration
	logger   *log.Logger

	head       models.ChainHead
	hasHead    bool
	failedRPCs []string
	lastStatus string
	lastError  bool

	subscribers []Subscriber
	mu          sync.RWMutex
	stopChan    chan struct{}
	stopOnce    sync.Once
	dataSource  DataSource
}

// NewWatcher creates a new Watcher instance. A nil logger discards output.
func NewWatcher(rpcURLs []string, interval time.Duration, logger *log.Logger) *Watcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Watcher{
		rpcURLs:    append([]string(nil), rpcURLs...),
		interval:   interval,
		logger:     logger,
		stopChan:   make(chan struct{}),
		dataSource: &RealDataSource{},
	}
}

// SetDataSource allows overriding the data source (useful for testing).
func (w *Watcher) SetDataSource(ds DataSource) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.dataSource = ds
}

// Subscribe adds a new subscriber and returns a channel to receive events.
func (w *Watcher) Subscribe() Subscriber {
	w.mu.Lock()
	defer w.mu.Unlock()
	ch := make(Subscriber, 100)
	w.subscribers = append(w.subscribers, ch)
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (w *Watcher) Unsubscribe(ch Subscriber) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, sub := range w.subscribers {
		if sub == ch {
			w.subscribers = append(w.subscribers[:i], w.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// notify never blocks; a full subscriber misses the event.
func (w *Watcher) notify(event Event) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, sub := range w.subscribers {
		select {
		case sub <- event:
		default:
		}
	}
}

// Status records an informational message and broadcasts it.
func (w *Watcher) Status(msg string) {
	w.setStatus(msg, false)
	w.notify(Event{Type: EventStatus, Data: msg})
}

// Error records a failure message and broadcasts it.
func (w *Watcher) Error(msg string) {
	w.setStatus(msg, true)
	w.logger.Error("status", "msg", msg)
	w.notify(Event{Type: EventError, Data: msg})
}

func (w *Watcher) setStatus(msg string, isErr bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastStatus = msg
	w.lastError = isErr
}

// LastStatus returns the latest status line and whether it was an error.
func (w *Watcher) LastStatus() (string, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lastStatus, w.lastError
}

// Head returns the last chain head seen, if any.
func (w *Watcher) Head() (models.ChainHead, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.head, w.hasHead
}

// FailedRPCs lists the endpoints that failed during the last poll.
func (w *Watcher) FailedRPCs() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]string(nil), w.failedRPCs...)
}

// WatchStores relays every store change as an EventViewChanged carrying
// the key that changed.
func (w *Watcher) WatchStores(s *tableview.Stores) (unsubscribe func()) {
	return s.Subscribe(func(k viewstate.Key) {
		w.notify(Event{Type: EventViewChanged, Data: k})
	})
}

// Start begins the head polling loop. Without RPC URLs it does nothing.
func (w *Watcher) Start(ctx context.Context) {
	if len(w.rpcURLs) == 0 {
		return
	}
	go w.pollingLoop(ctx)
}

// Stop stops the polling loop. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopChan) })
}

func (w *Watcher) pollingLoop(ctx context.Context) {
	w.fetchHead(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.fetchHead(ctx)
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (w *Watcher) fetchHead(ctx context.Context) {
	w.mu.RLock()
	ds := w.dataSource
	w.mu.RUnlock()

	head, failed, err := ds.FetchChainHead(ctx, w.rpcURLs)

	w.mu.Lock()
	w.failedRPCs = failed
	if err == nil {
		w.head = head
		w.hasHead = true
	}
	w.mu.Unlock()

	if err != nil {
		w.logger.Warn("head poll failed", "err", err, "failed", len(failed))
		return
	}
	w.logger.Debug("head", "number", head.Number, "rpc", head.RPCURL, "latency", head.Latency)
	w.notify(Event{Type: EventHeadUpdated, Data: head})
}
