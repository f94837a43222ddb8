package notifier

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// MemoryNotifier implements Notifier with in-process channels. It is the
// default for single-instance deployments and tests.
type MemoryNotifier struct {
	logger   *zap.Logger
	watchers map[chan *Event]struct{}
	mu       sync.RWMutex
}

// NewMemoryNotifier creates a new in-process notifier
func NewMemoryNotifier(logger *zap.Logger) *MemoryNotifier {
	return &MemoryNotifier{
		logger:   logger.Named("notifier.memory"),
		watchers: make(map[chan *Event]struct{}),
	}
}

// Subscribe implements Notifier.Subscribe
func (n *MemoryNotifier) Subscribe(ctx context.Context) (<-chan *Event, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	ch := make(chan *Event, 16)
	n.watchers[ch] = struct{}{}

	go func() {
		<-ctx.Done()
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.watchers, ch)
		close(ch)
	}()

	return ch, nil
}

// Publish implements Notifier.Publish
func (n *MemoryNotifier) Publish(_ context.Context, event *Event) error {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch := range n.watchers {
		select {
		case ch <- event:
		default:
			n.logger.Warn("watcher channel is full, skipping notification",
				zap.String("table", event.Table),
				zap.String("event", event.Event))
		}
	}
	return nil
}
