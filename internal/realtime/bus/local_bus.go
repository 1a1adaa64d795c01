package bus

import (
	"context"
	"sync"

	"github.com/yungbote/smartassist-backend/internal/realtime"
)

// localBus delivers synchronously inside one process. Used when no redis
// address is configured.
type localBus struct {
	mu       sync.RWMutex
	next     int
	handlers map[int]func(realtime.ChangeEvent)
}

func NewLocalBus() Bus {
	return &localBus{handlers: make(map[int]func(realtime.ChangeEvent))}
}

func (b *localBus) Publish(_ context.Context, ev realtime.ChangeEvent) error {
	b.mu.RLock()
	hs := make([]func(realtime.ChangeEvent), 0, len(b.handlers))
	for _, h := range b.handlers {
		hs = append(hs, h)
	}
	b.mu.RUnlock()
	for _, h := range hs {
		h(ev)
	}
	return nil
}

func (b *localBus) StartForwarder(ctx context.Context, onMsg func(ev realtime.ChangeEvent)) error {
	b.mu.Lock()
	id := b.next
	b.next++
	b.handlers[id] = onMsg
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.handlers, id)
		b.mu.Unlock()
	}()
	return nil
}

func (b *localBus) Close() error {
	b.mu.Lock()
	b.handlers = make(map[int]func(realtime.ChangeEvent))
	b.mu.Unlock()
	return nil
}
