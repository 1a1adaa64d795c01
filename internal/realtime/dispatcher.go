package realtime

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/yungbote/smartassist-backend/internal/observability"
	"github.com/yungbote/smartassist-backend/internal/platform/logger"
)

const subscriptionBuffer = 16

// Transport fans events out across processes. realtime/bus provides a redis
// and an in-process implementation.
type Transport interface {
	Publish(ctx context.Context, ev ChangeEvent) error
	StartForwarder(ctx context.Context, onMsg func(ev ChangeEvent)) error
	Close() error
}

type Subscription struct {
	ID     uuid.UUID
	UserID uuid.UUID

	scope  Scope
	events chan ChangeEvent
	done   chan struct{}
	once   sync.Once
	d      *Dispatcher

	// pending holds one overflowed event per table until the buffer drains.
	pmu      sync.Mutex
	pending  map[Table]ChangeEvent
	draining bool
	drainWG  sync.WaitGroup
}

func (s *Subscription) Events() <-chan ChangeEvent { return s.events }

// Done is closed once the subscription is released.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Close releases the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() { s.d.remove(s) })
}

type Dispatcher struct {
	mu        sync.RWMutex
	log       *logger.Logger
	metrics   *observability.Metrics
	subs      map[*Subscription]struct{}
	transport Transport
}

func NewDispatcher(log *logger.Logger, metrics *observability.Metrics) *Dispatcher {
	return &Dispatcher{
		log:     log.With("component", "Dispatcher"),
		metrics: metrics,
		subs:    make(map[*Subscription]struct{}),
	}
}

// Attach routes Publish through t and forwards everything t receives to
// local subscribers until ctx ends.
func (d *Dispatcher) Attach(ctx context.Context, t Transport) error {
	if err := t.StartForwarder(ctx, d.Deliver); err != nil {
		return err
	}
	d.mu.Lock()
	d.transport = t
	d.mu.Unlock()
	return nil
}

func (d *Dispatcher) Subscribe(userID uuid.UUID, scope Scope) *Subscription {
	sub := &Subscription{
		ID:     uuid.New(),
		UserID: userID,
		scope:  scope,
		events: make(chan ChangeEvent, subscriptionBuffer),
		done:   make(chan struct{}),
		d:      d,
	}
	d.mu.Lock()
	d.subs[sub] = struct{}{}
	d.mu.Unlock()
	d.metrics.SubscriptionOpened()
	d.log.Debug("Subscription opened", "subscription_id", sub.ID, "user_id", userID, "filters", len(scope))
	return sub
}

func (d *Dispatcher) remove(sub *Subscription) {
	d.mu.Lock()
	delete(d.subs, sub)
	close(sub.done)
	d.mu.Unlock()
	sub.drainWG.Wait()
	close(sub.events)
	d.metrics.SubscriptionClosed()
	d.log.Debug("Subscription closed", "subscription_id", sub.ID)
}

// Publish announces a committed change. Transport failures fall back to
// local delivery so subscribers on this node still hear about it.
func (d *Dispatcher) Publish(ctx context.Context, ev ChangeEvent) {
	d.mu.RLock()
	t := d.transport
	d.mu.RUnlock()
	if t == nil {
		d.Deliver(ev)
		return
	}
	if err := t.Publish(ctx, ev); err != nil {
		d.log.Warn("Change publish failed; delivering locally", "table", ev.Table, "error", err)
		d.Deliver(ev)
	}
}

// Deliver hands ev to matching local subscribers without blocking. When a
// subscriber's buffer is full the event is parked per table and handed over
// as soon as the subscriber catches up, so every table keeps a signal.
func (d *Dispatcher) Deliver(ev ChangeEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for sub := range d.subs {
		if !sub.scope.Matches(ev) {
			continue
		}
		select {
		case sub.events <- ev:
			d.metrics.Delivered(string(ev.Table))
		default:
			if sub.park(ev) {
				d.metrics.Dropped(string(ev.Table))
				d.log.Debug("Coalesced change event; subscriber buffer full", "subscription_id", sub.ID, "table", ev.Table)
			}
		}
	}
}

// park stores ev as the pending signal for its table and starts the drain
// goroutine if needed. It reports whether an older pending signal for the
// same table was replaced. Callers hold d.mu.
func (s *Subscription) park(ev ChangeEvent) (coalesced bool) {
	s.pmu.Lock()
	defer s.pmu.Unlock()
	if s.pending == nil {
		s.pending = make(map[Table]ChangeEvent)
	}
	_, coalesced = s.pending[ev.Table]
	s.pending[ev.Table] = ev
	if !s.draining {
		s.draining = true
		s.drainWG.Add(1)
		go s.drain()
	}
	return coalesced
}

func (s *Subscription) drain() {
	defer s.drainWG.Done()
	for {
		s.pmu.Lock()
		var (
			ev    ChangeEvent
			found bool
		)
		for tbl, pev := range s.pending {
			ev, found = pev, true
			delete(s.pending, tbl)
			break
		}
		if !found {
			s.draining = false
			s.pmu.Unlock()
			return
		}
		s.pmu.Unlock()

		select {
		case s.events <- ev:
			s.d.metrics.Delivered(string(ev.Table))
		case <-s.done:
			return
		}
	}
}

func (d *Dispatcher) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.subs)
}

// Shutdown closes every open subscription.
func (d *Dispatcher) Shutdown() {
	d.mu.RLock()
	subs := make([]*Subscription, 0, len(d.subs))
	for s := range d.subs {
		subs = append(subs, s)
	}
	d.mu.RUnlock()
	for _, s := range subs {
		s.Close()
	}
}
