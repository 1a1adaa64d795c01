package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/yungbote/smartassist-backend/internal/platform/logger"
	"github.com/yungbote/smartassist-backend/internal/realtime"
)

const rebuildKey = "rebuild"

type Rebuilder interface {
	Rebuild(ctx context.Context) (*View, error)
}

// Source is the change feed the refresher listens to and announces new
// views on. *realtime.Dispatcher satisfies it.
type Source interface {
	Subscribe(userID uuid.UUID, scope realtime.Scope) *realtime.Subscription
	Deliver(ev realtime.ChangeEvent)
}

type RefresherConfig struct {
	// Debounce is the minimum gap between two triggered rebuilds; triggers
	// arriving inside it collapse into one.
	Debounce time.Duration
	// PollInterval adds a periodic trigger. Zero disables polling.
	PollInterval time.Duration
	// RebuildTimeout bounds one shared rebuild.
	RebuildTimeout time.Duration
}

// Refresher keeps the last good teacher view. Change events, the poll timer
// and manual refreshes all feed the same single-flight rebuild.
type Refresher struct {
	log     *logger.Logger
	builder Rebuilder
	source  Source
	cfg     RefresherConfig

	trigger chan struct{}
	limiter *rate.Limiter
	group   singleflight.Group

	mu      sync.RWMutex
	last    *View
	lastErr error

	cancel context.CancelFunc
	done   chan struct{}
}

func NewRefresher(baseLog *logger.Logger, builder Rebuilder, source Source, cfg RefresherConfig) *Refresher {
	if cfg.Debounce <= 0 {
		cfg.Debounce = 500 * time.Millisecond
	}
	if cfg.RebuildTimeout <= 0 {
		cfg.RebuildTimeout = 30 * time.Second
	}
	return &Refresher{
		log:     baseLog.With("component", "DashboardRefresher"),
		builder: builder,
		source:  source,
		cfg:     cfg,
		trigger: make(chan struct{}, 1),
		limiter: rate.NewLimiter(rate.Every(cfg.Debounce), 1),
	}
}

// Start subscribes to teacher-scope changes, builds the initial view and
// runs the trigger loop until Stop or ctx ends. An initial build failure is
// logged, not returned.
func (r *Refresher) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})

	sub := r.source.Subscribe(uuid.Nil, realtime.TeacherScope())
	if _, err := r.Refresh(ctx); err != nil {
		r.log.Warn("Initial dashboard build failed", "error", err)
	}
	go r.loop(ctx, sub)
}

func (r *Refresher) loop(ctx context.Context, sub *realtime.Subscription) {
	defer close(r.done)
	defer sub.Close()

	var poll <-chan time.Time
	if r.cfg.PollInterval > 0 {
		t := time.NewTicker(r.cfg.PollInterval)
		defer t.Stop()
		poll = t.C
	}
	events := sub.Events()

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			r.Trigger()
		case <-poll:
			r.Trigger()
		case <-r.trigger:
			if err := r.limiter.Wait(ctx); err != nil {
				return
			}
			// Anything that arrived while waiting is covered by this rebuild.
			select {
			case <-r.trigger:
			default:
			}
			if _, err := r.Refresh(ctx); err != nil {
				r.log.Warn("Dashboard rebuild failed; keeping last view", "error", err)
			}
		}
	}
}

// Trigger requests a rebuild without waiting for it.
func (r *Refresher) Trigger() {
	select {
	case r.trigger <- struct{}{}:
	default:
	}
}

// Refresh rebuilds now, joining a rebuild already in flight. The shared
// rebuild is detached from ctx, so one caller going away does not fail it
// for the others; that caller just stops waiting. On failure the last good
// view is returned, marked stale, alongside the error.
func (r *Refresher) Refresh(ctx context.Context) (*View, error) {
	ch := r.group.DoChan(rebuildKey, func() (any, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.cfg.RebuildTimeout)
		defer cancel()
		view, err := r.builder.Rebuild(rctx)
		r.mu.Lock()
		r.lastErr = err
		if err == nil {
			r.last = view
		}
		r.mu.Unlock()
		if err != nil {
			return nil, err
		}
		r.source.Deliver(realtime.ChangeEvent{Table: realtime.TableDashboard, At: view.BuiltAt})
		return view, nil
	})
	select {
	case <-ctx.Done():
		return r.Current(), ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return r.Current(), res.Err
		}
		return res.Val.(*View), nil
	}
}

// Current returns the last good view, or nil before the first success.
func (r *Refresher) Current() *View {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.last == nil {
		return nil
	}
	cp := *r.last
	cp.Stale = r.lastErr != nil
	return &cp
}

func (r *Refresher) Stop() {
	if r.cancel == nil {
		return
	}
	r.cancel()
	<-r.done
}
