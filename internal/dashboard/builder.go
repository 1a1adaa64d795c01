package dashboard

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/smartassist-backend/internal/data/repos"
	types "github.com/yungbote/smartassist-backend/internal/domain"
	"github.com/yungbote/smartassist-backend/internal/observability"
	"github.com/yungbote/smartassist-backend/internal/platform/dbctx"
	"github.com/yungbote/smartassist-backend/internal/platform/logger"
)

// Builder re-reads every collection the teacher view needs and joins them.
type Builder struct {
	log     *logger.Logger
	repos   repos.Set
	metrics *observability.Metrics
	now     func() time.Time
}

func NewBuilder(baseLog *logger.Logger, set repos.Set, metrics *observability.Metrics) *Builder {
	return &Builder{
		log:     baseLog.With("component", "DashboardBuilder"),
		repos:   set,
		metrics: metrics,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Rebuild fetches the five collections in parallel and returns a fresh view.
// Any fetch failure fails the whole rebuild.
func (b *Builder) Rebuild(ctx context.Context) (*View, error) {
	ctx, span := observability.Tracer().Start(ctx, "dashboard.rebuild")
	defer span.End()
	start := time.Now()

	in, err := b.fetch(ctx)
	b.metrics.ObserveRebuild(time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return nil, err
	}

	rows := BuildComposite(in)
	span.SetAttributes(attribute.Int("dashboard.students", len(rows)))
	return &View{
		Students: rows,
		Summary:  Summarize(rows),
		BuiltAt:  b.now(),
	}, nil
}

func (b *Builder) fetch(ctx context.Context) (Inputs, error) {
	var in Inputs
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return traced(gctx, "profiles", func(dbc dbctx.Context) (err error) {
			in.Profiles, err = b.repos.Profiles.List(dbc, types.UserTypeStudent)
			return err
		})
	})
	g.Go(func() error {
		return traced(gctx, "tutorials", func(dbc dbctx.Context) (err error) {
			in.Tutorials, err = b.repos.Tutorials.List(dbc)
			return err
		})
	})
	g.Go(func() error {
		return traced(gctx, "progress", func(dbc dbctx.Context) (err error) {
			in.Progress, err = b.repos.Progress.List(dbc)
			return err
		})
	})
	g.Go(func() error {
		return traced(gctx, "latest_code", func(dbc dbctx.Context) (err error) {
			in.LatestCode, err = b.repos.CodeLogs.LatestPerStudent(dbc)
			return err
		})
	})
	g.Go(func() error {
		return traced(gctx, "help_requests", func(dbc dbctx.Context) (err error) {
			in.HelpRequests, err = b.repos.HelpRequests.List(dbc, "")
			return err
		})
	})
	if err := g.Wait(); err != nil {
		b.log.Warn("Dashboard fetch failed", "error", err)
		return Inputs{}, err
	}
	return in, nil
}

func traced(ctx context.Context, name string, fn func(dbctx.Context) error) error {
	ctx, span := observability.Tracer().Start(ctx, "dashboard.fetch."+name)
	defer span.End()
	if err := fn(dbctx.Context{Ctx: ctx}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, name)
		return err
	}
	return nil
}
