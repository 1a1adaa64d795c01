package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"

	"github.com/yungbote/smartassist-backend/internal/dashboard"
	"github.com/yungbote/smartassist-backend/internal/data/db"
	"github.com/yungbote/smartassist-backend/internal/data/repos"
	apphttp "github.com/yungbote/smartassist-backend/internal/http"
	"github.com/yungbote/smartassist-backend/internal/observability"
	"github.com/yungbote/smartassist-backend/internal/platform/logger"
	"github.com/yungbote/smartassist-backend/internal/realtime"
	"github.com/yungbote/smartassist-backend/internal/realtime/bus"
	"github.com/yungbote/smartassist-backend/internal/seed"
	"github.com/yungbote/smartassist-backend/internal/workspace"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	Log        *logger.Logger
	DB         *gorm.DB
	Cfg        Config
	Metrics    *observability.Metrics
	Repos      repos.Set
	Services   Services
	Dispatcher *realtime.Dispatcher
	Workspaces *workspace.Manager
	Dashboard  *dashboard.Refresher
	Server     *apphttp.Server

	bus          bus.Bus
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

// OpenDB connects with the configured driver and migrates when enabled.
func OpenDB(log *logger.Logger, cfg Config) (*gorm.DB, error) {
	theDB, err := db.Open(cfg.DBDriver, cfg.SQLitePath, log)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if cfg.AutoMigrate {
		if err := db.AutoMigrateAll(theDB); err != nil {
			return nil, err
		}
	}
	return theDB, nil
}

func New(ctx context.Context, log *logger.Logger, cfg Config) (*App, error) {
	theDB, err := OpenDB(log, cfg)
	if err != nil {
		return nil, err
	}
	return NewWithDB(ctx, log, cfg, theDB)
}

// NewWithDB wires every component on an already opened database.
func NewWithDB(ctx context.Context, log *logger.Logger, cfg Config, theDB *gorm.DB) (*App, error) {
	otelShutdown := observability.InitOTel(ctx, log, cfg.Otel)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(reg)

	var b bus.Bus
	if cfg.RedisAddr != "" {
		rb, err := bus.NewRedisBus(log, cfg.RedisAddr, cfg.RedisChannel)
		if err != nil {
			return nil, fmt.Errorf("init redis bus: %w", err)
		}
		b = rb
	} else {
		log.Info("REDIS_ADDR not set; change notifications stay in-process")
		b = bus.NewLocalBus()
	}

	dispatcher := realtime.NewDispatcher(log, metrics)
	rs := repos.NewSet(theDB, log)
	svc := wireServices(theDB, log, cfg, rs, dispatcher, metrics)

	workspaces := workspace.NewManager(log, cfg.Workspace, svc.Progress, svc.Snapshots, svc.Sessions, metrics)
	refresher := dashboard.NewRefresher(log, dashboard.NewBuilder(log, rs, metrics), dispatcher, cfg.Dashboard)

	h := wireHandlers(log, theDB, svc, dispatcher, workspaces, refresher)
	server := wireServer(log, cfg, h, svc, metrics)

	return &App{
		Log:          log,
		DB:           theDB,
		Cfg:          cfg,
		Metrics:      metrics,
		Repos:        rs,
		Services:     svc,
		Dispatcher:   dispatcher,
		Workspaces:   workspaces,
		Dashboard:    refresher,
		Server:       server,
		bus:          b,
		otelShutdown: otelShutdown,
	}, nil
}

// Start seeds tutorials, attaches the change transport and starts the
// dashboard refresher. It does not serve HTTP.
func (a *App) Start(ctx context.Context) error {
	if a == nil || a.cancel != nil {
		return nil
	}
	if a.Cfg.SeedTutorials {
		if err := seed.Tutorials(ctx, a.Services.Tutorials); err != nil {
			return fmt.Errorf("seed tutorials: %w", err)
		}
	}
	runCtx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	if err := a.Dispatcher.Attach(runCtx, a.bus); err != nil {
		cancel()
		a.cancel = nil
		return fmt.Errorf("attach change transport: %w", err)
	}
	a.Dashboard.Start(runCtx)
	return nil
}

func (a *App) Run() error {
	if a == nil || a.Server == nil {
		return errors.New("app not initialized")
	}
	a.Log.Info("HTTP server listening", "addr", a.Cfg.HTTPAddr)
	return a.Server.Run(a.Cfg.HTTPAddr)
}

// Close stops serving, ends open workspaces (closing their sessions) and
// releases the transport. Safe to call once after Start.
func (a *App) Close() {
	if a == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if a.Server != nil {
		if err := a.Server.Shutdown(ctx); err != nil {
			a.Log.Warn("HTTP shutdown failed", "error", err)
		}
	}
	a.Workspaces.Shutdown(ctx)
	a.Dashboard.Stop()
	a.Dispatcher.Shutdown()
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.bus != nil {
		if err := a.bus.Close(); err != nil {
			a.Log.Warn("Change transport close failed", "error", err)
		}
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	a.Log.Sync()
}
