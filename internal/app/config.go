package app

import (
	"time"

	"github.com/yungbote/smartassist-backend/internal/dashboard"
	"github.com/yungbote/smartassist-backend/internal/observability"
	"github.com/yungbote/smartassist-backend/internal/platform/envutil"
	"github.com/yungbote/smartassist-backend/internal/platform/logger"
	"github.com/yungbote/smartassist-backend/internal/realtime/bus"
	"github.com/yungbote/smartassist-backend/internal/workspace"
)

type Config struct {
	HTTPAddr string

	DBDriver    string
	SQLitePath  string
	AutoMigrate bool

	// RedisAddr empty keeps change fan-out inside this process.
	RedisAddr    string
	RedisChannel string

	JWTSecretKey   string
	AccessTokenTTL time.Duration

	Workspace workspace.Config
	Dashboard dashboard.RefresherConfig

	SeedTutorials bool
	CORSOrigins   []string

	Otel observability.OtelConfig
}

func LoadConfig(log *logger.Logger) Config {
	accessTTLSeconds := envutil.Int("ACCESS_TOKEN_TTL", 86400, log)
	return Config{
		HTTPAddr: envutil.String("HTTP_ADDR", ":8080", log),

		DBDriver:    envutil.String("DB_DRIVER", "postgres", log),
		SQLitePath:  envutil.String("SQLITE_PATH", "smartassist.db", log),
		AutoMigrate: envutil.Bool("DB_AUTO_MIGRATE", true, log),

		RedisAddr:    envutil.String("REDIS_ADDR", "", log),
		RedisChannel: envutil.String("REDIS_CHANNEL", bus.DefaultChannel, log),

		JWTSecretKey:   envutil.String("JWT_SECRET_KEY", "defaultsecret", log),
		AccessTokenTTL: time.Duration(accessTTLSeconds) * time.Second,

		Workspace: workspace.Config{
			AutoSaveInterval:  envutil.Duration("AUTOSAVE_INTERVAL", 5*time.Second, log),
			HeartbeatInterval: envutil.Duration("HEARTBEAT_INTERVAL", 30*time.Second, log),
		},
		Dashboard: dashboard.RefresherConfig{
			Debounce:       envutil.Duration("DASHBOARD_DEBOUNCE", 500*time.Millisecond, log),
			PollInterval:   envutil.Duration("DASHBOARD_POLL_INTERVAL", 0, log),
			RebuildTimeout: envutil.Duration("DASHBOARD_REBUILD_TIMEOUT", 30*time.Second, log),
		},

		SeedTutorials: envutil.Bool("SEED_TUTORIALS", true, log),
		CORSOrigins:   envutil.List("CORS_ORIGINS", nil, log),

		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false, log),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "smartassist", log),
			Environment: envutil.String("APP_ENV", "development", log),
			Version:     envutil.String("APP_VERSION", "dev", log),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", "", log),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false, log),
			Headers:     observability.ParseHeaders(envutil.String("OTEL_EXPORTER_OTLP_HEADERS", "", log)),
			SampleRatio: envutil.Float("OTEL_TRACES_SAMPLER_ARG", 0.1, log),
		},
	}
}
