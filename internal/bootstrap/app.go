package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"resume-tailor/internal/jobfetch"
	"resume-tailor/internal/llm/failover"
	"resume-tailor/internal/llm/providers"
	"resume-tailor/internal/services/health"
	"resume-tailor/internal/sessions"
	"resume-tailor/internal/shared/config"
	"resume-tailor/internal/shared/server"
	"resume-tailor/internal/shared/storage/db"
	"resume-tailor/internal/shared/storage/object"
	localstore "resume-tailor/internal/shared/storage/object/local"
	s3store "resume-tailor/internal/shared/storage/object/s3"
	"resume-tailor/internal/shared/telemetry"
	"resume-tailor/internal/tailoring"
	"resume-tailor/resume/model"
)

const jobFetchTimeout = 20 * time.Second

// App holds shared dependencies.
type App struct {
	Config          config.Config
	Router          *gin.Engine
	DB              *sql.DB
	Redis           *redis.Client
	Store           object.Store
	Facts           model.StaticResumeFacts
	LLM             *failover.Orchestrator
	Tailor          *tailoring.Service
	SessionsRepo    sessions.Repo
	Sessions        *sessions.Service
	SessionsHandler *sessions.Handler
	Health          *health.Service
}

// Build prepares every dependency and the router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	telemetry.Configure(os.Stdout, cfg.LogLevel)

	app, err := BuildPipeline(cfg)
	if err != nil {
		return nil, err
	}
	app.Health = health.NewService(2 * time.Second)

	if err := app.buildRepo(ctx); err != nil {
		app.Close()
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Store = store

	app.Sessions = &sessions.Service{
		Repo:      app.SessionsRepo,
		Tailor:    app.Tailor,
		Store:     app.Store,
		Jobs:      jobfetch.New(jobFetchTimeout),
		Providers: app.LLM.Len(),
	}
	app.SessionsHandler = sessions.NewHandler(app.Sessions)
	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		SessionsHandler: app.SessionsHandler,
		Health:          app.Health,
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":           cfg.Env,
		"session_store": cfg.SessionStore,
		"object_store":  cfg.ObjectStoreType,
		"providers":     app.LLM.Len(),
		"employers":     len(app.Facts.Employers),
	})
	return app, nil
}

// BuildPipeline loads the profile and the provider chain. The CLI uses it
// directly when no HTTP surface or session store is needed.
func BuildPipeline(cfg config.Config) (*App, error) {
	facts, err := model.LoadFacts(cfg.ProfilePath)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	orch := failover.New(providers.Default(cfg.Providers, cfg.LLMTimeout)...)
	return &App{
		Config: cfg,
		Facts:  facts,
		LLM:    orch,
		Tailor: tailoring.NewService(orch, facts),
	}, nil
}

// Close releases database and cache connections.
func (a *App) Close() error {
	var errs []error
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	return errors.Join(errs...)
}

func (a *App) buildRepo(ctx context.Context) error {
	cfg := a.Config
	switch cfg.SessionStore {
	case "postgres":
		sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
		if err == nil {
			err = db.RunMigrations(ctx, sqlDB)
			if err != nil {
				sqlDB.Close()
			}
		}
		if err != nil {
			return a.memoryFallback("postgres", err)
		}
		a.DB = sqlDB
		a.SessionsRepo = &sessions.PGRepo{DB: sqlDB}
		a.Health.Register("postgres", sqlDB.PingContext)
	case "redis":
		client, err := sessions.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			return a.memoryFallback("redis", err)
		}
		a.Redis = client
		a.SessionsRepo = sessions.NewRedisRepo(client, cfg.SessionTTL)
		a.Health.Register("redis", func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
	default:
		a.SessionsRepo = sessions.NewMemoryRepo()
	}
	return nil
}

// memoryFallback keeps dev environments running without their backing
// store; anywhere else the error is fatal.
func (a *App) memoryFallback(store string, err error) error {
	if !isDevLike(a.Config.Env) {
		return fmt.Errorf("%s session store: %w", store, err)
	}
	telemetry.Warn("bootstrap.store.fallback", map[string]any{"store": store, "err": err})
	a.SessionsRepo = sessions.NewMemoryRepo()
	return nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.Store, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, s3store.Options{
			Region:   cfg.AWSRegion,
			Bucket:   cfg.S3Bucket,
			Prefix:   cfg.S3Prefix,
			Endpoint: cfg.S3Endpoint,
		})
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
