package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"career-backend/internal/advisor"
	"career-backend/internal/careers"
	"career-backend/internal/llm"
	"career-backend/internal/llm/gemini"
	"career-backend/internal/llm/openai"
	"career-backend/internal/services/health"
	"career-backend/internal/shared/config"
	"career-backend/internal/shared/server"
	"career-backend/internal/shared/storage/db"
	"career-backend/internal/shared/telemetry"
	"career-backend/internal/usage"
)

// App holds shared dependencies.
type App struct {
	Config         config.Config
	Router         *gin.Engine
	DB             *sql.DB
	Completer      llm.Completer
	Model          string
	Pipeline       *advisor.Pipeline
	UsageService   *usage.Service
	CareersHandler *careers.Handler
	Health         *health.Service
}

// Build validates configuration and wires every dependency. A missing backend
// credential is reported as an advisor configuration error.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if err := cfg.Validate(); err != nil {
		return nil, advisor.NewConfigurationError(err)
	}

	completer, model, err := BuildCompleter(ctx, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:    cfg,
		DB:        sqlDB,
		Completer: completer,
		Model:     model,
	}
	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:         app.Config,
		CareersHandler: app.CareersHandler,
		Health:         app.Health,
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":         cfg.Env,
		"provider":    cfg.LLMProvider,
		"model":       model,
		"timeout":     cfg.RequestTimeout.String(),
		"daily_limit": cfg.DailyAnalysisLimit,
		"database":    sqlDB != nil,
	})
	return app, nil
}

// BuildCompleter constructs the configured completion backend and resolves the model name.
func BuildCompleter(ctx context.Context, cfg config.Config) (llm.Completer, string, error) {
	httpClient := &http.Client{}
	switch cfg.LLMProvider {
	case "gemini":
		model := cfg.LLMModel
		if model == "" {
			model = gemini.DefaultModel
		}
		client, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:     cfg.LLMAPIKey,
			BaseURL:    cfg.LLMBaseURL,
			HTTPClient: httpClient,
		})
		if err != nil {
			return nil, "", advisor.NewConfigurationError(err)
		}
		return client, model, nil
	default:
		model := cfg.LLMModel
		if model == "" {
			model = openai.DefaultModel
		}
		client, err := openai.NewClient(cfg.LLMAPIKey, openai.WithBaseURL(cfg.LLMBaseURL), openai.WithHTTPClient(httpClient))
		if err != nil {
			return nil, "", advisor.NewConfigurationError(err)
		}
		return client, model, nil
	}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" || cfg.DailyAnalysisLimit <= 0 {
		return nil, nil
	}

	var (
		sqlDB *sql.DB
		err   error
		role  = db.CurrentRole()
		opts  = db.OptionsFor(role, PoolOptions(cfg.DBPool))
	)
	if role == db.RoleLambda {
		sqlDB, err = db.Shared(ctx, cfg.DatabaseURL, opts)
	} else {
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, opts)
		if err == nil {
			err = db.RunMigrations(ctx, sqlDB)
		}
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.database_fallback", map[string]any{"error": err})
			return nil, nil
		}
		return nil, fmt.Errorf("usage database: %w", err)
	}
	return sqlDB, nil
}

// PoolOptions converts configured pool overrides into db.Options.
func PoolOptions(p config.DBPool) db.Options {
	return db.Options{
		MaxOpenConns:    p.MaxOpenConns,
		MaxIdleConns:    p.MaxIdleConns,
		ConnMaxLifetime: p.ConnMaxLifetime,
		PingTimeout:     p.PingTimeout,
	}
}

func buildServices(app *App) {
	app.Pipeline = advisor.NewPipeline(&advisor.Gateway{
		Completer: app.Completer,
		Model:     app.Model,
		Timeout:   app.Config.RequestTimeout,
	})

	if app.DB != nil {
		app.UsageService = usage.NewPostgresService(usage.NewPGStore(app.DB), app.Config.DailyAnalysisLimit)
	} else {
		app.UsageService = usage.NewService(app.Config.DailyAnalysisLimit)
	}

	app.CareersHandler = careers.NewHandler(app.Pipeline, app.UsageService)
	app.Health = health.NewService(app.DB, app.Config.LLMProvider, app.Model)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
