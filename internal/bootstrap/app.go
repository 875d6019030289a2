package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"applygen-backend/internal/archive"
	"applygen-backend/internal/batches"
	"applygen-backend/internal/candidates"
	"applygen-backend/internal/catalog"
	"applygen-backend/internal/extract"
	"applygen-backend/internal/generation"
	"applygen-backend/internal/llm"
	"applygen-backend/internal/llm/gemini"
	"applygen-backend/internal/llm/openai"
	"applygen-backend/internal/queue"
	"applygen-backend/internal/services/health"
	"applygen-backend/internal/shared/auth"
	"applygen-backend/internal/shared/config"
	"applygen-backend/internal/shared/server"
	"applygen-backend/internal/shared/storage/db"
	"applygen-backend/internal/shared/storage/object"
	localstore "applygen-backend/internal/shared/storage/object/local"
	s3store "applygen-backend/internal/shared/storage/object/s3"
	"applygen-backend/internal/shared/telemetry"
	"applygen-backend/internal/workerproc"
	"applygen-backend/resume/render"
)

// App holds shared dependencies.
type App struct {
	Config         config.Config
	Catalog        *catalog.Catalog
	Router         *gin.Engine
	DB             *sql.DB
	Store          object.ObjectStore
	Queue          queue.Client
	LLM            llm.Client
	Renderer       *render.Renderer
	BatchService   *batches.Service
	BatchHandler   *batches.Handler
	ExtractHandler *extract.Handler
	Health         *health.Service
	Processor      workerproc.Processor
}

// Option adjusts Build for tests and tools.
type Option func(*buildOptions)

type buildOptions struct {
	llm llm.Client
}

// WithLLM replaces the provider client built from configuration.
func WithLLM(client llm.Client) Option {
	return func(o *buildOptions) {
		o.llm = client
	}
}

// Build prepares shared dependencies and the HTTP router.
func Build(cfg config.Config, opts ...Option) (*App, error) {
	var bo buildOptions
	for _, opt := range opts {
		opt(&bo)
	}
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	telemetry.Init(telemetry.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	ctx := context.Background()

	if err := cfg.ValidateInfra(); err != nil {
		return nil, err
	}
	secret, err := auth.Secret(cfg.Env, cfg.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrConfiguration, err)
	}

	cat, err := buildCatalog(cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queueClient, err := buildQueue(ctx, cfg)
	if err != nil {
		return nil, err
	}

	client, unavailable := bo.llm, error(nil)
	if client == nil {
		client, unavailable = buildLLM(ctx, cfg)
	}

	engine, err := render.NewEngine(cfg.RenderEngine, cfg.ChromePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrConfiguration, err)
	}
	renderer := render.NewRenderer(engine)

	app := &App{
		Config:   cfg,
		Catalog:  cat,
		DB:       sqlDB,
		Store:    store,
		Queue:    queueClient,
		LLM:      client,
		Renderer: renderer,
	}
	buildServices(app, unavailable)

	var pinger health.Pinger
	if sqlDB != nil {
		pinger = sqlDB
	}
	app.Health = health.NewService(pinger, unavailable)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:         cfg,
		JWTSecret:      string(secret),
		BatchHandler:   app.BatchHandler,
		ExtractHandler: app.ExtractHandler,
		Health:         app.Health,
	})

	return app, nil
}

func buildCatalog(cfg config.Config) (*catalog.Catalog, error) {
	if strings.TrimSpace(cfg.CatalogPath) == "" {
		return catalog.Default(), nil
	}
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrConfiguration, err)
	}
	return cat, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Info("bootstrap.memory_repo", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("%w: DATABASE_URL is required", config.ErrConfiguration)
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		sqlDB, err = db.Shared(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultLambdaOptions()))
	} else {
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	}
	if err == nil && !db.IsLambdaRuntime() {
		err = db.RunMigrations(ctx, sqlDB)
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_repo", map[string]any{"reason": "database unavailable", "error": err.Error()})
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context, cfg config.Config) (queue.Client, error) {
	if strings.TrimSpace(cfg.QueueURL) == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx, cfg.AWSRegion, cfg.QueueURL)
}

// buildLLM returns the provider client, or a placeholder plus the reason
// generation is unavailable.
func buildLLM(ctx context.Context, cfg config.Config) (llm.Client, error) {
	if err := cfg.ValidateLLM(); err != nil {
		telemetry.Warn("bootstrap.llm_unavailable", map[string]any{"error": err.Error()})
		return llm.PlaceholderClient{}, err
	}

	var (
		client llm.Client
		err    error
	)
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		client, err = gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.LLMModel)
	default:
		client, err = openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel)
	}
	if err != nil {
		telemetry.Warn("bootstrap.llm_unavailable", map[string]any{"error": err.Error()})
		return llm.PlaceholderClient{}, fmt.Errorf("%w: %v", config.ErrConfiguration, err)
	}
	if cfg.LLMRatePerMinute > 0 {
		client = llm.NewRateLimited(client, cfg.LLMRatePerMinute, cfg.BatchWorkers)
	}
	return client, nil
}

func buildServices(app *App, unavailable error) {
	cfg := app.Config

	var repo batches.Repo
	if app.DB != nil {
		repo = &batches.PGRepo{DB: app.DB}
	} else {
		repo = batches.NewMemoryRepo()
	}

	src := candidates.NewTimeSource()
	if cfg.RandomSeed != 0 {
		src = candidates.NewSource(cfg.RandomSeed)
	}

	gen := generation.NewGenerator(app.LLM, app.Catalog.Companies(), src)
	svc := &batches.Service{
		Repo:         repo,
		Store:        app.Store,
		Catalog:      app.Catalog,
		Orchestrator: batches.NewOrchestrator(app.Catalog, gen, src, batches.WithWorkers(cfg.BatchWorkers)),
		Packager:     archive.NewPackager(app.Renderer, archive.WithWorkers(cfg.BatchWorkers)),
		Responder:    generation.NewResponder(app.LLM),
		Unavailable:  unavailable,
	}
	if app.Queue != nil {
		svc.Queue = queue.NewEnqueuer(app.Queue)
	}

	app.BatchService = svc
	app.Processor = svc
	app.BatchHandler = batches.NewHandler(svc, app.Catalog)
	app.ExtractHandler = extract.NewHandler(app.Store)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
