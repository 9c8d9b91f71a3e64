package app

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"

	"github.com/yungbote/certchain-backend/internal/data/aggregates"
	"github.com/yungbote/certchain-backend/internal/data/db"
	httpserver "github.com/yungbote/certchain-backend/internal/http"
	"github.com/yungbote/certchain-backend/internal/modules/certification"
	"github.com/yungbote/certchain-backend/internal/modules/certification/document"
	"github.com/yungbote/certchain-backend/internal/observability"
	"github.com/yungbote/certchain-backend/internal/platform/logger"
)

type App struct {
	Log          *logger.Logger
	DB           *gorm.DB
	Cfg          Config
	Repos        Repos
	Clients      Clients
	Certs        certification.Usecases
	Server       *httpserver.Server
	dbService    *db.Service
	otelShutdown func(context.Context) error
}

// NewLogger builds the process logger from the loaded config.
func NewLogger(cfg Config) (*logger.Logger, error) {
	log, err := logger.NewWithOptions(logger.Options{
		Mode:             cfg.LogMode,
		Level:            cfg.LogLevel,
		DisableRedaction: !cfg.LogRedact,
		HashSalt:         cfg.LogHashSalt,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

// NewRenderer loads the certificate copy, honoring the YAML override.
func NewRenderer(cfg Config, log *logger.Logger) *document.Renderer {
	return document.NewRenderer(document.LoadCopy(cfg.TemplateYAML, log))
}

func New(ctx context.Context) (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	log, err := NewLogger(cfg)
	if err != nil {
		return nil, err
	}

	a := &App{Log: log, Cfg: cfg}
	a.otelShutdown = observability.InitOTel(ctx, log, cfg.Otel)

	dbService, err := db.Open(cfg.DatabaseDriver, cfg.DSN(), log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init database: %w", err)
	}
	a.dbService = dbService
	a.DB = dbService.DB()
	if err := db.AutoMigrateAll(a.DB); err != nil {
		a.Close()
		return nil, fmt.Errorf("database automigrate: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(reg)

	a.Repos = wireRepos(a.DB, log)

	clients, err := wireClients(ctx, log, cfg, metrics)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Clients = clients

	a.Certs = certification.New(certification.UsecasesDeps{
		Log:        log,
		Metrics:    metrics,
		Tx:         aggregates.NewGormTxRunner(a.DB),
		Users:      a.Repos.User,
		Topics:     a.Repos.Topic,
		Certs:      a.Repos.Certification,
		Renderer:   NewRenderer(cfg, log),
		Compositor: clients.Compositor,
		Store:      clients.Store,
		Minter:     clients.Minter,
		Locks:      clients.Locks,
		LockTTL:    cfg.IssuanceLockTTL,
		Timeouts: certification.StageTimeouts{
			Render: cfg.RenderTimeout,
			Store:  cfg.StoreTimeout,
		},
		DefaultMintTo: cfg.DefaultMintTo,
		Explorer: certification.Explorer{
			TokenBase: cfg.ExplorerToken,
			TxBase:    cfg.ExplorerTx,
		},
	})

	handlers := wireHandlers(log, a.DB, a.Certs)
	a.Server = wireServer(log, cfg, handlers, metrics, reg)
	return a, nil
}

func (a *App) Run() error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	addr := ":" + a.Cfg.Port
	a.Log.Info("Serving", "addr", addr)
	return a.Server.Run(addr)
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (a *App) Shutdown(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return nil
	}
	return a.Server.Shutdown(ctx)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	a.Clients.Close()
	if a.dbService != nil {
		if err := a.dbService.Close(); err != nil {
			a.Log.Warn("database close failed", "error", err)
		}
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	a.Log.Sync()
}
