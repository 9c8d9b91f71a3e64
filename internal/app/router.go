package app

import (
	"github.com/prometheus/client_golang/prometheus"

	httpserver "github.com/yungbote/certchain-backend/internal/http"
	"github.com/yungbote/certchain-backend/internal/observability"
	"github.com/yungbote/certchain-backend/internal/platform/logger"
)

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, metrics *observability.Metrics, gatherer prometheus.Gatherer) *httpserver.Server {
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return httpserver.NewServer(httpserver.RouterConfig{
		Log:                  log,
		ServiceName:          serviceName,
		CORSOrigins:          cfg.CORSOrigins,
		Metrics:              metrics,
		Gatherer:             gatherer,
		CertificationHandler: handlers.Certification,
		NFTHandler:           handlers.NFT,
		HealthHandler:        handlers.Health,
	})
}
