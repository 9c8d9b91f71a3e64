package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/certchain-backend/internal/http/handlers"
	httpMW "github.com/yungbote/certchain-backend/internal/http/middleware"
	"github.com/yungbote/certchain-backend/internal/observability"
	"github.com/yungbote/certchain-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string

	Metrics  *observability.Metrics
	Gatherer prometheus.Gatherer

	CertificationHandler *httpH.CertificationHandler
	NFTHandler           *httpH.NFTHandler
	HealthHandler        *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics, "/metrics"))
	r.Use(httpMW.CORS(cfg.CORSOrigins...))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api")
	{
		// Certifications
		if h := cfg.CertificationHandler; h != nil {
			certs := api.Group("/certifications")
			certs.POST("", h.Create)
			certs.GET("", h.List)
			certs.GET("/by-user/:userId", h.ListByUser)
			certs.GET("/by-topic/:topicId", h.ListByTopic)
			certs.GET("/certificate", h.Certificate)
			certs.POST("/certificate/mint", h.MintCertificate)
			certs.POST("/certificate/mint-simple", h.MintCertificateDefault)
			certs.GET("/:id", h.Get)
			certs.PATCH("/:id/progress", h.UpdateProgress)
			certs.DELETE("/:id", h.Delete)
		}

		// NFT
		if h := cfg.NFTHandler; h != nil {
			api.POST("/nft/mint", h.Mint)
			api.POST("/nft/mint-certificate", h.MintCertificate)
		}
	}

	return r
}
