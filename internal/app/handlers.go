package app

import (
	"context"

	"gorm.io/gorm"

	httpH "github.com/yungbote/certchain-backend/internal/http/handlers"
	"github.com/yungbote/certchain-backend/internal/modules/certification"
	"github.com/yungbote/certchain-backend/internal/platform/logger"
)

type Handlers struct {
	Certification *httpH.CertificationHandler
	NFT           *httpH.NFTHandler
	Health        *httpH.HealthHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, certs certification.Usecases) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Certification: httpH.NewCertificationHandler(certs),
		NFT:           httpH.NewNFTHandler(certs),
		Health:        httpH.NewHealthHandler(pingDB(db)),
	}
}

func pingDB(db *gorm.DB) httpH.Pinger {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}
