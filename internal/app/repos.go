package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/certchain-backend/internal/data/repos"
	"github.com/yungbote/certchain-backend/internal/platform/logger"
)

type Repos struct {
	User          repos.UserRepo
	Topic         repos.TopicRepo
	Certification repos.CertificationRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:          repos.NewUserRepo(db, log),
		Topic:         repos.NewTopicRepo(db, log),
		Certification: repos.NewCertificationRepo(db, log),
	}
}
