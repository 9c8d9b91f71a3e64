package repos

import (
	"github.com/yungbote/certchain-backend/internal/data/repos/certification"
	"github.com/yungbote/certchain-backend/internal/data/repos/learning"
	"github.com/yungbote/certchain-backend/internal/data/repos/user"
	"github.com/yungbote/certchain-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type UserRepo = user.UserRepo
type TopicRepo = learning.TopicRepo
type CertificationRepo = certification.CertificationRepo

func NewUserRepo(db *gorm.DB, log *logger.Logger) UserRepo { return user.NewUserRepo(db, log) }

func NewTopicRepo(db *gorm.DB, log *logger.Logger) TopicRepo { return learning.NewTopicRepo(db, log) }

func NewCertificationRepo(db *gorm.DB, log *logger.Logger) CertificationRepo {
	return certification.NewCertificationRepo(db, log)
}
