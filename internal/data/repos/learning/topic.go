package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/certchain-backend/internal/domain"
	"github.com/yungbote/certchain-backend/internal/platform/dbctx"
	"github.com/yungbote/certchain-backend/internal/platform/logger"
)

type TopicRepo interface {
	Create(dbc dbctx.Context, topics []*types.Topic) ([]*types.Topic, error)
	GetByIDs(dbc dbctx.Context, topicIDs []uuid.UUID) ([]*types.Topic, error)
}

type topicRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTopicRepo(db *gorm.DB, baseLog *logger.Logger) TopicRepo {
	return &topicRepo{db: db, log: baseLog.With("repo", "TopicRepo")}
}

func (r *topicRepo) Create(dbc dbctx.Context, topics []*types.Topic) ([]*types.Topic, error) {
	if len(topics) == 0 {
		return []*types.Topic{}, nil
	}
	if err := dbc.DB(r.db).Create(&topics).Error; err != nil {
		return nil, err
	}
	return topics, nil
}

func (r *topicRepo) GetByIDs(dbc dbctx.Context, topicIDs []uuid.UUID) ([]*types.Topic, error) {
	var out []*types.Topic
	if len(topicIDs) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("id IN ?", topicIDs).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
