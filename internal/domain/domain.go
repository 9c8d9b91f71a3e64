package domain

import (
	"github.com/yungbote/certchain-backend/internal/domain/certification"
	"github.com/yungbote/certchain-backend/internal/domain/learning"
	"github.com/yungbote/certchain-backend/internal/domain/user"
)

type (
	User          = user.User
	Topic         = learning.Topic
	Certification = certification.Certification
	CertStatus    = certification.Status
	Issuance      = certification.Issuance
	Document      = certification.Document
)

const (
	CertStatusPending    = certification.StatusPending
	CertStatusInProgress = certification.StatusInProgress
	CertStatusCompleted  = certification.StatusCompleted
)

// Models lists every persisted type in migration order.
func Models() []any {
	return []any{&User{}, &Topic{}, &Certification{}}
}
