package certification

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

func ParseStatus(s string) (Status, bool) {
	switch Status(strings.TrimSpace(s)) {
	case StatusPending:
		return StatusPending, true
	case StatusInProgress:
		return StatusInProgress, true
	case StatusCompleted:
		return StatusCompleted, true
	}
	return "", false
}

// StatusForProgress derives a status when the caller did not pass one.
func StatusForProgress(pct int) Status {
	switch {
	case pct >= 100:
		return StatusCompleted
	case pct <= 0:
		return StatusPending
	default:
		return StatusInProgress
	}
}

// Certification tracks one user's progress on one topic. Once URLImage is
// set the record is issued and the issuance columns never change again.
type Certification struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_certification_user_topic" json:"userId"`
	TopicID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_certification_user_topic" json:"topicId"`

	Status             Status `gorm:"column:status;not null;default:'pending'" json:"status"`
	ProgressPercentage int    `gorm:"column:progress_percentage;not null;default:0" json:"progressPercentage"`

	URLImage        *string        `gorm:"column:url_image" json:"urlImage,omitempty"`
	TokenURI        *string        `gorm:"column:token_uri" json:"tokenUri,omitempty"`
	TokenID         *string        `gorm:"column:token_id" json:"tokenId,omitempty"`
	TxHash          *string        `gorm:"column:tx_hash" json:"txHash,omitempty"`
	ContractAddress *string        `gorm:"column:contract_address" json:"contractAddress,omitempty"`
	Metadata        datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`
	IssuedAt        *time.Time     `gorm:"column:issued_at" json:"issuedAt,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Certification) TableName() string { return "certifications" }

func (c *Certification) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = StatusPending
	}
	return nil
}

// Issued reports whether a certificate image has already been recorded.
func (c *Certification) Issued() bool {
	return c != nil && c.URLImage != nil && strings.TrimSpace(*c.URLImage) != ""
}

// Issuance is the set of columns written exactly once when a certificate
// is issued.
type Issuance struct {
	URLImage        string
	TokenURI        string
	TokenID         string
	TxHash          string
	ContractAddress string
	Metadata        datatypes.JSON
	IssuedAt        time.Time
}
