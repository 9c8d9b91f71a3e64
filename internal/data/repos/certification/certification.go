package certification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/certchain-backend/internal/domain"
	"github.com/yungbote/certchain-backend/internal/platform/dbctx"
	"github.com/yungbote/certchain-backend/internal/platform/logger"
)

type CertificationRepo interface {
	Create(dbc dbctx.Context, cert *types.Certification) (*types.Certification, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Certification, error)
	GetByUserTopic(dbc dbctx.Context, userID, topicID uuid.UUID) (*types.Certification, error)
	List(dbc dbctx.Context) ([]*types.Certification, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Certification, error)
	ListByTopic(dbc dbctx.Context, topicID uuid.UUID) ([]*types.Certification, error)
	UpdateProgress(dbc dbctx.Context, id uuid.UUID, status types.CertStatus, pct int) error
	// SetImage stores a caller-provided image URL. It only writes when the
	// record has no image yet and reports whether a row changed.
	SetImage(dbc dbctx.Context, id uuid.UUID, status types.CertStatus, pct int, urlImage string) (bool, error)
	// CompleteIssuance writes the issuance columns together with the final
	// status. Same guard as SetImage.
	CompleteIssuance(dbc dbctx.Context, id uuid.UUID, status types.CertStatus, pct int, iss types.Issuance) (bool, error)
	Delete(dbc dbctx.Context, id uuid.UUID) (bool, error)
}

type certificationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCertificationRepo(db *gorm.DB, baseLog *logger.Logger) CertificationRepo {
	return &certificationRepo{db: db, log: baseLog.With("repo", "CertificationRepo")}
}

const notIssued = "(url_image IS NULL OR url_image = '')"

func (r *certificationRepo) Create(dbc dbctx.Context, cert *types.Certification) (*types.Certification, error) {
	if cert == nil {
		return nil, nil
	}
	if err := dbc.DB(r.db).Create(cert).Error; err != nil {
		return nil, err
	}
	return cert, nil
}

func (r *certificationRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Certification, error) {
	var rows []*types.Certification
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *certificationRepo) GetByUserTopic(dbc dbctx.Context, userID, topicID uuid.UUID) (*types.Certification, error) {
	var rows []*types.Certification
	if err := dbc.DB(r.db).
		Where("user_id = ? AND topic_id = ?", userID, topicID).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *certificationRepo) List(dbc dbctx.Context) ([]*types.Certification, error) {
	var out []*types.Certification
	err := dbc.DB(r.db).Order("created_at DESC").Find(&out).Error
	return out, err
}

func (r *certificationRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Certification, error) {
	var out []*types.Certification
	err := dbc.DB(r.db).Where("user_id = ?", userID).Order("created_at DESC").Find(&out).Error
	return out, err
}

func (r *certificationRepo) ListByTopic(dbc dbctx.Context, topicID uuid.UUID) ([]*types.Certification, error) {
	var out []*types.Certification
	err := dbc.DB(r.db).Where("topic_id = ?", topicID).Order("created_at DESC").Find(&out).Error
	return out, err
}

func (r *certificationRepo) UpdateProgress(dbc dbctx.Context, id uuid.UUID, status types.CertStatus, pct int) error {
	return dbc.DB(r.db).
		Model(&types.Certification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":              status,
			"progress_percentage": pct,
			"updated_at":          time.Now().UTC(),
		}).Error
}

func (r *certificationRepo) SetImage(dbc dbctx.Context, id uuid.UUID, status types.CertStatus, pct int, urlImage string) (bool, error) {
	res := dbc.DB(r.db).
		Model(&types.Certification{}).
		Where("id = ?", id).
		Where(notIssued).
		Updates(map[string]interface{}{
			"status":              status,
			"progress_percentage": pct,
			"url_image":           urlImage,
			"updated_at":          time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *certificationRepo) CompleteIssuance(dbc dbctx.Context, id uuid.UUID, status types.CertStatus, pct int, iss types.Issuance) (bool, error) {
	issuedAt := iss.IssuedAt.UTC()
	res := dbc.DB(r.db).
		Model(&types.Certification{}).
		Where("id = ?", id).
		Where(notIssued).
		Updates(map[string]interface{}{
			"status":              status,
			"progress_percentage": pct,
			"url_image":           iss.URLImage,
			"token_uri":           iss.TokenURI,
			"token_id":            iss.TokenID,
			"tx_hash":             iss.TxHash,
			"contract_address":    iss.ContractAddress,
			"metadata":            iss.Metadata,
			"issued_at":           issuedAt,
			"updated_at":          time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *certificationRepo) Delete(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	res := dbc.DB(r.db).Where("id = ?", id).Delete(&types.Certification{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
