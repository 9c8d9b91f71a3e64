package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/certchain-backend/internal/domain"
	"github.com/yungbote/certchain-backend/internal/http/response"
	"github.com/yungbote/certchain-backend/internal/modules/certification"
	"github.com/yungbote/certchain-backend/internal/platform/apierr"
)

// CertificationUsecases is implemented by certification.Usecases.
type CertificationUsecases interface {
	Create(ctx context.Context, in certification.CreateInput) (*types.Certification, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Certification, error)
	List(ctx context.Context) ([]*types.Certification, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*types.Certification, error)
	ListByTopic(ctx context.Context, topicID uuid.UUID) ([]*types.Certification, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateProgress(ctx context.Context, in certification.UpdateProgressInput) (*types.Certification, error)
	RenderHTML(recipient, topic string) string
	MintCertificateNft(ctx context.Context, to, recipient, topic string) (certification.MintOutput, error)
	MintCertificateNftDefault(ctx context.Context, recipient, topic string) (certification.DefaultMintOutput, error)
}

type CertificationHandler struct {
	certs CertificationUsecases
}

func NewCertificationHandler(certs CertificationUsecases) *CertificationHandler {
	return &CertificationHandler{certs: certs}
}

type createCertificationRequest struct {
	UserID             string `json:"userId"`
	TopicID            string `json:"topicId"`
	ProgressPercentage int    `json:"progressPercentage"`
	Status             string `json:"status"`
	URLImage           string `json:"urlImage"`
}

// POST /api/certifications
func (h *CertificationHandler) Create(c *gin.Context) {
	var req createCertificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondFault(c, apierr.InvalidBody(err))
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		response.RespondFault(c, apierr.InvalidID("user_id", err))
		return
	}
	topicID, err := uuid.Parse(req.TopicID)
	if err != nil {
		response.RespondFault(c, apierr.InvalidID("topic_id", err))
		return
	}
	cert, err := h.certs.Create(c.Request.Context(), certification.CreateInput{
		UserID:             userID,
		TopicID:            topicID,
		ProgressPercentage: req.ProgressPercentage,
		Status:             req.Status,
		URLImage:           req.URLImage,
	})
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	c.JSON(http.StatusCreated, cert)
}

// GET /api/certifications
func (h *CertificationHandler) List(c *gin.Context) {
	out, err := h.certs.List(c.Request.Context())
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	response.RespondOK(c, nonNil(out))
}

// GET /api/certifications/by-user/:userId
func (h *CertificationHandler) ListByUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.RespondFault(c, apierr.InvalidID("user_id", err))
		return
	}
	out, err := h.certs.ListByUser(c.Request.Context(), userID)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	response.RespondOK(c, nonNil(out))
}

// GET /api/certifications/by-topic/:topicId
func (h *CertificationHandler) ListByTopic(c *gin.Context) {
	topicID, err := uuid.Parse(c.Param("topicId"))
	if err != nil {
		response.RespondFault(c, apierr.InvalidID("topic_id", err))
		return
	}
	out, err := h.certs.ListByTopic(c.Request.Context(), topicID)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	response.RespondOK(c, nonNil(out))
}

// GET /api/certifications/:id
func (h *CertificationHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondFault(c, apierr.InvalidID("certification_id", err))
		return
	}
	cert, err := h.certs.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	response.RespondOK(c, cert)
}

// DELETE /api/certifications/:id
func (h *CertificationHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondFault(c, apierr.InvalidID("certification_id", err))
		return
	}
	if err := h.certs.Delete(c.Request.Context(), id); err != nil {
		response.RespondFault(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "Certification deleted"})
}

type updateProgressRequest struct {
	ProgressPercentage *int    `json:"progressPercentage"`
	Status             string  `json:"status"`
	URLImage           *string `json:"urlImage"`
}

// PATCH /api/certifications/:id/progress
func (h *CertificationHandler) UpdateProgress(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondFault(c, apierr.InvalidID("certification_id", err))
		return
	}
	var req updateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondFault(c, apierr.InvalidBody(err))
		return
	}
	if req.ProgressPercentage == nil {
		response.RespondFault(c, apierr.MissingField("progressPercentage"))
		return
	}
	cert, err := h.certs.UpdateProgress(c.Request.Context(), certification.UpdateProgressInput{
		ID:                 id,
		ProgressPercentage: *req.ProgressPercentage,
		Status:             req.Status,
		URLImage:           req.URLImage,
	})
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	response.RespondOK(c, cert)
}

// GET /api/certifications/certificate?name=&topic=
func (h *CertificationHandler) Certificate(c *gin.Context) {
	html := h.certs.RenderHTML(c.Query("name"), c.Query("topic"))
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

type mintCertificateRequest struct {
	To    string `json:"to"`
	Name  string `json:"name"`
	Topic string `json:"topic"`
}

// POST /api/certifications/certificate/mint
func (h *CertificationHandler) MintCertificate(c *gin.Context) {
	var req mintCertificateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondFault(c, apierr.InvalidBody(err))
		return
	}
	out, err := h.certs.MintCertificateNft(c.Request.Context(), req.To, req.Name, req.Topic)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

// POST /api/certifications/certificate/mint-simple
func (h *CertificationHandler) MintCertificateDefault(c *gin.Context) {
	var req mintCertificateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondFault(c, apierr.InvalidBody(err))
		return
	}
	out, err := h.certs.MintCertificateNftDefault(c.Request.Context(), req.Name, req.Topic)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func nonNil(in []*types.Certification) []*types.Certification {
	if in == nil {
		return []*types.Certification{}
	}
	return in
}
