package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/certchain-backend/internal/http/response"
	"github.com/yungbote/certchain-backend/internal/modules/certification"
	"github.com/yungbote/certchain-backend/internal/modules/certification/document"
	"github.com/yungbote/certchain-backend/internal/modules/nft"
	"github.com/yungbote/certchain-backend/internal/platform/apierr"
)

type NFTUsecases interface {
	MintRaw(ctx context.Context, to, tokenURI string) (nft.Result, error)
	MintWithMetadata(ctx context.Context, to string, req document.FreeformRequest) (certification.MetadataMintOutput, error)
}

type NFTHandler struct {
	nfts NFTUsecases
}

func NewNFTHandler(nfts NFTUsecases) *NFTHandler {
	return &NFTHandler{nfts: nfts}
}

type mintRequest struct {
	To       string `json:"to"`
	TokenURI string `json:"tokenURI"`
}

// POST /api/nft/mint
func (h *NFTHandler) Mint(c *gin.Context) {
	var req mintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondFault(c, apierr.InvalidBody(err))
		return
	}
	out, err := h.nfts.MintRaw(c.Request.Context(), req.To, req.TokenURI)
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

type mintCertificateMetadataRequest struct {
	To            string               `json:"to"`
	RecipientName string               `json:"recipientName"`
	CourseName    string               `json:"courseName"`
	IssuedAt      string               `json:"issuedAt"`
	Image         string               `json:"image"`
	Description   string               `json:"description"`
	Attributes    []document.Attribute `json:"attributes"`
}

// POST /api/nft/mint-certificate
func (h *NFTHandler) MintCertificate(c *gin.Context) {
	var req mintCertificateMetadataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondFault(c, apierr.InvalidBody(err))
		return
	}
	out, err := h.nfts.MintWithMetadata(c.Request.Context(), req.To, document.FreeformRequest{
		RecipientName: req.RecipientName,
		CourseName:    req.CourseName,
		IssuedAt:      req.IssuedAt,
		Image:         req.Image,
		Description:   req.Description,
		Attributes:    req.Attributes,
	})
	if err != nil {
		response.RespondFault(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}
