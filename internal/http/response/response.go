package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/certchain-backend/internal/domain/faults"
	"github.com/yungbote/certchain-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Stage   string `json:"stage,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// StatusFor maps a fault code onto an HTTP status.
func StatusFor(code faults.Code) int {
	switch code {
	case faults.CodeValidation:
		return http.StatusBadRequest
	case faults.CodeNotFound:
		return http.StatusNotFound
	case faults.CodeConflict:
		return http.StatusConflict
	case faults.CodeRenderingUnavailable, faults.CodeStorageUnavailable, faults.CodeChainUnavailable:
		return http.StatusServiceUnavailable
	case faults.CodeChainRejected:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// RespondFault writes err as an error envelope. Infrastructure faults only
// expose their code and failing stage; the cause is attached to the gin
// context for the request logger.
func RespondFault(c *gin.Context, err error) {
	var ae *apierr.Error
	if errors.As(err, &ae) {
		RespondError(c, ae.Status, ae.Code, ae.Err)
		return
	}

	code := faults.CodeOf(err)
	if code == "" {
		code = faults.CodeInternal
	}
	_ = c.Error(err)

	body := APIError{Code: string(code)}
	if code.Infrastructure() {
		body.Stage = faults.OpOf(err)
		body.Message = infrastructureMessage(code)
	} else {
		var fe *faults.Error
		if errors.As(err, &fe) && fe.Message != "" {
			body.Message = fe.Message
		} else {
			body.Message = string(code)
		}
	}
	c.JSON(StatusFor(code), ErrorEnvelope{Error: body})
}

func infrastructureMessage(code faults.Code) string {
	switch code {
	case faults.CodeRenderingUnavailable:
		return "certificate rendering is unavailable"
	case faults.CodeStorageUnavailable:
		return "content storage is unavailable"
	case faults.CodeChainUnavailable:
		return "blockchain node is unavailable"
	case faults.CodeChainRejected:
		return "mint transaction was rejected"
	default:
		return "internal error"
	}
}
