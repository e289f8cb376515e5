package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dthai91/edx-platform/internal/platform/apierr"
)

type APIError struct {
	Message     string              `json:"message"`
	Code        string              `json:"code,omitempty"`
	FieldErrors map[string][]string `json:"field_errors,omitempty"`
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

// RespondAPIError maps the four outcome kinds onto status codes. Backend
// detail stays in the logs; the caller gets an opaque message.
func RespondAPIError(c *gin.Context, err error) {
	ae := apierr.AsError(err)
	switch ae.Kind {
	case apierr.KindValidation:
		c.JSON(http.StatusBadRequest, ErrorEnvelope{
			Error: APIError{
				Message:     "invalid request",
				Code:        ae.Code,
				FieldErrors: ae.FieldErrors,
			},
		})
	case apierr.KindNotFound:
		RespondError(c, http.StatusNotFound, ae.Code, ae)
	case apierr.KindForbidden:
		RespondError(c, http.StatusForbidden, ae.Code, ae)
	default:
		status := http.StatusInternalServerError
		if ae.Timeout {
			status = http.StatusGatewayTimeout
		}
		c.JSON(status, ErrorEnvelope{
			Error: APIError{
				Message: "internal error",
				Code:    ae.Code,
			},
		})
	}
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
