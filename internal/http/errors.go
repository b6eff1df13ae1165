package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pabloleguizamon/dragon-challenge/internal/service"
)

type errorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func mapErrorToStatus(code string) int {
	switch code {
	case service.CodeValidationFailed:
		return http.StatusBadRequest
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeConflict, service.CodeInsufficientStock, service.CodeInvalidTransition:
		return http.StatusConflict
	case service.CodeUnauthorized, service.CodeUnauthenticated:
		return http.StatusUnauthorized
	case service.CodeForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) abort(c *gin.Context, err error) {
	code := service.Code(err)
	resp := errorResponse{Error: err.Error(), Code: code, Details: service.Details(err)}
	if code == service.CodeInternal {
		s.log.ErrorContext(c.Request.Context(), "request failed", "path", c.FullPath(), "err", err)
		resp.Error = "internal error"
	}
	c.AbortWithStatusJSON(mapErrorToStatus(code), resp)
}

func badJSON(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{
		Error: "invalid json: " + err.Error(),
		Code:  service.CodeValidationFailed,
	})
}
