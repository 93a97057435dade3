package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"polycode/content-agent/core"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StatusFor maps an error to its HTTP status and error code.
func StatusFor(err error) (int, string) {
	var e *core.Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError, "internal_error"
	}
	switch e.Kind {
	case core.KindValidation, core.KindParse, core.KindUnsupportedFileType, core.KindConfig:
		return http.StatusBadRequest, string(e.Kind)
	case core.KindSchemaValidation:
		return http.StatusBadGateway, string(e.Kind)
	case core.KindAgent:
		if errors.Is(err, context.DeadlineExceeded) {
			return http.StatusGatewayTimeout, string(e.Kind)
		}
		return http.StatusBadGateway, string(e.Kind)
	}
	return http.StatusInternalServerError, "internal_error"
}

func (h *handler) fail(c *gin.Context, err error) {
	status, code := StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "path", c.FullPath(), "request_id", c.GetString(requestIDKey), "error", err)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": errorBody{Code: code, Message: err.Error()}})
}
