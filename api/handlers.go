package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"polycode/content-agent/core"
	"polycode/content-agent/services/content_service"
)

type handler struct {
	svc    *content_service.Service
	logger *slog.Logger
}

func (h *handler) fromFile(c *gin.Context) {
	var req core.FromFileRequest
	if !h.bind(c, &req) {
		return
	}
	opts, err := content_service.RunOptionsFrom(req.Model, req.ToolServers)
	if err != nil {
		h.fail(c, err)
		return
	}
	out, err := h.svc.FromFile(c.Request.Context(), req.InputTexts, req.UserPrompt, opts)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *handler) fromFileWithOutline(c *gin.Context) {
	var req core.FromFileWithOutlineRequest
	if !h.bind(c, &req) {
		return
	}
	opts, err := content_service.RunOptionsFrom(req.Model, req.ToolServers)
	if err != nil {
		h.fail(c, err)
		return
	}
	out, err := h.svc.FromFileWithOutline(c.Request.Context(), req.InputTexts, req.OutlinePrompt, req.ContentPrompt, opts)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *handler) createOutlineOnly(c *gin.Context) {
	var req core.CreateOutlineOnlyRequest
	if !h.bind(c, &req) {
		return
	}
	opts, err := content_service.RunOptionsFrom(req.Model, req.ToolServers)
	if err != nil {
		h.fail(c, err)
		return
	}
	out, err := h.svc.CreateOutlineOnly(c.Request.Context(), req.InputTexts, req.UserPrompt, opts)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *handler) fromWeb(c *gin.Context) {
	var req core.FromWebRequest
	if !h.bind(c, &req) {
		return
	}
	opts, err := content_service.RunOptionsFrom(req.Model, req.ToolServers)
	if err != nil {
		h.fail(c, err)
		return
	}
	out, err := h.svc.FromWeb(c.Request.Context(), req.SearchTerms, req.UserPrompt, opts)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *handler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.fail(c, core.NewValidationError("invalid request body", err))
		return false
	}
	return true
}
