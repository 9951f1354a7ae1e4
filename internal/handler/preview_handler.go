package handler

import (
	"net/http"

	"go-gin-ticket-preview/internal/service"

	"github.com/gin-gonic/gin"
)

type PreviewHandler struct {
	service service.PreviewService
}

func NewPreviewHandler(service service.PreviewService) *PreviewHandler {
	return &PreviewHandler{service: service}
}

func (h *PreviewHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1/previews")
	{
		router.GET(":id", h.Get)
		router.DELETE(":id", h.Unmount)
		router.PUT(":id/viewport", h.Resize)
		router.POST(":id/goto", h.GoTo)
		router.POST(":id/scroll", h.ScrollSettled)
		router.POST(":id/cards/:index/image-error", h.ReportImageError)

		router.POST(":id/transfer", h.OpenTransfer)
		router.POST(":id/transfer/toggle", h.ToggleSeat)
		router.POST(":id/transfer/confirm", h.ConfirmTransfer)
		router.DELETE(":id/transfer", h.CancelTransfer)
	}
}

type ResizeRequest struct {
	Width float64 `json:"width" binding:"required,gt=0"`
}

type GoToRequest struct {
	Index *int `json:"index" binding:"required"`
}

type ScrollRequest struct {
	Offset *float64 `json:"offset" binding:"required"`
}

type ToggleSeatRequest struct {
	Seat string `json:"seat" binding:"required"`
}

func (h *PreviewHandler) Get(c *gin.Context) {
	id, ok := bindPreviewID(c)
	if !ok {
		return
	}
	resp, err := h.service.Get(c, id)
	if err != nil {
		handleError(c, err, "Get", nil)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PreviewHandler) Unmount(c *gin.Context) {
	id, ok := bindPreviewID(c)
	if !ok {
		return
	}
	if err := h.service.Unmount(c, id); err != nil {
		handleError(c, err, "Unmount", nil)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PreviewHandler) Resize(c *gin.Context) {
	id, ok := bindPreviewID(c)
	if !ok {
		return
	}
	var req ResizeRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	resp, err := h.service.Resize(c, id, req.Width)
	if err != nil {
		handleError(c, err, "Resize", nil)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PreviewHandler) GoTo(c *gin.Context) {
	id, ok := bindPreviewID(c)
	if !ok {
		return
	}
	var req GoToRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	resp, err := h.service.GoTo(c, id, *req.Index)
	if err != nil {
		handleError(c, err, "GoTo", nil)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PreviewHandler) ScrollSettled(c *gin.Context) {
	id, ok := bindPreviewID(c)
	if !ok {
		return
	}
	var req ScrollRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	resp, err := h.service.ScrollSettled(c, id, *req.Offset)
	if err != nil {
		handleError(c, err, "ScrollSettled", nil)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PreviewHandler) ReportImageError(c *gin.Context) {
	id, ok := bindPreviewID(c)
	if !ok {
		return
	}
	idx, ok := bindCardIndex(c)
	if !ok {
		return
	}
	resp, err := h.service.ReportImageError(c, id, idx)
	if err != nil {
		handleError(c, err, "ReportImageError", nil)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PreviewHandler) OpenTransfer(c *gin.Context) {
	id, ok := bindPreviewID(c)
	if !ok {
		return
	}
	resp, err := h.service.OpenTransfer(c, id)
	if err != nil {
		handleError(c, err, "OpenTransfer", nil)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PreviewHandler) ToggleSeat(c *gin.Context) {
	id, ok := bindPreviewID(c)
	if !ok {
		return
	}
	var req ToggleSeatRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	resp, err := h.service.ToggleSeat(c, id, req.Seat)
	if err != nil {
		handleError(c, err, "ToggleSeat", nil)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PreviewHandler) ConfirmTransfer(c *gin.Context) {
	id, ok := bindPreviewID(c)
	if !ok {
		return
	}
	result, err := h.service.ConfirmTransfer(c, id)
	if err != nil {
		handleError(c, err, "ConfirmTransfer", nil)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *PreviewHandler) CancelTransfer(c *gin.Context) {
	id, ok := bindPreviewID(c)
	if !ok {
		return
	}
	resp, err := h.service.CancelTransfer(c, id)
	if err != nil {
		handleError(c, err, "CancelTransfer", nil)
		return
	}
	c.JSON(http.StatusOK, resp)
}
