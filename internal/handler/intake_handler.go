package handler

import (
	"net/http"

	"go-gin-ticket-preview/internal/model"
	"go-gin-ticket-preview/internal/service"
	"go-gin-ticket-preview/pkg/notice"

	"github.com/gin-gonic/gin"
)

type IntakeHandler struct {
	service service.IntakeService
}

func NewIntakeHandler(service service.IntakeService) *IntakeHandler {
	return &IntakeHandler{service: service}
}

func (h *IntakeHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.POST("tickets", h.Submit)
	}
}

// Submit 送出票券表單，成功時回傳預覽的位置
func (h *IntakeHandler) Submit(c *gin.Context) {
	var form model.TicketForm
	if err := BindJson(c, &form); err != nil {
		return
	}

	rec := notice.NewRecorder()
	result, err := h.service.Submit(c, form, rec)
	if err != nil {
		handleError(c, err, "Submit", rec.Notices())
		return
	}

	location := "/api/v1/previews/" + result.PreviewID.String()
	c.Header("Location", location)
	c.JSON(http.StatusCreated, gin.H{
		"preview_id": result.PreviewID,
		"ticket_id":  result.TicketID,
		"route":      result.Route,
		"location":   location,
		"ticket":     result.Ticket,
	})
}
