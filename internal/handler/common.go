package handler

import (
	"errors"
	"net/http"
	"strconv"

	"go-gin-ticket-preview/internal/navigation"
	apperrors "go-gin-ticket-preview/pkg/app_errors"
	"go-gin-ticket-preview/pkg/logger"
	"go-gin-ticket-preview/pkg/notice"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func BindJson(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return err
	}
	return nil
}

// bindPreviewID 解析 :id，失敗時直接回應 400
func bindPreviewID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid preview id"})
		return uuid.Nil, false
	}
	return id, true
}

func bindCardIndex(c *gin.Context) (int, bool) {
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid card index"})
		return 0, false
	}
	return idx, true
}

// handleError 將 domain 錯誤轉成 HTTP 回應，notices 一併帶回給畫面顯示
func handleError(c *gin.Context, err error, operation string, notices []notice.Notice) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	body := gin.H{}
	if len(notices) > 0 {
		body["notices"] = notices
	}

	var ve *apperrors.ValidationError
	switch {
	case errors.As(err, &ve):
		log.Warn("Validation failed")
		body["error"] = ve.Message
		body["field"] = ve.Field
		c.JSON(http.StatusBadRequest, body)
	case errors.Is(err, apperrors.ErrNoTicketData):
		log.Warn("No ticket data")
		body["error"] = "No ticket data available"
		body["redirect"] = string(navigation.RouteHome)
		c.JSON(http.StatusNotFound, body)
	case errors.Is(err, apperrors.ErrPreviewNotFound):
		log.Warn("Preview not found")
		body["error"] = "Preview not found"
		c.JSON(http.StatusNotFound, body)
	case errors.Is(err, apperrors.ErrCardNotFound):
		log.Warn("Card not found")
		body["error"] = "Card not found"
		c.JSON(http.StatusNotFound, body)
	case errors.Is(err, apperrors.ErrTransferNotOpen):
		log.Warn("Transfer not open")
		body["error"] = "Transfer is not open"
		c.JSON(http.StatusConflict, body)
	case errors.Is(err, apperrors.ErrNothingSelected):
		log.Warn("Nothing selected")
		body["error"] = "Select at least one ticket"
		c.JSON(http.StatusConflict, body)
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid input")
		body["error"] = "Invalid input"
		c.JSON(http.StatusBadRequest, body)
	case errors.Is(err, apperrors.ErrPersistence):
		log.Error("Persistence failed")
		body["error"] = "Failed to create ticket. Please try again."
		c.JSON(http.StatusServiceUnavailable, body)
	default:
		log.Error("Unexpected error")
		body["error"] = "An unexpected error occurred. Please try again."
		c.JSON(http.StatusInternalServerError, body)
	}
}
