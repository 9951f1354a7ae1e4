package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrTicketNotFound   = errors.New("ticket not found")
	ErrPersistence      = errors.New("failed to persist ticket")
	ErrUnexpected       = errors.New("unexpected error")
	ErrPreviewNotFound  = errors.New("preview not found")
	ErrNoTicketData     = errors.New("no ticket data available")
	ErrTransferNotOpen  = errors.New("transfer selection is not open")
	ErrNothingSelected  = errors.New("no seats selected")
	ErrCardNotFound     = errors.New("card not found")
	ErrRouteUnavailable = errors.New("navigation route unavailable")
)

// ValidationError 表單驗證失敗，Message 直接顯示給使用者
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation: %s", e.Message)
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation 判斷錯誤鏈中是否含有 ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
