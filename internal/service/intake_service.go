package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"go-gin-ticket-preview/internal/metrics"
	"go-gin-ticket-preview/internal/model"
	"go-gin-ticket-preview/internal/navigation"
	"go-gin-ticket-preview/internal/repository"
	"go-gin-ticket-preview/internal/seat"
	apperrors "go-gin-ticket-preview/pkg/app_errors"
	"go-gin-ticket-preview/pkg/logger"
	"go-gin-ticket-preview/pkg/notice"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DateTimeLayout 對應表單日期格式 "EEE, MMM d h:mm a"
	DateTimeLayout  = "Mon, Jan 2 3:04 PM"
	DateTimeExample = "Mon, Feb 03 7:30 PM"

	msgDateRequired  = "Date and time is required"
	msgDateFormat    = "Please enter date in format: " + DateTimeExample
	msgPersistFailed = "Failed to create ticket. Please try again."
	msgUnexpected    = "An unexpected error occurred. Please try again."
)

// 表單欄位在畫面上的名稱
var fieldLabels = map[string]string{
	"sec":   "SEC",
	"row":   "ROW",
	"sit":   "SEAT",
	"title": "Title",
	"venue": "Venue",
}

type SubmitResult struct {
	PreviewID uuid.UUID              `json:"preview_id"`
	Route     navigation.Route       `json:"route"`
	Ticket    model.TicketDescriptor `json:"ticket"`
	TicketID  uuid.UUID              `json:"ticket_id"`
}

type IntakeService interface {
	// 驗證表單、寫入票券，成功後導向預覽畫面
	Submit(ctx context.Context, form model.TicketForm, notifier notice.Notifier) (*SubmitResult, error)
	// 只做驗證與正規化，不寫入也不導覽
	Normalize(form model.TicketForm) (model.TicketDescriptor, error)
}

type IntakeServiceImpl struct {
	repo      repository.TicketRepository
	navigator navigation.Navigator
	validate  *validator.Validate
	location  *time.Location
	now       func() time.Time
}

// NewIntakeService now 為 nil 時使用 time.Now；日期沒有年份，取 now 的年份
func NewIntakeService(repo repository.TicketRepository, navigator navigation.Navigator, location *time.Location, now func() time.Time) IntakeService {
	if location == nil {
		location = time.UTC
	}
	if now == nil {
		now = time.Now
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &IntakeServiceImpl{
		repo:      repo,
		navigator: navigator,
		validate:  validate,
		location:  location,
		now:       now,
	}
}

func (s *IntakeServiceImpl) Submit(ctx context.Context, form model.TicketForm, notifier notice.Notifier) (result *SubmitResult, err error) {
	if notifier == nil {
		notifier = notice.Discard
	}
	log := logger.WithComponent("intake")

	// 任何未預期的錯誤都在這裡收斂，不讓 panic 離開送出流程
	defer func() {
		if r := recover(); r != nil {
			log.Error("panic during ticket submission", zap.Any("panic", r), zap.Stack("stack"))
			notifier.Notify(notice.Error(msgUnexpected))
			metrics.TicketSubmissions.WithLabelValues("unexpected").Inc()
			result = nil
			err = fmt.Errorf("%w: %v", apperrors.ErrUnexpected, r)
		}
	}()

	descriptor, err := s.Normalize(form)
	if err != nil {
		var ve *apperrors.ValidationError
		if errors.As(err, &ve) {
			notifier.Notify(notice.Error(ve.Message))
		}
		metrics.TicketSubmissions.WithLabelValues("validation").Inc()
		return nil, err
	}

	record, err := s.repo.Insert(ctx, model.NewTicketRecord(descriptor))
	if err != nil {
		log.Error("failed to insert ticket", zap.Error(err))
		notifier.Notify(notice.Error(msgPersistFailed))
		metrics.TicketSubmissions.WithLabelValues("persistence").Inc()
		return nil, fmt.Errorf("%w: %w", apperrors.ErrPersistence, err)
	}

	handoff, err := s.navigator.Navigate(ctx, navigation.RoutePreview, descriptor)
	if err != nil {
		log.Error("failed to navigate to preview", zap.Error(err), zap.String("ticket_id", record.TicketID.String()))
		notifier.Notify(notice.Error(msgUnexpected))
		metrics.TicketSubmissions.WithLabelValues("unexpected").Inc()
		return nil, fmt.Errorf("%w: %w", apperrors.ErrUnexpected, err)
	}

	metrics.TicketSubmissions.WithLabelValues("created").Inc()
	log.Info("ticket submitted",
		zap.String("ticket_id", record.TicketID.String()),
		zap.String("preview_id", handoff.ID.String()),
		zap.Int("ticket_count", descriptor.TicketCount),
	)

	return &SubmitResult{
		PreviewID: handoff.ID,
		Route:     navigation.RoutePreview,
		Ticket:    descriptor,
		TicketID:  record.TicketID,
	}, nil
}

func (s *IntakeServiceImpl) Normalize(form model.TicketForm) (model.TicketDescriptor, error) {
	form = trimForm(form)

	if form.DateTime == "" {
		return model.TicketDescriptor{}, apperrors.NewValidationError("dateTime", msgDateRequired)
	}

	if err := s.validate.Struct(form); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			field := fieldErrs[0].Field()
			return model.TicketDescriptor{}, apperrors.NewValidationError(field, fmt.Sprintf("%s is required", fieldLabel(field)))
		}
		return model.TicketDescriptor{}, err
	}

	when, err := s.parseDateTime(form.DateTime)
	if err != nil {
		return model.TicketDescriptor{}, apperrors.NewValidationError("dateTime", msgDateFormat)
	}

	return model.TicketDescriptor{
		Section:       form.Sec,
		Row:           form.Row,
		BaseSeat:      form.Sit,
		TicketCount:   seat.ParseCount(form.TicketCount),
		OtherSeats:    form.OtherSit,
		Title:         form.Title,
		Venue:         form.Venue,
		ImageURL:      form.ImageURL,
		DateTime:      when,
		DateTimeLabel: form.DateTime,
	}, nil
}

// parseDateTime 格式中沒有年份，使用目前年份
func (s *IntakeServiceImpl) parseDateTime(raw string) (time.Time, error) {
	parsed, err := time.ParseInLocation(DateTimeLayout, normalizeMeridiem(raw), s.location)
	if err != nil {
		return time.Time{}, err
	}
	year := s.now().In(s.location).Year()
	when := time.Date(year, parsed.Month(), parsed.Day(), parsed.Hour(), parsed.Minute(), 0, 0, s.location)
	// 解析時的年份為 0 (閏年)，Feb 29 在非閏年會被進位成 Mar 1
	if when.Month() != parsed.Month() || when.Day() != parsed.Day() {
		return time.Time{}, fmt.Errorf("%s %d does not exist in %d", parsed.Month(), parsed.Day(), year)
	}
	return when, nil
}

// normalizeMeridiem 允許小寫 am/pm
func normalizeMeridiem(raw string) string {
	if n := len(raw); n >= 2 {
		suffix := strings.ToUpper(raw[n-2:])
		if suffix == "AM" || suffix == "PM" {
			return raw[:n-2] + suffix
		}
	}
	return raw
}

func fieldLabel(field string) string {
	if label, ok := fieldLabels[field]; ok {
		return label
	}
	return field
}

func trimForm(f model.TicketForm) model.TicketForm {
	f.Sec = strings.TrimSpace(f.Sec)
	f.Row = strings.TrimSpace(f.Row)
	f.Sit = strings.TrimSpace(f.Sit)
	f.TicketCount = strings.TrimSpace(f.TicketCount)
	f.OtherSit = strings.TrimSpace(f.OtherSit)
	f.Title = strings.TrimSpace(f.Title)
	f.Venue = strings.TrimSpace(f.Venue)
	f.ImageURL = strings.TrimSpace(f.ImageURL)
	f.DateTime = strings.TrimSpace(f.DateTime)
	return f
}
