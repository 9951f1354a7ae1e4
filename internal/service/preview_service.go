package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go-gin-ticket-preview/internal/metrics"
	"go-gin-ticket-preview/internal/model"
	"go-gin-ticket-preview/internal/navigation"
	"go-gin-ticket-preview/internal/preview"
	"go-gin-ticket-preview/internal/seat"
	"go-gin-ticket-preview/internal/transfer"
	apperrors "go-gin-ticket-preview/pkg/app_errors"
	"go-gin-ticket-preview/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PreviewService interface {
	// Mount 預覽畫面收到 handoff 時建立一個預覽
	Mount(ctx context.Context, h *navigation.Handoff) error
	Get(ctx context.Context, id uuid.UUID) (*PreviewResponse, error)
	Unmount(ctx context.Context, id uuid.UUID) error

	Resize(ctx context.Context, id uuid.UUID, width float64) (*PreviewResponse, error)
	GoTo(ctx context.Context, id uuid.UUID, index int) (*ScrollResponse, error)
	ScrollSettled(ctx context.Context, id uuid.UUID, offset float64) (*ScrollResponse, error)
	ReportImageError(ctx context.Context, id uuid.UUID, cardIndex int) (*CardResponse, error)

	OpenTransfer(ctx context.Context, id uuid.UUID) (*TransferResponse, error)
	ToggleSeat(ctx context.Context, id uuid.UUID, seatLabel string) (*TransferResponse, error)
	ConfirmTransfer(ctx context.Context, id uuid.UUID) (*TransferResult, error)
	CancelTransfer(ctx context.Context, id uuid.UUID) (*TransferResponse, error)
}

// previewSession 一個已掛載的預覽畫面。mu 讓同一個預覽的事件依序處理。
type previewSession struct {
	mu        sync.Mutex
	id        uuid.UUID
	ticket    model.TicketDescriptor
	carousel  *preview.Carousel
	cards     []*preview.Card
	selection *transfer.Selection
	lastSeen  time.Time
}

type PreviewServiceImpl struct {
	mu            sync.RWMutex
	sessions      map[uuid.UUID]*previewSession
	navigator     navigation.Navigator
	fallbackImage string
	viewportWidth float64
	now           func() time.Time
}

func NewPreviewService(navigator navigation.Navigator, fallbackImage string, viewportWidth float64) *PreviewServiceImpl {
	return &PreviewServiceImpl{
		sessions:      make(map[uuid.UUID]*previewSession),
		navigator:     navigator,
		fallbackImage: fallbackImage,
		viewportWidth: viewportWidth,
		now:           time.Now,
	}
}

func (s *PreviewServiceImpl) Mount(ctx context.Context, h *navigation.Handoff) error {
	var d model.TicketDescriptor
	if err := h.Decode(&d); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrInvalidInput, err)
	}
	if !d.HasTicketData() {
		return apperrors.ErrNoTicketData
	}
	d.TicketCount = seat.ClampCount(d.TicketCount)

	cards := preview.BuildCards(d, s.fallbackImage)
	session := &previewSession{
		id:        h.ID,
		ticket:    d,
		carousel:  preview.NewCarousel(len(cards), s.viewportWidth),
		cards:     cards,
		selection: transfer.NewSelection(d),
		lastSeen:  s.now(),
	}

	s.mu.Lock()
	s.sessions[h.ID] = session
	s.mu.Unlock()

	metrics.ActivePreviews.Inc()
	logger.WithComponent("preview").Info("preview mounted",
		zap.String("preview_id", h.ID.String()),
		zap.Int("cards", len(cards)),
	)
	return nil
}

func (s *PreviewServiceImpl) Get(ctx context.Context, id uuid.UUID) (*PreviewResponse, error) {
	var out *PreviewResponse
	err := s.withSession(id, func(p *previewSession) error {
		out = p.response()
		return nil
	})
	return out, err
}

// Unmount 卸載預覽，carousel 與轉讓選單一併丟棄
func (s *PreviewServiceImpl) Unmount(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return apperrors.ErrPreviewNotFound
	}
	metrics.ActivePreviews.Dec()
	logger.WithComponent("preview").Info("preview unmounted", zap.String("preview_id", id.String()))
	return nil
}

func (s *PreviewServiceImpl) Resize(ctx context.Context, id uuid.UUID, width float64) (*PreviewResponse, error) {
	var out *PreviewResponse
	err := s.withSession(id, func(p *previewSession) error {
		if !p.carousel.Resize(width) {
			return apperrors.ErrInvalidInput
		}
		out = p.response()
		return nil
	})
	return out, err
}

func (s *PreviewServiceImpl) GoTo(ctx context.Context, id uuid.UUID, index int) (*ScrollResponse, error) {
	var out *ScrollResponse
	err := s.withSession(id, func(p *previewSession) error {
		scroll := p.carousel.GoTo(index)
		out = &ScrollResponse{
			ActiveIndex: p.carousel.ActiveIndex(),
			ScrollTo:    &scroll,
			Pagination:  p.carousel.Pagination(),
		}
		return nil
	})
	return out, err
}

func (s *PreviewServiceImpl) ScrollSettled(ctx context.Context, id uuid.UUID, offset float64) (*ScrollResponse, error) {
	var out *ScrollResponse
	err := s.withSession(id, func(p *previewSession) error {
		idx := p.carousel.ScrollSettled(offset)
		// 使用者自己滑到的位置，不需要再下捲動指令
		out = &ScrollResponse{
			ActiveIndex: idx,
			Pagination:  p.carousel.Pagination(),
		}
		return nil
	})
	return out, err
}

func (s *PreviewServiceImpl) ReportImageError(ctx context.Context, id uuid.UUID, cardIndex int) (*CardResponse, error) {
	var out *CardResponse
	err := s.withSession(id, func(p *previewSession) error {
		if cardIndex < 0 || cardIndex >= len(p.cards) {
			return apperrors.ErrCardNotFound
		}
		card := p.cards[cardIndex]
		if card.ImageFailed() {
			metrics.ImageFallbacks.Inc()
			logger.WithComponent("preview").Debug("image failed to load, falling back to default",
				zap.String("preview_id", id.String()),
				zap.Int("card_index", cardIndex),
			)
		}
		resp := newCardResponse(p.ticket, card)
		out = &resp
		return nil
	})
	return out, err
}

func (s *PreviewServiceImpl) OpenTransfer(ctx context.Context, id uuid.UUID) (*TransferResponse, error) {
	var out *TransferResponse
	err := s.withSession(id, func(p *previewSession) error {
		p.selection.Open()
		metrics.TransferTransitions.WithLabelValues("open").Inc()
		resp := newTransferResponse(p.ticket, p.selection)
		out = &resp
		return nil
	})
	return out, err
}

func (s *PreviewServiceImpl) ToggleSeat(ctx context.Context, id uuid.UUID, seatLabel string) (*TransferResponse, error) {
	var out *TransferResponse
	err := s.withSession(id, func(p *previewSession) error {
		if _, err := p.selection.Toggle(seatLabel); err != nil {
			return err
		}
		resp := newTransferResponse(p.ticket, p.selection)
		out = &resp
		return nil
	})
	return out, err
}

// ConfirmTransfer 把選取的座位交給轉讓畫面；交接失敗時選單維持開啟
func (s *PreviewServiceImpl) ConfirmTransfer(ctx context.Context, id uuid.UUID) (*TransferResult, error) {
	var out *TransferResult
	err := s.withSession(id, func(p *previewSession) error {
		return p.selection.Confirm(func(payload model.TransferHandoff) error {
			h, err := s.navigator.Navigate(ctx, navigation.RouteTransfer, payload)
			if err != nil {
				return fmt.Errorf("%w: %w", apperrors.ErrUnexpected, err)
			}
			out = &TransferResult{
				Route:         navigation.RouteTransfer,
				HandoffID:     h.ID,
				TicketCount:   payload.TicketCount,
				SelectedSeats: payload.SelectedSeats,
			}
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrUnexpected) {
			logger.WithComponent("preview").Error("transfer handoff failed", zap.String("preview_id", id.String()), zap.Error(err))
		}
		return nil, err
	}

	metrics.TransferTransitions.WithLabelValues("confirm").Inc()
	metrics.TransferredSeats.Observe(float64(out.TicketCount))
	logger.WithComponent("preview").Info("transfer confirmed",
		zap.String("preview_id", id.String()),
		zap.String("handoff_id", out.HandoffID.String()),
		zap.Strings("seats", out.SelectedSeats),
	)
	return out, nil
}

func (s *PreviewServiceImpl) CancelTransfer(ctx context.Context, id uuid.UUID) (*TransferResponse, error) {
	var out *TransferResponse
	err := s.withSession(id, func(p *previewSession) error {
		p.selection.Cancel()
		metrics.TransferTransitions.WithLabelValues("cancel").Inc()
		resp := newTransferResponse(p.ticket, p.selection)
		out = &resp
		return nil
	})
	return out, err
}

// SweepIdle 卸載閒置超過 ttl 的預覽，回傳卸載數量。
// 逐一檢查 session 時不持有 registry 鎖，正在交接的預覽不會擋住其他請求。
func (s *PreviewServiceImpl) SweepIdle(now time.Time, ttl time.Duration) int {
	s.mu.RLock()
	candidates := make([]*previewSession, 0, len(s.sessions))
	for _, p := range s.sessions {
		candidates = append(candidates, p)
	}
	s.mu.RUnlock()

	removed := 0
	for _, p := range candidates {
		p.mu.Lock()
		idle := now.Sub(p.lastSeen) > ttl
		p.mu.Unlock()
		if !idle {
			continue
		}

		s.mu.Lock()
		// 期間可能已被卸載或以同一個 id 重新掛載
		if current, ok := s.sessions[p.id]; ok && current == p {
			delete(s.sessions, p.id)
			removed++
		}
		s.mu.Unlock()
	}
	if removed > 0 {
		metrics.ActivePreviews.Sub(float64(removed))
		logger.WithComponent("preview").Info("idle previews unmounted", zap.Int("count", removed))
	}
	return removed
}

// StartJanitor 定期清除閒置的預覽，直到 ctx 結束
func (s *PreviewServiceImpl) StartJanitor(ctx context.Context, ttl time.Duration) {
	interval := ttl / 2
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.SweepIdle(s.now(), ttl)
			}
		}
	}()
}

func (s *PreviewServiceImpl) withSession(id uuid.UUID, fn func(p *previewSession) error) error {
	s.mu.RLock()
	p, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return apperrors.ErrPreviewNotFound
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastSeen = s.now()
	return fn(p)
}

func (p *previewSession) response() *PreviewResponse {
	cards := make([]CardResponse, len(p.cards))
	for i, c := range p.cards {
		cards[i] = newCardResponse(p.ticket, c)
	}
	return &PreviewResponse{
		ID:            p.id,
		Ticket:        p.ticket,
		ActiveIndex:   p.carousel.ActiveIndex(),
		ViewportWidth: p.carousel.ViewportWidth(),
		Cards:         cards,
		Pagination:    p.carousel.Pagination(),
		Transfer:      newTransferResponse(p.ticket, p.selection),
	}
}
