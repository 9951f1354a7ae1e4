package navigation

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	apperrors "go-gin-ticket-preview/pkg/app_errors"
	"go-gin-ticket-preview/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Route string

const (
	RouteHome     Route = "/"
	RoutePreview  Route = "/preview"
	RouteTransfer Route = "/transfer"
)

// Handoff 從一個畫面交給下一個畫面的內容，對導覽本身是不透明的
type Handoff struct {
	ID        uuid.UUID       `json:"id"`
	Route     Route           `json:"route"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

func NewHandoff(route Route, payload any) (*Handoff, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return &Handoff{
		ID:        uuid.New(),
		Route:     route,
		Payload:   raw,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Decode 把 payload 解回指定型別
func (h *Handoff) Decode(v any) error {
	return json.Unmarshal(h.Payload, v)
}

type Navigator interface {
	// 導向 route 並交出 payload
	Navigate(ctx context.Context, route Route, payload any) (*Handoff, error)
}

// ViewFunc 掛載在 route 上的畫面，收到 handoff 時被呼叫
type ViewFunc func(ctx context.Context, h *Handoff) error

// Dispatcher 行程內的導覽：已註冊的 route 直接交給對應畫面，
// 其餘 route 交給 outbound (例如 Redis stream) 由外部畫面接手。
type Dispatcher struct {
	mu       sync.RWMutex
	views    map[Route]ViewFunc
	outbound Publisher
}

func NewDispatcher(outbound Publisher) *Dispatcher {
	return &Dispatcher{
		views:    make(map[Route]ViewFunc),
		outbound: outbound,
	}
}

func (d *Dispatcher) Register(route Route, view ViewFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.views[route] = view
}

func (d *Dispatcher) Navigate(ctx context.Context, route Route, payload any) (*Handoff, error) {
	h, err := NewHandoff(route, payload)
	if err != nil {
		return nil, err
	}

	d.mu.RLock()
	view, ok := d.views[route]
	d.mu.RUnlock()

	log := logger.WithComponent("navigation").With(zap.String("route", string(route)), zap.String("handoff_id", h.ID.String()))

	if ok {
		if err := view(ctx, h); err != nil {
			return nil, fmt.Errorf("mount %s: %w", route, err)
		}
		log.Debug("handoff mounted locally")
		return h, nil
	}

	if d.outbound == nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrRouteUnavailable, route)
	}
	if err := d.outbound.Publish(ctx, h); err != nil {
		return nil, fmt.Errorf("publish %s: %w", route, err)
	}
	log.Info("handoff published")
	return h, nil
}
