package worker

import (
	"context"

	"go-gin-ticket-preview/internal/navigation"
	"go-gin-ticket-preview/pkg/logger"

	"go.uber.org/zap"
)

// HandleFunc 處理一筆從 publisher 收到的 handoff
type HandleFunc func(ctx context.Context, h *navigation.Handoff) error

type HandoffWorker interface {
	// 訂閱 handoff stream
	Start(ctx context.Context) error
	// 等待訂閱結束
	Done() <-chan struct{}
}

type HandoffWorkerImpl struct {
	publisher navigation.Publisher
	handle    HandleFunc
	done      chan struct{}
}

func NewHandoffWorker(publisher navigation.Publisher, handle HandleFunc) HandoffWorker {
	return &HandoffWorkerImpl{
		publisher: publisher,
		handle:    handle,
		done:      make(chan struct{}),
	}
}

func (w *HandoffWorkerImpl) Start(ctx context.Context) error {
	msgs, err := w.publisher.Subscribe(ctx)
	if err != nil {
		close(w.done)
		return err
	}

	log := logger.WithComponent("handoff-worker")
	go func() {
		defer close(w.done)
		for msg := range msgs {
			if err := w.handle(ctx, msg.Data); err != nil {
				// 下一個畫面暫時無法接手，放回 stream 重試
				log.Warn("handoff processing failed, requeue",
					zap.String("handoff_id", msg.Data.ID.String()),
					zap.String("route", string(msg.Data.Route)),
					zap.Error(err),
				)
				msg.Nack(true)
				continue
			}
			msg.Ack()
		}
	}()
	return nil
}

func (w *HandoffWorkerImpl) Done() <-chan struct{} {
	return w.done
}
