package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go-gin-ticket-preview/config"
	"go-gin-ticket-preview/internal/database"
	"go-gin-ticket-preview/internal/model"
	"go-gin-ticket-preview/internal/navigation"
	"go-gin-ticket-preview/internal/worker"
	"go-gin-ticket-preview/pkg/logger"

	"go.uber.org/zap"
)

// consumer 代表轉讓畫面：從 stream 接手預覽送出的 handoff
func main() {
	defer logger.Sync()
	log := logger.WithComponent("consumer")

	cfg := config.LoadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		log.Fatal("Failed to initialize redis", zap.Error(err))
	}
	defer rdb.Close()

	hostname, _ := os.Hostname()
	pub := navigation.NewRedisStreamPublisher(rdb, hostname, &navigation.RedisStreamConfig{StreamKey: cfg.Navigation.StreamKey})

	w := worker.NewHandoffWorker(pub, func(ctx context.Context, h *navigation.Handoff) error {
		if h.Route != navigation.RouteTransfer {
			log.Debug("skip handoff for other route", zap.String("route", string(h.Route)))
			return nil
		}
		var payload model.TransferHandoff
		if err := h.Decode(&payload); err != nil {
			// 格式錯誤重試也不會成功
			log.Error("malformed transfer handoff", zap.String("handoff_id", h.ID.String()), zap.Error(err))
			return nil
		}
		if payload.TicketCount != len(payload.SelectedSeats) {
			return fmt.Errorf("ticket count %d does not match %d selected seats", payload.TicketCount, len(payload.SelectedSeats))
		}
		log.Info("transfer received",
			zap.String("handoff_id", h.ID.String()),
			zap.Int("ticket_count", payload.TicketCount),
			zap.Strings("selected_seats", payload.SelectedSeats),
		)
		return nil
	})
	if err := w.Start(ctx); err != nil {
		log.Fatal("Failed to subscribe to handoff stream", zap.Error(err))
	}

	log.Info("consumer started", zap.String("stream", pub.StreamKey()))
	<-w.Done()
	log.Info("consumer stopped")
}
