package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"go-gin-ticket-preview/config"
	"go-gin-ticket-preview/internal/database"
	"go-gin-ticket-preview/internal/handler"
	"go-gin-ticket-preview/internal/metrics"
	"go-gin-ticket-preview/internal/navigation"
	"go-gin-ticket-preview/internal/repository"
	"go-gin-ticket-preview/internal/service"
	"go-gin-ticket-preview/internal/worker"
	"go-gin-ticket-preview/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	defer logger.Sync()
	log := logger.WithComponent("server")

	cfg := config.LoadConfig()
	gin.SetMode(cfg.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer pool.Close()

	checks := map[string]handler.HealthCheck{
		"postgres": pool.Ping,
	}

	var outbound navigation.Publisher
	switch cfg.Navigation.Driver {
	case "memory":
		mem := navigation.NewMemoryPublisher(cfg.Navigation.BufferSize)
		// 沒有外部的轉讓畫面，行程內直接消化 handoff
		w := worker.NewHandoffWorker(mem, func(ctx context.Context, h *navigation.Handoff) error {
			logger.WithComponent("handoff").Info("handoff received", zap.String("route", string(h.Route)), zap.ByteString("payload", h.Payload))
			return nil
		})
		if err := w.Start(ctx); err != nil {
			log.Fatal("Failed to start handoff worker", zap.Error(err))
		}
		outbound = mem
	default:
		rdb, err := database.InitRedis(&cfg.Redis)
		if err != nil {
			log.Fatal("Failed to initialize redis", zap.Error(err))
		}
		defer rdb.Close()
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		outbound = newRedisPublisher(rdb, cfg.Navigation.StreamKey)
	}

	dispatcher := navigation.NewDispatcher(outbound)

	previewService := service.NewPreviewService(dispatcher, cfg.Ticket.FallbackImageURL, cfg.Ticket.DefaultViewportWidth)
	dispatcher.Register(navigation.RoutePreview, previewService.Mount)
	previewService.StartJanitor(ctx, cfg.Ticket.PreviewIdleTTL)

	ticketRepo := repository.NewTicketRepository(pool)
	intakeService := service.NewIntakeService(ticketRepo, dispatcher, cfg.Ticket.Location, time.Now)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(cfg.Server.AllowedOrigins)))
	router.Use(metrics.PrometheusMiddleware())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handler.NewHealthHandler(checks).RegisterRoutes(router)
	handler.NewIntakeHandler(intakeService).RegisterRoutes(router)
	handler.NewPreviewHandler(previewService).RegisterRoutes(router)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr), zap.String("navigation_driver", cfg.Navigation.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}

func newRedisPublisher(rdb *redis.Client, streamKey string) *navigation.RedisStreamPublisher {
	hostname, _ := os.Hostname()
	return navigation.NewRedisStreamPublisher(rdb, hostname, &navigation.RedisStreamConfig{StreamKey: streamKey})
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Location"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c
}
