package navigation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go-gin-ticket-preview/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	DefaultStreamKey   = "navigation:stream"
	ConsumerGroupName  = "handoff-consumers"
	ConsumerNamePrefix = "consumer"

	fieldRoute   = "route"
	fieldHandoff = "handoff"
)

// RedisStreamConfig 可注入的逾時與重試設定；零值時使用預設。
type RedisStreamConfig struct {
	StreamKey          string
	MaxLen             int64         // stream 保留的大約筆數
	ClaimMinIdleTime   time.Duration // PEL 中超過此時間才被 XAUTOCLAIM 領取
	MaxRetryCount      int           // 超過此次數視為毒藥消息並丟棄
	ReadGroupBlockTime time.Duration // XReadGroup 阻塞時間
}

func defaultRedisStreamConfig() RedisStreamConfig {
	return RedisStreamConfig{
		StreamKey:          DefaultStreamKey,
		MaxLen:             10000,
		ClaimMinIdleTime:   5 * time.Second,
		MaxRetryCount:      5,
		ReadGroupBlockTime: 2 * time.Second,
	}
}

type RedisStreamPublisher struct {
	client       redis.Cmdable
	groupName    string
	consumerName string
	cfg          RedisStreamConfig
}

// NewRedisStreamPublisher 建立 Redis Stream 版 Publisher。consumer group 在第一次 Subscribe 時才建立。
func NewRedisStreamPublisher(client redis.Cmdable, consumerID string, config *RedisStreamConfig) *RedisStreamPublisher {
	if consumerID == "" {
		consumerID = uuid.New().String()
	}
	cfg := defaultRedisStreamConfig()
	if config != nil {
		if config.StreamKey != "" {
			cfg.StreamKey = config.StreamKey
		}
		if config.MaxLen > 0 {
			cfg.MaxLen = config.MaxLen
		}
		if config.ClaimMinIdleTime > 0 {
			cfg.ClaimMinIdleTime = config.ClaimMinIdleTime
		}
		if config.MaxRetryCount > 0 {
			cfg.MaxRetryCount = config.MaxRetryCount
		}
		if config.ReadGroupBlockTime > 0 {
			cfg.ReadGroupBlockTime = config.ReadGroupBlockTime
		}
	}
	return &RedisStreamPublisher{
		client:       client,
		groupName:    ConsumerGroupName,
		consumerName: fmt.Sprintf("%s:%s", ConsumerNamePrefix, consumerID),
		cfg:          cfg,
	}
}

func (p *RedisStreamPublisher) StreamKey() string {
	return p.cfg.StreamKey
}

func (p *RedisStreamPublisher) ensureConsumerGroup(ctx context.Context) error {
	err := p.client.XGroupCreateMkStream(ctx, p.cfg.StreamKey, p.groupName, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

func (p *RedisStreamPublisher) Publish(ctx context.Context, h *Handoff) error {
	raw, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("marshal handoff: %w", err)
	}
	_, err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.cfg.StreamKey,
		MaxLen: p.cfg.MaxLen,
		Approx: true,
		ID:     "*",
		Values: []interface{}{fieldRoute, string(h.Route), fieldHandoff, string(raw)},
	}).Result()
	if err != nil {
		return fmt.Errorf("xadd: %w", err)
	}
	return nil
}

func (p *RedisStreamPublisher) Subscribe(ctx context.Context) (<-chan Delivery, error) {
	if err := p.ensureConsumerGroup(ctx); err != nil {
		return nil, fmt.Errorf("ensure consumer group: %w", err)
	}
	out := make(chan Delivery)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		p.runAutoClaim(ctx, out)
	}()
	go func() {
		defer wg.Done()
		p.runReadLoop(ctx, out)
	}()
	// 兩個 loop 都結束後才關閉 out
	go func() {
		wg.Wait()
		close(out)
	}()
	return out, nil
}

// runReadLoop 只讀 ">"（新訊息）；已投遞但未 ack 的訊息由 XAUTOCLAIM 逾時後領回重試
func (p *RedisStreamPublisher) runReadLoop(ctx context.Context, out chan<- Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			p.readAndDeliver(ctx, out)
		}
	}
}

func (p *RedisStreamPublisher) readAndDeliver(ctx context.Context, out chan<- Delivery) {
	streams, err := p.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    p.groupName,
		Consumer: p.consumerName,
		Streams:  []string{p.cfg.StreamKey, ">"},
		Count:    10,
		Block:    p.cfg.ReadGroupBlockTime,
	}).Result()

	if errors.Is(err, redis.Nil) {
		return
	}
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		logger.WithComponent("navigation").Error("XReadGroup failed", zap.Error(err))
		time.Sleep(time.Second)
		return
	}

	for _, stream := range streams {
		if stream.Stream != p.cfg.StreamKey {
			continue
		}
		for _, msg := range stream.Messages {
			d := p.newDelivery(ctx, msg)
			if d == nil {
				continue
			}
			select {
			case out <- *d:
			case <-ctx.Done():
				return
			}
		}
	}
}

// shouldProcessMessage 超過重試次數的訊息直接 ack 丟棄
func (p *RedisStreamPublisher) shouldProcessMessage(ctx context.Context, messageID string) bool {
	n, err := p.getMessageRetryCount(ctx, messageID)
	if err != nil {
		logger.WithComponent("navigation").Warn("getMessageRetryCount failed", zap.String("message_id", messageID), zap.Error(err))
		return true
	}
	if n >= p.cfg.MaxRetryCount {
		logger.WithComponent("navigation").Warn("discard poison handoff", zap.String("message_id", messageID), zap.Int("retries", n), zap.Int("max_retries", p.cfg.MaxRetryCount))
		_ = p.client.XAck(ctx, p.cfg.StreamKey, p.groupName, messageID).Err()
		return false
	}
	return true
}

func (p *RedisStreamPublisher) getMessageRetryCount(ctx context.Context, messageID string) (int, error) {
	pending, err := p.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: p.cfg.StreamKey,
		Group:  p.groupName,
		Start:  messageID,
		End:    messageID,
		Count:  1,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}
	return int(pending[0].RetryCount), nil
}

func (p *RedisStreamPublisher) runAutoClaim(ctx context.Context, out chan<- Delivery) {
	ticker := time.NewTicker(p.cfg.ClaimMinIdleTime)
	defer ticker.Stop()
	startID := "0-0"

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			claimed, nextID, err := p.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
				Stream:   p.cfg.StreamKey,
				Group:    p.groupName,
				Consumer: p.consumerName,
				MinIdle:  p.cfg.ClaimMinIdleTime,
				Count:    10,
				Start:    startID,
			}).Result()

			if err != nil && !errors.Is(err, redis.Nil) {
				logger.WithComponent("navigation").Error("XAutoClaim failed", zap.Error(err))
				continue
			}
			if nextID != "" && nextID != "0-0" {
				startID = nextID
			} else {
				startID = "0-0"
			}

			for _, msg := range claimed {
				if !p.shouldProcessMessage(ctx, msg.ID) {
					continue
				}
				d := p.newDelivery(ctx, msg)
				if d == nil {
					continue
				}
				select {
				case out <- *d:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// newDelivery 從 Redis 消息組裝 Delivery（含 Ack/Nack）；格式錯誤的訊息直接 ack 掉
func (p *RedisStreamPublisher) newDelivery(ctx context.Context, msg redis.XMessage) *Delivery {
	log := logger.WithComponent("navigation").With(zap.String("message_id", msg.ID))
	msgID := msg.ID

	raw, ok := msg.Values[fieldHandoff].(string)
	if !ok {
		log.Warn("invalid message: missing handoff field")
		_ = p.client.XAck(ctx, p.cfg.StreamKey, p.groupName, msgID).Err()
		return nil
	}
	var h Handoff
	if err := json.Unmarshal([]byte(raw), &h); err != nil {
		log.Warn("unmarshal handoff failed", zap.Error(err))
		_ = p.client.XAck(ctx, p.cfg.StreamKey, p.groupName, msgID).Err()
		return nil
	}

	return &Delivery{
		Data: &h,
		Ack: func() {
			if err := p.client.XAck(ctx, p.cfg.StreamKey, p.groupName, msgID).Err(); err != nil {
				log.Error("XAck failed", zap.Error(err))
			}
		},
		Nack: func(requeue bool) {
			if requeue {
				// 留在 PEL，等 ClaimMinIdleTime 後由 XAUTOCLAIM 領取，形成延遲重試
				log.Info("handoff nack(requeue), will retry", zap.Duration("claim_min_idle", p.cfg.ClaimMinIdleTime))
				return
			}
			if err := p.client.XAck(ctx, p.cfg.StreamKey, p.groupName, msgID).Err(); err != nil {
				log.Error("XAck discard failed", zap.Error(err))
			}
		},
	}
}
