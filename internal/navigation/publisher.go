package navigation

import (
	"context"
)

type Delivery struct {
	Data *Handoff
	Ack  func()
	Nack func(requeue bool)
}

type Publisher interface {
	// 發送 handoff 給外部畫面
	Publish(ctx context.Context, h *Handoff) error
	// 訂閱 handoff
	Subscribe(ctx context.Context) (<-chan Delivery, error)
}

type MemoryPublisher struct {
	// 使用 Go channel 模擬 stream，開發與測試時使用
	ch chan *Handoff
}

func NewMemoryPublisher(bufferSize int) *MemoryPublisher {
	return &MemoryPublisher{
		ch: make(chan *Handoff, bufferSize),
	}
}

func (p *MemoryPublisher) Publish(ctx context.Context, h *Handoff) error {
	select {
	case p.ch <- h:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *MemoryPublisher) Subscribe(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case h, ok := <-p.ch:
				if !ok {
					return
				}

				d := Delivery{
					Data: h,
					Ack:  func() {},
					Nack: func(requeue bool) {
						if requeue {
							// 簡單模擬重回隊列；滿了就放棄
							select {
							case p.ch <- h:
							default:
							}
						}
					},
				}
				select {
				case out <- d:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
