package preview

import (
	"sync/atomic"

	"go-gin-ticket-preview/internal/model"
	"go-gin-ticket-preview/internal/seat"
)

const (
	CardHeader = "Standard Ticket"
	CardFooter = "Ticketmaster.Verified"
)

// Card 一張座位票卡。圖片載入失敗後永久改用備用圖，不再重試。
type Card struct {
	Index    int
	Seat     string
	imageURL string
	fallback string
	failed   atomic.Bool
}

func NewCard(index int, seatLabel, imageURL, fallback string) *Card {
	return &Card{
		Index:    index,
		Seat:     seatLabel,
		imageURL: imageURL,
		fallback: fallback,
	}
}

// ImageSource 目前應顯示的圖片來源
func (c *Card) ImageSource() string {
	if c.failed.Load() || c.imageURL == "" {
		return c.fallback
	}
	return c.imageURL
}

// ImageFailed 圖片載入失敗，回傳是否為第一次切換
func (c *Card) ImageFailed() bool {
	return c.failed.CompareAndSwap(false, true)
}

func (c *Card) UsingFallback() bool {
	return c.failed.Load()
}

// BuildCards 依 descriptor 展開所有票卡
func BuildCards(d model.TicketDescriptor, fallback string) []*Card {
	seats := seat.Derive(d.BaseSeat, d.TicketCount)
	cards := make([]*Card, len(seats))
	for i, s := range seats {
		cards[i] = NewCard(i, s, d.ImageURL, fallback)
	}
	return cards
}
