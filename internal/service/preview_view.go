package service

import (
	"go-gin-ticket-preview/internal/model"
	"go-gin-ticket-preview/internal/navigation"
	"go-gin-ticket-preview/internal/preview"
	"go-gin-ticket-preview/internal/transfer"

	"github.com/google/uuid"
)

// PreviewResponse 預覽畫面的完整狀態
type PreviewResponse struct {
	ID            uuid.UUID              `json:"id"`
	Ticket        model.TicketDescriptor `json:"ticket"`
	ActiveIndex   int                    `json:"active_index"`
	ViewportWidth float64                `json:"viewport_width"`
	Cards         []CardResponse         `json:"cards"`
	Pagination    []preview.Dot          `json:"pagination"`
	Transfer      TransferResponse       `json:"transfer"`
}

// CardResponse 一張票卡
type CardResponse struct {
	Index         int    `json:"index"`
	Header        string `json:"header"`
	Section       string `json:"section"`
	Row           string `json:"row"`
	Seat          string `json:"seat"`
	ImageSrc      string `json:"image_src"`
	UsingFallback bool   `json:"using_fallback"`
	Title         string `json:"title"`
	Subtitle      string `json:"subtitle"`
	Footer        string `json:"footer"`
}

type SeatOption struct {
	Seat     string `json:"seat"`
	Selected bool   `json:"selected"`
}

// TransferResponse 轉讓選單的狀態
type TransferResponse struct {
	State      transfer.State `json:"state"`
	Section    string         `json:"section"`
	Row        string         `json:"row"`
	Seats      []SeatOption   `json:"seats"`
	Columns    int            `json:"columns"`
	Summary    string         `json:"summary"`
	CanConfirm bool           `json:"can_confirm"`
}

type ScrollResponse struct {
	ActiveIndex int             `json:"active_index"`
	ScrollTo    *preview.Scroll `json:"scroll_to,omitempty"`
	Pagination  []preview.Dot   `json:"pagination"`
}

// TransferResult 確認轉讓後交給下一個畫面的結果
type TransferResult struct {
	Route         navigation.Route `json:"route"`
	HandoffID     uuid.UUID        `json:"handoff_id"`
	TicketCount   int              `json:"ticketCount"`
	SelectedSeats []string         `json:"selectedSeats"`
}

func newCardResponse(d model.TicketDescriptor, c *preview.Card) CardResponse {
	return CardResponse{
		Index:         c.Index,
		Header:        preview.CardHeader,
		Section:       d.Section,
		Row:           d.Row,
		Seat:          c.Seat,
		ImageSrc:      c.ImageSource(),
		UsingFallback: c.UsingFallback(),
		Title:         d.Title,
		Subtitle:      d.DateTimeLabel + " • " + d.Venue,
		Footer:        preview.CardFooter,
	}
}

func newTransferResponse(d model.TicketDescriptor, s *transfer.Selection) TransferResponse {
	seats := s.Seats()
	options := make([]SeatOption, len(seats))
	for i, label := range seats {
		options[i] = SeatOption{Seat: label, Selected: s.IsSelected(label)}
	}
	return TransferResponse{
		State:      s.State(),
		Section:    d.Section,
		Row:        d.Row,
		Seats:      options,
		Columns:    s.Columns(),
		Summary:    s.Summary(),
		CanConfirm: s.CanConfirm(),
	}
}
