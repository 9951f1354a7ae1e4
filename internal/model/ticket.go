package model

import (
	"time"

	"github.com/google/uuid"
)

// TicketForm 票券表單的原始輸入 (欄位名稱沿用前端表單)
type TicketForm struct {
	Sec         string `json:"sec" validate:"required"`
	Row         string `json:"row" validate:"required"`
	Sit         string `json:"sit" validate:"required"`
	TicketCount string `json:"ticketCount"`
	OtherSit    string `json:"otherSit"`
	Title       string `json:"title" validate:"required"`
	Venue       string `json:"venue" validate:"required"`
	ImageURL    string `json:"imageUrl"`
	DateTime    string `json:"dateTime"`
}

// TicketDescriptor 表單送出後產生的不可變快照，透過導覽以值傳遞
type TicketDescriptor struct {
	Section       string    `json:"section"`
	Row           string    `json:"row"`
	BaseSeat      string    `json:"base_seat"`
	TicketCount   int       `json:"ticket_count"`
	OtherSeats    string    `json:"other_seats,omitempty"`
	Title         string    `json:"title"`
	Venue         string    `json:"venue"`
	ImageURL      string    `json:"image_url"`
	DateTime      time.Time `json:"date_time"`
	DateTimeLabel string    `json:"date_time_label"`
}

// HasTicketData 預覽至少需要 section 才能顯示
func (d TicketDescriptor) HasTicketData() bool {
	return d.Section != ""
}

// TicketRecord 資料庫 tickets 表的一筆紀錄
type TicketRecord struct {
	ID        int       `json:"id" db:"id"`
	TicketID  uuid.UUID `json:"ticket_id" db:"ticket_id"`
	Sec       string    `json:"sec" db:"sec"`
	RowNumber string    `json:"row_number" db:"row_number"`
	Seat      string    `json:"seat" db:"seat"`
	Title     string    `json:"title" db:"title"`
	Venue     string    `json:"venue" db:"venue"`
	DateTime  time.Time `json:"date_time" db:"date_time"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NewTicketRecord 由 descriptor 組出要寫入的紀錄
func NewTicketRecord(d TicketDescriptor) *TicketRecord {
	return &TicketRecord{
		Sec:       d.Section,
		RowNumber: d.Row,
		Seat:      d.BaseSeat,
		Title:     d.Title,
		Venue:     d.Venue,
		DateTime:  d.DateTime.UTC(),
	}
}

// TransferHandoff 轉讓確認後交給下一個畫面的內容
type TransferHandoff struct {
	TicketCount   int      `json:"ticketCount"`
	SelectedSeats []string `json:"selectedSeats"`
}
