package transfer

import (
	"fmt"
	"sync"

	"go-gin-ticket-preview/internal/model"
	"go-gin-ticket-preview/internal/seat"
	apperrors "go-gin-ticket-preview/pkg/app_errors"
)

// State 轉讓選單狀態
type State string

const (
	StateClosed State = "closed"
	StateOpen   State = "open"
)

// Selection 轉讓選單：Closed -> Open -> Closed。
// 確認與取消都回到 Closed，選取的座位不會保留。
type Selection struct {
	mu       sync.Mutex
	seats    []string
	known    map[string]struct{}
	state    State
	selected map[string]struct{}
}

// NewSelection 由 descriptor 推導出可選的座位
func NewSelection(d model.TicketDescriptor) *Selection {
	seats := seat.Derive(d.BaseSeat, d.TicketCount)
	known := make(map[string]struct{}, len(seats))
	for _, s := range seats {
		known[s] = struct{}{}
	}
	return &Selection{
		seats: seats,
		known: known,
		state: StateClosed,
	}
}

func (s *Selection) Open() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateOpen
	s.selected = make(map[string]struct{})
}

// Toggle 切換座位是否選取，不認得的座位直接忽略並回傳 false
func (s *Selection) Toggle(seatLabel string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateOpen {
		return false, apperrors.ErrTransferNotOpen
	}
	if _, ok := s.known[seatLabel]; !ok {
		return false, nil
	}
	if _, ok := s.selected[seatLabel]; ok {
		delete(s.selected, seatLabel)
	} else {
		s.selected[seatLabel] = struct{}{}
	}
	return true, nil
}

func (s *Selection) CanConfirm() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateOpen && len(s.selected) > 0
}

// Confirm 將選取的座位 (依推導順序) 交給 emit，成功後關閉選單。
// emit 失敗時維持 Open，選取內容不變，讓使用者重試。
func (s *Selection) Confirm(emit func(model.TransferHandoff) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateOpen {
		return apperrors.ErrTransferNotOpen
	}
	if len(s.selected) == 0 {
		return apperrors.ErrNothingSelected
	}

	handoff := model.TransferHandoff{
		TicketCount:   len(s.selected),
		SelectedSeats: s.orderedLocked(),
	}
	if err := emit(handoff); err != nil {
		return err
	}

	s.closeLocked()
	return nil
}

// Cancel 關閉選單並丟棄選取，不送出任何結果
func (s *Selection) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
}

func (s *Selection) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Selection) Seats() []string {
	out := make([]string, len(s.seats))
	copy(out, s.seats)
	return out
}

// Selected 目前選取的座位，依推導順序
func (s *Selection) Selected() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orderedLocked()
}

func (s *Selection) IsSelected(seatLabel string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.selected[seatLabel]
	return ok
}

func (s *Selection) Columns() int {
	return seat.GridColumns(len(s.seats))
}

// Summary 例如 "1 ticket selected"、"3 tickets selected"
func (s *Selection) Summary() string {
	s.mu.Lock()
	n := len(s.selected)
	s.mu.Unlock()
	if n == 1 {
		return "1 ticket selected"
	}
	return fmt.Sprintf("%d tickets selected", n)
}

func (s *Selection) orderedLocked() []string {
	out := make([]string, 0, len(s.selected))
	seen := make(map[string]struct{}, len(s.selected))
	for _, label := range s.seats {
		if _, ok := s.selected[label]; !ok {
			continue
		}
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}
		out = append(out, label)
	}
	return out
}

func (s *Selection) closeLocked() {
	s.state = StateClosed
	s.selected = nil
}
