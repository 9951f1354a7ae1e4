// Package notice 提供「顯示訊息給使用者」的能力 (原本的 toast)。
// 只負責傳遞 severity 與內容，不持有任何業務狀態。
package notice

import "sync"

type Severity string

const (
	SeverityDefault     Severity = "default"
	SeverityDestructive Severity = "destructive"
)

type Notice struct {
	Severity    Severity `json:"severity"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
}

type Notifier interface {
	Notify(n Notice)
}

// Error 建立 destructive 等級的錯誤通知
func Error(description string) Notice {
	return Notice{Severity: SeverityDestructive, Title: "Error", Description: description}
}

// Recorder 收集一次請求中發出的通知，交給 handler 回傳
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// Discard 丟棄所有通知
var Discard Notifier = discard{}

type discard struct{}

func (discard) Notify(Notice) {}
