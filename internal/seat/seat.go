// Package seat 由一張票券的起始座位與張數推導出所有座位編號。
// 預覽與轉讓畫面都必須呼叫這裡，兩邊算出的座位才會一致。
package seat

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Derive 回傳 ClampCount(ticketCount) 個座位編號，依 index 遞增。
// baseSeat 可解析為整數時為 base+i，否則每一張都沿用 baseSeat 原字串。
func Derive(baseSeat string, ticketCount int) []string {
	count := ClampCount(ticketCount)
	seats := make([]string, count)

	base, ok := leadingDecimal(baseSeat)
	for i := range seats {
		if !ok {
			seats[i] = baseSeat
			continue
		}
		// decimal 沒有位數上限，超過 int64 的座位號也能連續遞增
		seats[i] = base.Add(decimal.NewFromInt(int64(i))).String()
	}
	return seats
}

// ClampCount 張數最少為 1
func ClampCount(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// ParseCount 解析表單上的張數，空白、0、負數或非數字都視為 1，超過 MaxTickets 時取 MaxTickets
func ParseCount(raw string) int {
	n, ok := leadingDecimal(raw)
	if !ok || n.LessThan(decimal.NewFromInt(1)) {
		return 1
	}
	if n.GreaterThan(decimal.NewFromInt(MaxTickets)) {
		return MaxTickets
	}
	return int(n.IntPart())
}

// MaxTickets 單一表單可產生的票卡上限
const MaxTickets = 100

// GridColumns 轉讓畫面座位格的欄數
func GridColumns(ticketCount int) int {
	switch {
	case ticketCount <= 2:
		return 2
	case ticketCount <= 3:
		return 3
	default:
		return 4
	}
}

// leadingDecimal 讀取字串開頭的十進位整數 (可帶正負號)，其後的字元忽略。
// 開頭沒有數字時回傳 false。
func leadingDecimal(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return decimal.Zero, false
	}
	n, err := decimal.NewFromString(strings.TrimPrefix(s[:end], "+"))
	if err != nil {
		return decimal.Zero, false
	}
	return n, true
}
