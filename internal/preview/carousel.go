package preview

import (
	"fmt"
	"math"
	"sync"
)

const ScrollBehaviorSmooth = "smooth"

// Scroll 要求 viewport 捲動到的位置
type Scroll struct {
	Left     float64 `json:"left"`
	Behavior string  `json:"behavior"`
}

// Dot 分頁指示點
type Dot struct {
	Index  int    `json:"index"`
	Active bool   `json:"active"`
	Label  string `json:"label"`
}

// Carousel 持有目前顯示第幾張票卡。
// GoTo (點擊指示點) 與 ScrollSettled (使用者實際滑動) 寫入同一個狀態，最後寫入者為準。
type Carousel struct {
	mu            sync.Mutex
	count         int
	activeIndex   int
	viewportWidth float64
}

func NewCarousel(count int, viewportWidth float64) *Carousel {
	if count < 1 {
		count = 1
	}
	return &Carousel{count: count, viewportWidth: viewportWidth}
}

func (c *Carousel) Count() int {
	return c.count
}

func (c *Carousel) ActiveIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeIndex
}

func (c *Carousel) ViewportWidth() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewportWidth
}

// Resize 更新 viewport 寬度，寬度必須為正數
func (c *Carousel) Resize(width float64) bool {
	if width <= 0 || math.IsNaN(width) || math.IsInf(width, 0) {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.viewportWidth = width
	return true
}

// GoTo 切換到第 i 張，超出範圍時夾到最近的邊界
func (c *Carousel) GoTo(i int) Scroll {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.activeIndex = c.clamp(i)
	return Scroll{
		Left:     float64(c.activeIndex) * c.viewportWidth,
		Behavior: ScrollBehaviorSmooth,
	}
}

// ScrollSettled viewport 停止捲動後回報的位移，換算成目前的票卡
func (c *Carousel) ScrollSettled(offset float64) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.viewportWidth <= 0 || math.IsNaN(offset) {
		return c.activeIndex
	}
	// 與瀏覽器 Math.round 相同：.5 一律進位
	idx := math.Floor(offset/c.viewportWidth + 0.5)
	switch {
	case idx < 0:
		c.activeIndex = 0
	case idx >= float64(c.count):
		c.activeIndex = c.count - 1
	default:
		c.activeIndex = int(idx)
	}
	return c.activeIndex
}

func (c *Carousel) Pagination() []Dot {
	c.mu.Lock()
	defer c.mu.Unlock()
	dots := make([]Dot, c.count)
	for i := range dots {
		dots[i] = Dot{
			Index:  i,
			Active: i == c.activeIndex,
			Label:  fmt.Sprintf("Go to slide %d", i+1),
		}
	}
	return dots
}

func (c *Carousel) clamp(i int) int {
	if i < 0 {
		return 0
	}
	if i >= c.count {
		return c.count - 1
	}
	return i
}
