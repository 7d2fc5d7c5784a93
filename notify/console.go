package notify

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gookit/color"
)

// Console prints each notification as a coloured line. The duration is
// shown but has no effect since a terminal line cannot be dismissed.
type Console struct {
	mu      sync.Mutex
	out     io.Writer
	colours bool
	now     func() time.Time
}

func NewConsole(out io.Writer, colours bool) *Console {
	return &Console{out: out, colours: colours, now: time.Now}
}

func (c *Console) Notify(title, body string, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	header := fmt.Sprintf("[%s] %s", c.now().Format("15:04:05"), title)
	if c.colours {
		header = color.New(color.BgBlack, color.FgGreen, color.OpBold).Render(header)
	}
	_, _ = fmt.Fprintf(c.out, "%s: %s (%s)\n", header, body, duration)
}
