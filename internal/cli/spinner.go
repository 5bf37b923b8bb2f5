package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

// activity animates a one-line spinner on w while a blocking call runs
// outside the terminal editor. It stops when stop is called or ctx ends.
type activity struct {
	w       io.Writer
	message string
	frames  spinner.Spinner

	stopOnce sync.Once
	quit     chan struct{}
	finished chan struct{}
	mu       sync.Mutex
}

// startActivity begins animating message on w.
func startActivity(ctx context.Context, w io.Writer, message string) *activity {
	a := &activity{
		w:        w,
		message:  message,
		frames:   spinner.MiniDot,
		quit:     make(chan struct{}),
		finished: make(chan struct{}),
	}
	go a.run(ctx)
	return a
}

func (a *activity) run(ctx context.Context) {
	defer close(a.finished)
	ticker := time.NewTicker(a.frames.FPS)
	defer ticker.Stop()

	for i := 0; ; i++ {
		a.mu.Lock()
		fmt.Fprintf(a.w, "\r%s %s", styleIconSpinner.Render(a.frames.Frames[i%len(a.frames.Frames)]), StyleDim.Render(a.message))
		a.mu.Unlock()

		select {
		case <-ctx.Done():
			a.clear()
			return
		case <-a.quit:
			a.clear()
			return
		case <-ticker.C:
		}
	}
}

func (a *activity) clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	fmt.Fprintf(a.w, "\r%s\r", strings.Repeat(" ", len([]rune(a.message))+4))
}

// stop ends the animation and waits until the line is cleared. It is safe to
// call more than once.
func (a *activity) stop() {
	a.stopOnce.Do(func() { close(a.quit) })
	<-a.finished
}
