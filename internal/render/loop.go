package render

import (
	"context"
	"log"
	"time"
)

// DefaultFrameRate is used when no rate is configured.
const DefaultFrameRate = 60

// Interval returns the tick interval for a frame rate in frames per second.
func Interval(fps int) time.Duration {
	if fps <= 0 {
		fps = DefaultFrameRate
	}
	return time.Second / time.Duration(fps)
}

// Loop repaints on every tick whether or not anything changed, so previews
// follow the pointer even when input events arrive irregularly. It never
// mutates state: each tick reads whatever Frame is current.
type Loop struct {
	Interval time.Duration
	// Frame returns the latest published frame, or nil when there is nothing
	// to draw yet.
	Frame func() *Frame
	// Paint draws one frame. Errors and panics are logged and the frame is
	// skipped; the next tick tries again.
	Paint func(ctx context.Context, f *Frame) error
}

// Run ticks until ctx is cancelled.
func (l Loop) Run(ctx context.Context) error {
	interval := l.Interval
	if interval <= 0 {
		interval = Interval(DefaultFrameRate)
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
		l.tick(ctx)
	}
}

func (l Loop) tick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("paint: %v", r)
		}
	}()
	f := l.Frame()
	if f == nil {
		return
	}
	if err := l.Paint(ctx, f); err != nil {
		log.Printf("paint: %v", err)
	}
}
