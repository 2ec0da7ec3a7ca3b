package input

import (
	"context"
	"math"
	"time"

	"github.com/miroview/miroview/internal/wire"
)

// swipePlan describes one swipe playback.
type swipePlan struct {
	x0, y0, x1, y1 int
	steps          int
	duration       time.Duration
}

// emitFunc plays one pointer event of an in-flight swipe.
type emitFunc func(action byte, x, y int) error

// SwipeTask owns the playback of a single swipe. Playback runs on its own
// goroutine; Cancel stops it mid-swipe and the pointer is still released at
// the last point reached.
type SwipeTask struct {
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// startSwipe begins playback. The down event has already been emitted by the
// caller; the task owns the moves and the final up.
func startSwipe(ctx context.Context, plan swipePlan, emit emitFunc) *SwipeTask {
	ctx, cancel := context.WithCancel(ctx)
	task := &SwipeTask{cancel: cancel, done: make(chan struct{})}

	if plan.steps <= 0 {
		plan.steps = 1
	}
	interval := plan.duration / time.Duration(plan.steps)

	go func() {
		defer close(task.done)
		defer cancel()

		x, y := plan.x0, plan.y0
		ticker := time.NewTicker(maxDuration(interval, time.Millisecond))
		defer ticker.Stop()

		for i := 1; i <= plan.steps; i++ {
			select {
			case <-ctx.Done():
				// Mid-swipe cancellation: release at the last point reached.
				task.err = emit(wire.ActionUp, x, y)
				return
			case <-ticker.C:
			}
			t := float64(i) / float64(plan.steps)
			x = lerp(plan.x0, plan.x1, t)
			y = lerp(plan.y0, plan.y1, t)
			if err := emit(wire.ActionMove, x, y); err != nil {
				task.err = err
				return
			}
		}
		task.err = emit(wire.ActionUp, plan.x1, plan.y1)
	}()
	return task
}

// CompletedSwipeTask returns a task that has already finished, for
// forwarders that dispatch the whole swipe in one call and for test fakes.
func CompletedSwipeTask() *SwipeTask {
	done := make(chan struct{})
	close(done)
	return &SwipeTask{cancel: func() {}, done: done}
}

// Cancel stops playback mid-swipe. It is safe to call more than once.
func (t *SwipeTask) Cancel() {
	t.cancel()
}

// Done is closed when playback has finished or been cancelled.
func (t *SwipeTask) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until playback finishes and returns its terminal error.
func (t *SwipeTask) Wait() error {
	<-t.done
	return t.err
}

// lerp linearly interpolates between two pixel coordinates.
func lerp(a, b int, t float64) int {
	return a + int(math.Round(float64(b-a)*t))
}

// maxDuration returns the larger of two durations.
func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}
