package frame

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced time source.
type fakeClock struct{ t time.Time }

func newFakeClock() *fakeClock               { return &fakeClock{t: time.Unix(1700000000, 0)} }
func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestLoopRunsInDeadlineOrder(t *testing.T) {
	clock := newFakeClock()
	loop := NewLoop(clock.now)

	var order []string
	loop.AfterFunc(30*time.Millisecond, func() { order = append(order, "c") })
	loop.AfterFunc(10*time.Millisecond, func() { order = append(order, "a") })
	loop.AfterFunc(10*time.Millisecond, func() { order = append(order, "b") })
	require.Equal(t, 3, loop.Pending())

	assert.Equal(t, 0, loop.Poll())

	clock.advance(10 * time.Millisecond)
	assert.Equal(t, 2, loop.Poll())
	assert.Equal(t, []string{"a", "b"}, order)

	clock.advance(19 * time.Millisecond)
	assert.Equal(t, 0, loop.Poll(), "never early")

	clock.advance(time.Millisecond)
	assert.Equal(t, 1, loop.Poll())
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, 0, loop.Pending())
}

func TestLoopStop(t *testing.T) {
	clock := newFakeClock()
	loop := NewLoop(clock.now)

	ran := false
	stop := loop.AfterFunc(time.Millisecond, func() { ran = true })
	assert.True(t, stop())
	assert.False(t, stop(), "second stop is a no-op")

	clock.advance(time.Second)
	loop.Poll()
	assert.False(t, ran)
}

func TestLoopZeroDelayFromCallback(t *testing.T) {
	clock := newFakeClock()
	loop := NewLoop(clock.now)

	count := 0
	loop.AfterFunc(0, func() {
		count++
		loop.AfterFunc(0, func() { count++ })
	})
	assert.Equal(t, 2, loop.Poll())
	assert.Equal(t, 2, count)
}

func TestPipelineSequential(t *testing.T) {
	clock := newFakeClock()
	loop := NewLoop(clock.now)

	var order []string
	done := false
	p := Pipeline{
		Stages: []Stage{
			{Name: "a", Run: func() { order = append(order, "a") }, Hold: 200 * time.Millisecond},
			{Name: "b", Run: func() { order = append(order, "b") }, Hold: 100 * time.Millisecond},
			{Name: "c", Run: func() { order = append(order, "c") }},
		},
		Done: func() { done = true },
	}
	p.Start(context.Background(), loop)
	assert.Equal(t, []string{"a"}, order, "first stage runs synchronously")

	clock.advance(199 * time.Millisecond)
	loop.Poll()
	assert.Equal(t, []string{"a"}, order)

	clock.advance(time.Millisecond)
	loop.Poll()
	assert.Equal(t, []string{"a", "b"}, order)

	clock.advance(100 * time.Millisecond)
	loop.Poll()
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.True(t, done)
	assert.Equal(t, 0, loop.Pending())
}

func TestPipelineCancel(t *testing.T) {
	clock := newFakeClock()
	loop := NewLoop(clock.now)

	var order []string
	done := false
	p := Pipeline{
		Stages: []Stage{
			{Name: "a", Run: func() { order = append(order, "a") }, Hold: 200 * time.Millisecond},
			{Name: "b", Run: func() { order = append(order, "b") }},
		},
		Done: func() { done = true },
	}
	cancel := p.Start(context.Background(), loop)
	cancel()
	cancel()

	clock.advance(time.Second)
	loop.Poll()
	assert.Equal(t, []string{"a"}, order)
	assert.False(t, done)
	assert.Equal(t, 0, loop.Pending())
}

func TestPipelineParentContext(t *testing.T) {
	clock := newFakeClock()
	loop := NewLoop(clock.now)

	ctx, cancel := context.WithCancel(context.Background())
	ran := 0
	p := Pipeline{Stages: []Stage{
		{Run: func() { ran++ }, Hold: 10 * time.Millisecond},
		{Run: func() { ran++ }},
	}}
	p.Start(ctx, loop)
	cancel()

	clock.advance(10 * time.Millisecond)
	loop.Poll()
	assert.Equal(t, 1, ran)
}
