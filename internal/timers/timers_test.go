package timers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestAfter_FiresOnceAtDeadline(t *testing.T) {
	w := NewWheel(epoch)
	calls := 0
	tm := w.After(300*time.Millisecond, func(time.Time) { calls++ })

	assert.Equal(t, 0, w.Advance(epoch.Add(299*time.Millisecond)))
	assert.Equal(t, 0, calls)
	assert.True(t, tm.Active())

	assert.Equal(t, 1, w.Advance(epoch.Add(300*time.Millisecond)))
	assert.Equal(t, 1, calls)
	assert.False(t, tm.Active())

	w.Advance(epoch.Add(time.Hour))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, w.Len())
}

func TestAdvance_FiresInDeadlineOrder(t *testing.T) {
	w := NewWheel(epoch)
	var order []string
	w.After(30*time.Millisecond, func(time.Time) { order = append(order, "c") })
	w.After(10*time.Millisecond, func(time.Time) { order = append(order, "a") })
	w.After(20*time.Millisecond, func(time.Time) { order = append(order, "b") })
	w.After(20*time.Millisecond, func(time.Time) { order = append(order, "b2") })

	w.Advance(epoch.Add(time.Second))
	assert.Equal(t, []string{"a", "b", "b2", "c"}, order)
}

func TestCancel_Idempotent(t *testing.T) {
	w := NewWheel(epoch)
	fired := false
	tm := w.After(time.Millisecond, func(time.Time) { fired = true })

	assert.True(t, tm.Cancel())
	assert.False(t, tm.Cancel())
	w.Advance(epoch.Add(time.Second))
	assert.False(t, fired)

	var nilTimer *Timer
	assert.False(t, nilTimer.Cancel())
}

func TestCancel_FromEarlierCallback(t *testing.T) {
	w := NewWheel(epoch)
	fired := false
	var second *Timer
	w.After(time.Millisecond, func(time.Time) { second.Cancel() })
	second = w.After(2*time.Millisecond, func(time.Time) { fired = true })

	w.Advance(epoch.Add(time.Second))
	assert.False(t, fired)
}

func TestEvery_FiresOncePerAdvance(t *testing.T) {
	w := NewWheel(epoch)
	var at []time.Time
	tm := w.Every(5*time.Second, func(now time.Time) { at = append(at, now) })

	w.Advance(epoch.Add(4 * time.Second))
	assert.Empty(t, at)

	w.Advance(epoch.Add(5 * time.Second))
	require.Len(t, at, 1)

	// a long stall fires once and re-anchors
	w.Advance(epoch.Add(60 * time.Second))
	require.Len(t, at, 2)
	assert.Equal(t, epoch.Add(65*time.Second), tm.Deadline())

	tm.Cancel()
	w.Advance(epoch.Add(time.Hour))
	assert.Len(t, at, 2)
}

func TestCallbackMaySchedule(t *testing.T) {
	w := NewWheel(epoch)
	calls := 0
	w.After(time.Millisecond, func(time.Time) {
		calls++
		w.After(0, func(time.Time) { calls++ })
	})

	assert.Equal(t, 2, w.Advance(epoch.Add(time.Millisecond)))
	assert.Equal(t, 2, calls)
}

func TestRearm(t *testing.T) {
	w := NewWheel(epoch)
	calls := 0
	tm := w.After(time.Second, func(time.Time) { calls++ })

	w.Advance(epoch.Add(500 * time.Millisecond))
	tm.Cancel()
	tm = w.After(time.Second, func(time.Time) { calls++ })
	assert.Equal(t, epoch.Add(1500*time.Millisecond), tm.Deadline())

	w.Advance(epoch.Add(time.Second))
	assert.Equal(t, 0, calls)
	w.Advance(epoch.Add(1500 * time.Millisecond))
	assert.Equal(t, 1, calls)
}

func TestCancelAll(t *testing.T) {
	w := NewWheel(epoch)
	calls := 0
	a := w.After(time.Millisecond, func(time.Time) { calls++ })
	w.Every(time.Millisecond, func(time.Time) { calls++ })

	w.CancelAll()
	assert.Equal(t, 0, w.Len())
	assert.False(t, a.Active())
	w.Advance(epoch.Add(time.Second))
	assert.Equal(t, 0, calls)
}

func TestAdvance_IgnoresBackwardsTime(t *testing.T) {
	w := NewWheel(epoch)
	w.Advance(epoch.Add(time.Second))
	w.Advance(epoch)
	assert.Equal(t, epoch.Add(time.Second), w.Now())
}
