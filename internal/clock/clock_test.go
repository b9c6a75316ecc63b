package clock

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitTick(t *testing.T, src Source) time.Time {
	t.Helper()
	select {
	case now := <-src.C():
		return now
	case <-time.After(2 * time.Second):
		t.Fatal("no tick delivered")
		return time.Time{}
	}
}

func TestScheduler_Ticks(t *testing.T) {
	src, err := NewScheduler(5 * time.Millisecond)
	require.NoError(t, err)
	defer src.Stop()

	first := waitTick(t, src)
	second := waitTick(t, src)
	assert.True(t, second.After(first))
	assert.Equal(t, 5*time.Millisecond, src.Interval())
}

func TestScheduler_StopIsIdempotentAndFinal(t *testing.T) {
	src, err := NewScheduler(time.Millisecond)
	require.NoError(t, err)
	waitTick(t, src)

	src.Stop()
	src.Stop()

	// drain whatever was buffered before Stop
	select {
	case <-src.C():
	default:
	}
	select {
	case <-src.C():
		t.Fatal("tick after stop")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestScheduler_DropsWhenConsumerIsSlow(t *testing.T) {
	src, err := NewScheduler(time.Millisecond)
	require.NoError(t, err)
	defer src.Stop()

	time.Sleep(30 * time.Millisecond)
	_, dropped := src.(*Scheduler).Ticks()
	assert.Positive(t, dropped)
	assert.LessOrEqual(t, len(src.C()), 1)
}

func TestNewScheduler_InvalidInterval(t *testing.T) {
	_, err := NewScheduler(0)
	assert.ErrorIs(t, err, ErrInterval)
}

func TestStart_UsesPrimary(t *testing.T) {
	src, err := Start(NewScheduler, 5*time.Millisecond, 50*time.Millisecond)
	require.NoError(t, err)
	defer src.Stop()

	_, ok := src.(*Scheduler)
	assert.True(t, ok)
	waitTick(t, src)
}

func TestStart_FallsBackToPeriodic(t *testing.T) {
	broken := func(time.Duration) (Source, error) {
		return nil, errors.New("no worker")
	}

	src, err := Start(broken, 5*time.Millisecond, 10*time.Millisecond)
	require.NoError(t, err)
	defer src.Stop()

	p, ok := src.(*Periodic)
	require.True(t, ok)
	assert.Equal(t, 10*time.Millisecond, p.Interval())
	waitTick(t, src)
}

func TestStart_NilPrimary(t *testing.T) {
	src, err := Start(nil, 0, 10*time.Millisecond)
	require.NoError(t, err)
	defer src.Stop()
	assert.IsType(t, &Periodic{}, src)
}

func TestStart_FallbackFails(t *testing.T) {
	broken := func(time.Duration) (Source, error) {
		return nil, errors.New("no worker")
	}
	_, err := Start(broken, time.Millisecond, 0)
	assert.ErrorIs(t, err, ErrInterval)
}

func TestPeriodic_StopTwice(t *testing.T) {
	p, err := NewPeriodic(time.Millisecond)
	require.NoError(t, err)
	waitTick(t, p)
	p.Stop()
	p.Stop()
}
