package sandbox

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gil906/Python-solver-stepbystep/internal/trace"
)

func TestGovernorTick(t *testing.T) {
	gov := NewGovernor(Config{MaxSteps: 3, Timeout: time.Second})

	for i := 0; i < 3; i++ {
		require.NoError(t, gov.Tick())
	}
	assert.Equal(t, 3, gov.Steps())
	assert.True(t, gov.Exhausted())

	// refusal does not consume budget
	assert.ErrorIs(t, gov.Tick(), ErrStepLimit)
	assert.ErrorIs(t, gov.Tick(), ErrStepLimit)
	assert.Equal(t, 3, gov.Steps())
}

func TestGovernorBelowBudget(t *testing.T) {
	gov := NewGovernor(Config{MaxSteps: 5, Timeout: time.Second})
	require.NoError(t, gov.Tick())
	require.NoError(t, gov.Tick())
	assert.False(t, gov.Exhausted())
	assert.False(t, gov.TimedOut())
	assert.False(t, gov.Canceled())
}

func TestGovernorWatchTimeout(t *testing.T) {
	gov := NewGovernor(Config{MaxSteps: 100, Timeout: 10 * time.Millisecond})
	fired := make(chan string, 1)

	stop := gov.Watch(context.Background(), func(reason string) { fired <- reason })
	defer stop()

	select {
	case reason := <-fired:
		assert.Equal(t, "Execution timed out", reason)
	case <-time.After(time.Second):
		t.Fatal("watchdog never fired")
	}
	assert.True(t, gov.TimedOut())
	assert.False(t, gov.Canceled())
}

func TestGovernorWatchCancel(t *testing.T) {
	gov := NewGovernor(Config{MaxSteps: 100, Timeout: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())
	fired := make(chan string, 1)

	stop := gov.Watch(ctx, func(reason string) { fired <- reason })
	defer stop()
	cancel()

	select {
	case reason := <-fired:
		assert.Equal(t, "execution canceled", reason)
	case <-time.After(time.Second):
		t.Fatal("watchdog never fired")
	}
	assert.True(t, gov.Canceled())
	assert.False(t, gov.TimedOut())
}

func TestGovernorStopDisarms(t *testing.T) {
	gov := NewGovernor(Config{MaxSteps: 100, Timeout: 30 * time.Millisecond})
	fired := make(chan string, 1)

	stop := gov.Watch(context.Background(), func(reason string) { fired <- reason })
	stop()
	stop() // idempotent

	time.Sleep(60 * time.Millisecond)
	select {
	case reason := <-fired:
		t.Fatalf("watchdog fired after stop: %q", reason)
	default:
	}
	assert.False(t, gov.TimedOut())
}

func TestStdoutBufferCap(t *testing.T) {
	buf := NewStdoutBuffer(10)

	n, err := buf.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	// writes past the cap are dropped but reported as fully written
	n, err = buf.Write([]byte(" world!!"))
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Equal(t, "hello worl", buf.String())
	assert.Equal(t, 10, buf.Len())

	n, err = buf.Write([]byte("more"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, 10, buf.Len())
}

func TestStdoutBufferEmpty(t *testing.T) {
	buf := NewStdoutBuffer(8)
	assert.Equal(t, "", buf.String())
	assert.Equal(t, 0, buf.Len())
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, trace.MaxSteps, cfg.MaxSteps)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, trace.MaxStdoutBytes, cfg.MaxStdoutBytes)
	assert.Equal(t, 500*time.Millisecond, cfg.KillGrace)
}
