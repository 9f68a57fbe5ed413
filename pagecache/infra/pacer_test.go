package infra

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIntervalPacer_DisabledAllowsEverything(t *testing.T) {
	p := NewIntervalPacer(0)
	for i := 0; i < 10; i++ {
		require.True(t, p.Allow())
	}

	var nilPacer *IntervalPacer
	require.True(t, nilPacer.Allow())
}

func TestIntervalPacer_RejectsSecondImmediateAllow(t *testing.T) {
	p := NewIntervalPacer(time.Hour)
	require.Equal(t, time.Hour, p.Interval())

	require.True(t, p.Allow(), "expected first Allow to be true")
	require.False(t, p.Allow(), "expected second immediate Allow to be false (burst=1)")
}

func TestIntervalPacer_AllowsAgainAfterInterval(t *testing.T) {
	p := NewIntervalPacer(5 * time.Millisecond)

	require.True(t, p.Allow())
	time.Sleep(15 * time.Millisecond)
	require.True(t, p.Allow())
}
