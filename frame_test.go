package sandcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFrameHarness(t *testing.T) (*FrameDriver, *Settings, *Ring, *Editor, *Stepper, *Grid, *Table, *Planner) {
	t.Helper()
	table, err := LoadBundle("test", testBundle(t))
	require.NoError(t, err)
	g := NewGrid(16, 16, table)
	editor := NewEditor(g, table)
	stepper := NewStepper()
	settings := DefaultSettings()
	ring := NewRing()
	planner := NewPlanner()
	return NewFrameDriver(), &settings, ring, editor, stepper, g, table, planner
}

func TestFrameDriver_ClampsExcessiveDt(t *testing.T) {
	fd, settings, ring, editor, stepper, g, table, planner := newFrameHarness(t)
	result := fd.RunFrame(1_000_000, settings, ring, editor, stepper, g, table, planner)
	assert.LessOrEqual(t, result.StepsRun, MaxStepsPerFrame)
}

func TestFrameDriver_NoStepsWhenPaused(t *testing.T) {
	fd, settings, ring, editor, stepper, g, table, planner := newFrameHarness(t)
	settings.IsPlaying = false
	g.SetCell(0, 0, 1, 20)

	for i := 0; i < 5; i++ {
		fd.RunFrame(BaseStepMs, settings, ring, editor, stepper, g, table, planner)
	}

	id, _, _, _ := g.Cell(0, 0)
	assert.Equal(t, uint8(1), id, "paused settings must not advance the simulation")
}

func TestFrameDriver_DrainsBrushEventsFromRing(t *testing.T) {
	fd, settings, ring, editor, stepper, g, table, planner := newFrameHarness(t)
	ring.Push(RingEvent{X: 5, Y: 5, Type: EncodeBrush(4), Val: 0}) // rock: stays put so the tick can't move it away

	fd.RunFrame(BaseStepMs, settings, ring, editor, stepper, g, table, planner)

	id, _, _, _ := g.Cell(5, 5)
	assert.Equal(t, uint8(4), id)
}

func TestFrameDriver_RingOverflowCountsTowardStats(t *testing.T) {
	fd, settings, ring, editor, stepper, g, table, planner := newFrameHarness(t)
	for i := 0; i < RingCapacity+5; i++ {
		ring.Push(RingEvent{Type: EventErase})
	}

	result := fd.RunFrame(250, settings, ring, editor, stepper, g, table, planner)
	require.NotNil(t, result.Stats)
	assert.Equal(t, 1, result.Stats.RingOverflows)
}

func TestFrameDriver_StatsEmittedOnBoundary(t *testing.T) {
	fd, settings, ring, editor, stepper, g, table, planner := newFrameHarness(t)
	result := fd.RunFrame(250, settings, ring, editor, stepper, g, table, planner)
	require.NotNil(t, result.Stats)
	assert.GreaterOrEqual(t, result.Stats.FPS, 0.0)
}

func TestFrameDriver_BumpLoopTokenInvalidatesPriorToken(t *testing.T) {
	fd := NewFrameDriver()
	tok := fd.LoopToken()
	assert.True(t, fd.TokenValid(tok))
	fd.BumpLoopToken()
	assert.False(t, fd.TokenValid(tok))
}
