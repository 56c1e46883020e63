package sandcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepper_SandFalls(t *testing.T) {
	table, err := LoadBundle("test", testBundle(t))
	require.NoError(t, err)
	g := NewGrid(8, 8, table)
	g.SetCell(3, 0, 1, 20) // sand

	s := NewStepper()
	settings := DefaultSettings()
	for i := 0; i < 7; i++ {
		require.Nil(t, s.Tick(g, table, &settings))
	}

	id, _, _, _ := g.Cell(3, 7)
	assert.Equal(t, uint8(1), id, "sand should have fallen to the floor")
}

func TestStepper_DeterministicGivenSameInputs(t *testing.T) {
	table, err := LoadBundle("test", testBundle(t))
	require.NoError(t, err)

	run := func() []uint8 {
		g := NewGrid(16, 16, table)
		g.SetCell(4, 0, 1, 20)
		g.SetCell(6, 0, 2, 20)
		s := NewStepper()
		settings := DefaultSettings()
		for i := 0; i < 20; i++ {
			require.Nil(t, s.Tick(g, table, &settings))
		}
		return append([]uint8(nil), g.Type...)
	}

	a := run()
	b := run()
	assert.Equal(t, a, b, "identical initial state and settings must reproduce the same world (P1)")
}

func TestStepper_PhaseHeatConvergesTowardAmbient(t *testing.T) {
	table, err := LoadBundle("test", testBundle(t))
	require.NoError(t, err)
	g := NewGrid(8, 8, table)
	g.SetCell(4, 4, 4, 500) // rock: solid, doesn't fall, isolates the heat phase

	s := NewStepper()
	settings := DefaultSettings()
	settings.AmbientTemperature = 20

	_, _, initial, _ := g.Cell(4, 4)
	for i := 0; i < 50; i++ {
		require.Nil(t, s.Tick(g, table, &settings))
	}
	_, _, final, _ := g.Cell(4, 4)

	assert.Less(t, final, initial, "a hot isolated cell should cool toward ambient")
}

func TestStepper_ReactionTransformsBothCells(t *testing.T) {
	table, err := LoadBundle("test", testBundle(t))
	require.NoError(t, err)
	g := NewGrid(8, 8, table)
	g.SetCell(0, 0, 1, 20) // sand
	g.SetCell(1, 0, 2, 20) // water, adjacent

	s := NewStepper()
	settings := DefaultSettings()
	settings.GravityY = 0
	require.Nil(t, s.Tick(g, table, &settings))

	id0, _, _, _ := g.Cell(0, 0)
	id1, _, _, _ := g.Cell(1, 0)
	assert.Equal(t, uint8(3), id0, "sand should become mud")
	assert.Equal(t, EmptyID, id1, "water should be consumed")
}

func TestStepper_QuietChunkFallsAsleep(t *testing.T) {
	table, err := LoadBundle("test", testBundle(t))
	require.NoError(t, err)
	g := NewGrid(ChunkSize, ChunkSize, table)
	g.SetCell(0, 0, 0, 20) // empty cell, write nothing meaningful but touch the chunk once

	s := NewStepper()
	settings := DefaultSettings()
	for i := 0; i < SleepThreshold+5; i++ {
		require.Nil(t, s.Tick(g, table, &settings))
	}

	assert.True(t, g.isChunkSleeping(0))
}

func TestStepper_RecoversIsCrashedAfterPanic(t *testing.T) {
	table, err := LoadBundle("test", testBundle(t))
	require.NoError(t, err)
	g := NewGrid(4, 4, table)
	// Corrupt the grid dimensions relative to its arrays to force an
	// out-of-range index panic inside a phase.
	g.W = 1000

	s := NewStepper()
	settings := DefaultSettings()
	err2 := s.Tick(g, table, &settings)
	require.NotNil(t, err2)
	assert.True(t, s.IsCrashed())
	assert.Equal(t, RuntimeTrap, s.CrashError().Kind)
	assert.True(t, s.CrashError().CanRecover())

	// Further ticks return the same crash without panicking again.
	err3 := s.Tick(g, table, &settings)
	assert.Equal(t, err2, err3)
}
