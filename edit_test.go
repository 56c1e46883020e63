package sandcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEditor_DrawStrokeBridgesGap(t *testing.T) {
	table, err := LoadBundle("test", testBundle(t))
	require.NoError(t, err)
	g := NewGrid(32, 32, table)
	e := NewEditor(g, table)

	e.DrawStroke(0, 0, 0, 1, false, ShapeCircle)
	e.DrawStroke(10, 0, 0, 1, false, ShapeCircle)

	for x := 0; x <= 10; x++ {
		id, _, _, _ := g.Cell(x, 0)
		assert.Equal(t, uint8(1), id, "stroke should bridge from (0,0) to (10,0)")
	}
}

func TestEditor_ClearStrokeStartsFreshSegment(t *testing.T) {
	table, err := LoadBundle("test", testBundle(t))
	require.NoError(t, err)
	g := NewGrid(32, 32, table)
	e := NewEditor(g, table)

	e.DrawStroke(0, 0, 0, 1, false, ShapeCircle)
	e.ClearStroke()
	e.DrawStroke(20, 0, 0, 1, false, ShapeCircle)

	id, _, _, _ := g.Cell(10, 0)
	assert.Equal(t, EmptyID, id, "no bridge should be drawn across a cleared stroke")
}

func TestEditor_FloodFillRespectsRegionBoundary(t *testing.T) {
	table, err := LoadBundle("test", testBundle(t))
	require.NoError(t, err)
	g := NewGrid(16, 16, table)
	// A vertical wall of rock splits the grid in two.
	for y := 0; y < 16; y++ {
		g.SetCell(8, y, 4, 20)
	}
	g.SetCell(0, 0, 1, 20)

	e := NewEditor(g, table)
	filled := e.FloodFill(0, 0, 3)
	assert.Greater(t, filled, 0)

	idLeft, _, _, _ := g.Cell(0, 0)
	idRight, _, _, _ := g.Cell(15, 15)
	assert.Equal(t, uint8(3), idLeft)
	assert.Equal(t, EmptyID, idRight, "fill must not cross the rock wall")
}

func TestEditor_SnapshotRoundTripsType(t *testing.T) {
	table, err := LoadBundle("test", testBundle(t))
	require.NoError(t, err)
	g := NewGrid(8, 8, table)
	e := NewEditor(g, table)
	e.AddParticle(2, 2, 1)
	e.AddParticle(5, 5, 2)

	snap := e.SaveSnapshot()

	g2 := NewGrid(8, 8, table)
	e2 := NewEditor(g2, table)
	require.NoError(t, e2.LoadSnapshot(snap))

	for i := range g.Type {
		assert.Equal(t, g.Type[i], g2.Type[i])
	}
}

func TestEditor_LoadSnapshotRejectsWrongSize(t *testing.T) {
	table, err := LoadBundle("test", testBundle(t))
	require.NoError(t, err)
	g := NewGrid(8, 8, table)
	e := NewEditor(g, table)

	err2 := e.LoadSnapshot(make([]byte, 10))
	require.Error(t, err2)
}

func TestEditor_SpawnRigidStampIgnoresGravity(t *testing.T) {
	table, err := LoadBundle("test", testBundle(t))
	require.NoError(t, err)
	g := NewGrid(16, 16, table)
	e := NewEditor(g, table)
	e.SpawnRigidStamp(4, 4, 2, 2, ShapeSquare, 4)

	s := NewStepper()
	settings := DefaultSettings()
	for i := 0; i < 10; i++ {
		require.Nil(t, s.Tick(g, table, &settings))
	}

	id, _, _, _ := g.Cell(4, 4)
	assert.Equal(t, uint8(4), id, "a solid stamp stays put regardless of the stepper")
}
