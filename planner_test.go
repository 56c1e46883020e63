package sandcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanner_ForceFullWithNoDirtyChunks(t *testing.T) {
	table, err := LoadBundle("test", testBundle(t))
	require.NoError(t, err)
	g := NewGrid(64, 64, table)
	g.ResetDirtyScratch()

	p := NewPlanner()
	plan := p.Plan(g, true)
	assert.Equal(t, PlanFullFrame, plan.Kind)
}

func TestPlanner_SingleDirtyChunkYieldsOneRect(t *testing.T) {
	table, err := LoadBundle("test", testBundle(t))
	require.NoError(t, err)
	g := NewGrid(64, 64, table)
	g.SetCell(1, 1, 1, 20)

	p := NewPlanner()
	plan := p.Plan(g, false)
	require.Equal(t, PlanChunks, plan.Kind)
	require.Len(t, plan.Rects, 1)
	assert.Equal(t, Rect{X: 0, Y: 0, W: ChunkSize, H: ChunkSize}, plan.Rects[0])
}

func TestPlanner_ManyDirtyChunksFallBackToFullFrame(t *testing.T) {
	table, err := LoadBundle("test", testBundle(t))
	require.NoError(t, err)
	g := NewGrid(4*ChunkSize, 4*ChunkSize, table)
	// Touch every chunk, well above the 40% per-chunk threshold.
	for cy := 0; cy < 4; cy++ {
		for cx := 0; cx < 4; cx++ {
			g.SetCell(cx*ChunkSize, cy*ChunkSize, 1, 20)
		}
	}

	p := NewPlanner()
	plan := p.Plan(g, false)
	assert.Equal(t, PlanFullFrame, plan.Kind)
}

func TestPlanner_UnalignedWorldFallsBackToFullFrame(t *testing.T) {
	table, err := LoadBundle("test", testBundle(t))
	require.NoError(t, err)
	g := NewGrid(ChunkSize+5, ChunkSize+5, table)
	g.SetCell(0, 0, 1, 20)

	p := NewPlanner()
	plan := p.Plan(g, false)
	assert.Equal(t, PlanFullFrame, plan.Kind)
}

func TestPlanner_MergeRectsCoalescesAdjacentChunks(t *testing.T) {
	table, err := LoadBundle("test", testBundle(t))
	require.NoError(t, err)
	// A large world so the two dirty chunks stay well under both the
	// dirty-ratio and merged-area fallback thresholds.
	g := NewGrid(4*ChunkSize, 4*ChunkSize, table)
	g.SetCell(0, 0, 1, 20)
	g.SetCell(ChunkSize, 0, 1, 20)

	p := NewPlanner()
	p.Config.MergeRects = true
	plan := p.Plan(g, false)
	require.Equal(t, PlanRects, plan.Kind)
	require.Len(t, plan.Rects, 1, "two horizontally adjacent dirty chunks should merge into one span")
	assert.Equal(t, Rect{X: 0, Y: 0, W: 2 * ChunkSize, H: ChunkSize}, plan.Rects[0])
}
