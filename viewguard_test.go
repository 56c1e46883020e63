package sandcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewGuard_RefreshIsStableAcrossCalls(t *testing.T) {
	table, err := LoadBundle("test", testBundle(t))
	require.NoError(t, err)
	g := NewGrid(8, 8, table)
	vg := NewViewGuard()

	cv1 := vg.Refresh(g)
	cv2 := vg.Refresh(g)
	assert.Equal(t, cv1.Epoch(), cv2.Epoch(), "no resize happened, epoch must not advance")
}

func TestViewGuard_ResizeBumpsEpoch(t *testing.T) {
	table, err := LoadBundle("test", testBundle(t))
	require.NoError(t, err)
	g := NewGrid(8, 8, table)
	vg := NewViewGuard()

	cv1 := vg.Refresh(g)
	g.Resize(16, 16)
	cv2 := vg.Refresh(g)

	assert.Greater(t, cv2.Epoch(), cv1.Epoch())
	assert.Len(t, cv2.Types, 16*16)
}

func TestViewGuard_ViewsAliasGridArrays(t *testing.T) {
	table, err := LoadBundle("test", testBundle(t))
	require.NoError(t, err)
	g := NewGrid(8, 8, table)
	vg := NewViewGuard()

	cv := vg.Refresh(g)
	g.SetCell(3, 3, 1, 20)
	assert.Equal(t, uint8(1), cv.Types[g.index(3, 3)], "views must alias the live backing arrays, not a copy")
}
