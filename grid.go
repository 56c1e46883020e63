package sandcore

// Chunk edge length in cells, spec §3.4.
const ChunkSize = 32

// SleepThreshold is the number of consecutive quiet ticks after which a
// chunk is skipped by the stepper (spec §3.4/§4.C Phase 6).
const SleepThreshold = 30

// Grid owns the three parallel cell arrays and the chunk map (Component
// B). It allocates fresh arrays on every resize and never grows in place
// (invariant C3).
type Grid struct {
	W, H int

	Type        []uint8
	Color       []uint32
	Temperature []float32
	lifetime    []uint16 // out-of-band per-cell lifetime counter, §4.C Phase 5

	chunksX, chunksY int
	chunkDirty       []bool
	chunkSleep       []int
	chunkTouchedTick []bool // reset once per tick by the stepper; used for Phase 6 sleep accounting
	dirtyScratch     []int  // contiguous scratch list of dirty chunk indices

	table *Table
}

// NewGrid allocates a W x H grid, all cells EMPTY.
func NewGrid(w, h int, table *Table) *Grid {
	g := &Grid{table: table}
	g.Resize(w, h)
	return g
}

// Resize reallocates all backing arrays at the new dimensions and clears
// them (invariant C3: resizing never mutates in place).
func (g *Grid) Resize(w, h int) {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	g.W, g.H = w, h
	n := w * h
	g.Type = make([]uint8, n)
	g.Color = make([]uint32, n)
	g.Temperature = make([]float32, n)
	g.lifetime = make([]uint16, n)

	g.chunksX = ceilDiv(w, ChunkSize)
	g.chunksY = ceilDiv(h, ChunkSize)
	nc := g.chunksX * g.chunksY
	g.chunkDirty = make([]bool, nc)
	g.chunkSleep = make([]int, nc)
	g.chunkTouchedTick = make([]bool, nc)
	g.dirtyScratch = g.dirtyScratch[:0]
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

// Clear resets every cell to EMPTY without reallocating.
func (g *Grid) Clear() {
	for i := range g.Type {
		g.Type[i] = EmptyID
		g.Color[i] = 0
		g.Temperature[i] = 0
		g.lifetime[i] = 0
	}
	for i := range g.chunkDirty {
		if !g.chunkDirty[i] {
			g.chunkDirty[i] = true
			g.dirtyScratch = append(g.dirtyScratch, i)
		}
		g.chunkSleep[i] = 0
	}
}

func (g *Grid) inBounds(x, y int) bool {
	return x >= 0 && x < g.W && y >= 0 && y < g.H
}

func (g *Grid) index(x, y int) int { return y*g.W + x }

func (g *Grid) chunkIndex(x, y int) int {
	cx, cy := x/ChunkSize, y/ChunkSize
	return cy*g.chunksX + cx
}

// Cell returns the cell at (x,y). The bool is false when out of bounds.
func (g *Grid) Cell(x, y int) (id uint8, color uint32, temp float32, ok bool) {
	if !g.inBounds(x, y) {
		return 0, 0, 0, false
	}
	i := g.index(x, y)
	return g.Type[i], g.Color[i], g.Temperature[i], true
}

// SetCell sets the element id and temperature of (x,y), derives Color from
// the content table's palette (seed fixed at 0 unless SetCellSeeded is
// used), and marks the covering chunk dirty. Out of bounds is a no-op
// (spec §4.B).
func (g *Grid) SetCell(x, y int, id uint8, temp float32) {
	g.SetCellSeeded(x, y, id, temp, 0)
}

// SetCellSeeded is SetCell with an explicit palette seed (spawn-time
// random 5-bit value, spec §3.2).
func (g *Grid) SetCellSeeded(x, y int, id uint8, temp float32, seed uint8) {
	if !g.inBounds(x, y) {
		return
	}
	i := g.index(x, y)
	g.Type[i] = id
	g.Temperature[i] = clampTemp(temp)
	if id == EmptyID {
		g.Color[i] = 0
		g.lifetime[i] = 0
	} else {
		g.Color[i] = g.table.ColorVariant(id, seed)
		if el := g.table.ElementByID(id); el != nil {
			g.lifetime[i] = el.Lifetime
		}
	}
	g.MarkDirty(x, y)
}

// swap exchanges two cells' (type, color, temperature, lifetime) and marks
// both covering chunks dirty — used by the stepper's movement phase.
func (g *Grid) swap(x1, y1, x2, y2 int) {
	if !g.inBounds(x1, y1) || !g.inBounds(x2, y2) {
		return
	}
	i, j := g.index(x1, y1), g.index(x2, y2)
	g.Type[i], g.Type[j] = g.Type[j], g.Type[i]
	g.Color[i], g.Color[j] = g.Color[j], g.Color[i]
	g.Temperature[i], g.Temperature[j] = g.Temperature[j], g.Temperature[i]
	g.lifetime[i], g.lifetime[j] = g.lifetime[j], g.lifetime[i]
	g.MarkDirty(x1, y1)
	g.MarkDirty(x2, y2)
}

// MarkDirty marks the chunk covering (x,y) dirty and resets its sleep
// counter. A no-op out of bounds.
func (g *Grid) MarkDirty(x, y int) {
	if !g.inBounds(x, y) {
		return
	}
	ci := g.chunkIndex(x, y)
	if !g.chunkDirty[ci] {
		g.chunkDirty[ci] = true
		g.dirtyScratch = append(g.dirtyScratch, ci)
	}
	g.chunkSleep[ci] = 0
	g.chunkTouchedTick[ci] = true
}

// resetTouchedTick clears the per-tick write-tracking array; called once
// per tick by the stepper's prologue (Phase 0).
func (g *Grid) resetTouchedTick() {
	for i := range g.chunkTouchedTick {
		g.chunkTouchedTick[i] = false
	}
}

// Neighbors4 returns the 4-connected neighbor coordinates of (x,y) that
// are in bounds.
func (g *Grid) Neighbors4(x, y int) [][2]int {
	candidates := [4][2]int{{x + 1, y}, {x - 1, y}, {x, y + 1}, {x, y - 1}}
	out := make([][2]int, 0, 4)
	for _, c := range candidates {
		if g.inBounds(c[0], c[1]) {
			out = append(out, c)
		}
	}
	return out
}

// Neighbors8 returns the 8-connected neighbor coordinates of (x,y) that
// are in bounds.
func (g *Grid) Neighbors8(x, y int) [][2]int {
	out := make([][2]int, 0, 8)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := x+dx, y+dy
			if g.inBounds(nx, ny) {
				out = append(out, [2]int{nx, ny})
			}
		}
	}
	return out
}

// DirtyChunks returns the contiguous scratch list of dirty chunk indices
// accumulated since the last call to ResetDirtyScratch, exposed without
// copying for Component F.
func (g *Grid) DirtyChunks() []int { return g.dirtyScratch }

// ResetDirtyScratch clears the scratch list in place (reused by the frame
// driver after the planner has consumed it for the frame).
func (g *Grid) ResetDirtyScratch() {
	for _, ci := range g.dirtyScratch {
		g.chunkDirty[ci] = false
	}
	g.dirtyScratch = g.dirtyScratch[:0]
}

func (g *Grid) ChunksX() int { return g.chunksX }
func (g *Grid) ChunksY() int { return g.chunksY }

// ChunkRect returns the pixel rectangle covered by chunk index ci, clamped
// to the grid bounds.
func (g *Grid) ChunkRect(ci int) (x, y, w, h int) {
	cx := ci % g.chunksX
	cy := ci / g.chunksX
	x, y = cx*ChunkSize, cy*ChunkSize
	w = ChunkSize
	if x+w > g.W {
		w = g.W - x
	}
	h = ChunkSize
	if y+h > g.H {
		h = g.H - y
	}
	return
}

func (g *Grid) isChunkSleeping(ci int) bool { return g.chunkSleep[ci] >= SleepThreshold }

func (g *Grid) wakeChunk(ci int) { g.chunkSleep[ci] = 0 }

// TypesView, ColorsView, TemperatureView expose raw read-only slices for
// renderer consumption, wrapped by the view guard (Component J) before
// being handed across the host boundary.
func (g *Grid) TypesView() []uint8        { return g.Type }
func (g *Grid) ColorsView() []uint32      { return g.Color }
func (g *Grid) TemperatureView() []float32 { return g.Temperature }
