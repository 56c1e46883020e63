package sandcore

// BrushShape selects the stamp footprint used by brush/erase/rigid-stamp
// operations (spec §4.D).
type BrushShape int

const (
	ShapeCircle BrushShape = iota
	ShapeSquare
	ShapeLine
)

// floodFillCap bounds floodFill to avoid pathological full-grid fills
// (spec §4.D).
const floodFillCap = 200_000

// Editor is the edit surface (Component D). All mutations funnel through
// Grid.SetCell/SetCellSeeded and therefore preserve the §3 invariants
// automatically.
type Editor struct {
	grid  *Grid
	table *Table

	prevX, prevY int
	hasPrev      bool

	// visited is a stamp-based marker for floodFill: instead of clearing
	// the whole buffer between fills, each fill increments fillStamp and
	// compares against it, so repeated fills never allocate.
	visitedStamp []uint32
	fillStamp    uint32

	paletteSeed uint32 // advances on every spawned cell for palette variety
}

func NewEditor(grid *Grid, table *Table) *Editor {
	return &Editor{grid: grid, table: table}
}

// Rebind re-targets the editor at a new grid/table pair (used after a
// world resize or bundle reload).
func (e *Editor) Rebind(grid *Grid, table *Table) {
	e.grid = grid
	e.table = table
	e.visitedStamp = nil
	e.fillStamp = 0
	e.ClearStroke()
}

func (e *Editor) nextSeed() uint8 {
	e.paletteSeed++
	return uint8(e.paletteSeed & 0x1F)
}

// AddParticle places a single element at (x,y).
func (e *Editor) AddParticle(x, y int, id uint8) {
	el := e.table.ElementByID(id)
	temp := float32(20)
	if el != nil {
		temp = el.DefaultTemp
	}
	e.grid.SetCellSeeded(x, y, id, temp, e.nextSeed())
}

// RemoveParticle clears a single cell.
func (e *Editor) RemoveParticle(x, y int) {
	e.grid.SetCell(x, y, EmptyID, e.grid.temperatureAt(x, y))
}

func (g *Grid) temperatureAt(x, y int) float32 {
	if !g.inBounds(x, y) {
		return 0
	}
	return g.Temperature[g.index(x, y)]
}

// AddParticlesInRadius stamps id into every cell within radius r of
// (cx,cy) under the given shape.
func (e *Editor) AddParticlesInRadius(cx, cy, r int, id uint8, shape BrushShape) {
	forEachStampCell(cx, cy, r, shape, func(x, y int) {
		e.AddParticle(x, y, id)
	})
}

// RemoveParticlesInRadius clears every cell within radius r of (cx,cy).
func (e *Editor) RemoveParticlesInRadius(cx, cy, r int, shape BrushShape) {
	forEachStampCell(cx, cy, r, shape, func(x, y int) {
		e.RemoveParticle(x, y)
	})
}

// DrawStroke interpolates a Bresenham line between the previous stroke
// position and (x,y), stamping radius r along it with id (or erasing when
// erase is true). The first call after NewEditor or ClearStroke treats
// (x,y) as the start of a fresh segment (spec §4.D / P4).
func (e *Editor) DrawStroke(x, y, r int, id uint8, erase bool, shape BrushShape) {
	apply := func(px, py int) {
		if erase {
			e.RemoveParticlesInRadius(px, py, r, shape)
		} else {
			e.AddParticlesInRadius(px, py, r, id, shape)
		}
	}

	if !e.hasPrev {
		apply(x, y)
		e.prevX, e.prevY = x, y
		e.hasPrev = true
		return
	}

	forEachBresenhamPoint(e.prevX, e.prevY, x, y, apply)
	e.prevX, e.prevY = x, y
}

// ClearStroke drops the "previous position" so the next DrawStroke call
// starts a fresh segment instead of bridging a gap. Called on END_STROKE
// and on ring overflow (spec §4.D / §4.E).
func (e *Editor) ClearStroke() {
	e.hasPrev = false
}

// FloodFill replaces the connected region of same-typed cells starting at
// (x,y) with id, up to floodFillCap cells, using a stamp-incremented
// visited buffer so repeated fills never allocate (spec §4.D).
func (e *Editor) FloodFill(x, y int, id uint8) int {
	g := e.grid
	n := g.W * g.H
	if len(e.visitedStamp) != n {
		e.visitedStamp = make([]uint32, n)
		e.fillStamp = 0
	}
	e.fillStamp++
	stamp := e.fillStamp

	startID, _, _, ok := g.Cell(x, y)
	if !ok {
		return 0
	}
	if startID == id {
		return 0
	}

	stack := make([][2]int, 0, 1024)
	stack = append(stack, [2]int{x, y})
	e.visitedStamp[g.index(x, y)] = stamp

	filled := 0
	for len(stack) > 0 && filled < floodFillCap {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		px, py := p[0], p[1]

		e.AddParticle(px, py, id)
		filled++

		for _, nb := range g.Neighbors4(px, py) {
			nx, ny := nb[0], nb[1]
			idx := g.index(nx, ny)
			if e.visitedStamp[idx] == stamp {
				continue
			}
			e.visitedStamp[idx] = stamp
			nid, _, _, _ := g.Cell(nx, ny)
			if nid != startID {
				continue
			}
			stack = append(stack, [2]int{nx, ny})
		}
	}
	return filled
}

// SpawnRigidStamp places a rectangular or radial block of a rigid element,
// bypassing normal movement rules (the element is expected to carry the
// Rigid flag; this is a stamp, not rigid-body dynamics, per spec §4.D and
// Design Note 9).
func (e *Editor) SpawnRigidStamp(x, y, w, h int, shape BrushShape, id uint8) {
	if shape == ShapeCircle {
		r := w
		if h > r {
			r = h
		}
		forEachStampCell(x, y, r, ShapeCircle, func(px, py int) {
			e.AddParticle(px, py, id)
		})
		return
	}
	for py := y; py < y+h; py++ {
		for px := x; px < x+w; px++ {
			e.AddParticle(px, py, id)
		}
	}
}

// SaveSnapshot returns the type array as a contiguous byte sequence
// (spec §3.6/§6.2).
func (e *Editor) SaveSnapshot() []byte {
	return append([]byte(nil), e.grid.Type...)
}

// LoadSnapshot recreates the world at the current dimensions from a byte
// sequence of length W*H, replaying every non-EMPTY cell through SetCell
// so color/temperature are regenerated from the content table (spec
// §3.6/§6.2/P7).
func (e *Editor) LoadSnapshot(data []byte) error {
	g := e.grid
	if len(data) != g.W*g.H {
		return newErr(InvalidArgument, "snapshot size mismatch: got %d bytes, want %d", len(data), g.W*g.H)
	}
	g.Clear()
	for i, id := range data {
		if id == EmptyID {
			continue
		}
		x, y := i%g.W, i/g.W
		temp := float32(20)
		if el := e.table.ElementByID(id); el != nil {
			temp = el.DefaultTemp
		}
		g.SetCellSeeded(x, y, id, temp, 0)
	}
	return nil
}

func forEachStampCell(cx, cy, r int, shape BrushShape, fn func(x, y int)) {
	switch shape {
	case ShapeSquare:
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				fn(cx+dx, cy+dy)
			}
		}
	case ShapeLine:
		for d := -r; d <= r; d++ {
			fn(cx+d, cy)
		}
	default: // ShapeCircle: Euclidean
		r2 := r * r
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if dx*dx+dy*dy <= r2 {
					fn(cx+dx, cy+dy)
				}
			}
		}
	}
}

// forEachBresenhamPoint walks the integer line from (x0,y0) to (x1,y1)
// inclusive of both endpoints.
func forEachBresenhamPoint(x0, y0, x1, y1 int, fn func(x, y int)) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	x, y := x0, y0
	for {
		fn(x, y)
		if x == x1 && y == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
