package sandcore

// CellViews is the explicit, epoch-checked handle a renderer reads cell
// data through (Component J / Design Note 9). It is logically invalidated
// at tick boundaries: the engine hands out a fresh CellViews at the start
// of each frame, and a renderer must not retain it across frames. The
// epoch lets a renderer written in a language without borrow-checking
// detect a stale handle instead of reading through dangling slices.
type CellViews struct {
	epoch       uint64
	typesPtr    *uint8
	colorsPtr   *uint32
	tempPtr     *float32
	bufferLen   int

	Types       []uint8
	Colors      []uint32
	Temperature []float32
}

// ViewGuard rebuilds CellViews whenever the backing arrays are
// reallocated (world resize/recreate), per spec §4.J.
type ViewGuard struct {
	epoch uint64
	last  CellViews
}

func NewViewGuard() *ViewGuard { return &ViewGuard{} }

// IsStale reports whether the grid's backing arrays have changed since
// the last Refresh (different length or different backing pointer).
func (vg *ViewGuard) IsStale(g *Grid) bool {
	if len(g.Type) != vg.last.bufferLen {
		return true
	}
	if len(g.Type) == 0 {
		return false
	}
	return &g.Type[0] != vg.last.typesPtr || &g.Color[0] != vg.last.colorsPtr || &g.Temperature[0] != vg.last.tempPtr
}

// Refresh is idempotent and cheap when not stale; it returns the current
// CellViews, rebuilding it (and bumping the epoch) only when the backing
// arrays changed.
func (vg *ViewGuard) Refresh(g *Grid) CellViews {
	if !vg.IsStale(g) {
		return vg.last
	}
	vg.epoch++
	cv := CellViews{
		epoch:       vg.epoch,
		bufferLen:   len(g.Type),
		Types:       g.Type,
		Colors:      g.Color,
		Temperature: g.Temperature,
	}
	if len(g.Type) > 0 {
		cv.typesPtr = &g.Type[0]
		cv.colorsPtr = &g.Color[0]
		cv.tempPtr = &g.Temperature[0]
	}
	vg.last = cv
	return cv
}

// Epoch returns the handle's generation number. It advances only when
// Refresh finds the backing arrays reallocated, not once per frame.
func (cv CellViews) Epoch() uint64 { return cv.epoch }
