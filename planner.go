package sandcore

// PlanKind discriminates the three upload-plan shapes of spec §4.F.
type PlanKind int

const (
	PlanFullFrame PlanKind = iota
	PlanChunks
	PlanRects
)

// Rect is a clamped pixel rectangle within the world.
type Rect struct {
	X, Y, W, H int
}

// UploadPlan is the dirty-upload planner's output (Component F). Exactly
// one of Rects is meaningful depending on Kind; Kind == PlanFullFrame
// means the renderer should re-read the whole world.
type UploadPlan struct {
	Kind  PlanKind
	Rects []Rect
}

const (
	tFullPerChunk = 0.4
	tFullMerged   = 0.3
	mergedAreaCap = 0.5
)

// PlannerConfig toggles the merged-rectangle mode (spec §4.F tie-break
// rule).
type PlannerConfig struct {
	MergeRects bool
}

// Planner turns a grid's dirty-chunk list into a minimal set of upload
// rectangles, never reading cell data itself (Component F).
type Planner struct {
	Config PlannerConfig
}

func NewPlanner() *Planner { return &Planner{} }

// Plan computes the upload plan for the grid's currently dirty chunks.
// forceFull requests a full upload even with zero dirty chunks (e.g. after
// a resize or context-loss recovery, spec §6.5).
func (p *Planner) Plan(g *Grid, forceFull bool) UploadPlan {
	dirty := g.DirtyChunks()
	totalChunks := g.ChunksX() * g.ChunksY()

	notAligned := g.W%ChunkSize != 0 || g.H%ChunkSize != 0

	if len(dirty) == 0 && forceFull {
		return UploadPlan{Kind: PlanFullFrame}
	}
	if notAligned && len(dirty) > 0 {
		// A world not evenly divisible by CHUNK can't be safely expressed
		// as clamped chunk rectangles without risk of edge drift; fall
		// back to a full upload (spec §4.F).
		return UploadPlan{Kind: PlanFullFrame}
	}

	threshold := tFullPerChunk
	if p.Config.MergeRects {
		threshold = tFullMerged
	}
	if totalChunks > 0 && float64(len(dirty)) > threshold*float64(totalChunks) {
		return UploadPlan{Kind: PlanFullFrame}
	}

	if p.Config.MergeRects {
		rects := mergeRects(g, dirty)
		if coveredArea(rects) > mergedAreaCap*float64(g.W*g.H) {
			return UploadPlan{Kind: PlanFullFrame}
		}
		return UploadPlan{Kind: PlanRects, Rects: rects}
	}

	rects := make([]Rect, 0, len(dirty))
	for _, ci := range dirty {
		x, y, w, h := g.ChunkRect(ci)
		if w <= 0 || h <= 0 {
			continue
		}
		rects = append(rects, Rect{X: x, Y: y, W: w, H: h})
	}
	return UploadPlan{Kind: PlanChunks, Rects: rects}
}

func coveredArea(rects []Rect) float64 {
	var area float64
	for _, r := range rects {
		area += float64(r.W * r.H)
	}
	return area
}

// mergeRects coalesces horizontally-adjacent dirty chunks into row-spans,
// then merges vertically-adjacent spans of identical horizontal extent
// (spec §4.F).
func mergeRects(g *Grid, dirty []int) []Rect {
	dirtySet := make(map[int]bool, len(dirty))
	for _, ci := range dirty {
		dirtySet[ci] = true
	}

	type span struct{ x0, x1, y int } // chunk-coordinate half-open span [x0,x1) on row y

	var spans []span
	cx := g.ChunksX()
	cy := g.ChunksY()
	for row := 0; row < cy; row++ {
		x := 0
		for x < cx {
			if !dirtySet[row*cx+x] {
				x++
				continue
			}
			start := x
			for x < cx && dirtySet[row*cx+x] {
				x++
			}
			spans = append(spans, span{x0: start, x1: x, y: row})
		}
	}

	merged := make([]bool, len(spans))
	var rects []Rect
	for i := range spans {
		if merged[i] {
			continue
		}
		s := spans[i]
		y1 := s.y + 1
		for {
			found := -1
			for j := range spans {
				if merged[j] || j == i {
					continue
				}
				if spans[j].y == y1 && spans[j].x0 == s.x0 && spans[j].x1 == s.x1 {
					found = j
					break
				}
			}
			if found < 0 {
				break
			}
			merged[found] = true
			y1++
		}
		x0, y0, w, h := s.x0*ChunkSize, s.y*ChunkSize, (s.x1-s.x0)*ChunkSize, (y1-s.y)*ChunkSize
		if x0+w > g.W {
			w = g.W - x0
		}
		if y0+h > g.H {
			h = g.H - y0
		}
		if w > 0 && h > 0 {
			rects = append(rects, Rect{X: x0, Y: y0, W: w, H: h})
		}
	}
	return rects
}
