package sandcore

// phaseMovement is Phase 1 of the tick: element movement under gravity.
// Cells are scanned bottom-up, alternating scan direction per row by tick
// parity to remove directional bias (spec §4.C Phase 1).
func (s *Stepper) phaseMovement(g *Grid, table *Table, settings *Settings) {
	p := s.parity()

	for y := g.H - 1; y >= 0; y-- {
		leftToRight := (y+p)%2 == 0
		if leftToRight {
			for x := 0; x < g.W; x++ {
				s.tryMoveCell(g, table, settings, x, y, p)
			}
		} else {
			for x := g.W - 1; x >= 0; x-- {
				s.tryMoveCell(g, table, settings, x, y, p)
			}
		}
	}
}

// gravitySign collapses a gravity component to its direction: -1, 0, or 1.
// A zero component means that axis contributes no fall/drift this tick,
// per spec §3.5 ("gravity" is a tunable, not merely a label for "down").
func gravitySign(v float32) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// lateralOrder picks which side to try first when a cell has two equally
// valid horizontal destinations. A nonzero GravityX biases the order toward
// the drift direction; with no horizontal gravity it falls back to the
// parity-based tie-break used before gravity was wired in.
func lateralOrder(gx float32, p int) [2]int {
	switch gravitySign(gx) {
	case 1:
		return [2]int{1, -1}
	case -1:
		return [2]int{-1, 1}
	default:
		if p == 1 {
			return [2]int{1, -1}
		}
		return [2]int{-1, 1}
	}
}

func (s *Stepper) tryMoveCell(g *Grid, table *Table, settings *Settings, x, y, p int) {
	i := g.index(x, y)
	if s.visited[i] {
		return
	}
	id := g.Type[i]
	if id == EmptyID {
		return
	}
	el := table.ElementByID(id)
	if el == nil || el.Flags.IgnoreGravity {
		return
	}
	ci := g.chunkIndex(x, y)
	if g.isChunkSleeping(ci) {
		return
	}
	if el.Flags.Rigid {
		return // rigid cells only move via an explicit stamp operation (Component D)
	}

	down := gravitySign(settings.GravityY)
	switch el.Category {
	case CategorySolid, CategoryEnergy, CategoryUtility, CategoryBio:
		return
	case CategoryPowder:
		if down != 0 {
			s.movePowder(g, table, settings, x, y, el, down, p)
		}
	case CategoryLiquid:
		// A liquid's lateral spread represents hydrostatic pressure under
		// gravity (it flows sideways to find a lower level), unlike a
		// gas's diffusion, which ca_ecs.go's stepSmoke models as
		// independent of buoyancy. With no vertical gravity there is no
		// pressure to drive that spread, so a liquid simply holds still.
		if down != 0 {
			s.moveLiquid(g, table, settings, x, y, el, down, p)
		}
	case CategoryGas:
		s.moveGas(g, table, settings, x, y, el, -down, p)
	}
}

// canDisplace reports whether moverEl may occupy the target cell: empty is
// always valid; a mover with a density may swap with a less dense liquid or
// gas occupying the target.
func canDisplace(table *Table, moverEl *Element, targetID uint8) bool {
	if targetID == EmptyID {
		return true
	}
	if !moverEl.HasDensity {
		return false
	}
	targetEl := table.ElementByID(targetID)
	if targetEl == nil || !targetEl.HasDensity {
		return false
	}
	if targetEl.Category != CategoryLiquid && targetEl.Category != CategoryGas {
		return false
	}
	return moverEl.Density > targetEl.Density
}

func (s *Stepper) movePowder(g *Grid, table *Table, settings *Settings, x, y int, el *Element, down, p int) {
	if s.attemptSwap(g, table, x, y, x, y+down, el) {
		return
	}
	order := lateralOrder(settings.GravityX, p)
	for _, dx := range order {
		if s.attemptSwap(g, table, x, y, x+dx, y+down, el) {
			return
		}
	}
}

func (s *Stepper) moveLiquid(g *Grid, table *Table, settings *Settings, x, y int, el *Element, down, p int) {
	if s.attemptSwap(g, table, x, y, x, y+down, el) {
		return
	}
	order := lateralOrder(settings.GravityX, p)
	for _, dx := range order {
		if s.attemptSwap(g, table, x, y, x+dx, y+down, el) {
			return
		}
	}
	s.flowLateral(g, table, settings, x, y, el, p)
}

func (s *Stepper) moveGas(g *Grid, table *Table, settings *Settings, x, y int, el *Element, up, p int) {
	if up != 0 {
		if s.attemptSwap(g, table, x, y, x, y+up, el) {
			return
		}
		order := lateralOrder(settings.GravityX, p)
		for _, dx := range order {
			if s.attemptSwap(g, table, x, y, x+dx, y+up, el) {
				return
			}
		}
	}
	s.flowLateral(g, table, settings, x, y, el, p)
}

// flowLateral walks up to Dispersion cells to either side looking for an
// enterable cell, tie-breaking direction by GravityX (falling back to
// parity when there's no horizontal gravity) per spec §4.C Phase 1.
func (s *Stepper) flowLateral(g *Grid, table *Table, settings *Settings, x, y int, el *Element, p int) {
	dispersion := el.Dispersion
	if dispersion <= 0 {
		return
	}
	order := lateralOrder(settings.GravityX, p)
	for _, dir := range order {
		for step := 1; step <= dispersion; step++ {
			nx := x + dir*step
			if s.attemptSwap(g, table, x, y, nx, y, el) {
				return
			}
			if tid, _, _, ok := g.Cell(nx, y); !ok || tid != EmptyID {
				break // blocked before reaching further cells in this direction
			}
		}
	}
}

// attemptSwap moves the element at (x,y) into (nx,ny) if permitted, marks
// both cells visited and both chunks dirty, and reports whether it moved.
func (s *Stepper) attemptSwap(g *Grid, table *Table, x, y, nx, ny int, el *Element) bool {
	targetID, _, _, ok := g.Cell(nx, ny)
	if !ok {
		return false
	}
	if !canDisplace(table, el, targetID) {
		return false
	}
	g.swap(x, y, nx, ny)
	s.visited[g.index(x, y)] = true
	s.visited[g.index(nx, ny)] = true
	return true
}
