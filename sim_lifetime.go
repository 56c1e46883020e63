package sandcore

// phaseLifetime is Phase 5: positive-lifetime elements count down to
// EMPTY; hot/cold elements bias their own temperature toward their
// default each tick (spec §4.C Phase 5).
func (s *Stepper) phaseLifetime(g *Grid, table *Table) {
	const biasRate = 0.1

	for i, id := range g.Type {
		if id == EmptyID {
			continue
		}
		el := table.ElementByID(id)
		if el == nil {
			continue
		}
		if el.Lifetime > 0 {
			if g.lifetime[i] > 0 {
				g.lifetime[i]--
			}
			if g.lifetime[i] == 0 {
				x, y := i%g.W, i/g.W
				g.SetCell(x, y, EmptyID, g.Temperature[i])
				continue
			}
		}
		if el.Flags.Hot || el.Flags.Cold {
			g.Temperature[i] = clampTemp(g.Temperature[i] + (el.DefaultTemp-g.Temperature[i])*biasRate)
		}
	}
}

// phaseSleep is Phase 6: chunks with no writes this tick accumulate their
// sleep counter; any write resets it (spec §4.C Phase 6).
func (s *Stepper) phaseSleep(g *Grid) {
	for ci := range g.chunkSleep {
		if g.chunkTouchedTick[ci] {
			g.chunkSleep[ci] = 0
		} else {
			g.chunkSleep[ci]++
		}
	}
}
