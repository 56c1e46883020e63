package sandcore

// phasePhaseChange is Phase 3: temperature-triggered element transitions.
// Color is refreshed from the new element's palette; temperature carries
// over unchanged (spec §4.C Phase 3).
func (s *Stepper) phasePhaseChange(g *Grid, table *Table) {
	for i, id := range g.Type {
		if id == EmptyID {
			continue
		}
		el := table.ElementByID(id)
		if el == nil {
			continue
		}
		t := g.Temperature[i]
		newID := id
		if el.PhaseHigh != nil && t >= el.PhaseHigh.Temp {
			newID = el.PhaseHigh.ToID
		} else if el.PhaseLow != nil && t <= el.PhaseLow.Temp {
			newID = el.PhaseLow.ToID
		}
		if newID == id {
			continue
		}
		x, y := i%g.W, i/g.W
		g.Type[i] = newID
		if newID == EmptyID {
			g.Color[i] = 0
			g.lifetime[i] = 0
		} else {
			g.Color[i] = table.ColorVariant(newID, 0)
			if nel := table.ElementByID(newID); nel != nil {
				g.lifetime[i] = nel.Lifetime
			}
		}
		g.MarkDirty(x, y)
	}
}
