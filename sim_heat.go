package sandcore

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// boundaryConductivity is the fixed exchange rate used when a cell borders
// the world edge and has no real neighbor to diffuse with (spec §4.C
// Phase 2).
const boundaryConductivity float32 = 0.05

// minRowsForParallelHeat is the world-height threshold above which
// diffusion is split into row bands and run concurrently. Small worlds
// aren't worth the goroutine overhead.
const minRowsForParallelHeat = 128

// phaseHeat is Phase 2: conductivity-weighted diffusion against the grid's
// double-buffer, independent of iteration order within the tick. Because
// every row band writes only to its own disjoint slice of nextTemp and
// only reads the (unmodified this phase) g.Temperature/g.Type arrays, the
// row bands below may run concurrently without synchronization beyond the
// errgroup barrier at the end of the phase (spec §5 data-parallel split).
func (s *Stepper) phaseHeat(g *Grid, table *Table, settings *Settings) {
	copy(s.nextTemp, g.Temperature)

	if g.H < minRowsForParallelHeat {
		s.heatRows(g, table, settings, 0, g.H)
	} else {
		var eg errgroup.Group
		for _, band := range rowBands(g.H) {
			band := band
			eg.Go(func() error {
				s.heatRows(g, table, settings, band.y0, band.y1)
				return nil
			})
		}
		_ = eg.Wait()
	}

	// Copy back into g.Temperature's own backing array rather than
	// swapping slice headers: ViewGuard (viewguard.go) keys staleness off
	// &g.Temperature[0], and a header swap would change that pointer every
	// tick, forcing a "stale" view rebuild each frame instead of only on
	// an actual Resize.
	copy(g.Temperature, s.nextTemp)
}

func (s *Stepper) heatRows(g *Grid, table *Table, settings *Settings, y0, y1 int) {
	for y := y0; y < y1; y++ {
		for x := 0; x < g.W; x++ {
			ci := g.chunkIndex(x, y)
			if g.isChunkSleeping(ci) {
				continue
			}
			i := g.index(x, y)
			id := g.Type[i]
			selfCond := boundaryConductivity
			if el := table.ElementByID(id); el != nil {
				selfCond = el.HeatConductivity
			}

			t := g.Temperature[i]
			var sum float32
			var weight float32

			for _, n := range [4][2]int{{x + 1, y}, {x - 1, y}, {x, y + 1}, {x, y - 1}} {
				nx, ny := n[0], n[1]
				if !g.inBounds(nx, ny) {
					w := (selfCond + boundaryConductivity) * 0.5
					sum += w * (settings.AmbientTemperature - t)
					weight += w
					continue
				}
				j := g.index(nx, ny)
				nCond := boundaryConductivity
				if nel := table.ElementByID(g.Type[j]); nel != nil {
					nCond = nel.HeatConductivity
				}
				w := (selfCond + nCond) * 0.5
				sum += w * (g.Temperature[j] - t)
				weight += w
			}

			delta := float32(0)
			if weight > 0 {
				delta = sum / 4
			}
			s.nextTemp[i] = clampTemp(t + delta)
		}
	}
}

type rowBand struct{ y0, y1 int }

// rowBands splits [0,h) into up to runtime.NumCPU() contiguous row ranges.
func rowBands(h int) []rowBand {
	n := runtime.NumCPU()
	if n < 1 {
		n = 1
	}
	if n > h {
		n = h
	}
	step := (h + n - 1) / n
	bands := make([]rowBand, 0, n)
	for y := 0; y < h; y += step {
		y1 := y + step
		if y1 > h {
			y1 = h
		}
		bands = append(bands, rowBand{y0: y, y1: y1})
	}
	return bands
}
