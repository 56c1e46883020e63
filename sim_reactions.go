package sandcore

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// cellRand draws a deterministic uniform value in [0,1) from a fast hash
// of (x, y, tick), per spec §4.C Phase 4. xxhash gives good avalanche
// behavior for the tiny 12-byte key so adjacent cells in the same tick
// don't correlate.
func cellRand(x, y int, tick uint64) float64 {
	var key [12]byte
	binary.LittleEndian.PutUint32(key[0:4], uint32(x))
	binary.LittleEndian.PutUint32(key[4:8], uint32(y))
	binary.LittleEndian.PutUint32(key[8:12], uint32(tick))
	h := xxhash.Sum64(key[:])
	// top 53 bits -> float64 in [0,1), mirrors the standard mantissa trick.
	return float64(h>>11) / (1 << 53)
}

// phaseReactions is Phase 4: each ordered (cell, neighbor) pair fires at
// most one reaction this tick (spec §4.C Phase 4 / P6).
func (s *Stepper) phaseReactions(g *Grid, table *Table) {
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			i := g.index(x, y)
			selfID := g.Type[i]
			if selfID == EmptyID {
				continue
			}
			if s.visited[i] {
				continue
			}
			for _, n := range g.Neighbors4(x, y) {
				nx, ny := n[0], n[1]
				j := g.index(nx, ny)
				neighborID := g.Type[j]
				if neighborID == EmptyID {
					continue
				}
				rxn, ok := table.ReactionFor(selfID, neighborID)
				if !ok {
					continue
				}
				if s.visited[j] {
					continue
				}
				if cellRand(x, y, s.tick) >= float64(rxn.Chance) {
					continue
				}
				s.applyReaction(g, table, x, y, nx, ny, rxn)
				s.visited[i] = true
				s.visited[j] = true
				break
			}
		}
	}
}

func (s *Stepper) applyReaction(g *Grid, table *Table, x, y, nx, ny int, rxn *Reaction) {
	if rxn.DeleteAggressor {
		g.SetCell(x, y, EmptyID, g.Temperature[g.index(x, y)])
	} else {
		g.SetCell(x, y, rxn.ResultAggressorID, g.Temperature[g.index(x, y)])
	}
	g.SetCell(nx, ny, rxn.ResultVictimID, g.Temperature[g.index(nx, ny)])

	if rxn.HasSpawn {
		candidates := g.Neighbors4(x, y)
		candidates = append(candidates, g.Neighbors4(nx, ny)...)
		for _, c := range shuffleOrder(len(candidates), x, y, s.tick) {
			cx, cy := candidates[c][0], candidates[c][1]
			if id, _, _, ok := g.Cell(cx, cy); ok && id == EmptyID {
				g.SetCell(cx, cy, rxn.SpawnID, g.Temperature[g.index(cx, cy)])
				break
			}
		}
	}
}

// shuffleOrder returns a deterministic pseudo-random permutation of
// [0,n) derived from the same per-cell hash family as cellRand, used to
// pick the spawn target among candidate empty neighbors without biasing
// toward one direction.
func shuffleOrder(n int, x, y int, tick uint64) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	for i := n - 1; i > 0; i-- {
		r := cellRand(x+i, y-i, tick)
		j := int(r * float64(i+1))
		order[i], order[j] = order[j], order[i]
	}
	return order
}
