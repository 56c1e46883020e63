package sandcore

// Stepper runs one tick of the simulation (Component C). It holds only
// per-tick scratch state; the Grid and Table it operates on are passed in
// per call and never retained across ticks (spec §3.7).
type Stepper struct {
	tick uint64

	visited  []bool
	nextTemp []float32

	isCrashed bool
	crash     *EngineError

	Logger Logger
}

func NewStepper() *Stepper {
	return &Stepper{Logger: NewNopLogger()}
}

func (s *Stepper) IsCrashed() bool        { return s.isCrashed }
func (s *Stepper) CrashError() *EngineError { return s.crash }

// Tick advances the simulation by one step. Phases 1-5 are infallible on
// valid data; any recovered panic is reported as a RuntimeTrap crash per
// spec §4.C, leaving IsCrashed true and the simulation paused until the
// host reinitializes.
func (s *Stepper) Tick(g *Grid, table *Table, settings *Settings) (err *EngineError) {
	if s.isCrashed {
		return s.crash
	}
	defer func() {
		if r := recover(); r != nil {
			s.isCrashed = true
			e := newErr(RuntimeTrap, "tick %d panicked: %v", s.tick, r)
			s.crash = e
			err = e
		}
	}()

	s.prologue(g)
	s.phaseMovement(g, table, settings)
	s.phaseHeat(g, table, settings)
	s.phasePhaseChange(g, table)
	s.phaseReactions(g, table)
	s.phaseLifetime(g, table)
	s.phaseSleep(g)

	s.tick++
	return nil
}

// prologue is Phase 0: pick parity, clear visited flags, grow scratch
// buffers to the current grid size.
func (s *Stepper) prologue(g *Grid) {
	n := g.W * g.H
	if len(s.visited) != n {
		s.visited = make([]bool, n)
	} else {
		for i := range s.visited {
			s.visited[i] = false
		}
	}
	if len(s.nextTemp) != n {
		s.nextTemp = make([]float32, n)
	}
	g.resetTouchedTick()
}

func (s *Stepper) parity() int { return int(s.tick & 1) }
