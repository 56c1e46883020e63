package sandcore

import (
	"fmt"

	"github.com/google/uuid"
)

// Engine is the explicit, caller-owned value that replaces the module-level
// mutable singletons the source relied on (Design Note 9). It wires
// Components A-J together and is the single entry point host code talks
// to through Handle.
type Engine struct {
	Logger Logger

	state LifecycleState

	table   *Table
	grid    *Grid
	stepper *Stepper
	editor  *Editor
	ring    *Ring
	planner *Planner
	frame   *FrameDriver
	xform   *Transform
	views   *ViewGuard
	settings Settings

	hasBundle bool
}

// NewEngine constructs an Engine in StateInit. No bundle is loaded and no
// world exists until Handle(INIT) is called.
func NewEngine(logger Logger) *Engine {
	if logger == nil {
		logger = NewNopLogger()
	}
	return &Engine{
		Logger:   logger,
		state:    StateInit,
		settings: DefaultSettings(),
		planner:  NewPlanner(),
		frame:    NewFrameDriver(),
		views:    NewViewGuard(),
	}
}

func (e *Engine) State() LifecycleState { return e.state }

// Handle processes one host -> engine Request and returns the
// corresponding Response. It is the engine's only mutation entry point;
// the host never reaches into engine internals (Design Note 9, pure
// message passing).
func (e *Engine) Handle(req Request) Response {
	// A DEAD engine rejects every message, INIT included. In any other
	// state INIT is accepted; everything else requires the engine to
	// already be initialized.
	if e.state == StateDead {
		return e.errorResponse(req, newErr(ProtocolMismatch, "engine is DEAD"))
	}
	if req.Type != MsgInit && e.grid == nil {
		return e.errorResponse(req, newErr(ProtocolMismatch, "engine not initialized"))
	}

	switch req.Type {
	case MsgInit:
		return e.handleInit(req)
	case MsgPlay:
		e.settings.IsPlaying = true
		e.state = StateRunning
		return Response{Type: req.Type}
	case MsgPause:
		e.settings.IsPlaying = false
		e.state = StatePaused
		return Response{Type: req.Type}
	case MsgStep:
		e.stepper.Tick(e.grid, e.table, &e.settings)
		if e.stepper.IsCrashed() {
			return e.crash(e.stepper.CrashError())
		}
		return Response{Type: req.Type}
	case MsgClear:
		e.grid.Clear()
		e.editor.ClearStroke()
		return Response{Type: req.Type}
	case MsgResize:
		e.grid.Resize(req.W, req.H)
		e.editor.Rebind(e.grid, e.table)
		e.xform.SetWorldSize(req.W, req.H)
		return Response{Type: req.Type, W: req.W, H: req.H}
	case MsgSetViewport:
		e.xform.SetViewport(req.ViewportW, req.ViewportH)
		return Response{Type: req.Type}
	case MsgTransform:
		e.xform.SetZoomPan(req.Zoom, req.PanX, req.PanY)
		return Response{Type: req.Type}
	case MsgSettings:
		if req.Gravity != nil {
			e.settings.SetGravity(req.Gravity[0], req.Gravity[1])
		}
		if req.AmbientTemperature != nil {
			e.settings.SetAmbientTemperature(*req.AmbientTemperature)
		}
		if req.Speed != nil {
			e.settings.Speed = *req.Speed
			e.settings.ClampSpeed()
		}
		return Response{Type: req.Type}
	case MsgSetRenderMode:
		if req.RenderMode != nil {
			e.settings.RenderMode = *req.RenderMode
		}
		return Response{Type: req.Type}
	case MsgInput:
		e.editor.DrawStroke(req.X, req.Y, req.Radius, req.ElementID, req.Erase, req.BrushShape)
		return Response{Type: req.Type}
	case MsgInputEnd:
		e.editor.ClearStroke()
		return Response{Type: req.Type}
	case MsgFill:
		e.editor.FloodFill(req.X, req.Y, req.ElementID)
		return Response{Type: req.Type}
	case MsgSpawnRigidBody:
		e.editor.SpawnRigidStamp(req.X, req.Y, req.Size, req.Size, req.Shape, req.ElementID)
		return Response{Type: req.Type}
	case MsgPipette:
		if req.ID == "" {
			req.ID = uuid.NewString()
		}
		return e.handlePipette(req)
	case MsgSnapshot:
		if req.ID == "" {
			req.ID = uuid.NewString()
		}
		return e.handleSnapshot(req)
	case MsgLoadSnapshot:
		if err := e.editor.LoadSnapshot(req.Buffer); err != nil {
			return e.errorResponse(req, err.(*EngineError))
		}
		return Response{Type: req.Type}
	case MsgLoadContentBundle:
		return e.handleLoadBundle(req, "reload")
	default:
		return e.errorResponse(req, newErr(UnknownMessage, "unrecognized message type %q", req.Type))
	}
}

func (e *Engine) handleInit(req Request) Response {
	e.frame.BumpLoopToken()

	e.xform = NewTransform(req.W, req.H, req.ViewportW, req.ViewportH)

	if len(req.JSON) == 0 {
		// No bundle supplied yet: stay READY without a loaded world, per
		// the propagation policy of spec §7. Every request other than INIT
		// is rejected until an INIT that carries a bundle creates the world.
		e.state = StateReady
		e.Logger.Warnf("INIT without a content bundle; no world until INIT is repeated with a bundle")
		return Response{
			Type:            MsgReady,
			ProtocolVersion: ProtocolVersion,
			W:               req.W,
			H:               req.H,
			Capabilities:    Capabilities{WebGL: true, SharedInput: len(req.InputBuffer) > 0},
		}
	}

	resp := e.handleLoadBundle(Request{Type: MsgLoadContentBundle, JSON: req.JSON}, "init")
	if resp.Err != nil {
		e.state = StateReady
		return resp
	}

	e.grid = NewGrid(req.W, req.H, e.table)
	e.stepper = NewStepper()
	e.stepper.Logger = e.Logger
	e.editor = NewEditor(e.grid, e.table)
	if len(req.InputBuffer) > 0 {
		e.ring = NewRingOver(req.InputBuffer)
	} else {
		e.ring = NewRing()
	}
	e.frame.Logger = e.Logger
	e.state = StateReady

	return Response{
		Type:                MsgReady,
		ProtocolVersion:     ProtocolVersion,
		W:                   req.W,
		H:                   req.H,
		Capabilities:        Capabilities{WebGL: true, SharedInput: len(req.InputBuffer) > 0},
		ContentManifestJSON: resp.ContentManifestJSON,
	}
}

func (e *Engine) handleLoadBundle(req Request, phase string) Response {
	table, err := LoadBundle("<bundle>", req.JSON)
	if err != nil {
		ee := err.(*EngineError)
		e.Logger.Errorf("content bundle invalid: %v", ee)
		return Response{
			Type:          MsgContentBundleStatus,
			Err:           ee,
			BundlePhase:   phase,
			BundleStatus:  "error",
			BundleMessage: ee.Error(),
		}
	}
	e.table = table
	e.hasBundle = true
	if e.grid != nil {
		e.editor.Rebind(e.grid, e.table)
	}
	return Response{
		Type:                MsgContentBundleStatus,
		BundlePhase:         phase,
		BundleStatus:        "loaded",
		ContentManifestJSON: table.BuildManifestJSON(),
	}
}

func (e *Engine) handlePipette(req Request) Response {
	id, _, _, ok := e.grid.Cell(req.X, req.Y)
	if !ok || id == EmptyID {
		return Response{Type: MsgPipetteResult, ID: req.ID, PipetteElementID: nil}
	}
	v := id
	return Response{Type: MsgPipetteResult, ID: req.ID, PipetteElementID: &v}
}

func (e *Engine) handleSnapshot(req Request) Response {
	buf := e.editor.SaveSnapshot()
	return Response{Type: MsgSnapshotResult, ID: req.ID, SnapshotBuffer: buf}
}

func (e *Engine) crash(ee *EngineError) Response {
	e.state = StateCrashed
	e.settings.IsPlaying = false
	if ee.Kind == OutOfMemory {
		e.state = StateDead
	}
	return Response{Type: MsgCrash, CrashMessage: ee.Error(), CanRecover: ee.CanRecover()}
}

func (e *Engine) errorResponse(req Request, ee *EngineError) Response {
	return Response{Type: MsgError, ID: req.ID, ErrorMessage: ee.Error(), Err: ee}
}

// RunFrame drives one host animation frame through the frame driver
// (Component G), returning the upload plan and (when due) stats. Callers
// outside the engine (renderers) read cell data only through the
// CellViews returned by Views(), never retaining it across frames.
func (e *Engine) RunFrame(dtMs float64) FrameResult {
	if e.grid == nil {
		return FrameResult{}
	}
	return e.frame.RunFrame(dtMs, &e.settings, e.ring, e.editor, e.stepper, e.grid, e.table, e.planner)
}

// Views returns a fresh (or refreshed) CellViews handle for this frame.
func (e *Engine) Views() CellViews {
	if e.grid == nil {
		return CellViews{}
	}
	return e.views.Refresh(e.grid)
}

func (e *Engine) Transform() *Transform { return e.xform }

func (e *Engine) Settings() Settings { return e.settings }

func (e *Engine) Table() *Table { return e.table }

func (e *Engine) String() string {
	return fmt.Sprintf("Engine{state=%s, bundle=%v}", e.state, e.hasBundle)
}
