package sandcore

// MsgType enumerates every message the host boundary carries, spec §4.H.
type MsgType string

const (
	MsgInit               MsgType = "INIT"
	MsgPlay               MsgType = "PLAY"
	MsgPause              MsgType = "PAUSE"
	MsgStep               MsgType = "STEP"
	MsgClear              MsgType = "CLEAR"
	MsgResize             MsgType = "RESIZE"
	MsgSetViewport        MsgType = "SET_VIEWPORT"
	MsgTransform          MsgType = "TRANSFORM"
	MsgSettings           MsgType = "SETTINGS"
	MsgSetRenderMode      MsgType = "SET_RENDER_MODE"
	MsgInput              MsgType = "INPUT"
	MsgInputEnd           MsgType = "INPUT_END"
	MsgFill               MsgType = "FILL"
	MsgSpawnRigidBody     MsgType = "SPAWN_RIGID_BODY"
	MsgPipette            MsgType = "PIPETTE"
	MsgSnapshot           MsgType = "SNAPSHOT"
	MsgLoadSnapshot       MsgType = "LOAD_SNAPSHOT"
	MsgLoadContentBundle  MsgType = "LOAD_CONTENT_BUNDLE"

	MsgReady               MsgType = "READY"
	MsgStats               MsgType = "STATS"
	MsgError                MsgType = "ERROR"
	MsgCrash                MsgType = "CRASH"
	MsgPipetteResult         MsgType = "PIPETTE_RESULT"
	MsgSnapshotResult        MsgType = "SNAPSHOT_RESULT"
	MsgContentManifest       MsgType = "CONTENT_MANIFEST"
	MsgContentBundleStatus   MsgType = "CONTENT_BUNDLE_STATUS"
)

// ProtocolVersion is the version advertised in READY (spec §4.H).
const ProtocolVersion = 1

// Request is a host -> engine message. Only the fields relevant to Type
// are meaningful; this mirrors the teacher's flat bundle-JSON structs
// (bundle.go) rather than per-type wrapper types, since every message
// crosses the same wire in practice.
type Request struct {
	Type MsgType
	ID   string // correlation id for PIPETTE/SNAPSHOT

	Canvas      string
	W, H        int
	ViewportW   int
	ViewportH   int
	InputBuffer []int32 // shared input-ring backing buffer, if provided

	Zoom, PanX, PanY float32

	Gravity            *[2]float32
	AmbientTemperature *float32
	Speed              *float32
	RenderMode         *RenderMode

	X, Y, Radius int
	ElementID    uint8
	Erase        bool
	BrushShape   BrushShape

	Size  int
	Shape BrushShape

	Buffer []byte // LOAD_SNAPSHOT payload
	JSON   []byte // LOAD_CONTENT_BUNDLE payload
}

// Response is an engine -> host message.
type Response struct {
	Type MsgType
	ID   string

	ProtocolVersion int
	W, H            int
	Capabilities    Capabilities

	Stats *FrameStats

	ErrorMessage string
	Err          *EngineError

	CrashMessage string
	CanRecover   bool

	PipetteElementID *uint8 // nil means "no element at that cell"

	SnapshotBuffer []byte // nil means the request failed/timed out

	ContentManifestJSON []byte

	BundlePhase   string // "init" | "reload"
	BundleStatus  string // "loading" | "loaded" | "error"
	BundleMessage string
}

// Capabilities is the READY payload's capability set (spec §4.H).
type Capabilities struct {
	WebGL        bool
	SharedInput  bool
}

// LifecycleState is the engine's coarse protocol state machine (spec §4.H
// Lifecycle: INIT -> READY -> RUNNING <-> PAUSED -> CRASHED|DEAD; only
// INIT may be retried from any non-DEAD state).
type LifecycleState int

const (
	StateInit LifecycleState = iota
	StateReady
	StateRunning
	StatePaused
	StateCrashed
	StateDead
)

func (s LifecycleState) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateReady:
		return "READY"
	case StateRunning:
		return "RUNNING"
	case StatePaused:
		return "PAUSED"
	case StateCrashed:
		return "CRASHED"
	case StateDead:
		return "DEAD"
	default:
		return "UNKNOWN"
	}
}
