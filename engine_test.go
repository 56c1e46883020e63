package sandcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_InitWithoutBundleStaysReady(t *testing.T) {
	e := NewEngine(nil)
	resp := e.Handle(Request{Type: MsgInit, W: 16, H: 16, ViewportW: 16, ViewportH: 16})
	assert.Equal(t, MsgReady, resp.Type)
	assert.Equal(t, StateReady, e.State())
}

func TestEngine_InitWithBundleLoadsWorld(t *testing.T) {
	e := NewEngine(nil)
	resp := e.Handle(Request{Type: MsgInit, W: 16, H: 16, ViewportW: 16, ViewportH: 16, JSON: testBundle(t)})
	require.Nil(t, resp.Err)
	assert.Equal(t, MsgReady, resp.Type)
	assert.True(t, resp.Capabilities.WebGL)
	assert.Equal(t, StateReady, e.State())
}

func TestEngine_HandleBeforeInitIsProtocolMismatch(t *testing.T) {
	e := NewEngine(nil)
	resp := e.Handle(Request{Type: MsgPlay})
	require.NotNil(t, resp.Err)
	assert.Equal(t, ProtocolMismatch, resp.Err.Kind)
}

func TestEngine_PlayPauseTransitionsState(t *testing.T) {
	e := NewEngine(nil)
	e.Handle(Request{Type: MsgInit, W: 16, H: 16, JSON: testBundle(t)})

	e.Handle(Request{Type: MsgPlay})
	assert.Equal(t, StateRunning, e.State())

	e.Handle(Request{Type: MsgPause})
	assert.Equal(t, StatePaused, e.State())
}

func TestEngine_UnknownMessageIsReported(t *testing.T) {
	e := NewEngine(nil)
	e.Handle(Request{Type: MsgInit, W: 8, H: 8, JSON: testBundle(t)})

	resp := e.Handle(Request{Type: MsgType("BOGUS")})
	require.NotNil(t, resp.Err)
	assert.Equal(t, UnknownMessage, resp.Err.Kind)
}

func TestEngine_InitIsAlwaysAcceptedEvenAfterCrash(t *testing.T) {
	e := NewEngine(nil)
	e.Handle(Request{Type: MsgInit, W: 4, H: 4, JSON: testBundle(t)})
	e.grid.W = 1000 // force the stepper into a crash on the next STEP

	resp := e.Handle(Request{Type: MsgStep})
	assert.Equal(t, MsgCrash, resp.Type)
	assert.Equal(t, StateCrashed, e.State())

	resp2 := e.Handle(Request{Type: MsgInit, W: 8, H: 8, JSON: testBundle(t)})
	assert.Equal(t, MsgReady, resp2.Type)
	assert.Equal(t, StateReady, e.State())
}

func TestEngine_PipetteAssignsCorrelationIDWhenAbsent(t *testing.T) {
	e := NewEngine(nil)
	e.Handle(Request{Type: MsgInit, W: 8, H: 8, JSON: testBundle(t)})
	e.Handle(Request{Type: MsgInput, X: 2, Y: 2, Radius: 0, ElementID: 1})

	resp := e.Handle(Request{Type: MsgPipette, X: 2, Y: 2})
	assert.NotEmpty(t, resp.ID)
	require.NotNil(t, resp.PipetteElementID)
	assert.Equal(t, uint8(1), *resp.PipetteElementID)
}

func TestEngine_PipetteOnEmptyCellReturnsNilElement(t *testing.T) {
	e := NewEngine(nil)
	e.Handle(Request{Type: MsgInit, W: 8, H: 8, JSON: testBundle(t)})

	resp := e.Handle(Request{Type: MsgPipette, X: 0, Y: 0})
	assert.Nil(t, resp.PipetteElementID)
}

func TestEngine_SnapshotRoundTripsThroughLoadSnapshot(t *testing.T) {
	e := NewEngine(nil)
	e.Handle(Request{Type: MsgInit, W: 8, H: 8, JSON: testBundle(t)})
	e.Handle(Request{Type: MsgInput, X: 3, Y: 3, Radius: 0, ElementID: 4})

	snap := e.Handle(Request{Type: MsgSnapshot})
	require.NotEmpty(t, snap.SnapshotBuffer)

	e.Handle(Request{Type: MsgClear})
	resp := e.Handle(Request{Type: MsgLoadSnapshot, Buffer: snap.SnapshotBuffer})
	require.Nil(t, resp.Err)

	pip := e.Handle(Request{Type: MsgPipette, X: 3, Y: 3})
	require.NotNil(t, pip.PipetteElementID)
	assert.Equal(t, uint8(4), *pip.PipetteElementID)
}

func TestEngine_ResizeRebindsEditorAndTransform(t *testing.T) {
	e := NewEngine(nil)
	e.Handle(Request{Type: MsgInit, W: 8, H: 8, ViewportW: 8, ViewportH: 8, JSON: testBundle(t)})

	resp := e.Handle(Request{Type: MsgResize, W: 32, H: 24})
	assert.Equal(t, 32, resp.W)
	assert.Equal(t, 24, resp.H)
	assert.Equal(t, 32, e.Transform().WorldW)
	assert.Equal(t, 24, e.Transform().WorldH)
}

func TestEngine_SettingsAppliesGravityAndSpeedClamped(t *testing.T) {
	e := NewEngine(nil)
	e.Handle(Request{Type: MsgInit, W: 8, H: 8, JSON: testBundle(t)})

	speed := float32(100)
	gravity := [2]float32{0, 200}
	e.Handle(Request{Type: MsgSettings, Speed: &speed, Gravity: &gravity})

	s := e.Settings()
	assert.Equal(t, float32(8), s.Speed, "speed clamps to [0.1,8]")
	assert.Equal(t, float32(50), s.GravityY, "gravity clamps to [-50,50]")
}

func TestEngine_LoadContentBundleInvalidReportsError(t *testing.T) {
	e := NewEngine(nil)
	e.Handle(Request{Type: MsgInit, W: 8, H: 8, JSON: testBundle(t)})

	resp := e.Handle(Request{Type: MsgLoadContentBundle, JSON: []byte(`{"formatVersion":1,"elements":[]}`)})
	require.NotNil(t, resp.Err)
	assert.Equal(t, ContentBundleInvalid, resp.Err.Kind)
	// A failed reload must not tear down the already-running world.
	assert.Equal(t, StateReady, e.State())
}
