package hud

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sandforge/sandcore"
)

func TestStatsLine_FormatsAllFields(t *testing.T) {
	line := StatsLine(sandcore.FrameStats{
		FPS: 59.6, ParticleCount: 1234, StepsPerFrame: 2, RingOverflows: 1, AllocatedBytes: 2 << 20,
	}, sandcore.StateRunning)

	assert.Contains(t, line, "fps 60")
	assert.Contains(t, line, "particles 1234")
	assert.Contains(t, line, "steps/frame 2")
	assert.Contains(t, line, "overflow 1")
	assert.Contains(t, line, "mem 2.0MB")
	assert.Contains(t, line, "RUNNING")
}
