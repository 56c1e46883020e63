package sandcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRing_PushDrainPreservesOrder(t *testing.T) {
	r := NewRing()
	for i := 0; i < 5; i++ {
		ok := r.Push(RingEvent{X: int32(i), Y: int32(i * 2), Type: EncodeBrush(1), Val: 3})
		require.True(t, ok)
	}

	events, overflowed := r.Drain(nil)
	require.False(t, overflowed)
	require.Len(t, events, 5)
	for i, ev := range events {
		assert.Equal(t, int32(i), ev.X)
		id, ok := ev.IsBrush()
		assert.True(t, ok)
		assert.Equal(t, uint8(1), id)
	}
}

func TestRing_OverflowSetsFlagAndRejects(t *testing.T) {
	r := NewRing()
	for i := 0; i < RingCapacity-1; i++ {
		require.True(t, r.Push(RingEvent{Type: EventErase}))
	}
	// The ring keeps one slot empty to disambiguate full from empty, so the
	// next push must be rejected.
	ok := r.Push(RingEvent{Type: EventErase})
	assert.False(t, ok)

	events, overflowed := r.Drain(nil)
	assert.True(t, overflowed)
	assert.Len(t, events, RingCapacity-1)
}

func TestRing_DrainClearsOverflowFlag(t *testing.T) {
	r := NewRing()
	for i := 0; i < RingCapacity; i++ {
		r.Push(RingEvent{Type: EventErase})
	}
	_, overflowed := r.Drain(nil)
	require.True(t, overflowed)

	r.Push(RingEvent{Type: EventEndStroke})
	_, overflowed2 := r.Drain(nil)
	assert.False(t, overflowed2, "overflow flag should not still be set after the first drain cleared it")
}

func TestRing_NewRingOverRejectsWrongLength(t *testing.T) {
	assert.Panics(t, func() {
		NewRingOver(make([]int32, 4))
	})
}

func TestRingEvent_SentinelClassification(t *testing.T) {
	assert.True(t, RingEvent{Type: EventEndStroke}.IsEndStroke())
	assert.True(t, RingEvent{Type: EventErase}.IsErase())

	_, ok := RingEvent{Type: EventEndStroke}.IsBrush()
	assert.False(t, ok, "END_STROKE must not be misclassified as a brush event")

	id, ok := RingEvent{Type: EncodeBrush(7)}.IsBrush()
	require.True(t, ok)
	assert.Equal(t, uint8(7), id)
}
