package sandcore

import "sync/atomic"

// Ring event type codes, spec §4.E. Brush payloads are disjoint from
// sentinel values: 100+elementId is always >= 100, ERASE is 0, and the
// sentinels sit at the top of the byte range.
const (
	EventErase      int32 = 0
	EventEndStroke  int32 = 254
	EventNone       int32 = 255
	brushTypeBase   int32 = 100
)

// RingCapacity is the number of event slots N (spec §4.E / §6.4).
const RingCapacity = 100

// ringWords is the total 32-bit word count of the shared layout:
// [writeHead, readHead, overflowFlag, event0..event_{N-1}], 4 words/event.
const ringWords = 3 + 4*RingCapacity

// RingEvent is one decoded input-ring slot.
type RingEvent struct {
	X, Y int32
	Type int32
	Val  int32
}

// IsEndStroke reports whether this event is the END_STROKE sentinel.
func (e RingEvent) IsEndStroke() bool { return e.Type == EventEndStroke }

// IsErase reports whether this event is an ERASE brush (radius in Val).
func (e RingEvent) IsErase() bool { return e.Type == EventErase }

// IsBrush reports whether this event is a BRUSH event and returns the
// element id it carries.
func (e RingEvent) IsBrush() (elementID uint8, ok bool) {
	if e.Type >= brushTypeBase && e.Type < EventEndStroke {
		return uint8(e.Type - brushTypeBase), true
	}
	return 0, false
}

// EncodeBrush packs a BRUSH event type for elementID.
func EncodeBrush(elementID uint8) int32 { return brushTypeBase + int32(elementID) }

// Ring is a lock-free single-producer/single-consumer ring buffer over a
// flat []int32, laid out exactly as the shared-memory contract of spec
// §4.E/§6.4 so the same backing array can be handed to a host across a
// process or WASM boundary. One slot is always kept empty to distinguish
// full from empty.
type Ring struct {
	buf []int32 // length ringWords
}

// NewRing allocates a fresh ring with its own backing buffer.
func NewRing() *Ring {
	return &Ring{buf: make([]int32, ringWords)}
}

// NewRingOver wraps an existing buffer (e.g. one backed by shared memory)
// of exactly ringWords length.
func NewRingOver(buf []int32) *Ring {
	if len(buf) != ringWords {
		panic("sandcore: ring buffer must be exactly ringWords long")
	}
	return &Ring{buf: buf}
}

// SharedWords returns the required buffer length in 32-bit words, for
// hosts that allocate the shared-memory block themselves.
func SharedWords() int { return ringWords }

const (
	slotWriteHead = 0
	slotReadHead  = 1
	slotOverflow  = 2
	slotEventBase = 3
)

func (r *Ring) loadHead(slot int) int32  { return atomic.LoadInt32(&r.buf[slot]) }
func (r *Ring) storeHead(slot int, v int32) { atomic.StoreInt32(&r.buf[slot], v) }

func (r *Ring) next(h int32) int32 { return (h + 1) % RingCapacity }

// Push is the producer side. It returns false without writing if the ring
// is full, setting overflowFlag instead (spec §4.E producer contract).
func (r *Ring) Push(ev RingEvent) bool {
	writeHead := r.loadHead(slotWriteHead)
	readHead := r.loadHead(slotReadHead)
	if r.next(writeHead) == readHead {
		atomic.StoreInt32(&r.buf[slotOverflow], 1)
		return false
	}

	base := slotEventBase + int(writeHead)*4
	r.buf[base+0] = ev.X
	r.buf[base+1] = ev.Y
	r.buf[base+2] = ev.Type
	r.buf[base+3] = ev.Val

	r.storeHead(slotWriteHead, r.next(writeHead))
	return true
}

// Drain is the consumer side. It appends every pending event (in order)
// to dst and returns the extended slice plus whether overflow was
// observed and cleared this call (spec §4.E consumer contract).
func (r *Ring) Drain(dst []RingEvent) (out []RingEvent, overflowed bool) {
	writeHead := r.loadHead(slotWriteHead)
	readHead := r.loadHead(slotReadHead)

	for readHead != writeHead {
		base := slotEventBase + int(readHead)*4
		dst = append(dst, RingEvent{
			X:    r.buf[base+0],
			Y:    r.buf[base+1],
			Type: r.buf[base+2],
			Val:  r.buf[base+3],
		})
		readHead = r.next(readHead)
	}
	r.storeHead(slotReadHead, readHead)

	if atomic.SwapInt32(&r.buf[slotOverflow], 0) != 0 {
		overflowed = true
	}
	return dst, overflowed
}
