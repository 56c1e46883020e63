package sandcore

import "encoding/json"

// EmptyID is the reserved element id for an unoccupied cell.
const EmptyID uint8 = 0

// Category is the coarse simulation behavior class; the stepper moves
// every element according to its Category.
type Category uint8

const (
	CategorySolid Category = iota
	CategoryPowder
	CategoryLiquid
	CategoryGas
	CategoryEnergy
	CategoryUtility
	CategoryBio
)

func ParseCategory(s string) (Category, bool) {
	switch s {
	case "solid":
		return CategorySolid, true
	case "powder":
		return CategoryPowder, true
	case "liquid":
		return CategoryLiquid, true
	case "gas":
		return CategoryGas, true
	case "energy":
		return CategoryEnergy, true
	case "utility":
		return CategoryUtility, true
	case "bio":
		return CategoryBio, true
	default:
		return 0, false
	}
}

// BehaviorTag replaces the source's dynamic string-tag dispatch (Design
// Note 9) with a closed enum populated at bundle load; an unrecognized or
// missing tag becomes BehaviorNone. No stepper phase reads the tag: every
// element, tagged or not, moves according to its Category.
type BehaviorTag uint8

const (
	BehaviorNone BehaviorTag = iota
	BehaviorStatic
	BehaviorFalling
	BehaviorFlowing
	BehaviorRising
	BehaviorCorrosive
	BehaviorIgniter
)

var behaviorNames = map[string]BehaviorTag{
	"static":    BehaviorStatic,
	"falling":   BehaviorFalling,
	"flowing":   BehaviorFlowing,
	"rising":    BehaviorRising,
	"corrosive": BehaviorCorrosive,
	"igniter":   BehaviorIgniter,
}

func parseBehavior(tag *string) BehaviorTag {
	if tag == nil {
		return BehaviorNone
	}
	if b, ok := behaviorNames[*tag]; ok {
		return b
	}
	return BehaviorNone
}

// Flags holds the boolean element flags from spec §3.2.
type Flags struct {
	Flammable    bool
	Conductive   bool
	Corrosive    bool
	Hot          bool
	Cold         bool
	IgnoreGravity bool
	Rigid        bool
}

// PhaseChange describes a one-directional temperature-triggered
// transition (spec §3.2/§4.C Phase 3).
type PhaseChange struct {
	Temp float32
	ToID uint8
}

// Element is one row of the content table (spec §3.2).
type Element struct {
	ID               uint8
	Key              string
	Name             string
	Category         Category
	BaseColor        uint32
	Density          float32
	HasDensity       bool // false means "null" density (no swap-by-density rule applies)
	Dispersion       int
	Lifetime         uint16
	DefaultTemp      float32
	HeatConductivity float32
	Bounce           float32
	Friction         float32
	Flags            Flags
	PhaseHigh        *PhaseChange
	PhaseLow         *PhaseChange
	Behavior         BehaviorTag

	palette [32]uint32
}

// Reaction is one row of the reaction table (spec §3.3).
type Reaction struct {
	AggressorID       uint8
	VictimID          uint8
	Chance            float32
	ResultAggressorID uint8
	DeleteAggressor   bool // resultAggressor == null
	ResultVictimID    uint8 // EmptyID when resultVictim is null
	SpawnID           uint8
	HasSpawn          bool
}

type reactionKey struct {
	aggressor uint8
	victim    uint8
}

// Table owns element properties, reaction pairs, and id<->key maps loaded
// from a content bundle (Component A). A Table is created once per bundle
// load and is immutable for the lifetime of that load; the engine's
// LOAD_CONTENT_BUNDLE handler swaps the whole table atomically (spec §3.7).
type Table struct {
	elements  [256]*Element
	keyToID   map[string]uint8
	count     int
	reactions map[reactionKey]*Reaction
	// Fingerprint is a deterministic hash of the bundle contents, used for
	// CONTENT_MANIFEST reporting and cache invalidation.
	Fingerprint uint64
}

func newTable() *Table {
	return &Table{
		keyToID:   make(map[string]uint8),
		reactions: make(map[reactionKey]*Reaction),
	}
}

func (t *Table) ElementCount() int { return t.count }

func (t *Table) ElementByID(id uint8) *Element { return t.elements[id] }

func (t *Table) ElementByKey(key string) (*Element, bool) {
	id, ok := t.keyToID[key]
	if !ok {
		return nil, false
	}
	return t.elements[id], true
}

func (t *Table) ReactionFor(aggressor, victim uint8) (*Reaction, bool) {
	r, ok := t.reactions[reactionKey{aggressor, victim}]
	return r, ok
}

// ColorVariant returns the pre-computed palette entry for (id, seed), a
// 5-bit index into the element's 32-entry palette (spec §3.2/§4.A).
func (t *Table) ColorVariant(id uint8, seed uint8) uint32 {
	el := t.elements[id]
	if el == nil {
		return 0
	}
	return el.palette[seed&0x1F]
}

// buildPalette precomputes 32 small RGB offsets around the element's base
// color. Offsets are derived deterministically from the element id and
// palette slot so runs are reproducible across loads of the same bundle.
func buildPalette(base uint32, id uint8) [32]uint32 {
	var palette [32]uint32
	r := uint8(base)
	g := uint8(base >> 8)
	b := uint8(base >> 16)
	for seed := 0; seed < 32; seed++ {
		h := fnvMix(uint32(id), uint32(seed))
		dr := int32(h%7) - 3
		dg := int32((h>>8)%7) - 3
		db := int32((h>>16)%7) - 3
		nr := clampByte(int32(r) + dr)
		ng := clampByte(int32(g) + dg)
		nb := clampByte(int32(b) + db)
		palette[seed] = uint32(0xFF)<<24 | uint32(nb)<<16 | uint32(ng)<<8 | uint32(nr)
	}
	return palette
}

func clampByte(v int32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func fnvMix(a, b uint32) uint32 {
	h := uint32(2166136261)
	for _, v := range []uint32{a, b} {
		h ^= v
		h *= 16777619
	}
	return h
}

// clampTemp enforces invariant C2.
func clampTemp(t float32) float32 {
	if t < -273 {
		return -273
	}
	if t > 5000 {
		return 5000
	}
	return t
}

// manifestElement is one entry of a CONTENT_MANIFEST payload (spec §4.H).
type manifestElement struct {
	ID    uint8  `json:"id"`
	Key   string `json:"key"`
	Name  string `json:"name"`
	Color uint32 `json:"color"`
}

// manifestDoc is the full CONTENT_MANIFEST JSON body.
type manifestDoc struct {
	Fingerprint  uint64            `json:"fingerprint"`
	ElementCount int               `json:"elementCount"`
	Elements     []manifestElement `json:"elements"`
}

// BuildManifestJSON serializes this table's element set and Fingerprint
// into the CONTENT_MANIFEST payload sent after a bundle load, so the host
// can display/cache the active content set without re-parsing the raw
// bundle JSON itself.
func (t *Table) BuildManifestJSON() []byte {
	doc := manifestDoc{Fingerprint: t.Fingerprint, ElementCount: t.count}
	for id := 1; id < len(t.elements); id++ {
		el := t.elements[id]
		if el == nil {
			continue
		}
		doc.Elements = append(doc.Elements, manifestElement{
			ID: el.ID, Key: el.Key, Name: el.Name, Color: el.BaseColor,
		})
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil
	}
	return data
}
