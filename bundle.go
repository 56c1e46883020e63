package sandcore

import (
	"encoding/json"
	"math"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// bundleJSON mirrors the content bundle wire format, spec §6.1.
type bundleJSON struct {
	FormatVersion   int                 `json:"formatVersion"`
	GeneratedAt     string              `json:"generatedAt"`
	Packs           []bundlePackJSON    `json:"packs"`
	Elements        []bundleElementJSON `json:"elements"`
	ElementKeyToID  map[string]uint8    `json:"elementKeyToId"`
	Reactions       []bundleReactionJSON `json:"reactions"`
}

type bundlePackJSON struct {
	Key          string   `json:"key"`
	DependsOn    []string `json:"dependsOn"`
}

type bundleFlagsJSON struct {
	Flammable     bool `json:"flammable"`
	Conductive    bool `json:"conductive"`
	Corrosive     bool `json:"corrosive"`
	Hot           bool `json:"hot"`
	Cold          bool `json:"cold"`
	IgnoreGravity bool `json:"ignoreGravity"`
	Rigid         bool `json:"rigid"`
}

type bundlePhaseEntryJSON struct {
	Temp float32 `json:"temp"`
	To   string  `json:"to"`
	ToID *uint8  `json:"toId"`
}

type bundlePhaseChangeJSON struct {
	High *bundlePhaseEntryJSON `json:"high"`
	Low  *bundlePhaseEntryJSON `json:"low"`
}

type bundleUIJSON struct {
	Category    string `json:"category"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
	Sort        int    `json:"sort"`
	Hidden      bool   `json:"hidden"`
}

type bundleElementJSON struct {
	ID               uint8                  `json:"id"`
	Key              string                 `json:"key"`
	Name             string                 `json:"name"`
	Pack             string                 `json:"pack"`
	Category         string                 `json:"category"`
	Color            uint32                 `json:"color"`
	Density          *float64               `json:"density"` // null, or "Infinity" pre-decoded to math.Inf by producer
	Dispersion       int                    `json:"dispersion"`
	Lifetime         uint16                 `json:"lifetime"`
	DefaultTemp      float32                `json:"defaultTemp"`
	HeatConductivity float32                `json:"heatConductivity"`
	Bounce           float32                `json:"bounce"`
	Friction         float32                `json:"friction"`
	Flags            bundleFlagsJSON        `json:"flags"`
	Behavior         *string                `json:"behavior"`
	PhaseChange      *bundlePhaseChangeJSON `json:"phaseChange"`
	Hidden           bool                   `json:"hidden"`
	UI               *bundleUIJSON          `json:"ui"`
}

type bundleReactionJSON struct {
	Aggressor         string  `json:"aggressor"`
	Victim            string  `json:"victim"`
	Chance            float32 `json:"chance"`
	ResultAggressor   *string `json:"resultAggressor"`
	ResultVictim      *string `json:"resultVictim"`
	Spawn             *string `json:"spawn"`
	AggressorID       uint8   `json:"aggressorId"`
	VictimID          uint8   `json:"victimId"`
	ResultAggressorID *uint8  `json:"resultAggressorId"`
	ResultVictimID    uint8   `json:"resultVictimId"`
	SpawnID           *uint8  `json:"spawnId"`
}

// LoadBundle parses and validates a content bundle, returning a fully
// built Table or a structured ContentBundleInvalid error carrying the
// source path (spec §4.A).
func LoadBundle(sourcePath string, data []byte) (*Table, error) {
	var raw bundleJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, newContentErr(sourcePath, "parse bundle: %w", err)
	}
	if raw.FormatVersion != 1 {
		return nil, newContentErr(sourcePath, "unsupported formatVersion %d", raw.FormatVersion)
	}

	packOrder, err := topoSortPacks(raw.Packs)
	if err != nil {
		return nil, newContentErr(sourcePath, "%w", err)
	}
	packRank := make(map[string]int, len(packOrder))
	for i, p := range packOrder {
		packRank[p] = i
	}

	elements := make([]bundleElementJSON, len(raw.Elements))
	copy(elements, raw.Elements)
	sort.SliceStable(elements, func(i, j int) bool {
		ri, riok := packRank[elements[i].Pack]
		rj, rjok := packRank[elements[j].Pack]
		if !riok {
			ri = len(packOrder)
		}
		if !rjok {
			rj = len(packOrder)
		}
		return ri < rj
	})

	table := newTable()
	seen := make(map[uint8]bool)
	seenKeys := make(map[string]bool)
	var emptySeen bool

	for _, e := range elements {
		if e.Key == "" {
			return nil, newContentErr(sourcePath, "element with empty key")
		}
		if seenKeys[e.Key] {
			return nil, newContentErr(sourcePath, "duplicate element key %q", e.Key)
		}
		if seen[e.ID] {
			return nil, newContentErr(sourcePath, "duplicate element id %d (key %q)", e.ID, e.Key)
		}
		if e.Key == "base:empty" {
			if e.ID != 0 {
				return nil, newContentErr(sourcePath, "base:empty must have id 0, got %d", e.ID)
			}
			emptySeen = true
		}

		cat, ok := ParseCategory(e.Category)
		if !ok {
			return nil, newContentErr(sourcePath, "element %q: unknown category %q", e.Key, e.Category)
		}

		el := &Element{
			ID:               e.ID,
			Key:              e.Key,
			Name:             e.Name,
			Category:         cat,
			BaseColor:        e.Color,
			Dispersion:       e.Dispersion,
			Lifetime:         e.Lifetime,
			DefaultTemp:      e.DefaultTemp,
			HeatConductivity: e.HeatConductivity,
			Bounce:           e.Bounce,
			Friction:         e.Friction,
			Behavior:         parseBehavior(e.Behavior),
			Flags: Flags{
				Flammable:     e.Flags.Flammable,
				Conductive:    e.Flags.Conductive,
				Corrosive:     e.Flags.Corrosive,
				Hot:           e.Flags.Hot,
				Cold:          e.Flags.Cold,
				IgnoreGravity: e.Flags.IgnoreGravity,
				Rigid:         e.Flags.Rigid,
			},
		}
		if e.Density != nil {
			el.HasDensity = true
			if math.IsInf(*e.Density, 1) {
				el.Density = float32(math.MaxFloat32)
			} else {
				el.Density = float32(*e.Density)
			}
		}
		el.palette = buildPalette(el.BaseColor, el.ID)

		table.elements[el.ID] = el
		table.keyToID[el.Key] = el.ID
		seen[e.ID] = true
		seenKeys[e.Key] = true
		table.count++
	}

	if !emptySeen {
		return nil, newContentErr(sourcePath, "bundle missing required base:empty element at id 0")
	}

	// Resolve phaseChange.to after every element id is known.
	for _, e := range elements {
		if e.PhaseChange == nil {
			continue
		}
		el := table.elements[e.ID]
		var err error
		el.PhaseHigh, err = resolvePhase(table, sourcePath, e.PhaseChange.High)
		if err != nil {
			return nil, err
		}
		el.PhaseLow, err = resolvePhase(table, sourcePath, e.PhaseChange.Low)
		if err != nil {
			return nil, err
		}
	}

	for _, r := range raw.Reactions {
		aggID, err := resolveRef(table, sourcePath, r.Aggressor, r.AggressorID)
		if err != nil {
			return nil, err
		}
		vicID, err := resolveRef(table, sourcePath, r.Victim, r.VictimID)
		if err != nil {
			return nil, err
		}
		rxn := &Reaction{AggressorID: aggID, VictimID: vicID, Chance: r.Chance}
		if r.ResultAggressor == nil {
			rxn.DeleteAggressor = true
		} else {
			id, err := resolveRef(table, sourcePath, *r.ResultAggressor, 0)
			if err != nil {
				return nil, err
			}
			rxn.ResultAggressorID = id
		}
		if r.ResultVictim == nil {
			rxn.ResultVictimID = EmptyID
		} else {
			id, err := resolveRef(table, sourcePath, *r.ResultVictim, r.ResultVictimID)
			if err != nil {
				return nil, err
			}
			rxn.ResultVictimID = id
		}
		if r.Spawn != nil {
			id, err := resolveRef(table, sourcePath, *r.Spawn, 0)
			if err != nil {
				return nil, err
			}
			rxn.SpawnID = id
			rxn.HasSpawn = true
		}
		key := reactionKey{aggressor: aggID, victim: vicID}
		if _, dup := table.reactions[key]; dup {
			return nil, newContentErr(sourcePath, "duplicate reaction for pair (%d,%d)", aggID, vicID)
		}
		table.reactions[key] = rxn
	}

	table.Fingerprint = fingerprintBundle(data)
	return table, nil
}

func resolvePhase(table *Table, sourcePath string, entry *bundlePhaseEntryJSON) (*PhaseChange, error) {
	if entry == nil {
		return nil, nil
	}
	id, err := resolveRef(table, sourcePath, entry.To, derefOr(entry.ToID, 0))
	if err != nil {
		return nil, err
	}
	return &PhaseChange{Temp: entry.Temp, ToID: id}, nil
}

func derefOr(p *uint8, def uint8) uint8 {
	if p == nil {
		return def
	}
	return *p
}

func resolveRef(table *Table, sourcePath string, key string, fallbackID uint8) (uint8, error) {
	if key == "" {
		return fallbackID, nil
	}
	id, ok := table.keyToID[key]
	if !ok {
		return 0, newContentErr(sourcePath, "unresolved element reference %q", key)
	}
	return id, nil
}

// topoSortPacks orders packs by dependency (Kahn's algorithm) with stable
// tie-breaking on pack key, per spec §6.1.
func topoSortPacks(packs []bundlePackJSON) ([]string, error) {
	indeg := make(map[string]int)
	deps := make(map[string][]string) // dep -> dependents
	order := make([]string, 0, len(packs))
	for _, p := range packs {
		if _, ok := indeg[p.Key]; !ok {
			indeg[p.Key] = 0
		}
		for _, d := range p.DependsOn {
			indeg[p.Key]++
			deps[d] = append(deps[d], p.Key)
		}
	}
	var ready []string
	for k, d := range indeg {
		if d == 0 {
			ready = append(ready, k)
		}
	}
	sort.Strings(ready)
	for len(ready) > 0 {
		sort.Strings(ready)
		k := ready[0]
		ready = ready[1:]
		order = append(order, k)
		for _, dependent := range deps[k] {
			indeg[dependent]--
			if indeg[dependent] == 0 {
				ready = append(ready, dependent)
			}
		}
	}
	if len(order) != len(indeg) {
		return nil, errCyclicPacks
	}
	return order, nil
}

var errCyclicPacks = newErr(ContentBundleInvalid, "cyclic pack dependency graph")

func fingerprintBundle(data []byte) uint64 {
	return xxhash.Sum64(data)
}
