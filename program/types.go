// Copyright 2015 The TCell Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use file except in compliance with the License.
// You may obtain a copy of the license at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package program implements the KeyRx compiled mapping program: the
// in-memory ConfigRoot structures, their deterministic binary codec (the
// ".krx" artifact), load-time validation, device resolution and the O(1)
// mapping lookup. It is produced by a compile step that lives outside
// this module (spec §1); this package is both ends of that contract —
// the encoder a compiler would call, and the decoder the runtime calls.
package program

import "github.com/keyrx/keyrx/keycode"

// ConditionKind distinguishes a condition's bitset: modifiers or locks.
type ConditionKind uint8

const (
	KindModifier ConditionKind = iota
	KindLock
)

// ConditionItem is one atomic test against the runtime state.
type ConditionItem struct {
	Kind   ConditionKind
	ID     uint8 // ModifierID or LockID depending on Kind
	Active bool  // true = "Active" variant, false = "Inactive" variant
}

// Condition is spec §3's closed Condition variant set: Single, AllActive,
// AnyActive, NotActive. An empty IDs slice passes validation at load
// time; Eval then treats AllActive, AnyActive and NotActive alike as
// true.
type Condition struct {
	op     conditionOp
	single ConditionItem
	kind   ConditionKind
	ids    []uint8
}

type conditionOp uint8

const (
	opSingle conditionOp = iota
	opAllActive
	opAnyActive
	opNotActive
)

// Single builds a Condition that tests one ConditionItem.
func Single(item ConditionItem) Condition {
	return Condition{op: opSingle, single: item}
}

// AllActive builds a Condition requiring every id of the given kind to be
// active.
func AllActive(kind ConditionKind, ids []uint8) Condition {
	return Condition{op: opAllActive, kind: kind, ids: ids}
}

// AnyActive builds a Condition requiring at least one id of the given
// kind to be active.
func AnyActive(kind ConditionKind, ids []uint8) Condition {
	return Condition{op: opAnyActive, kind: kind, ids: ids}
}

// NotActive builds a Condition requiring every id of the given kind to be
// inactive.
func NotActive(kind ConditionKind, ids []uint8) Condition {
	return Condition{op: opNotActive, kind: kind, ids: ids}
}

// Eval evaluates the condition against st. Evaluation is pure and
// side-effect free (spec §3), and idempotent by construction — it only
// reads st, never writes it (spec §8, invariant 7).
func (c Condition) Eval(st keycode.State) bool {
	switch c.op {
	case opSingle:
		return evalItem(st, c.single)
	case opAllActive:
		for _, id := range c.ids {
			if !isActive(st, c.kind, id) {
				return false
			}
		}
		return true
	case opAnyActive:
		for _, id := range c.ids {
			if isActive(st, c.kind, id) {
				return true
			}
		}
		return len(c.ids) == 0
	case opNotActive:
		for _, id := range c.ids {
			if isActive(st, c.kind, id) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func isActive(st keycode.State, kind ConditionKind, id uint8) bool {
	if kind == KindModifier {
		return st.IsModifierActive(keycode.ModifierID(id))
	}
	return st.IsLockActive(keycode.LockID(id))
}

func evalItem(st keycode.State, item ConditionItem) bool {
	active := isActive(st, item.Kind, item.ID)
	return active == item.Active
}

// MacroID identifies a MacroBody within a ConfigRoot's macro table.
type MacroID uint16

// MacroStepKind tags a MacroStep's variant.
type MacroStepKind uint8

const (
	StepPress MacroStepKind = iota
	StepRelease
	StepWait
)

// MacroStep is one instruction of a macro body (spec §3): Press/Release
// of a virtual key, or a Wait expressed in whole milliseconds.
type MacroStep struct {
	Kind    MacroStepKind
	Virtual keycode.KeyCode // meaningful for StepPress/StepRelease
	WaitMs  uint32          // meaningful for StepWait
}

// MacroBody is an ordered sequence of steps. Macros may not invoke other
// macros (spec §3); that invariant is structural — MacroStep has no
// variant capable of naming a MacroID — so there is nothing for the
// runtime to guard against beyond what the compiler already guarantees,
// but the load-time validator still checks it explicitly in case of a
// corrupted or hand-crafted payload that encodes an out-of-range Kind
// (see validateMacroBody in validate.go).
type MacroBody []MacroStep

// BaseKeyMapping is spec §3's closed mapping variant set. It is modelled
// as a tagged struct rather than an interface-per-variant: every
// component that consumes a mapping (the lookup table, the codec, the
// runtime engine) needs an exhaustive switch over the same seven cases,
// and a single Kind field makes that switch a plain "switch m.Kind"
// instead of a type switch over seven pointer types — cheaper to store
// in the dense per-device array C3 needs, and there is no case here
// where Go's type-switch polymorphism would pull its weight (none of the
// variants gain behavior beyond field access).
type MappingKind uint8

const (
	MappingSimple MappingKind = iota
	MappingModifier
	MappingLock
	MappingModifiedOutput
	MappingTapHold
	MappingMacro
	MappingConditional
)

// BaseKeyMapping is the result of resolving one physical key: what the
// runtime engine should do with a press/release of it.
type BaseKeyMapping struct {
	Kind MappingKind

	// MappingSimple
	Virtual keycode.KeyCode

	// MappingModifier
	ModifierID keycode.ModifierID

	// MappingLock
	LockID keycode.LockID

	// MappingModifiedOutput (Virtual above is the output key)
	Shift, Ctrl, Alt, Meta bool

	// MappingTapHold
	TapVirtual     keycode.KeyCode
	HoldModifier   keycode.ModifierID
	ThresholdMs    uint32

	// MappingMacro
	Macro MacroID

	// MappingConditional
	Condition Condition
	Then      *BaseKeyMapping
	Else      *BaseKeyMapping // nil => pass-through per spec §3
}

// Resolve walks a (possibly Conditional) mapping to a terminal,
// non-conditional variant against st. The walk is an explicit loop, not
// recursion, bounded by maxConditionalDepth, the same nesting limit
// load-time validation enforces — so it cannot blow the stack even on a
// corrupted payload that encoded a cycle (load-time validation rejects
// cycles outright, but Resolve does not rely on that alone). It returns
// ok=false for pass-through (no mapping applies).
func (m *BaseKeyMapping) Resolve(st keycode.State) (BaseKeyMapping, bool) {
	cur := m
	for i := 0; i < maxConditionalDepth+1; i++ {
		if cur == nil {
			return BaseKeyMapping{}, false
		}
		if cur.Kind != MappingConditional {
			return *cur, true
		}
		if cur.Condition.Eval(st) {
			cur = cur.Then
		} else {
			cur = cur.Else
		}
	}
	// Defensive: a validated program cannot reach this, since
	// maxConditionalDepth bounds the deepest chain seen at load time.
	return BaseKeyMapping{}, false
}

// maxConditionalDepth bounds how many Conditional hops Resolve will
// follow before giving up and treating the chain as pass-through. It is
// generous relative to any plausible hand-written DSL program.
const maxConditionalDepth = 64

// DeviceIdentifier is a glob-like pattern matched against a
// platform-reported device name; "*" matches every device (spec §3).
type DeviceIdentifier string

// KeyMappingEntry pairs one physical key with its top-level mapping
// within a DeviceConfig.
type KeyMappingEntry struct {
	Physical keycode.KeyCode
	Mapping  BaseKeyMapping
}

// DeviceConfig is one device's ordered mapping table.
type DeviceConfig struct {
	Identifier DeviceIdentifier
	Mappings   []KeyMappingEntry
}

// ConfigRoot is the full compiled program: version, free-form metadata,
// the ordered device list (first-match-wins per physical key across
// devices with overlapping patterns, spec §3), and the shared macro
// table.
type ConfigRoot struct {
	Version  uint32
	Metadata map[string]string
	Devices  []DeviceConfig
	Macros   map[MacroID]MacroBody
}
