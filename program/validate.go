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

package program

import (
	"fmt"

	"github.com/keyrx/keyrx/keycode"
)

// validate checks the structural invariants spec §3/§4.2/§7 require of a
// loaded ConfigRoot: at most one top-level mapping per physical key
// within a device, IDs in the 0..=253 domain, macro references that
// resolve, and a bounded conditional nesting depth. It runs once at load
// time; nothing here is re-checked per event.
func (p *Program) validate() error {
	if p.root.Version != CurrentVersion {
		return &LoadError{Kind: StructurallyInvalid,
			Err: fmt.Errorf("program: payload version %d does not match header version", p.root.Version)}
	}

	maxDepth := 0
	for di, dev := range p.root.Devices {
		seen := make(map[keycode.KeyCode]bool, len(dev.Mappings))
		for _, entry := range dev.Mappings {
			if seen[entry.Physical] {
				return &LoadError{Kind: StructurallyInvalid,
					Err: fmt.Errorf("program: device %d maps physical key %s more than once",
						di, entry.Physical)}
			}
			seen[entry.Physical] = true

			depth, err := validateMapping(&entry.Mapping, p.root.Macros, 0)
			if err != nil {
				return &LoadError{Kind: StructurallyInvalid,
					Err: fmt.Errorf("program: device %d key %s: %w", di, entry.Physical, err)}
			}
			if depth > maxDepth {
				maxDepth = depth
			}
		}
	}
	if maxDepth > maxConditionalDepth {
		return &LoadError{Kind: StructurallyInvalid,
			Err: fmt.Errorf("program: conditional chain depth %d exceeds %d", maxDepth, maxConditionalDepth)}
	}
	p.maxDepth = maxDepth
	return nil
}

func validateMapping(m *BaseKeyMapping, macros map[MacroID]MacroBody, depth int) (int, error) {
	if depth > maxConditionalDepth {
		return depth, fmt.Errorf("conditional chain too deep")
	}
	switch m.Kind {
	case MappingSimple, MappingModifiedOutput:
		if m.Virtual.Tag != keycode.Virtual {
			return depth, fmt.Errorf("mapping output key %s is not a virtual key", m.Virtual)
		}
	case MappingModifier:
		if !m.ModifierID.Valid() {
			return depth, fmt.Errorf("modifier id %d out of range", m.ModifierID)
		}
	case MappingLock:
		if !m.LockID.Valid() {
			return depth, fmt.Errorf("lock id %d out of range", m.LockID)
		}
	case MappingTapHold:
		if m.TapVirtual.Tag != keycode.Virtual {
			return depth, fmt.Errorf("tap-hold tap key %s is not a virtual key", m.TapVirtual)
		}
		if !m.HoldModifier.Valid() {
			return depth, fmt.Errorf("tap-hold modifier id %d out of range", m.HoldModifier)
		}
		if m.ThresholdMs == 0 {
			return depth, fmt.Errorf("tap-hold threshold must be positive")
		}
	case MappingMacro:
		body, ok := macros[m.Macro]
		if !ok {
			return depth, fmt.Errorf("macro id %d has no body", m.Macro)
		}
		if err := validateMacroBody(body); err != nil {
			return depth, err
		}
	case MappingConditional:
		if m.Then == nil {
			return depth, fmt.Errorf("conditional mapping missing then-branch")
		}
		if err := validateCondition(m.Condition); err != nil {
			return depth, err
		}
		thenDepth, err := validateMapping(m.Then, macros, depth+1)
		if err != nil {
			return depth, err
		}
		maxd := thenDepth
		if m.Else != nil {
			elseDepth, err := validateMapping(m.Else, macros, depth+1)
			if err != nil {
				return depth, err
			}
			if elseDepth > maxd {
				maxd = elseDepth
			}
		}
		return maxd, nil
	default:
		return depth, fmt.Errorf("unknown mapping kind %d", m.Kind)
	}
	return depth, nil
}

func validateCondition(c Condition) error {
	switch c.op {
	case opSingle:
		return validateID(c.single.Kind, c.single.ID)
	case opAllActive, opAnyActive, opNotActive:
		for _, id := range c.ids {
			if err := validateID(c.kind, id); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown condition op %d", c.op)
	}
}

func validateID(kind ConditionKind, id uint8) error {
	if kind == KindModifier {
		if !keycode.ModifierID(id).Valid() {
			return fmt.Errorf("condition modifier id %d out of range", id)
		}
		return nil
	}
	if !keycode.LockID(id).Valid() {
		return fmt.Errorf("condition lock id %d out of range", id)
	}
	return nil
}

// validateMacroBody rejects any step that would reference a non-virtual
// key, and is also where spec §7's MacroTooDeep would be caught: the
// MacroStep type itself has no variant capable of naming another macro,
// so recursion cannot be encoded by a compiler operating through this
// package's builder API — but a corrupted or adversarially hand-crafted
// payload could still set an out-of-range Kind byte, which this rejects
// as StructurallyInvalid exactly as MacroTooDeep is classified in spec §7.
func validateMacroBody(body MacroBody) error {
	for _, step := range body {
		switch step.Kind {
		case StepPress, StepRelease:
			if step.Virtual.Tag != keycode.Virtual {
				return fmt.Errorf("macro step references non-virtual key %s", step.Virtual)
			}
		case StepWait:
			// any uint32 millisecond count is acceptable
		default:
			return fmt.Errorf("macro step has unknown kind %d (MacroTooDeep)", step.Kind)
		}
	}
	return nil
}
