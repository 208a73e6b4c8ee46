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
	"encoding/binary"
	"errors"
	"sort"

	"github.com/keyrx/keyrx/keycode"
)

// payloadWriter accumulates the deterministic payload bytes. The
// append-cursor shape (AppendX methods mutating a growing []byte) mirrors
// the ASDU codec style used elsewhere in the retrieval pack for
// hand-rolled binary wire formats: small typed Append/Decode pairs over a
// single backing buffer, rather than reflection-based encoding.
type payloadWriter struct {
	buf []byte
}

func (w *payloadWriter) byte(b byte)  { w.buf = append(w.buf, b) }
func (w *payloadWriter) u16(v uint16) { w.buf = binary.LittleEndian.AppendUint16(w.buf, v) }
func (w *payloadWriter) u32(v uint32) { w.buf = binary.LittleEndian.AppendUint32(w.buf, v) }

func (w *payloadWriter) bool(b bool) {
	if b {
		w.byte(1)
	} else {
		w.byte(0)
	}
}

func (w *payloadWriter) str(s string) {
	w.u32(uint32(len(s)))
	w.buf = append(w.buf, s...)
}
func (w *payloadWriter) keyCode(k keycode.KeyCode) {
	w.byte(byte(k.Tag))
	w.byte(k.ID)
}

// payloadReader is the matching decode cursor; every Read* pairs with a
// Write* above and consumes exactly as many bytes.
type payloadReader struct {
	buf []byte
	pos int
	err error
}

func (r *payloadReader) fail() {
	if r.err == nil {
		r.err = errors.New("program: payload truncated")
	}
}

func (r *payloadReader) need(n int) bool {
	if r.err != nil || r.pos+n > len(r.buf) {
		r.fail()
		return false
	}
	return true
}

func (r *payloadReader) byte() byte {
	if !r.need(1) {
		return 0
	}
	b := r.buf[r.pos]
	r.pos++
	return b
}

func (r *payloadReader) boolean() bool { return r.byte() != 0 }

func (r *payloadReader) u16() uint16 {
	if !r.need(2) {
		return 0
	}
	v := binary.LittleEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v
}

func (r *payloadReader) u32() uint32 {
	if !r.need(4) {
		return 0
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v
}

func (r *payloadReader) str() string {
	n := r.u32()
	if !r.need(int(n)) {
		return ""
	}
	s := string(r.buf[r.pos : r.pos+int(n)])
	r.pos += int(n)
	return s
}

func (r *payloadReader) keyCode() keycode.KeyCode {
	tag := keycode.Tag(r.byte())
	id := r.byte()
	return keycode.KeyCode{Tag: tag, ID: id}
}

// encodePayload renders root deterministically: identical input always
// produces byte-identical output (spec §8, invariant 2), because every
// collection serialized here is either already an ordered slice
// (Devices, Mappings, macro steps) or is explicitly sorted before
// encoding (Metadata keys, Macros keys) rather than iterated as a Go map,
// whose iteration order is intentionally randomized.
func encodePayload(root ConfigRoot) []byte {
	w := &payloadWriter{}
	w.u32(root.Version)

	metaKeys := make([]string, 0, len(root.Metadata))
	for k := range root.Metadata {
		metaKeys = append(metaKeys, k)
	}
	sort.Strings(metaKeys)
	w.u32(uint32(len(metaKeys)))
	for _, k := range metaKeys {
		w.str(k)
		w.str(root.Metadata[k])
	}

	w.u32(uint32(len(root.Devices)))
	for _, dev := range root.Devices {
		w.str(string(dev.Identifier))
		w.u32(uint32(len(dev.Mappings)))
		for _, entry := range dev.Mappings {
			w.keyCode(entry.Physical)
			encodeMapping(w, entry.Mapping)
		}
	}

	macroIDs := make([]int, 0, len(root.Macros))
	for id := range root.Macros {
		macroIDs = append(macroIDs, int(id))
	}
	sort.Ints(macroIDs)
	w.u32(uint32(len(macroIDs)))
	for _, idInt := range macroIDs {
		id := MacroID(idInt)
		body := root.Macros[id]
		w.u16(uint16(id))
		w.u32(uint32(len(body)))
		for _, step := range body {
			w.byte(byte(step.Kind))
			switch step.Kind {
			case StepPress, StepRelease:
				w.keyCode(step.Virtual)
			case StepWait:
				w.u32(step.WaitMs)
			}
		}
	}

	return w.buf
}

func encodeCondition(w *payloadWriter, c Condition) {
	w.byte(byte(c.op))
	switch c.op {
	case opSingle:
		w.byte(byte(c.single.Kind))
		w.byte(c.single.ID)
		w.bool(c.single.Active)
	default:
		w.byte(byte(c.kind))
		w.u32(uint32(len(c.ids)))
		for _, id := range c.ids {
			w.byte(id)
		}
	}
}

func decodeCondition(r *payloadReader) Condition {
	op := conditionOp(r.byte())
	switch op {
	case opSingle:
		kind := ConditionKind(r.byte())
		id := r.byte()
		active := r.boolean()
		return Single(ConditionItem{Kind: kind, ID: id, Active: active})
	default:
		kind := ConditionKind(r.byte())
		n := r.u32()
		ids := make([]uint8, n)
		for i := range ids {
			ids[i] = r.byte()
		}
		switch op {
		case opAllActive:
			return AllActive(kind, ids)
		case opAnyActive:
			return AnyActive(kind, ids)
		default:
			return NotActive(kind, ids)
		}
	}
}

func encodeMapping(w *payloadWriter, m BaseKeyMapping) {
	w.byte(byte(m.Kind))
	switch m.Kind {
	case MappingSimple:
		w.keyCode(m.Virtual)
	case MappingModifier:
		w.byte(uint8(m.ModifierID))
	case MappingLock:
		w.byte(uint8(m.LockID))
	case MappingModifiedOutput:
		w.keyCode(m.Virtual)
		w.bool(m.Shift)
		w.bool(m.Ctrl)
		w.bool(m.Alt)
		w.bool(m.Meta)
	case MappingTapHold:
		w.keyCode(m.TapVirtual)
		w.byte(uint8(m.HoldModifier))
		w.u32(m.ThresholdMs)
	case MappingMacro:
		w.u16(uint16(m.Macro))
	case MappingConditional:
		encodeCondition(w, m.Condition)
		encodeMapping(w, *m.Then)
		hasElse := m.Else != nil
		w.bool(hasElse)
		if hasElse {
			encodeMapping(w, *m.Else)
		}
	}
}

func decodeMapping(r *payloadReader) BaseKeyMapping {
	var m BaseKeyMapping
	m.Kind = MappingKind(r.byte())
	switch m.Kind {
	case MappingSimple:
		m.Virtual = r.keyCode()
	case MappingModifier:
		m.ModifierID = keycode.ModifierID(r.byte())
	case MappingLock:
		m.LockID = keycode.LockID(r.byte())
	case MappingModifiedOutput:
		m.Virtual = r.keyCode()
		m.Shift = r.boolean()
		m.Ctrl = r.boolean()
		m.Alt = r.boolean()
		m.Meta = r.boolean()
	case MappingTapHold:
		m.TapVirtual = r.keyCode()
		m.HoldModifier = keycode.ModifierID(r.byte())
		m.ThresholdMs = r.u32()
	case MappingMacro:
		m.Macro = MacroID(r.u16())
	case MappingConditional:
		m.Condition = decodeCondition(r)
		then := decodeMapping(r)
		m.Then = &then
		if r.boolean() {
			els := decodeMapping(r)
			m.Else = &els
		}
	}
	return m
}

// decodePayload is encodePayload's exact inverse; deserialize(serialize(x))
// == x for all valid x (spec §8, invariant 1) because every Write* above
// has a matching Read* consuming the identical byte count.
func decodePayload(buf []byte) (ConfigRoot, error) {
	r := &payloadReader{buf: buf}
	var root ConfigRoot
	root.Version = r.u32()

	nMeta := r.u32()
	if nMeta > 0 {
		root.Metadata = make(map[string]string, nMeta)
	}
	for i := uint32(0); i < nMeta; i++ {
		k := r.str()
		v := r.str()
		if root.Metadata == nil {
			root.Metadata = map[string]string{}
		}
		root.Metadata[k] = v
	}

	nDev := r.u32()
	root.Devices = make([]DeviceConfig, 0, nDev)
	for i := uint32(0); i < nDev && r.err == nil; i++ {
		var dev DeviceConfig
		dev.Identifier = DeviceIdentifier(r.str())
		nMap := r.u32()
		dev.Mappings = make([]KeyMappingEntry, 0, nMap)
		for j := uint32(0); j < nMap && r.err == nil; j++ {
			phys := r.keyCode()
			m := decodeMapping(r)
			dev.Mappings = append(dev.Mappings, KeyMappingEntry{Physical: phys, Mapping: m})
		}
		root.Devices = append(root.Devices, dev)
	}

	nMacro := r.u32()
	if nMacro > 0 {
		root.Macros = make(map[MacroID]MacroBody, nMacro)
	}
	for i := uint32(0); i < nMacro && r.err == nil; i++ {
		id := MacroID(r.u16())
		nSteps := r.u32()
		body := make(MacroBody, 0, nSteps)
		for j := uint32(0); j < nSteps && r.err == nil; j++ {
			var step MacroStep
			step.Kind = MacroStepKind(r.byte())
			switch step.Kind {
			case StepPress, StepRelease:
				step.Virtual = r.keyCode()
			case StepWait:
				step.WaitMs = r.u32()
			}
			body = append(body, step)
		}
		if root.Macros == nil {
			root.Macros = map[MacroID]MacroBody{}
		}
		root.Macros[id] = body
	}

	if r.err != nil {
		return ConfigRoot{}, r.err
	}
	return root, nil
}
