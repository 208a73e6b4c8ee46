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

package keycode

// bitsetWords holds 254 bits (IDs 0..=253) rounded up to whole uint64
// words. Bits 254 and 255 of each array lie outside the valid ID domain;
// the methods here do not range-check their id argument, so those bits
// stay clear only because load-time validation rejects IDs above MaxID.
const bitsetWords = 4

// State is the 255-bit runtime state from spec §3: 254 user-defined
// modifier bits plus 254 user-defined lock bits. It is a plain value
// type (no pointers), so normal Go assignment already gives the
// trivially-clonable, equality-comparable semantics the spec requires —
// there is no separate Clone method, just "s2 := s1".
type State struct {
	modifiers [bitsetWords]uint64
	locks     [bitsetWords]uint64
}

func wordBit(id uint8) (word int, bit uint64) {
	return int(id) / 64, uint64(1) << (uint(id) % 64)
}

// IsModifierActive reports whether the given modifier bit is set.
func (s State) IsModifierActive(id ModifierID) bool {
	w, b := wordBit(uint8(id))
	return s.modifiers[w]&b != 0
}

// IsLockActive reports whether the given lock bit is set.
func (s State) IsLockActive(id LockID) bool {
	w, b := wordBit(uint8(id))
	return s.locks[w]&b != 0
}

// SetModifier sets or clears a modifier bit. Pressing a Modifier mapping
// calls this with active=true; releasing calls it with active=false
// (spec §4.4).
func (s *State) SetModifier(id ModifierID, active bool) {
	w, b := wordBit(uint8(id))
	if active {
		s.modifiers[w] |= b
	} else {
		s.modifiers[w] &^= b
	}
}

// ToggleLock flips a lock bit. Only the press edge of a Lock mapping
// calls this; the release is suppressed entirely (spec §4.4).
func (s *State) ToggleLock(id LockID) {
	w, b := wordBit(uint8(id))
	s.locks[w] ^= b
}

// Snapshot returns an independent copy of s, safe for an external
// observer to retain after the engine continues mutating its own state
// (spec §5, "external observers obtain a cloned snapshot").
func (s State) Snapshot() State {
	return s
}

// Equal reports whether two states have identical modifier and lock
// bits.
func (s State) Equal(o State) bool {
	return s.modifiers == o.modifiers && s.locks == o.locks
}
