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

// Package keycode defines the canonical KeyRx key alphabet: the physical
// keys a keyboard device reports, and the virtual keys an output stream
// may carry. The two spaces share a flat byte of numeric ID space each,
// but are never interchangeable without going through a mapping.
package keycode

import "fmt"

// Tag distinguishes the physical key space (what a keyboard reports) from
// the virtual key space (what gets injected into the output stream).
type Tag uint8

const (
	Physical Tag = iota
	Virtual
)

func (t Tag) String() string {
	if t == Virtual {
		return "virtual"
	}
	return "physical"
}

// KeyCode is a tagged identifier for a single key. Equality and ordering
// are on the (Tag, ID) pair; a physical and a virtual KeyCode with the
// same numeric ID are different keys.
type KeyCode struct {
	Tag Tag
	ID  uint8
}

// Unknown reports whether k's id has no canonical name in the alphabet of
// k's own tag. An unknown physical code is never rejected at runtime; it
// simply passes through. The engine drops (and counts) an output whose
// virtual code is unknown.
func (k KeyCode) Unknown() bool {
	tbl := physicalNames
	if k.Tag == Virtual {
		tbl = virtualNames
	}
	_, ok := tbl[k.ID]
	return !ok
}

// Equal reports whether k and o name the same (tag, id) pair.
func (k KeyCode) Equal(o KeyCode) bool {
	return k.Tag == o.Tag && k.ID == o.ID
}

// Less gives KeyCode a total order: physical keys sort before virtual
// keys, and within a tag, by numeric ID.
func (k KeyCode) Less(o KeyCode) bool {
	if k.Tag != o.Tag {
		return k.Tag < o.Tag
	}
	return k.ID < o.ID
}

// String renders the canonical name, or a "Key[tag,id]" placeholder for
// an unknown numeric code — mirrors the fallback rendering tcell's
// EventKey.Name uses for key codes it doesn't recognize.
func (k KeyCode) String() string {
	tbl := physicalNames
	if k.Tag == Virtual {
		tbl = virtualNames
	}
	if name, ok := tbl[k.ID]; ok {
		return name
	}
	return fmt.Sprintf("Key[%s,%d]", k.Tag, k.ID)
}

// ByPhysicalName resolves a DSL-facing physical key name (e.g. "A",
// "CapsLock", "F13") to its KeyCode. Names are matched exactly; the
// compiler is responsible for reporting an unresolved name as a
// validation error with source coordinates — this function just reports
// success or failure.
func ByPhysicalName(name string) (KeyCode, bool) {
	id, ok := physicalByName[name]
	if !ok {
		return KeyCode{}, false
	}
	return KeyCode{Tag: Physical, ID: id}, true
}

// ByVirtualName resolves a DSL-facing virtual key name. Per spec, the
// virtual alphabet shares the same repertoire as the physical one but
// under the "VK_" prefix, and the prefix is part of the canonical name
// stored here (the canonical virtual name for "A" is "VK_A", and that is
// the string stored in virtualNames).
func ByVirtualName(name string) (KeyCode, bool) {
	id, ok := virtualByName[name]
	if !ok {
		return KeyCode{}, false
	}
	return KeyCode{Tag: Virtual, ID: id}, true
}

// Phys constructs a physical KeyCode without a name lookup, for
// callers (the runtime engine, the simulator) that already have a raw
// device-reported byte.
func Phys(id uint8) KeyCode { return KeyCode{Tag: Physical, ID: id} }

// Virt constructs a virtual KeyCode without a name lookup.
func Virt(id uint8) KeyCode { return KeyCode{Tag: Virtual, ID: id} }

// ModifierID is a user-defined modifier identifier in 0..=253. Physical
// Shift/Ctrl/Alt/Meta are never ModifierIDs; they exist only as the
// optional decorations carried on a ModifiedOutput mapping.
type ModifierID uint8

// LockID is a user-defined lock identifier in 0..=253.
type LockID uint8

// MaxID is the largest ID either kind may take (254 distinct IDs; 253 is
// the top of the range, 254 and 255 fall outside the 0..=253 domain and
// are rejected by the compiler-side validator).
const MaxID = 253

// Valid reports whether id is in the 0..=253 domain defined by spec §3.
func (m ModifierID) Valid() bool { return m <= MaxID }

// Valid reports whether id is in the 0..=253 domain defined by spec §3.
func (l LockID) Valid() bool { return l <= MaxID }
