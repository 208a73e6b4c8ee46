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
	"sync"

	"github.com/keyrx/keyrx/keycode"
)

// DeviceHandle is a stable, opaque handle a caller obtains once (via
// Program.Resolve) for a connected device name, and then passes to every
// subsequent Lookup call — spec §6's "device_id: stable opaque handle".
type DeviceHandle int32

// buildLookup precomputes, for every DeviceConfig, a dense
// [256]mappingSlot array so Lookup is a direct array index — stronger
// than the "perfect hash" language in spec §4.3 asks for, since the key
// space is already a bounded byte.
type mappingSlot struct {
	mapping BaseKeyMapping
	present bool
}

func (p *Program) buildLookup() {
	p.deviceTables = make([][256]mappingSlot, len(p.root.Devices))
	for di, dev := range p.root.Devices {
		for _, entry := range dev.Mappings {
			p.deviceTables[di][entry.Physical.ID] = mappingSlot{mapping: entry.Mapping, present: true}
		}
	}
	p.resolveCache = map[string][]int{}
	p.handlesByName = map[string]DeviceHandle{}
}

// matchesFor returns, in definition order, the indices of every
// DeviceConfig whose pattern matches name (spec §4.2, "device
// resolution"). Results are cached per distinct device name, since a
// daemon process sees very few distinct device names over its lifetime.
func (p *Program) matchesFor(name string) []int {
	p.resolveMu.Lock()
	defer p.resolveMu.Unlock()
	if idx, ok := p.resolveCache[name]; ok {
		return idx
	}
	var idx []int
	for i, dev := range p.root.Devices {
		if dev.Identifier.Matches(name) {
			idx = append(idx, i)
		}
	}
	p.resolveCache[name] = idx
	return idx
}

// Resolve returns a stable handle for a platform-reported device name.
// The handle identifies the name only — it is re-derived deterministically
// on every call for the same name, so a caller may call Resolve exactly
// once per device connect and hold onto the result. The raw name is first
// passed through NormalizeDeviceName, using the "device_name_charset"
// metadata key a compiled program may set when its author knows a
// platform reports device names in a legacy 8-bit charset rather than
// UTF-8; with no such key, NormalizeDeviceName still repairs any raw
// bytes that aren't valid UTF-8.
func (p *Program) Resolve(name string) DeviceHandle {
	name = NormalizeDeviceName([]byte(name), p.root.Metadata["device_name_charset"])

	p.handleMu.Lock()
	defer p.handleMu.Unlock()
	if h, ok := p.handlesByName[name]; ok {
		return h
	}
	h := DeviceHandle(len(p.handleNames))
	p.handlesByName[name] = h
	p.handleNames = append(p.handleNames, name)
	return h
}

// Lookup resolves the applicable mapping for one physical key press on a
// device, consulting st for any Conditional branch (spec §4.3). A lookup
// miss — no device config matches, or none of the matching device
// configs, walked in definition order, maps the key — is equivalent to
// pass-through; it
// is never a runtime error (spec §4.3, "Failure modes: none
// runtime-visible").
func (p *Program) Lookup(handle DeviceHandle, key keycode.KeyCode, st keycode.State) (BaseKeyMapping, bool) {
	p.handleMu.RLock()
	name := ""
	if int(handle) >= 0 && int(handle) < len(p.handleNames) {
		name = p.handleNames[handle]
	}
	p.handleMu.RUnlock()

	for _, di := range p.matchesFor(name) {
		slot := p.deviceTables[di][key.ID]
		if !slot.present {
			continue
		}
		return slot.mapping.Resolve(st)
	}
	return BaseKeyMapping{}, false
}

// programLookupState holds the fields buildLookup/Resolve/Lookup need;
// it is embedded into Program via plain fields declared here rather than
// in load.go, keeping the lookup-table concern in one file the way the
// spec's component table (§2) keeps C3 distinct from C2.
type programLookupState struct {
	deviceTables [][256]mappingSlot
	resolveMu    sync.Mutex
	resolveCache map[string][]int

	handleMu      sync.RWMutex
	handlesByName map[string]DeviceHandle
	handleNames   []string
}
