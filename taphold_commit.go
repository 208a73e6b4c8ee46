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

package keyrx

import "github.com/keyrx/keyrx/keycode"

// commitTap resolves a cell as a tap (spec §4.5): Press immediately
// followed by Release of tap_virtual, both at atUs, with no
// intervening outputs — the cell is removed outright, never
// transitioning through Held.
func (e *Engine) commitTap(cell *tapHoldCell, atUs uint64) []OutputEvent {
	tv := keycode.Virt(cell.tapVirtual)
	out := e.emit(tv, Press, atUs)
	out = append(out, e.emit(tv, Release, atUs)...)
	e.removeCell(cell.key)
	return out
}

// commitHold sets cell's hold modifier active, flushes every recorded
// interleaved event against it (spec §4.5, "flush interleaved events as
// though the modifier was active during them"), and leaves the cell in
// Held — the modifier stays active until the owning physical key is
// itself released. Popped from the pending stack since a Held cell no
// longer defers other keys' events (spec §4.5, Held row: "processed
// normally").
func (e *Engine) commitHold(cell *tapHoldCell) []OutputEvent {
	e.state.SetModifier(keycode.ModifierID(cell.holdModifier), true)
	out := e.flushInterleaved(cell)
	cell.state = stateHeld
	e.popPending(cell.key)
	return out
}

// commitHoldKeepAlive is commitHold under the "Release of another key
// completes an interleaved pair" row of spec §4.5: the owning key is
// still physically down, so the cell moves to Held rather than Idle.
func (e *Engine) commitHoldKeepAlive(cell *tapHoldCell, _ uint64) []OutputEvent {
	return e.commitHold(cell)
}

// commitHoldAndRelease is spec §4.5's "Release of this key, hold path"
// row: the owning key's own release is what ends the hold, so set,
// flush and clear all happen within this one event's processing instead
// of the cell ever sitting in Held.
func (e *Engine) commitHoldAndRelease(cell *tapHoldCell, nowUs uint64) []OutputEvent {
	out := e.commitHold(cell)
	e.state.SetModifier(keycode.ModifierID(cell.holdModifier), false)
	e.removeCell(cell.key)
	return out
}

// popPending removes key from the pending stack without touching
// e.cells — used when a cell transitions Pending -> Held, which still
// needs to remain addressable by its own future Release.
func (e *Engine) popPending(key cellKey) {
	for i, k := range e.pendingStack {
		if k == key {
			e.pendingStack = append(e.pendingStack[:i], e.pendingStack[i+1:]...)
			return
		}
	}
}
