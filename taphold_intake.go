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

import (
	"github.com/keyrx/keyrx/keycode"
	"github.com/keyrx/keyrx/program"
)

// startTapHoldCell creates a fresh Pending cell for key from a TapHold
// mapping, pushes it onto the pending stack and schedules its timer
// (spec §4.5, Idle --Press--> Pending).
func (e *Engine) startTapHoldCell(key cellKey, m program.BaseKeyMapping, now uint64) {
	cell := &tapHoldCell{
		key:          key,
		state:        statePending,
		startUs:      now,
		thresholdUs:  uint64(m.ThresholdMs) * 1000,
		tapVirtual:   m.TapVirtual.ID,
		holdModifier: uint8(m.HoldModifier),
	}
	e.cells[key] = cell
	e.pendingStack = append(e.pendingStack, key)
	e.scheduleTimer(key, now+cell.thresholdUs)
}

func (e *Engine) scheduleTimer(key cellKey, deadlineUs uint64) {
	e.timerSeq++
	e.timers.push(&timerEntry{deadlineUs: deadlineUs, key: key, seq: e.timerSeq})
}

// removeCell deletes a resolved cell and drops it from the pending
// stack if it is still present there.
func (e *Engine) removeCell(key cellKey) {
	delete(e.cells, key)
	for i, k := range e.pendingStack {
		if k == key {
			e.pendingStack = append(e.pendingStack[:i], e.pendingStack[i+1:]...)
			break
		}
	}
}

// intakeOwnKey handles an event whose key already owns a cell: the
// Pending and Held rows of spec §4.5's transition table.
func (e *Engine) intakeOwnKey(cell *tapHoldCell, edge Edge, now uint64) []OutputEvent {
	switch cell.state {
	case statePending:
		if edge == Press {
			return e.forceCommitAsTapAndRestart(cell, now)
		}
		return e.resolvePendingRelease(cell, now)
	case stateHeld:
		if edge == Release {
			return e.releaseHeld(cell, now)
		}
		// A repeated Press of an already-Held key (platform auto-repeat):
		// the key is already physically down, nothing new to decide.
		return nil
	default:
		return nil
	}
}

// forceCommitAsTapAndRestart implements the "second Press of the same
// physical key while its cell is Pending" edge case (spec §4.5): the
// pending cell is force-committed as a tap at its original start_us,
// then a fresh Pending cell begins for the new press.
func (e *Engine) forceCommitAsTapAndRestart(cell *tapHoldCell, now uint64) []OutputEvent {
	out := e.commitTap(cell, cell.startUs)
	fresh := &tapHoldCell{
		key:          cell.key,
		state:        statePending,
		startUs:      now,
		thresholdUs:  cell.thresholdUs,
		tapVirtual:   cell.tapVirtual,
		holdModifier: cell.holdModifier,
	}
	e.cells[cell.key] = fresh
	e.pendingStack = append(e.pendingStack, cell.key)
	e.scheduleTimer(cell.key, now+fresh.thresholdUs)
	return out
}

// resolvePendingRelease implements spec §4.5's two Release-of-this-key
// rows: tap if the key came up inside the threshold with nothing
// interleaved, hold commit otherwise (timeout elapsed, or any other
// key's event, a lone press included, was recorded during the window).
func (e *Engine) resolvePendingRelease(cell *tapHoldCell, now uint64) []OutputEvent {
	elapsed := now - cell.startUs
	if elapsed < cell.thresholdUs && len(cell.interleaved) == 0 {
		return e.commitTap(cell, now)
	}
	return e.commitHoldAndRelease(cell, now)
}

// releaseHeld clears a Held cell's modifier on the physical release
// that ends it (spec §4.5, Held --Release--> Idle).
func (e *Engine) releaseHeld(cell *tapHoldCell, now uint64) []OutputEvent {
	e.state.SetModifier(keycode.ModifierID(cell.holdModifier), false)
	e.removeCell(cell.key)
	return nil
}

// recordInterleaved appends ev to owner's interleaved list (spec §4.5,
// Pending --Press/Release of another key--> record, no emission) and,
// if ev completes a Press-then-Release pair for some other key while
// owner is still within its threshold window, commits owner to Held
// immediately — the "hold-commit condition" row for a Release of
// another key.
func (e *Engine) recordInterleaved(owner *tapHoldCell, ev interleavedEvent) []OutputEvent {
	if owner == nil {
		return nil
	}
	owner.interleaved = append(owner.interleaved, ev)
	if ev.edge == Release && owner.hasCompletePair() {
		return e.commitHoldKeepAlive(owner, ev.timestampUs)
	}
	return nil
}
