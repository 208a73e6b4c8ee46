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
	"sync/atomic"

	"github.com/keyrx/keyrx/keycode"
	"github.com/keyrx/keyrx/program"
)

// Engine is the runtime remapping engine (spec §4.4, §5): a
// single-threaded cooperative reactor that turns one InputEvent into
// zero or more OutputEvents, mutating the 255-bit runtime state and the
// tap-hold cells along the way. An Engine is not safe for concurrent
// use — the spec's concurrency model puts exactly one mutex at the
// platform adapter's handoff boundary, never inside the engine itself.
type Engine struct {
	prog atomic.Pointer[program.Program]
	diag *Diagnostics

	state keycode.State

	haveLast    bool
	lastInputUs uint64

	cells        map[cellKey]*tapHoldCell
	pendingStack []cellKey

	timers   timerQueue
	timerSeq uint64
}

// NewEngine constructs an Engine bound to prog (which may be nil; every
// event is then pass-through until LoadProgram is called).
func NewEngine(prog *program.Program, opts ...Option) *Engine {
	e := &Engine{
		cells: map[cellKey]*tapHoldCell{},
	}
	e.prog.Store(prog)
	for _, opt := range opts {
		opt(e)
	}
	if e.diag == nil {
		e.diag = NewDiagnostics(nil)
	}
	return e
}

// LoadProgram atomically swaps the active program at the next quiescent
// boundary (spec §5) — since Process and Tick never suspend, "next
// quiescent boundary" is simply "the next call", so a plain atomic
// store is sufficient; there is no in-flight event to race against.
func (e *Engine) LoadProgram(p *program.Program) {
	e.prog.Store(p)
}

// CurrentState returns a cloned snapshot of the engine's state and
// diagnostic counters (spec §4.4, "current_state() -> snapshot").
func (e *Engine) CurrentState() StateSnapshot {
	dropped, clamped := e.diag.Counts()
	snap := StateSnapshot{
		State:                       e.state.Snapshot(),
		DroppedUnknownVirtualKey:    dropped,
		ClampedTimestampRegressions: clamped,
	}
	for id := 0; id <= keycode.MaxID; id++ {
		mid := keycode.ModifierID(id)
		if e.state.IsModifierActive(mid) {
			snap.ActiveModifiers = append(snap.ActiveModifiers, mid)
		}
		lid := keycode.LockID(id)
		if e.state.IsLockActive(lid) {
			snap.ActiveLocks = append(snap.ActiveLocks, lid)
		}
	}
	return snap
}

// clampTimestamp enforces strict monotonicity on input timestamps (spec
// §4.4, "Timestamp regressions ... clamped to last + 1us and counted"),
// and advances the virtual clock to at least the resulting value.
func (e *Engine) clampTimestamp(got uint64) uint64 {
	if !e.haveLast {
		e.haveLast = true
		e.lastInputUs = got
		return got
	}
	if got <= e.lastInputUs {
		clamped := e.lastInputUs + 1
		e.diag.ClampedTimestampRegression(got, clamped)
		e.lastInputUs = clamped
		return clamped
	}
	e.lastInputUs = got
	return got
}

// Process implements spec §4.4's per-event algorithm, including routing
// into the tap-hold machine (§4.5) when a key's own cell exists, or
// deferring into the innermost pending cell's interleaved queue when
// some other tap-hold key is mid-decision.
func (e *Engine) Process(ev InputEvent) []OutputEvent {
	now := e.clampTimestamp(ev.TimestampUs)
	key := cellKey{device: ev.Device, physical: ev.Physical}

	if cell, ok := e.cells[key]; ok {
		return e.intakeOwnKey(cell, ev.Edge, now)
	}

	if len(e.pendingStack) > 0 {
		if ev.Edge == Press && e.isTapHoldKey(ev.Device, ev.Physical) {
			e.startTapHold(key, ev.Device, ev.Physical, now)
			return nil
		}
		top := e.pendingStack[len(e.pendingStack)-1]
		return e.recordInterleaved(e.cells[top], interleavedEvent{key: key, edge: ev.Edge, timestampUs: now})
	}

	return e.dispatchFresh(key, ev, now)
}

// dispatchFresh handles an event belonging to no existing cell and with
// no pending cell above it in the stack: a plain lookup-and-dispatch, or
// the creation of a brand-new tap-hold cell.
func (e *Engine) dispatchFresh(key cellKey, ev InputEvent, now uint64) []OutputEvent {
	mapping, ok := e.lookup(ev.Device, ev.Physical)
	if !ok {
		return []OutputEvent{{Virtual: ev.Physical, Edge: ev.Edge, TimestampUs: now}}
	}
	if mapping.Kind == program.MappingTapHold {
		if ev.Edge == Press {
			e.startTapHoldCell(key, mapping, now)
		}
		return nil
	}
	return e.dispatchMapping(mapping, ev.Edge, now)
}

// isTapHoldKey reports whether the given physical key currently
// resolves to a TapHold mapping, used when deciding whether a fresh
// press nested inside another key's pending window should start its own
// cell rather than being recorded as an interleaved event.
func (e *Engine) isTapHoldKey(device program.DeviceHandle, physical uint8) bool {
	m, ok := e.lookup(device, physical)
	return ok && m.Kind == program.MappingTapHold
}

// startTapHold resolves the mapping for key and, if it is indeed a
// TapHold, starts a fresh cell. Used for nested tap-hold presses
// discovered while another cell is Pending.
func (e *Engine) startTapHold(key cellKey, device program.DeviceHandle, physical uint8, now uint64) {
	m, ok := e.lookup(device, physical)
	if !ok || m.Kind != program.MappingTapHold {
		return
	}
	e.startTapHoldCell(key, m, now)
}

func (e *Engine) lookup(device program.DeviceHandle, physical uint8) (program.BaseKeyMapping, bool) {
	p := e.prog.Load()
	if p == nil {
		return program.BaseKeyMapping{}, false
	}
	return p.Lookup(device, keycode.Phys(physical), e.state)
}

// dispatchMapping implements spec §4.4 step 2 for the five
// non-conditional, non-tap-hold variants. Conditional is already
// resolved by the time a mapping reaches here (program.Lookup calls
// BaseKeyMapping.Resolve internally).
func (e *Engine) dispatchMapping(m program.BaseKeyMapping, edge Edge, now uint64) []OutputEvent {
	switch m.Kind {
	case program.MappingSimple:
		return e.emit(m.Virtual, edge, now)

	case program.MappingModifier:
		e.state.SetModifier(m.ModifierID, edge == Press)
		return nil

	case program.MappingLock:
		if edge == Press {
			e.state.ToggleLock(m.LockID)
		}
		return nil

	case program.MappingModifiedOutput:
		return e.dispatchModifiedOutput(m, edge, now)

	case program.MappingMacro:
		if edge == Press {
			return e.runMacro(m.Macro, now)
		}
		return nil

	default:
		return nil
	}
}

// modifierDecoration is one flag/virtual-keycode-name pair consulted in
// the fixed Shift, Ctrl, Alt, Meta order spec §4.4 mandates for
// ModifiedOutput brackets.
type modifierDecoration struct {
	active bool
	name   string
}

func (e *Engine) dispatchModifiedOutput(m program.BaseKeyMapping, edge Edge, now uint64) []OutputEvent {
	decorations := []modifierDecoration{
		{m.Shift, "VK_LShift"},
		{m.Ctrl, "VK_LCtrl"},
		{m.Alt, "VK_LAlt"},
		{m.Meta, "VK_LMeta"},
	}
	var out []OutputEvent
	if edge == Press {
		for _, d := range decorations {
			if !d.active {
				continue
			}
			out = append(out, e.emitNamed(d.name, Press, now)...)
		}
		out = append(out, e.emit(m.Virtual, Press, now)...)
		return out
	}
	out = append(out, e.emit(m.Virtual, Release, now)...)
	for i := len(decorations) - 1; i >= 0; i-- {
		d := decorations[i]
		if !d.active {
			continue
		}
		out = append(out, e.emitNamed(d.name, Release, now)...)
	}
	return out
}

func (e *Engine) emitNamed(name string, edge Edge, now uint64) []OutputEvent {
	vk, ok := keycode.ByVirtualName(name)
	if !ok {
		return nil
	}
	return e.emit(vk, edge, now)
}

// emit produces a single OutputEvent, dropping (and counting) it if the
// virtual code has no canonical meaning (spec §7,
// RuntimeDrop::UnknownVirtualKey) — an unmapped *input* passes through
// as-is, but an *output* naming an unrepresentable virtual key is never
// injected.
func (e *Engine) emit(v keycode.KeyCode, edge Edge, now uint64) []OutputEvent {
	if v.Unknown() {
		e.diag.DroppedUnknownVirtualKey(v.ID)
		return nil
	}
	return []OutputEvent{{Virtual: v.ID, Edge: edge, TimestampUs: now}}
}

// Tick drains every tap-hold timer whose deadline has passed (spec
// §4.4, §5): the platform adapter (or the simulator) calls this between
// events, driven by its own timer source.
func (e *Engine) Tick(nowUs uint64) []OutputEvent {
	due := e.timers.popDue(nowUs)
	var out []OutputEvent
	for _, entry := range due {
		cell, ok := e.cells[entry.key]
		if !ok || cell.state != statePending {
			continue // already resolved by an input event before the timer fired
		}
		if entry.deadlineUs != cell.startUs+cell.thresholdUs {
			continue // timer of an earlier, already-resolved cell for the same key
		}
		out = append(out, e.commitHold(cell)...)
	}
	return out
}

// DisconnectDevice cancels every tap-hold cell owned by device,
// flushing pending cells as taps (spec §4.5, "Cancellation": "never
// strand a held modifier bit") and clearing the modifier of any cell
// already committed to Held.
func (e *Engine) DisconnectDevice(device program.DeviceHandle, nowUs uint64) []OutputEvent {
	var out []OutputEvent
	for key, cell := range e.cells {
		if key.device != device {
			continue
		}
		switch cell.state {
		case statePending:
			out = append(out, e.commitTap(cell, cell.startUs)...)
		case stateHeld:
			e.state.SetModifier(keycode.ModifierID(cell.holdModifier), false)
		}
		e.removeCell(key)
	}
	return out
}
