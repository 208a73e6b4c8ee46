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
	"reflect"
	"testing"

	"github.com/keyrx/keyrx/keycode"
	"github.com/keyrx/keyrx/program"
)

func mustPhys(t *testing.T, name string) keycode.KeyCode {
	t.Helper()
	k, ok := keycode.ByPhysicalName(name)
	if !ok {
		t.Fatalf("no such physical key %q", name)
	}
	return k
}

func mustVirt(t *testing.T, name string) keycode.KeyCode {
	t.Helper()
	k, ok := keycode.ByVirtualName(name)
	if !ok {
		t.Fatalf("no such virtual key %q", name)
	}
	return k
}

func loadTestProgram(t *testing.T, root program.ConfigRoot) *program.Program {
	t.Helper()
	p, err := program.LoadProgram(program.Encode(root))
	if err != nil {
		t.Fatalf("load program: %v", err)
	}
	return p
}

func wildcardDevice(mappings ...program.KeyMappingEntry) program.ConfigRoot {
	return program.ConfigRoot{
		Version: program.CurrentVersion,
		Devices: []program.DeviceConfig{{Identifier: "*", Mappings: mappings}},
	}
}

const testDevice = 0 // keyrx InputEvent.Device handles are caller-assigned opaque ints in these tests

// TestS1SimpleRemap is spec §8 scenario S1.
func TestS1SimpleRemap(t *testing.T) {
	a := mustPhys(t, "A")
	vb := mustVirt(t, "VK_B")
	root := wildcardDevice(program.KeyMappingEntry{
		Physical: a,
		Mapping:  program.BaseKeyMapping{Kind: program.MappingSimple, Virtual: vb},
	})
	e := NewEngine(loadTestProgram(t, root))

	out := e.Process(InputEvent{Physical: a.ID, Edge: Press, TimestampUs: 0})
	out = append(out, e.Process(InputEvent{Physical: a.ID, Edge: Release, TimestampUs: 10000})...)

	want := []OutputEvent{
		{Virtual: vb.ID, Edge: Press, TimestampUs: 0},
		{Virtual: vb.ID, Edge: Release, TimestampUs: 10000},
	}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("got %+v, want %+v", out, want)
	}
	if snap := e.CurrentState(); len(snap.ActiveModifiers) != 0 || len(snap.ActiveLocks) != 0 {
		t.Fatalf("expected zero final state, got %+v", snap)
	}
}

// TestS2UserModifier is spec §8 scenario S2.
func TestS2UserModifier(t *testing.T) {
	capsLock := mustPhys(t, "CapsLock")
	h := mustPhys(t, "H")
	vleft := mustVirt(t, "VK_Left")
	const modID = keycode.ModifierID(0)

	root := wildcardDevice(
		program.KeyMappingEntry{Physical: capsLock, Mapping: program.BaseKeyMapping{Kind: program.MappingModifier, ModifierID: modID}},
		program.KeyMappingEntry{Physical: h, Mapping: program.BaseKeyMapping{
			Kind:      program.MappingConditional,
			Condition: program.Single(program.ConditionItem{Kind: program.KindModifier, ID: uint8(modID), Active: true}),
			Then:      &program.BaseKeyMapping{Kind: program.MappingSimple, Virtual: vleft},
		}},
	)
	e := NewEngine(loadTestProgram(t, root))

	var out []OutputEvent
	out = append(out, e.Process(InputEvent{Physical: capsLock.ID, Edge: Press, TimestampUs: 0})...)
	out = append(out, e.Process(InputEvent{Physical: h.ID, Edge: Press, TimestampUs: 1000})...)
	out = append(out, e.Process(InputEvent{Physical: h.ID, Edge: Release, TimestampUs: 2000})...)
	out = append(out, e.Process(InputEvent{Physical: capsLock.ID, Edge: Release, TimestampUs: 3000})...)

	want := []OutputEvent{
		{Virtual: vleft.ID, Edge: Press, TimestampUs: 1000},
		{Virtual: vleft.ID, Edge: Release, TimestampUs: 2000},
	}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("got %+v, want %+v", out, want)
	}
	if snap := e.CurrentState(); len(snap.ActiveModifiers) != 0 {
		t.Fatalf("expected modifier cleared at end, got %+v", snap.ActiveModifiers)
	}
}

// TestS3LockToggle is spec §8 scenario S3.
func TestS3LockToggle(t *testing.T) {
	scrollLock := mustPhys(t, "ScrollLock")
	const lockID = keycode.LockID(0)
	root := wildcardDevice(program.KeyMappingEntry{
		Physical: scrollLock,
		Mapping:  program.BaseKeyMapping{Kind: program.MappingLock, LockID: lockID},
	})
	e := NewEngine(loadTestProgram(t, root))

	if out := e.Process(InputEvent{Physical: scrollLock.ID, Edge: Press, TimestampUs: 0}); len(out) != 0 {
		t.Fatalf("expected no output on lock press, got %+v", out)
	}
	if !e.state.IsLockActive(lockID) {
		t.Fatal("expected lock bit set after press")
	}
	if out := e.Process(InputEvent{Physical: scrollLock.ID, Edge: Release, TimestampUs: 100}); len(out) != 0 {
		t.Fatalf("expected no output on lock release, got %+v", out)
	}
	if !e.state.IsLockActive(lockID) {
		t.Fatal("lock bit must remain set across release")
	}
	e.Process(InputEvent{Physical: scrollLock.ID, Edge: Press, TimestampUs: 1000})
	e.Process(InputEvent{Physical: scrollLock.ID, Edge: Release, TimestampUs: 1100})
	if e.state.IsLockActive(lockID) {
		t.Fatal("second press should have cleared the lock bit")
	}
}

func tapHoldRoot(t *testing.T, thresholdMs uint32, extra ...program.KeyMappingEntry) program.ConfigRoot {
	t.Helper()
	space := mustPhys(t, "Space")
	vspace := mustVirt(t, "VK_Space")
	const holdMod = keycode.ModifierID(1)
	entries := append([]program.KeyMappingEntry{{
		Physical: space,
		Mapping: program.BaseKeyMapping{
			Kind:         program.MappingTapHold,
			TapVirtual:   vspace,
			HoldModifier: holdMod,
			ThresholdMs:  thresholdMs,
		},
	}}, extra...)
	return wildcardDevice(entries...)
}

// TestS4TapHoldTapPath is spec §8 scenario S4.
func TestS4TapHoldTapPath(t *testing.T) {
	space := mustPhys(t, "Space")
	vspace := mustVirt(t, "VK_Space")
	e := NewEngine(loadTestProgram(t, tapHoldRoot(t, 200)))

	if out := e.Process(InputEvent{Physical: space.ID, Edge: Press, TimestampUs: 0}); len(out) != 0 {
		t.Fatalf("expected no output on tap-hold press, got %+v", out)
	}
	out := e.Process(InputEvent{Physical: space.ID, Edge: Release, TimestampUs: 150000})
	want := []OutputEvent{
		{Virtual: vspace.ID, Edge: Press, TimestampUs: 150000},
		{Virtual: vspace.ID, Edge: Release, TimestampUs: 150000},
	}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("got %+v, want %+v", out, want)
	}
}

// TestS5TapHoldHoldPathWithInterleave is spec §8 scenario S5.
func TestS5TapHoldHoldPathWithInterleave(t *testing.T) {
	j := mustPhys(t, "J")
	vdown := mustVirt(t, "VK_Down")
	const holdMod = keycode.ModifierID(1)
	root := tapHoldRoot(t, 200, program.KeyMappingEntry{
		Physical: j,
		Mapping: program.BaseKeyMapping{
			Kind:      program.MappingConditional,
			Condition: program.Single(program.ConditionItem{Kind: program.KindModifier, ID: uint8(holdMod), Active: true}),
			Then:      &program.BaseKeyMapping{Kind: program.MappingSimple, Virtual: vdown},
		},
	})
	space := mustPhys(t, "Space")
	e := NewEngine(loadTestProgram(t, root))

	var out []OutputEvent
	out = append(out, e.Process(InputEvent{Physical: space.ID, Edge: Press, TimestampUs: 0})...)
	out = append(out, e.Process(InputEvent{Physical: j.ID, Edge: Press, TimestampUs: 50000})...)
	out = append(out, e.Process(InputEvent{Physical: j.ID, Edge: Release, TimestampUs: 100000})...)
	out = append(out, e.Process(InputEvent{Physical: space.ID, Edge: Release, TimestampUs: 300000})...)

	want := []OutputEvent{
		{Virtual: vdown.ID, Edge: Press, TimestampUs: 50000},
		{Virtual: vdown.ID, Edge: Release, TimestampUs: 100000},
	}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("got %+v, want %+v (VK_Space must never be emitted)", out, want)
	}
	if snap := e.CurrentState(); len(snap.ActiveModifiers) != 0 {
		t.Fatalf("expected hold modifier cleared by final release, got %+v", snap.ActiveModifiers)
	}
}

// TestS6ModifiedOutput is spec §8 scenario S6.
func TestS6ModifiedOutput(t *testing.T) {
	a := mustPhys(t, "A")
	v1 := mustVirt(t, "VK_D1")
	vshift := mustVirt(t, "VK_LShift")
	root := wildcardDevice(program.KeyMappingEntry{
		Physical: a,
		Mapping:  program.BaseKeyMapping{Kind: program.MappingModifiedOutput, Virtual: v1, Shift: true},
	})
	e := NewEngine(loadTestProgram(t, root))

	var out []OutputEvent
	out = append(out, e.Process(InputEvent{Physical: a.ID, Edge: Press, TimestampUs: 0})...)
	out = append(out, e.Process(InputEvent{Physical: a.ID, Edge: Release, TimestampUs: 1000})...)

	want := []OutputEvent{
		{Virtual: vshift.ID, Edge: Press, TimestampUs: 0},
		{Virtual: v1.ID, Edge: Press, TimestampUs: 0},
		{Virtual: v1.ID, Edge: Release, TimestampUs: 1000},
		{Virtual: vshift.ID, Edge: Release, TimestampUs: 1000},
	}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("got %+v, want %+v", out, want)
	}
}

// TestTapHoldSecondPressForcesCommit covers spec §4.5's "second Press of
// the same physical key while its cell is Pending" edge case.
func TestTapHoldSecondPressForcesCommit(t *testing.T) {
	space := mustPhys(t, "Space")
	vspace := mustVirt(t, "VK_Space")
	e := NewEngine(loadTestProgram(t, tapHoldRoot(t, 200)))

	e.Process(InputEvent{Physical: space.ID, Edge: Press, TimestampUs: 0})
	out := e.Process(InputEvent{Physical: space.ID, Edge: Press, TimestampUs: 50000})
	want := []OutputEvent{
		{Virtual: vspace.ID, Edge: Press, TimestampUs: 0},
		{Virtual: vspace.ID, Edge: Release, TimestampUs: 0},
	}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("got %+v, want %+v", out, want)
	}
	if len(e.pendingStack) != 1 {
		t.Fatalf("expected a fresh pending cell after the forced commit, got stack %+v", e.pendingStack)
	}
}

// TestTimestampRegressionClamped covers spec §4.4/§7's
// RuntimeDrop::TimestampRegression behavior.
func TestTimestampRegressionClamped(t *testing.T) {
	a := mustPhys(t, "A")
	vb := mustVirt(t, "VK_B")
	root := wildcardDevice(program.KeyMappingEntry{
		Physical: a,
		Mapping:  program.BaseKeyMapping{Kind: program.MappingSimple, Virtual: vb},
	})
	e := NewEngine(loadTestProgram(t, root))

	e.Process(InputEvent{Physical: a.ID, Edge: Press, TimestampUs: 1000})
	out := e.Process(InputEvent{Physical: a.ID, Edge: Release, TimestampUs: 500})
	if len(out) != 1 || out[0].TimestampUs != 1001 {
		t.Fatalf("expected clamped timestamp 1001, got %+v", out)
	}
	if snap := e.CurrentState(); snap.ClampedTimestampRegressions != 1 {
		t.Fatalf("expected one clamp counted, got %d", snap.ClampedTimestampRegressions)
	}
}

// TestUnmappedKeyPassesThrough covers spec §4.3's "a lookup miss is
// equivalent to pass-through".
func TestUnmappedKeyPassesThrough(t *testing.T) {
	b := mustPhys(t, "B")
	e := NewEngine(loadTestProgram(t, wildcardDevice()))
	out := e.Process(InputEvent{Physical: b.ID, Edge: Press, TimestampUs: 0})
	if len(out) != 1 || out[0].Virtual != b.ID || out[0].Edge != Press {
		t.Fatalf("expected pass-through of physical id %d, got %+v", b.ID, out)
	}
}

// TestDisconnectDeviceFlushesPendingAsTap covers spec §4.5's
// cancellation rule: never strand a held modifier bit.
func TestDisconnectDeviceFlushesPendingAsTap(t *testing.T) {
	space := mustPhys(t, "Space")
	vspace := mustVirt(t, "VK_Space")
	e := NewEngine(loadTestProgram(t, tapHoldRoot(t, 200)))

	e.Process(InputEvent{Device: testDevice, Physical: space.ID, Edge: Press, TimestampUs: 0})
	out := e.DisconnectDevice(testDevice, 50000)
	want := []OutputEvent{
		{Virtual: vspace.ID, Edge: Press, TimestampUs: 0},
		{Virtual: vspace.ID, Edge: Release, TimestampUs: 0},
	}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("got %+v, want %+v", out, want)
	}
	if len(e.cells) != 0 {
		t.Fatalf("expected no cells left after disconnect, got %+v", e.cells)
	}
}

// TestTickCommitsHoldAfterThreshold exercises the timer-driven path of
// spec §4.5 (Pending --timer fires--> Held) via Engine.Tick.
func TestTickCommitsHoldAfterThreshold(t *testing.T) {
	space := mustPhys(t, "Space")
	e := NewEngine(loadTestProgram(t, tapHoldRoot(t, 200)))

	e.Process(InputEvent{Physical: space.ID, Edge: Press, TimestampUs: 0})
	if out := e.Tick(199999); len(out) != 0 {
		t.Fatalf("expected no commit before threshold, got %+v", out)
	}
	if out := e.Tick(200000); len(out) != 0 {
		t.Fatalf("hold commit itself emits nothing absent interleaving, got %+v", out)
	}
	cell, ok := e.cells[cellKey{physical: space.ID}]
	if !ok || cell.state != stateHeld {
		t.Fatalf("expected cell to be Held after the timer fires, got %+v ok=%v", cell, ok)
	}
	if !e.state.IsModifierActive(keycode.ModifierID(1)) {
		t.Fatal("expected hold modifier active after timer commit")
	}
	out := e.Process(InputEvent{Physical: space.ID, Edge: Release, TimestampUs: 500000})
	if len(out) != 0 {
		t.Fatalf("expected no VK_Space on held release, got %+v", out)
	}
	if e.state.IsModifierActive(keycode.ModifierID(1)) {
		t.Fatal("expected hold modifier cleared on release")
	}
}
