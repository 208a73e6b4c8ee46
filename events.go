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

// Package keyrx implements the KeyRx runtime remapping engine: the
// state machine that consumes a raw physical key event and, consulting a
// compiled program (package program) plus the 255-bit runtime state
// (package keycode), emits zero or more output events with bounded
// latency (spec §4.4), including the tap-hold / dual-function decision
// machine (spec §4.5).
package keyrx

import "github.com/keyrx/keyrx/program"

// Edge is a key transition: Press or Release. Terminal keyboard drivers
// (tcell's own domain) report only composite key events with no
// independent release; KeyRx's platform adapters, by contrast, always
// report both edges of a physical key — which is exactly what makes the
// tap-hold decision machine possible.
type Edge uint8

const (
	Press Edge = iota
	Release
)

func (e Edge) String() string {
	if e == Release {
		return "release"
	}
	return "press"
}

// InputEvent is one physical key transition delivered by the platform
// adapter (spec §6).
type InputEvent struct {
	Device      program.DeviceHandle
	Physical    uint8 // physical KeyCode ID
	Edge        Edge
	TimestampUs uint64
}

// OutputEvent is one virtual key transition the engine emits for
// injection (spec §6). TimestampUs is the virtual time the engine chose
// to emit at — not necessarily equal to the triggering InputEvent's
// timestamp, since a tap-hold commit retroactively times its flushed
// events and a macro's Wait steps advance the clock deliberately.
type OutputEvent struct {
	Virtual     uint8 // virtual KeyCode ID
	Edge        Edge
	TimestampUs uint64
}
