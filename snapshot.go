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
	"github.com/lucasb-eyer/go-colorful"

	"github.com/keyrx/keyrx/keycode"
)

// StateSnapshot is a cloned, read-only view of the engine's state plus
// its diagnostic counters, returned by Engine.CurrentState for
// observability and by the simulator's final-state result (spec §6,
// "current_state() -> StateSnapshot").
type StateSnapshot struct {
	State keycode.State

	// ActiveLocks/ActiveModifiers list the currently-set bit IDs, purely
	// so a host UI doesn't have to probe all 254 bits itself.
	ActiveModifiers []keycode.ModifierID
	ActiveLocks     []keycode.LockID

	DroppedUnknownVirtualKey     uint64
	ClampedTimestampRegressions uint64
}

// LockColor derives a stable, visually distinct color for a lock id, for
// presentation only — the engine itself never looks at this value.
// cmd/krxdump tags every lock mapping it prints with this color so the
// same id reads as the same color in a dump and in a host UI's status
// line or tray icon. It is computed the same way the teacher's color
// package scores color distance with go-colorful, but in reverse:
// instead of finding the closest color in a palette, it places a hue
// deterministically around the color wheel from the id so that distinct
// locks get visually distinct, but stable across runs, colors.
func LockColor(id keycode.LockID) colorful.Color {
	hue := float64(id) * (360.0 / 254.0)
	return colorful.Hsv(hue, 0.65, 0.85)
}

// ModifierColor is LockColor's counterpart for modifier ids, offset by a
// half-turn so modifier and lock color ranges don't visually collide
// when both are shown together.
func ModifierColor(id keycode.ModifierID) colorful.Color {
	hue := float64(id)*(360.0/254.0) + 180.0
	if hue >= 360.0 {
		hue -= 360.0
	}
	return colorful.Hsv(hue, 0.55, 0.75)
}
