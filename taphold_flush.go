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

// flushInterleaved replays cell's recorded interleaved events, in
// recording order, against the engine's current state (which by this
// point already has the hold modifier set) — producing the outputs
// those events would have produced had the modifier been active at the
// time, each stamped with its own original timestamp so downstream
// ordering stays causal (spec §4.5's ordering guarantee).
func (e *Engine) flushInterleaved(cell *tapHoldCell) []OutputEvent {
	var out []OutputEvent
	for _, ev := range cell.interleaved {
		mapping, ok := e.lookup(ev.key.device, ev.key.physical)
		if !ok {
			out = append(out, OutputEvent{Virtual: ev.key.physical, Edge: ev.edge, TimestampUs: ev.timestampUs})
			continue
		}
		out = append(out, e.dispatchMapping(mapping, ev.edge, ev.timestampUs)...)
	}
	cell.interleaved = nil
	return out
}
