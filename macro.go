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

import "github.com/keyrx/keyrx/program"

// runMacro executes a macro body to completion within the triggering
// event's processing step (spec §4.4.1): Press/Release steps emit at
// the macro's own advancing virtual clock, Wait steps advance that
// clock without any I/O, and nothing else can run concurrently since
// this call does not return until the body is exhausted.
func (e *Engine) runMacro(id program.MacroID, triggeredAtUs uint64) []OutputEvent {
	p := e.prog.Load()
	if p == nil {
		return nil
	}
	body, ok := p.Root().Macros[id]
	if !ok {
		return nil
	}

	clock := triggeredAtUs
	var out []OutputEvent
	for _, step := range body {
		switch step.Kind {
		case program.StepPress:
			out = append(out, e.emit(step.Virtual, Press, clock)...)
		case program.StepRelease:
			out = append(out, e.emit(step.Virtual, Release, clock)...)
		case program.StepWait:
			clock += uint64(step.WaitMs) * 1000
		}
	}

	// The macro's waits advanced the virtual clock past the triggering
	// event's own timestamp; later input must not be allowed to regress
	// behind it (spec §4.4, "timing is strictly monotonic").
	if clock > e.lastInputUs {
		e.lastInputUs = clock
	}
	return out
}
