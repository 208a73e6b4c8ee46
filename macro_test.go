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

	"github.com/keyrx/keyrx/program"
)

// TestMacroExecutesOnPressOnly covers spec §4.4's "Macro(id): on Press,
// execute the macro body immediately ... on Release, emit nothing".
func TestMacroExecutesOnPressOnly(t *testing.T) {
	g := mustPhys(t, "G")
	vh := mustVirt(t, "VK_H")
	const macroID = program.MacroID(7)

	root := wildcardDevice(program.KeyMappingEntry{
		Physical: g,
		Mapping:  program.BaseKeyMapping{Kind: program.MappingMacro, Macro: macroID},
	})
	root.Macros = map[program.MacroID]program.MacroBody{
		macroID: {
			{Kind: program.StepPress, Virtual: vh},
			{Kind: program.StepWait, WaitMs: 5},
			{Kind: program.StepRelease, Virtual: vh},
		},
	}
	e := NewEngine(loadTestProgram(t, root))

	out := e.Process(InputEvent{Physical: g.ID, Edge: Press, TimestampUs: 1000})
	want := []OutputEvent{
		{Virtual: vh.ID, Edge: Press, TimestampUs: 1000},
		{Virtual: vh.ID, Edge: Release, TimestampUs: 6000},
	}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("got %+v, want %+v", out, want)
	}

	if out := e.Process(InputEvent{Physical: g.ID, Edge: Release, TimestampUs: 7000}); len(out) != 0 {
		t.Fatalf("expected no output on macro key release, got %+v", out)
	}

	// The release at 7000 is now the latest input; a press claiming 6500
	// is regressive, is clamped to 7001, and the macro runs from there.
	out = e.Process(InputEvent{Physical: g.ID, Edge: Press, TimestampUs: 6500})
	if len(out) != 2 || out[0].TimestampUs != 7001 {
		t.Fatalf("expected clamping to the last input time plus 1us, got %+v", out)
	}
}
