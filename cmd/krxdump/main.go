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

// Command krxdump prints a human-readable table of a compiled ".krx"
// program: its content hash, its device list, and every physical-key
// mapping within each device, one column-aligned row per mapping.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/keyrx/keyrx"
	"github.com/keyrx/keyrx/program"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <program.krx>\n", os.Args[0])
		os.Exit(2)
	}
	if err := dump(os.Args[1]); err != nil {
		fmt.Fprintf(os.Stderr, "krxdump: %v\n", err)
		os.Exit(1)
	}
}

func dump(path string) error {
	p, err := program.LoadProgramFile(path)
	if err != nil {
		return err
	}
	defer p.Close()

	root := p.Root()
	hash := p.Hash()
	fmt.Printf("program %x (version %d)\n", hash[:8], root.Version)

	for _, dev := range root.Devices {
		fmt.Printf("\ndevice %q\n", string(dev.Identifier))
		rows := make([][2]string, 0, len(dev.Mappings))
		for _, m := range dev.Mappings {
			rows = append(rows, [2]string{m.Physical.String(), describeMapping(m.Mapping)})
		}
		printAligned(rows)
	}
	return nil
}

// describeMapping renders one BaseKeyMapping as a single descriptive
// line; Conditional mappings render their then/else branches inline.
// Modifier and Lock entries are tagged with the same stable hex color
// the host-UI helpers keyrx.ModifierColor/LockColor derive for that id,
// so a dump's IDs can be cross-referenced against a live
// status display by color alone.
func describeMapping(m program.BaseKeyMapping) string {
	switch m.Kind {
	case program.MappingSimple:
		return "simple -> " + m.Virtual.String()
	case program.MappingModifier:
		return fmt.Sprintf("modifier MD_%02d %s", m.ModifierID, keyrx.ModifierColor(m.ModifierID).Hex())
	case program.MappingLock:
		return fmt.Sprintf("lock LK_%02d %s", m.LockID, keyrx.LockColor(m.LockID).Hex())
	case program.MappingModifiedOutput:
		return fmt.Sprintf("modified-output -> %s [%s]", m.Virtual, modifierFlags(m))
	case program.MappingTapHold:
		return fmt.Sprintf("tap-hold tap=%s hold=MD_%02d threshold=%dms", m.TapVirtual, m.HoldModifier, m.ThresholdMs)
	case program.MappingMacro:
		return fmt.Sprintf("macro #%d", m.Macro)
	case program.MappingConditional:
		branch := "<else missing, pass-through>"
		if m.Else != nil {
			branch = describeMapping(*m.Else)
		}
		return fmt.Sprintf("conditional: then={%s} else={%s}", describeMapping(*m.Then), branch)
	default:
		return "?"
	}
}

func modifierFlags(m program.BaseKeyMapping) string {
	var flags []string
	if m.Shift {
		flags = append(flags, "shift")
	}
	if m.Ctrl {
		flags = append(flags, "ctrl")
	}
	if m.Alt {
		flags = append(flags, "alt")
	}
	if m.Meta {
		flags = append(flags, "meta")
	}
	if len(flags) == 0 {
		return "none"
	}
	return strings.Join(flags, "+")
}

// printAligned pads the left column to the widest entry's display
// width, using go-runewidth rather than len() so a future non-ASCII
// physical key name (e.g. an imported layout's native glyph) still
// lines up in a monospace terminal.
func printAligned(rows [][2]string) {
	width := 0
	for _, r := range rows {
		if w := runewidth.StringWidth(r[0]); w > width {
			width = w
		}
	}
	for _, r := range rows {
		pad := width - runewidth.StringWidth(r[0])
		fmt.Printf("  %s%s  %s\n", r[0], strings.Repeat(" ", pad), r[1])
	}
}
