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

// Command krxsim is an interactive tap-hold harness: it puts the
// controlling terminal into raw mode (the same way the reference
// tty driver does, via golang.org/x/term), reads keystrokes one byte
// at a time, feeds each one into a live Engine as a synthetic
// Press immediately followed by a Release, and prints the resulting
// output events as they are produced. It exists to let a program
// author feel a tap-hold threshold interactively without wiring up a
// real keyboard driver.
package main

import (
	"bufio"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/keyrx/keyrx"
	"github.com/keyrx/keyrx/keycode"
	"github.com/keyrx/keyrx/program"
)

const tapDurationUs = 20000 // 20ms: a plausible human key-down duration

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <program.krx>\n", os.Args[0])
		os.Exit(2)
	}
	if err := run(os.Args[1]); err != nil {
		fmt.Fprintf(os.Stderr, "krxsim: %v\n", err)
		os.Exit(1)
	}
}

func run(path string) error {
	prog, err := program.LoadProgramFile(path)
	if err != nil {
		return err
	}
	defer prog.Close()

	engine := keyrx.NewEngine(prog)
	device := prog.Resolve("krxsim")

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return fmt.Errorf("stdin is not a terminal")
	}
	saved, err := term.MakeRaw(fd)
	if err != nil {
		return err
	}
	defer term.Restore(fd, saved)

	fmt.Println("krxsim: press keys (a-z), Esc or Ctrl-C to quit\r")

	r := bufio.NewReader(os.Stdin)
	var clock uint64
	for {
		b, err := r.ReadByte()
		if err != nil {
			return err
		}
		if b == 0x1b || b == 0x03 {
			return nil
		}
		key, ok := asciiToPhysical(b)
		if !ok {
			continue
		}

		pressAt := clock
		releaseAt := clock + tapDurationUs
		clock = releaseAt + 1

		for _, out := range engine.Tick(pressAt) {
			printOutput(out)
		}
		for _, out := range engine.Process(keyrx.InputEvent{Device: device, Physical: key.ID, Edge: keyrx.Press, TimestampUs: pressAt}) {
			printOutput(out)
		}
		for _, out := range engine.Tick(releaseAt) {
			printOutput(out)
		}
		for _, out := range engine.Process(keyrx.InputEvent{Device: device, Physical: key.ID, Edge: keyrx.Release, TimestampUs: releaseAt}) {
			printOutput(out)
		}
	}
}

func printOutput(out keyrx.OutputEvent) {
	vk := keycode.KeyCode{Tag: keycode.Virtual, ID: out.Virtual}
	fmt.Printf("%-6s %-10s t=%dus\r\n", out.Edge, vk, out.TimestampUs)
}

func asciiToPhysical(b byte) (keycode.KeyCode, bool) {
	switch {
	case b >= 'a' && b <= 'z':
		return keycode.ByPhysicalName(string([]byte{'A' + (b - 'a')}))
	case b == ' ':
		return keycode.ByPhysicalName("Space")
	case b == '\r' || b == '\n':
		return keycode.ByPhysicalName("Enter")
	default:
		return keycode.KeyCode{}, false
	}
}
