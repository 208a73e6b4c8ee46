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

// Package sim implements spec §6's simulate() entry point: a pure,
// deterministic harness that runs a compiled program against a
// synthetic event sequence under a fresh virtual clock, without ever
// touching a real platform adapter, real timers, or real I/O. It exists
// for exactly the cases the runtime engine itself was never meant to
// serve directly — tests, the krxsim CLI, golden-fixture comparisons —
// mirroring the reference implementation's own simulation.go, which
// keeps the same "pure function of (program, state, events)" contract
// (spec §8, invariant 3) that tcell's SimulationScreen keeps for a
// terminal: a stand-in with no real backing device.
package sim

import (
	"fmt"

	"github.com/keyrx/keyrx"
	"github.com/keyrx/keyrx/keycode"
	"github.com/keyrx/keyrx/program"
)

// MaxEvents and MaxProgramBytes are spec §6's hard caps on simulate():
// "Max sequence length 1000 events; max program size 1 MiB."
const (
	MaxEvents       = 1000
	MaxProgramBytes = 1 << 20
)

// Event is one synthetic input event, addressed by device name rather
// than a pre-resolved handle — the simulator resolves device names
// itself so a fixture file never has to know about DeviceHandle.
type Event struct {
	Device      string
	Physical    keycode.KeyCode
	Edge        keyrx.Edge
	TimestampUs uint64
}

// TickEvent, when present in a Timeline's source sequence, is
// represented implicitly: Simulate calls Engine.Tick with every input
// event's timestamp before processing it, so a pending tap-hold cell
// committed by elapsed time (rather than by another input event) still
// resolves deterministically without the caller needing to schedule
// ticks explicitly.

// Timeline is the ordered output stream produced by a full run.
type Timeline []keyrx.OutputEvent

// LatencyStats summarizes the distribution of per-output latency: the
// difference between an output's timestamp and the timestamp of the
// Process/Tick call that produced it. This is a simulator-only
// convenience (spec §6 names it without defining its shape); it is not
// one of the core invariants.
type LatencyStats struct {
	Count  int
	MinUs  uint64
	MaxUs  uint64
	MeanUs float64
}

func (s *LatencyStats) observe(causeUs, outUs uint64) {
	var d uint64
	if outUs >= causeUs {
		d = outUs - causeUs
	} else {
		d = causeUs - outUs
	}
	if s.Count == 0 || d < s.MinUs {
		s.MinUs = d
	}
	if d > s.MaxUs {
		s.MaxUs = d
	}
	s.MeanUs = (s.MeanUs*float64(s.Count) + float64(d)) / float64(s.Count+1)
	s.Count++
}

// Simulate runs programBytes against events under a fresh Engine and
// returns the full output timeline, the final state snapshot, and
// latency statistics. It is pure: two calls with identical arguments
// produce identical results (spec §8, invariant 3), since nothing here
// touches a wall clock, a random source, or any process-global state.
func Simulate(programBytes []byte, events []Event) (Timeline, keyrx.StateSnapshot, LatencyStats, error) {
	if len(programBytes) > MaxProgramBytes {
		return nil, keyrx.StateSnapshot{}, LatencyStats{},
			fmt.Errorf("sim: program is %d bytes, exceeds the %d-byte cap", len(programBytes), MaxProgramBytes)
	}
	if len(events) > MaxEvents {
		return nil, keyrx.StateSnapshot{}, LatencyStats{},
			fmt.Errorf("sim: %d events exceeds the %d-event cap", len(events), MaxEvents)
	}

	prog, err := program.LoadProgram(programBytes)
	if err != nil {
		return nil, keyrx.StateSnapshot{}, LatencyStats{}, fmt.Errorf("sim: %w", err)
	}
	defer prog.Close()

	engine := keyrx.NewEngine(prog)

	var timeline Timeline
	var stats LatencyStats
	handles := map[string]program.DeviceHandle{}

	for _, ev := range events {
		handle, ok := handles[ev.Device]
		if !ok {
			handle = prog.Resolve(ev.Device)
			handles[ev.Device] = handle
		}

		for _, out := range engine.Tick(ev.TimestampUs) {
			timeline = append(timeline, out)
			stats.observe(ev.TimestampUs, out.TimestampUs)
		}

		outs := engine.Process(keyrx.InputEvent{
			Device:      handle,
			Physical:    ev.Physical.ID,
			Edge:        ev.Edge,
			TimestampUs: ev.TimestampUs,
		})
		for _, out := range outs {
			timeline = append(timeline, out)
			stats.observe(ev.TimestampUs, out.TimestampUs)
		}
	}

	return timeline, engine.CurrentState(), stats, nil
}
