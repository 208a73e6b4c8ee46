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

package sim

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/keyrx/keyrx"
	"github.com/keyrx/keyrx/keycode"
)

// fixtureFile is the on-disk shape a krxsim/test fixture is authored
// in: a human-writable YAML event list naming physical keys by their
// canonical string name rather than a raw numeric id.
type fixtureFile struct {
	Device string         `yaml:"device"`
	Events []fixtureEntry `yaml:"events"`
}

type fixtureEntry struct {
	Device string `yaml:"device"`
	Key    string `yaml:"key"`
	Edge   string `yaml:"edge"`
	AtUs   uint64 `yaml:"at_us"`
}

// ParseFixture decodes a YAML event-sequence fixture into the Event
// slice Simulate expects. A per-event "device" overrides the fixture's
// top-level default; a fixture with neither is rejected.
func ParseFixture(data []byte) ([]Event, error) {
	var f fixtureFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("sim: parsing fixture: %w", err)
	}

	events := make([]Event, 0, len(f.Events))
	for i, entry := range f.Events {
		device := entry.Device
		if device == "" {
			device = f.Device
		}
		if device == "" {
			return nil, fmt.Errorf("sim: fixture event %d has no device", i)
		}
		key, ok := keycode.ByPhysicalName(entry.Key)
		if !ok {
			return nil, fmt.Errorf("sim: fixture event %d names unknown physical key %q", i, entry.Key)
		}
		edge, err := parseEdge(entry.Edge)
		if err != nil {
			return nil, fmt.Errorf("sim: fixture event %d: %w", i, err)
		}
		events = append(events, Event{
			Device:      device,
			Physical:    key,
			Edge:        edge,
			TimestampUs: entry.AtUs,
		})
	}
	return events, nil
}

func parseEdge(s string) (keyrx.Edge, error) {
	switch s {
	case "press":
		return keyrx.Press, nil
	case "release":
		return keyrx.Release, nil
	default:
		return 0, fmt.Errorf("unknown edge %q (want \"press\" or \"release\")", s)
	}
}
