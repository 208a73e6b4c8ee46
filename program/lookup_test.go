package program

import (
	"testing"

	"github.com/keyrx/keyrx/keycode"
)

func TestLookupFirstMatchWins(t *testing.T) {
	a, _ := keycode.ByPhysicalName("A")
	vb, _ := keycode.ByVirtualName("VK_B")
	vc, _ := keycode.ByVirtualName("VK_C")

	root := ConfigRoot{
		Version: CurrentVersion,
		Devices: []DeviceConfig{
			{
				Identifier: "Specific*",
				Mappings:   []KeyMappingEntry{{Physical: a, Mapping: BaseKeyMapping{Kind: MappingSimple, Virtual: vb}}},
			},
			{
				Identifier: "*",
				Mappings:   []KeyMappingEntry{{Physical: a, Mapping: BaseKeyMapping{Kind: MappingSimple, Virtual: vc}}},
			},
		},
	}
	p, err := LoadProgram(Encode(root))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	h := p.Resolve("Specific Keyboard")
	m, ok := p.Lookup(h, a, keycode.State{})
	if !ok || m.Virtual != vb {
		t.Fatalf("expected first-match VK_B, got %+v ok=%v", m, ok)
	}

	h2 := p.Resolve("Generic Keyboard")
	m2, ok := p.Lookup(h2, a, keycode.State{})
	if !ok || m2.Virtual != vc {
		t.Fatalf("expected fallback VK_C, got %+v ok=%v", m2, ok)
	}
}

func TestLookupMissIsPassThrough(t *testing.T) {
	a, _ := keycode.ByPhysicalName("A")
	b, _ := keycode.ByPhysicalName("B")
	vb, _ := keycode.ByVirtualName("VK_B")
	root := ConfigRoot{
		Version: CurrentVersion,
		Devices: []DeviceConfig{{
			Identifier: "*",
			Mappings:   []KeyMappingEntry{{Physical: a, Mapping: BaseKeyMapping{Kind: MappingSimple, Virtual: vb}}},
		}},
	}
	p, err := LoadProgram(Encode(root))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	h := p.Resolve("any device")
	if _, ok := p.Lookup(h, b, keycode.State{}); ok {
		t.Fatal("expected pass-through miss for unmapped key")
	}
}

func TestDeviceIdentifierGlob(t *testing.T) {
	cases := []struct {
		pattern DeviceIdentifier
		name    string
		want    bool
	}{
		{"*", "Anything At All", true},
		{"Logitech*", "logitech g915", true},
		{"Logitech*", "Razer BlackWidow", false},
		{"Apple Internal Keyboard", "apple internal keyboard", true},
	}
	for _, c := range cases {
		if got := c.pattern.Matches(c.name); got != c.want {
			t.Errorf("%q.Matches(%q) = %v, want %v", c.pattern, c.name, got, c.want)
		}
	}
}
