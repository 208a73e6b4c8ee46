package program

import (
	"bytes"
	"testing"

	"github.com/keyrx/keyrx/keycode"
)

func sampleRoot() ConfigRoot {
	a, _ := keycode.ByPhysicalName("A")
	vb, _ := keycode.ByVirtualName("VK_B")
	capslock, _ := keycode.ByPhysicalName("CapsLock")
	h, _ := keycode.ByPhysicalName("H")
	vleft, _ := keycode.ByVirtualName("VK_Left")

	return ConfigRoot{
		Version:  CurrentVersion,
		Metadata: map[string]string{"name": "sample", "author": "test"},
		Devices: []DeviceConfig{
			{
				Identifier: "*",
				Mappings: []KeyMappingEntry{
					{Physical: a, Mapping: BaseKeyMapping{Kind: MappingSimple, Virtual: vb}},
					{Physical: capslock, Mapping: BaseKeyMapping{Kind: MappingModifier, ModifierID: 0}},
					{
						Physical: h,
						Mapping: BaseKeyMapping{
							Kind:      MappingConditional,
							Condition: AllActive(KindModifier, []uint8{0}),
							Then:      &BaseKeyMapping{Kind: MappingSimple, Virtual: vleft},
						},
					},
				},
			},
		},
		Macros: map[MacroID]MacroBody{},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	root := sampleRoot()
	encoded := Encode(root)

	p, err := LoadProgram(encoded)
	if err != nil {
		t.Fatalf("LoadProgram: %v", err)
	}
	got := p.Root()

	if got.Version != root.Version {
		t.Fatalf("version mismatch: %d vs %d", got.Version, root.Version)
	}
	if len(got.Devices) != len(root.Devices) {
		t.Fatalf("device count mismatch")
	}
	if len(got.Devices[0].Mappings) != len(root.Devices[0].Mappings) {
		t.Fatalf("mapping count mismatch")
	}
	for k, v := range root.Metadata {
		if got.Metadata[k] != v {
			t.Fatalf("metadata %q mismatch: %q vs %q", k, got.Metadata[k], v)
		}
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	root := sampleRoot()
	a := Encode(root)
	b := Encode(root)
	if !bytes.Equal(a, b) {
		t.Fatal("Encode must be byte-stable for identical input")
	}
}

func TestLoadProgramRejectsBadMagic(t *testing.T) {
	data := Encode(sampleRoot())
	data[0] = 'X'
	_, err := LoadProgram(data)
	le, ok := err.(*LoadError)
	if !ok || le.Kind != BadMagic {
		t.Fatalf("expected BadMagic, got %v", err)
	}
}

func TestLoadProgramRejectsHashMismatch(t *testing.T) {
	data := Encode(sampleRoot())
	data[len(data)-1] ^= 0xFF
	_, err := LoadProgram(data)
	le, ok := err.(*LoadError)
	if !ok || le.Kind != HashMismatch {
		t.Fatalf("expected HashMismatch, got %v", err)
	}
}

func TestLoadProgramRejectsUnsupportedVersion(t *testing.T) {
	data := Encode(sampleRoot())
	data[4], data[5], data[6], data[7] = 0, 0, 0, 2
	_, err := LoadProgram(data)
	le, ok := err.(*LoadError)
	if !ok || le.Kind != UnsupportedVersion {
		t.Fatalf("expected UnsupportedVersion, got %v", err)
	}
}

func TestLoadProgramRejectsDuplicatePhysicalMapping(t *testing.T) {
	a, _ := keycode.ByPhysicalName("A")
	vb, _ := keycode.ByVirtualName("VK_B")
	vc, _ := keycode.ByVirtualName("VK_C")
	root := ConfigRoot{
		Version: CurrentVersion,
		Devices: []DeviceConfig{{
			Identifier: "*",
			Mappings: []KeyMappingEntry{
				{Physical: a, Mapping: BaseKeyMapping{Kind: MappingSimple, Virtual: vb}},
				{Physical: a, Mapping: BaseKeyMapping{Kind: MappingSimple, Virtual: vc}},
			},
		}},
	}
	_, err := LoadProgram(Encode(root))
	le, ok := err.(*LoadError)
	if !ok || le.Kind != StructurallyInvalid {
		t.Fatalf("expected StructurallyInvalid for duplicate mapping, got %v", err)
	}
}
