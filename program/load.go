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

package program

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

// ErrorKind enumerates spec §7's LoadError taxonomy. None of these are
// recoverable locally — surfaced to the caller, and the previously
// loaded program (if any) stays active (spec §7).
type ErrorKind uint8

const (
	BadMagic ErrorKind = iota
	UnsupportedVersion
	HashMismatch
	StructurallyInvalid
)

func (k ErrorKind) String() string {
	switch k {
	case BadMagic:
		return "bad magic"
	case UnsupportedVersion:
		return "unsupported version"
	case HashMismatch:
		return "hash mismatch"
	case StructurallyInvalid:
		return "structurally invalid"
	default:
		return "unknown load error"
	}
}

// LoadError reports why a ".krx" byte sequence could not be loaded, with
// the offending byte offset when one is meaningful.
type LoadError struct {
	Kind   ErrorKind
	Offset int64
	Err    error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("program: %s at offset %d: %v", e.Kind, e.Offset, e.Err)
	}
	return fmt.Sprintf("program: %s at offset %d", e.Kind, e.Offset)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Program is the runtime's immutable, validated handle on a loaded
// mapping program: the decoded ConfigRoot plus the device-resolution and
// per-device lookup tables precomputed at load time (spec §4.2, §4.3).
// A Program is safe for concurrent read-only use by any number of
// goroutines once LoadProgram returns it; afterward only the
// mutex-guarded device-name caches that Resolve and Lookup fill change
// (spec §5, "shared-read-only").
type Program struct {
	root ConfigRoot
	hash [32]byte

	maxDepth int
	closer   func() error

	programLookupState
}

// Hash returns the content hash identifying this program, i.e. the
// SHA-256 recorded in the ".krx" header.
func (p *Program) Hash() [32]byte { return p.hash }

// Root exposes the decoded configuration tree, primarily for tooling
// (cmd/krxdump) and tests; the runtime engine itself only ever calls
// Lookup.
func (p *Program) Root() ConfigRoot { return p.root }

// Close releases any resources (e.g. a memory mapping) backing this
// Program. It is safe to call on a Program obtained from LoadProgram
// (a no-op) as well as one obtained from LoadProgramFile.
func (p *Program) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer()
}

// LoadProgram verifies a ".krx" byte slice's header, hash and structural
// soundness, and returns an immutable handle on it. Failures are
// terminal for this specific load; they never panic (spec §4.2, §7).
func LoadProgram(data []byte) (*Program, error) {
	if len(data) < headerSize {
		return nil, &LoadError{Kind: BadMagic, Offset: 0,
			Err: fmt.Errorf("program: artifact shorter than header (%d bytes)", len(data))}
	}
	if !bytes.Equal(data[0:4], magic[:]) {
		return nil, &LoadError{Kind: BadMagic, Offset: 0}
	}
	version := binary.BigEndian.Uint32(data[4:8])
	if version != CurrentVersion {
		return nil, &LoadError{Kind: UnsupportedVersion, Offset: 4,
			Err: fmt.Errorf("program: version %d unsupported", version)}
	}
	var wantHash [32]byte
	copy(wantHash[:], data[8:40])
	payloadLen := binary.LittleEndian.Uint64(data[40:48])
	if uint64(len(data)-headerSize) != payloadLen {
		return nil, &LoadError{Kind: StructurallyInvalid, Offset: 40,
			Err: fmt.Errorf("program: declared payload length %d does not match %d available bytes",
				payloadLen, len(data)-headerSize)}
	}
	payload := data[headerSize:]
	gotHash := sha256.Sum256(payload)
	if gotHash != wantHash {
		return nil, &LoadError{Kind: HashMismatch, Offset: 8}
	}

	root, err := decodePayload(payload)
	if err != nil {
		return nil, &LoadError{Kind: StructurallyInvalid, Offset: headerSize, Err: err}
	}

	p := &Program{root: root, hash: gotHash}
	if err := p.validate(); err != nil {
		return nil, err
	}
	p.buildLookup()
	return p, nil
}
