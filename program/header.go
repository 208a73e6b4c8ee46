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
	"crypto/sha256"
	"encoding/binary"
)

// headerSize is the fixed ".krx" header length from spec §3/§6: 4 bytes
// magic, 4 bytes version, 32 bytes payload hash, 8 bytes payload length.
const headerSize = 48

var magic = [4]byte{'K', 'R', 'X', '\n'}

// CurrentVersion is the only version this codec currently writes or
// accepts.
const CurrentVersion uint32 = 1

// Encode renders root into the full ".krx" byte-exact artifact: header
// followed by the deterministic payload. Encode(x) is byte-stable across
// calls and processes for identical x (spec §8, invariant 2), since
// encodePayload never consults map iteration order or any other
// non-deterministic source.
func Encode(root ConfigRoot) []byte {
	payload := encodePayload(root)
	sum := sha256.Sum256(payload)

	out := make([]byte, headerSize+len(payload))
	copy(out[0:4], magic[:])
	binary.BigEndian.PutUint32(out[4:8], CurrentVersion)
	copy(out[8:40], sum[:])
	binary.LittleEndian.PutUint64(out[40:48], uint64(len(payload)))
	copy(out[headerSize:], payload)
	return out
}
