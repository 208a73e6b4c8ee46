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
	"path"
	"strings"
	"unicode/utf8"

	"github.com/gdamore/encoding"
	"golang.org/x/text/cases"
	"golang.org/x/text/transform"
)

// foldCaser case-folds a device name before matching, the way USB
// product-string comparisons need to be across platforms that differ in
// how they capitalize vendor-supplied device names.
var foldCaser = cases.Fold()

// Matches reports whether id's glob-like pattern matches name. The
// special pattern "*" matches every device (spec §3). path.Match already
// implements the "*"/"?"/"[...]" glob syntax the spec asks for; no
// external glob library appears anywhere in the retrieval pack, so
// reaching past the standard library here would add a dependency with no
// precedent in it.
func (id DeviceIdentifier) Matches(name string) bool {
	if id == "*" {
		return true
	}
	folded := foldCaser.String(name)
	pattern := foldCaser.String(string(id))
	ok, err := path.Match(pattern, folded)
	return err == nil && ok
}

// NormalizeDeviceName decodes a raw device-name byte string reported by
// a platform adapter into a UTF-8 Go string before it is matched against
// any DeviceIdentifier. Some HID descriptors on older Windows drivers
// report device strings in a legacy 8-bit charset rather than UTF-8 or
// UTF-16; charset is an IANA name such as "ISO-8859-1" understood by
// github.com/gdamore/encoding's registry (the same registry tcell uses
// to pick an encoder/decoder for a terminal's locale charset). If raw is
// already valid UTF-8 it is returned unchanged; if charset is unknown or
// decoding fails, invalid bytes are replaced with U+FFFD.
func NormalizeDeviceName(raw []byte, charset string) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	enc := encoding.GetEncoding(charset)
	if enc == nil {
		return strings.ToValidUTF8(string(raw), "�")
	}
	dec := enc.NewDecoder()
	out, _, err := transform.Bytes(dec, raw)
	if err != nil {
		return strings.ToValidUTF8(string(raw), "�")
	}
	return string(out)
}
