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

//go:build windows

package program

import "os"

// mapFile on Windows reads the whole artifact into a plain heap buffer
// rather than reaching for a file-mapping syscall: compiled programs are
// not expected to be large enough to need demand paging, and the
// teacher's own Windows screen backend (tscreen_windows.go) likewise
// favors direct syscalls only where POSIX has no stdlib equivalent at
// all — here os.ReadFile is already exactly as correct, so there is
// nothing to gain from CreateFileMapping/MapViewOfFile. The returned
// closer is a no-op since there is no mapping to release.
func mapFile(path string) ([]byte, func() error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return data, func() error { return nil }, nil
}
