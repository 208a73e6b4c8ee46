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

//go:build !windows && !js && !wasm

package program

import (
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// mapFile memory-maps path read-only, returning the mapped bytes and a
// closer that unmaps them exactly once. This is the "possibly
// memory-mapped view" spec §3/§5 allows the runtime to hold for the
// lifetime of a loaded program, the same way tcell's POSIX screen
// backend (tscreen_posix.go) reaches past the stdlib straight to
// golang.org/x/sys/unix for the syscalls Go's os package doesn't expose.
func mapFile(path string) ([]byte, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, nil, err
	}
	size := info.Size()
	if size == 0 {
		return nil, nil, os.ErrInvalid
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, err
	}

	var once sync.Once
	closer := func() error {
		var uerr error
		once.Do(func() { uerr = unix.Munmap(data) })
		return uerr
	}
	return data, closer, nil
}
