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

package keycode

// The repertoire below is fixed at compile time, the same way tcell
// fixes its Key constants: letters, digits, navigation, function,
// modifiers, media and numpad. Physical names have no prefix; virtual
// names carry the "VK_" prefix verbatim, since the DSL's prefix
// convention is the only thing separating the two otherwise-identical
// spaces (spec §3).
var repertoire = []string{
	// letters
	"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L", "M",
	"N", "O", "P", "Q", "R", "S", "T", "U", "V", "W", "X", "Y", "Z",
	// digits (row, not numpad)
	"D0", "D1", "D2", "D3", "D4", "D5", "D6", "D7", "D8", "D9",
	// whitespace / editing
	"Space", "Enter", "Tab", "Backspace", "Delete", "Insert", "Esc",
	// navigation
	"Up", "Down", "Left", "Right", "Home", "End", "PageUp", "PageDown",
	// function row
	"F1", "F2", "F3", "F4", "F5", "F6", "F7", "F8", "F9", "F10",
	"F11", "F12", "F13", "F14", "F15", "F16", "F17", "F18", "F19", "F20",
	"F21", "F22", "F23", "F24",
	// physical modifier decorations (never ModifierIDs, spec §3)
	"LShift", "RShift", "LCtrl", "RCtrl", "LAlt", "RAlt", "LMeta", "RMeta",
	// locks & bookkeeping keys commonly remapped from
	"CapsLock", "ScrollLock", "NumLock",
	// punctuation
	"Minus", "Equal", "LeftBracket", "RightBracket", "Backslash",
	"Semicolon", "Quote", "Grave", "Comma", "Period", "Slash",
	// media
	"MediaPlayPause", "MediaNext", "MediaPrev", "MediaMute",
	"VolumeUp", "VolumeDown", "Eject",
	// numpad
	"NumPad0", "NumPad1", "NumPad2", "NumPad3", "NumPad4",
	"NumPad5", "NumPad6", "NumPad7", "NumPad8", "NumPad9",
	"NumPadDivide", "NumPadMultiply", "NumPadSubtract", "NumPadAdd",
	"NumPadEnter", "NumPadDecimal",
	// misc
	"PrintScreen", "Pause", "Menu", "Fn",
}

var (
	physicalNames  = make(map[uint8]string, len(repertoire))
	physicalByName = make(map[string]uint8, len(repertoire))
	virtualNames   = make(map[uint8]string, len(repertoire))
	virtualByName  = make(map[string]uint8, len(repertoire))
)

func init() {
	if len(repertoire) > 256 {
		panic("keycode: repertoire exceeds the 256-entry byte space")
	}
	for i, name := range repertoire {
		id := uint8(i)
		physicalNames[id] = name
		physicalByName[name] = id
		vname := "VK_" + name
		virtualNames[id] = vname
		virtualByName[vname] = id
	}
}
