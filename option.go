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

// Option configures an Engine at construction.
type Option func(*Engine)

// WithLogProvider routes the engine's diagnostics through a
// caller-supplied LogProvider instead of the stderr default.
func WithLogProvider(lp LogProvider) Option {
	return func(e *Engine) { e.diag = NewDiagnostics(lp) }
}

// WithDiagnostics lets a caller supply (and later read from) its own
// Diagnostics instance, e.g. to share counters across several engines
// or to disable logging outright via Diagnostics.SetEnabled.
func WithDiagnostics(d *Diagnostics) Option {
	return func(e *Engine) { e.diag = d }
}
