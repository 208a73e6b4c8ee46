// Copyright 2020 thinkgos (thinkgo@aliyun.com). All rights reserved.
// Adapted under the originating module's license terms.

package keyrx

import (
	"log"
	"os"
	"sync/atomic"
)

// LogProvider is the minimal logging surface the engine reports
// diagnostics through. It mirrors the clog.LogProvider shape used
// elsewhere in the retrieval pack for embeddable libraries that must not
// own stdout themselves: a small severity-leveled interface an embedder
// supplies, defaulting to a thin standard-library-backed implementation
// when none is given.
type LogProvider interface {
	Error(format string, v ...any)
	Warn(format string, v ...any)
	Debug(format string, v ...any)
}

type defaultLogProvider struct {
	*log.Logger
}

func (d defaultLogProvider) Error(format string, v ...any) { d.Printf("[E] "+format, v...) }
func (d defaultLogProvider) Warn(format string, v ...any)  { d.Printf("[W] "+format, v...) }
func (d defaultLogProvider) Debug(format string, v ...any) { d.Printf("[D] "+format, v...) }

// Diagnostics collects the runtime-visible-but-non-fatal conditions spec
// §7 enumerates (UnknownVirtualKey, TimestampRegression): each is
// counted, optionally logged, and never surfaced as an error — the
// engine never panics or fails a Process call over them.
type Diagnostics struct {
	provider LogProvider
	enabled  uint32

	droppedUnknownVirtualKey   uint64
	clampedTimestampRegression uint64
}

// NewDiagnostics creates a Diagnostics reporting through provider. A nil
// provider gets a standard-library logger writing to stderr, enabled by
// default — matching clog's "enabled unless told otherwise" posture.
func NewDiagnostics(provider LogProvider) *Diagnostics {
	if provider == nil {
		provider = defaultLogProvider{log.New(os.Stderr, "keyrx: ", log.LstdFlags)}
	}
	d := &Diagnostics{provider: provider}
	d.SetEnabled(true)
	return d
}

// SetEnabled turns logging through the provider on or off; counters are
// always maintained regardless.
func (d *Diagnostics) SetEnabled(enabled bool) {
	if enabled {
		atomic.StoreUint32(&d.enabled, 1)
	} else {
		atomic.StoreUint32(&d.enabled, 0)
	}
}

func (d *Diagnostics) logf(level func(string, ...any), format string, v ...any) {
	if atomic.LoadUint32(&d.enabled) == 1 {
		level(format, v...)
	}
}

// DroppedUnknownVirtualKey records that an output carrying an
// unrepresentable virtual code was dropped (spec §7,
// RuntimeDrop::UnknownVirtualKey).
func (d *Diagnostics) DroppedUnknownVirtualKey(id uint8) {
	atomic.AddUint64(&d.droppedUnknownVirtualKey, 1)
	d.logf(d.provider.Warn, "dropped output for unknown virtual key id %d", id)
}

// ClampedTimestampRegression records that an input's timestamp went
// backwards relative to the last processed event and was clamped (spec
// §7, RuntimeDrop::TimestampRegression).
func (d *Diagnostics) ClampedTimestampRegression(got, clampedTo uint64) {
	atomic.AddUint64(&d.clampedTimestampRegression, 1)
	d.logf(d.provider.Debug, "clamped regressive timestamp %d to %d", got, clampedTo)
}

// Counts returns a snapshot of the current counter values, surfaced
// through StateSnapshot for observability (spec §7).
func (d *Diagnostics) Counts() (droppedUnknownVirtualKey, clampedTimestampRegressions uint64) {
	return atomic.LoadUint64(&d.droppedUnknownVirtualKey), atomic.LoadUint64(&d.clampedTimestampRegression)
}
