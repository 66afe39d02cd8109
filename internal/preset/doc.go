// Package preset holds the registry of named presets the resolver expands
// `extends` references through.
//
// A Snapshot is immutable once built. Hot reload builds a new Snapshot and
// publishes it through a Store; resolutions already in flight keep reading
// the snapshot they started with.
package preset
