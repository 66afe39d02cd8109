// Package cache keeps resolution results on disk in msgpack form so repeat
// runs over unchanged declarations and presets skip resolution.
package cache
