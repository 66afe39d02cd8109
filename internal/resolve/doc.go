// Package resolve turns a local declaration and a preset registry into an
// effective configuration.
//
// One call expands `extends` depth-first and left-to-right, validates every
// layer, merges the valid ones and reports one of two terminal states:
// Resolved (a configuration plus warnings) or Failed (error diagnostics, no
// configuration). Cyclic and unknown preset references abort the call with
// a *FatalError and no partial result.
package resolve
