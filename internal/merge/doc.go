// Package merge folds an ordered sequence of validated layers into one
// effective configuration.
//
// Layers are ordered lowest priority first; the local declaration is last.
// The fold is pure: the same ordered input always yields the same canonical
// output and the same diagnostics.
//
// Per-field policy:
//
//   - rules: the highest-priority layer mentioning a rule wins; a rule's
//     setting is atomic (options are never combined across layers)
//   - env: boolean OR; a later "false" over an earlier "true" is ignored and
//     reported as a warning
//   - parserOptions: ecmaVersion and sourceType are last-writer-wins, feature
//     flags last-writer-wins per key, defaults fill the rest
//   - globals, settings, unknown fields: last-writer-wins per key
//   - plugins: ordered union
package merge
