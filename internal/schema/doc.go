// Package schema validates raw configuration declarations before they are
// trusted by the merger.
//
// Validation is a pure function of its input: it never fails fast, it never
// mutates the declaration, and it reports problems in a fixed order
// (top-level fields in declaration-schema order, map keys sorted) so that two
// runs over the same input produce identical diagnostics.
package schema
