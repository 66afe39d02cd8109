// Package config holds the data model of the resolver: raw declarations as
// produced by loaders, sanitized layers as produced by the schema validator,
// and the immutable effective configuration produced by the merger.
//
// Raw strings and numbers never leak past the validator: severities, source
// types, ecmaVersion values, global access modes and feature flags are closed
// enumerations here.
package config
