// Package project locates a lintconf project on disk: the lintconf.toml tool
// manifest, the nearest .lintconfrc declaration, and content digests used as
// cache keys.
package project
