// Package engine defines the contracts the bridge expects from an
// underlying template compiler: an Environment that compiles sources into
// Templates, a Factory that builds Environments from resolved options, and
// the normalized error kinds callers observe regardless of which compiler
// backend is plugged in. Implementations live in subpackages (pongo,
// fasttpl); the bridge itself only speaks these interfaces.
package engine
