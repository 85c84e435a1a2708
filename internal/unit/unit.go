// Package unit implements the three-node Group/Script/Step tree
// (SPEC_FULL.md §4.4), its canonical-path naming, and the three traversal
// strategies (ForEach, Path, FindUnit) used by the rest of the engine.
// Grounded on original_source/src/script.hh/.cc and
// original_source/src/script-travelers.hh/.cc, whose algorithms this
// package follows exactly (translated from C++ virtual-dispatch visitors
// into Go type switches and closures, in the style the teacher used for its
// own dispatch-by-kind code, e.g. internal/dag/executor.go's state-machine
// switch and internal/pluginengine/hooks.go's optional-interface checks).
package unit

// Unit is implemented by *Group, *Script, and *Step. Parent returns nil for
// the root Group; it is otherwise always non-nil.
type Unit interface {
	Name() string
	Parent() Unit
}

// Flag is a per-Step behavioral modifier (SPEC_FULL.md §3).
type Flag int

const (
	// FlagAlways makes a step perpetually out of date.
	FlagAlways Flag = 1 << iota
	// FlagSudo runs the step's command through sudo.
	FlagSudo
)

// Flags is a small bitset of Flag values.
type Flags uint32

// NewFlags builds a Flags value from individual Flag constants.
func NewFlags(flags ...Flag) Flags {
	var f Flags
	for _, flag := range flags {
		f |= Flags(flag)
	}
	return f
}

// Has reports whether flag is set.
func (f Flags) Has(flag Flag) bool {
	return f&Flags(flag) != 0
}
