// Package engine implements the scoped pre-order executor and the
// staleness/invalidation algorithms that need whole-tree visibility
// (SPEC_FULL.md §4.5, §4.6): everythingUpToDate, recalculateHashes, the
// scope-invalidation restart loop, and the Force/Undo/List/Rehash
// top-level operations. It is the package original_source/src/master.hh's
// Master-parameterized Step methods and script-tools.cc's scoped_execute
// visitor both correspond to.
package engine

import "fmt"

// InvalidateScope is the Go translation of the original's scope-restart
// exception (SPEC_FULL.md §4.6): returned, not panicked, up the call stack.
// A Group/Script scope handler that sees this error with a matching Scope
// restarts its own children traversal; otherwise it propagates the error
// unchanged to its caller, which is exactly the original's rethrow.
type InvalidateScope struct {
	Scope string
}

func (e *InvalidateScope) Error() string {
	return fmt.Sprintf("invalidate scope: %s", e.Scope)
}
