package unit

import (
	"fmt"
	"sort"
)

// Group is an internal tree node with 0+ children (Groups or Scripts),
// ordered by name. Group exclusively owns its children
// (SPEC_FULL.md §3's ownership rule); the parent pointer is a non-owning
// back-reference, nil only at the root.
type Group struct {
	name     string
	parent   *Group
	children []Unit
}

// NewRoot creates the root Group, whose Parent is nil and whose canonical
// path contributes nothing (SPEC_FULL.md §3).
func NewRoot(name string) *Group {
	return &Group{name: name}
}

// NewGroup creates a Group under parent. It does not add the new group to
// parent's children; call parent.Add explicitly, matching the teacher's
// preference for explicit two-step construction over constructors with
// side effects (e.g. internal/graph's Document/Node are built, then
// validated, as separate steps).
func NewGroup(name string, parent *Group) *Group {
	return &Group{name: name, parent: parent}
}

func (g *Group) Name() string { return g.name }

func (g *Group) Parent() Unit {
	if g.parent == nil {
		return nil
	}
	return g.parent
}

// Add inserts a child, keeping children sorted by name. It returns an error
// if a child with the same name already exists.
func (g *Group) Add(child Unit) error {
	idx := sort.Search(len(g.children), func(i int) bool { return g.children[i].Name() >= child.Name() })

	if idx < len(g.children) && g.children[idx].Name() == child.Name() {
		return fmt.Errorf("duplicate unit name %q under %q", child.Name(), g.name)
	}

	g.children = append(g.children, nil)
	copy(g.children[idx+1:], g.children[idx:])
	g.children[idx] = child

	return nil
}

// Children returns the sorted child slice. Callers must not mutate it.
func (g *Group) Children() []Unit {
	return g.children
}

// FindChild looks up a direct child by name using binary search over the
// name-sorted slice (SPEC_FULL.md §4.4).
func (g *Group) FindChild(name string) (Unit, bool) {
	idx := sort.Search(len(g.children), func(i int) bool { return g.children[i].Name() >= name })

	if idx < len(g.children) && g.children[idx].Name() == name {
		return g.children[idx], true
	}
	return nil, false
}
