package unit

// Visitor dispatches by node kind. Any field left nil is treated as a
// no-op for that kind — the same "only some kinds care" shape the teacher
// used for optional per-hook interfaces in internal/pluginengine/hooks.go.
type Visitor struct {
	OnGroup  func(*Group) error
	OnScript func(*Script) error
	OnStep   func(*Step) error
}

func (v Visitor) visit(u Unit) error {
	switch t := u.(type) {
	case *Group:
		if v.OnGroup != nil {
			return v.OnGroup(t)
		}
	case *Script:
		if v.OnScript != nil {
			return v.OnScript(t)
		}
	case *Step:
		if v.OnStep != nil {
			return v.OnStep(t)
		}
	}
	return nil
}

// Traveler controls the shape of a traversal over the unit tree
// (SPEC_FULL.md §4.4).
type Traveler interface {
	Travel(u Unit) error
}

type forEachTraveler struct{ v Visitor }

// ForEach visits a node, then recurses pre-order into its children.
func ForEach(v Visitor) Traveler {
	return forEachTraveler{v}
}

func (t forEachTraveler) Travel(u Unit) error {
	if err := t.v.visit(u); err != nil {
		return err
	}

	switch g := u.(type) {
	case *Group:
		for _, child := range g.children {
			if err := t.Travel(child); err != nil {
				return err
			}
		}
	case *Script:
		for _, step := range g.steps {
			if err := t.Travel(step); err != nil {
				return err
			}
		}
	}

	return nil
}

type pathTraveler struct{ v Visitor }

// Path visits ancestors root-first, then the node itself — the traversal
// CanonicalPath is conceptually built on (SPEC_FULL.md §4.4).
func Path(v Visitor) Traveler {
	return pathTraveler{v}
}

func (t pathTraveler) Travel(u Unit) error {
	if p := u.Parent(); p != nil {
		if err := t.Travel(p); err != nil {
			return err
		}
	}
	return t.v.visit(u)
}
