package engine

import (
	"context"
	"fmt"

	"github.com/pjsaksa/swd/internal/artifact"
	"github.com/pjsaksa/swd/internal/master"
	"github.com/pjsaksa/swd/internal/unit"
)

// everythingUpToDate implements spec §4.5's algorithm of the same name. It
// may return an *InvalidateScope error raised by an artifact's Manager or by
// a rebuild triggered from an artifact's content having changed out from
// under a completed step; callers must let that error propagate unwound to
// the enclosing scope, not treat it as a fatal condition.
func everythingUpToDate(ctx context.Context, m *master.Master, step *unit.Step) (bool, error) {
	var upToDate bool
	if step.Flag(unit.FlagAlways) {
		upToDate = false
	} else {
		upToDate = step.IsCompleted()
	}

	if upToDate {
		for _, dep := range step.Dependencies() {
			ok, err := dep.IsUpToDate(ctx)
			if err != nil {
				return false, err
			}
			if !ok {
				upToDate = false
				break
			}
		}
	}

	stepPath := unit.CanonicalPath(step)

	for _, link := range step.Artifacts() {
		art, ok := m.Artifact(link.Name)
		if !ok {
			return false, fmt.Errorf("step %q links unknown artifact %q", stepPath, link.Name)
		}

		toUndo, raiseScope := art.Manager().CheckInvalidation(stepPath, toArtifactLink(link.Link))
		for _, path := range toUndo {
			if err := undoPath(m, path); err != nil {
				return false, err
			}
		}
		if raiseScope {
			return false, &InvalidateScope{Scope: art.Scope()}
		}

		current, err := art.CalculateHash(ctx)
		if err != nil {
			return false, err
		}

		if !art.Compare(current, true) {
			upToDate = false

			undone, err := rebuildArtifact(m, art)
			if err != nil {
				return false, err
			}
			if undone > 0 {
				return false, &InvalidateScope{Scope: art.Scope()}
			}
		}
	}

	return upToDate, nil
}

// recalculateHashes implements spec §4.5: store every linked artifact's and
// every dependency's current hash, and record the step's contribution with
// each artifact's Manager.
func recalculateHashes(ctx context.Context, m *master.Master, step *unit.Step) error {
	stepPath := unit.CanonicalPath(step)

	for _, link := range step.Artifacts() {
		art, ok := m.Artifact(link.Name)
		if !ok {
			return fmt.Errorf("step %q links unknown artifact %q", stepPath, link.Name)
		}

		h, err := art.CalculateHash(ctx)
		if err != nil {
			return err
		}
		art.StoreHash(h)
		art.Manager().CompleteStep(stepPath, toArtifactLink(link.Link))
	}

	for _, dep := range step.Dependencies() {
		h, err := dep.CalculateHash(ctx)
		if err != nil {
			return err
		}
		dep.StoreHash(h)
	}

	return nil
}

// rebuildArtifact undoes every completed step anywhere in the tree that
// links art, regardless of link type, and reports how many were undone
// (spec §4.3's rebuildArtifact).
func rebuildArtifact(m *master.Master, art artifact.Artifact) (int, error) {
	undone := 0

	for _, path := range m.StepsLinkingArtifact(art.Name()) {
		u, err := unit.FindUnit(m.Root(), path)
		if err != nil {
			return undone, err
		}

		step, ok := u.(*unit.Step)
		if !ok {
			continue
		}

		if step.IsCompleted() {
			if err := step.Undo(); err != nil {
				return undone, err
			}
			undone++
		}
	}

	return undone, nil
}

// undoUnit dispatches Undo by unit kind (spec §4.6's Undo operation): a
// Group recurses into every child, a Script undoes all of its steps, and a
// Step undoes itself and its successors.
func undoUnit(u unit.Unit) error {
	switch t := u.(type) {
	case *unit.Group:
		for _, child := range t.Children() {
			if err := undoUnit(child); err != nil {
				return err
			}
		}
		return nil
	case *unit.Script:
		t.UndoAll()
		return nil
	case *unit.Step:
		return t.Undo()
	default:
		return fmt.Errorf("unknown unit kind for %T", u)
	}
}

func undoPath(m *master.Master, path string) error {
	u, err := unit.FindUnit(m.Root(), path)
	if err != nil {
		return err
	}
	return undoUnit(u)
}
