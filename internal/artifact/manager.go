package artifact

import "sort"

// Manager tracks, per Artifact, which steps have contributed to it under
// the Aggregate or Post link types. Simple links are never recorded here —
// SPEC_FULL.md §4.3: "Simple marks are never persisted nor stored."
type Manager struct {
	marks map[string]LinkType
}

// CompleteStep records a step's contribution after it successfully runs.
// Simple is a no-op; Aggregate/Post overwrite any prior mark for that step.
func (m *Manager) CompleteStep(stepPath string, link LinkType) {
	if link == LinkSimple {
		return
	}
	if m.marks == nil {
		m.marks = make(map[string]LinkType)
	}
	m.marks[stepPath] = link
}

// Marks returns a snapshot of the current Aggregate/Post marks, sorted by
// step path, for persistence (SPEC_FULL.md §4.7) and for tests.
func (m *Manager) Marks() []struct {
	StepPath string
	Link     LinkType
} {
	out := make([]struct {
		StepPath string
		Link     LinkType
	}, 0, len(m.marks))

	for path, link := range m.marks {
		out = append(out, struct {
			StepPath string
			Link     LinkType
		}{path, link})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].StepPath < out[j].StepPath })
	return out
}

// SetMark restores a mark during cache load, bypassing CompleteStep's
// no-op-on-Simple rule (a Simple entry in loaded data is simply never
// written back, matching the "simple/empty never round-trips as a mark"
// invariant).
func (m *Manager) SetMark(stepPath string, link LinkType) {
	if link == LinkSimple {
		return
	}
	if m.marks == nil {
		m.marks = make(map[string]LinkType)
	}
	m.marks[stepPath] = link
}

// CheckInvalidation implements the mark-driven half of SPEC_FULL.md §4.3's
// table: given the link type under which stepPath is about to complete,
// decide which already-marked steps must be undone and whether the
// enclosing scope must restart.
//
// Per spec.md §9's resolved Open Question, a Post mark seen again is
// treated identically to Aggregate's "same step retries" policy: any prior
// mark (Aggregate or Post) on this exact step triggers invalidation of
// every Aggregate/Post-marked step and a scope restart. A step not
// previously marked only forces Post-marked steps (pure consumers) to
// re-run, without a scope restart.
func (m *Manager) CheckInvalidation(stepPath string, link LinkType) (toUndo []string, raiseScope bool) {
	if link == LinkSimple {
		return nil, false
	}

	if _, alreadyMarked := m.marks[stepPath]; alreadyMarked {
		for path := range m.marks {
			toUndo = append(toUndo, path)
		}
		sort.Strings(toUndo)
		return toUndo, true
	}

	for path, existing := range m.marks {
		if existing == LinkPost {
			toUndo = append(toUndo, path)
		}
	}
	sort.Strings(toUndo)
	return toUndo, false
}

// AllMarkedSteps returns every step path this artifact has ever marked
// (Aggregate or Post), sorted, regardless of type — used when rebuilding an
// artifact whose on-disk content changed out from under a step.
func (m *Manager) AllMarkedSteps() []string {
	out := make([]string, 0, len(m.marks))
	for path := range m.marks {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}
