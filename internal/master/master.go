// Package master owns the whole-tree state a single algorithm in
// internal/unit cannot see on its own: the root Group plus the registry of
// every declared Artifact, keyed by name (SPEC_FULL.md §3). It plays the
// same role as original_source/src/master.hh/.cc's Master class, which the
// original's Step::everythingUpToDate and recalculateHashes both take a
// Master& reference to reach.
package master

import (
	"context"
	"fmt"
	"sort"

	"github.com/pjsaksa/swd/internal/artifact"
	"github.com/pjsaksa/swd/internal/unit"
)

// Master is the root of a loaded swd tree: its unit hierarchy and the flat
// registry of artifacts that hierarchy's steps link against.
type Master struct {
	root      *unit.Group
	artifacts map[string]artifact.Artifact
}

// New returns a Master over root, with an empty artifact registry.
func New(root *unit.Group) *Master {
	return &Master{root: root, artifacts: make(map[string]artifact.Artifact)}
}

// Root returns the tree's root Group.
func (m *Master) Root() *unit.Group { return m.root }

// AddArtifact registers art under its own name. It returns an error if an
// artifact with that name is already registered — artifact identity is
// global across the whole tree (SPEC_FULL.md §3).
func (m *Master) AddArtifact(art artifact.Artifact) error {
	if _, exists := m.artifacts[art.Name()]; exists {
		return fmt.Errorf("duplicate artifact name %q", art.Name())
	}
	m.artifacts[art.Name()] = art
	return nil
}

// Artifact looks up a registered artifact by name.
func (m *Master) Artifact(name string) (artifact.Artifact, bool) {
	a, ok := m.artifacts[name]
	return a, ok
}

// Artifacts returns every registered artifact, sorted by name.
func (m *Master) Artifacts() []artifact.Artifact {
	names := make([]string, 0, len(m.artifacts))
	for name := range m.artifacts {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]artifact.Artifact, 0, len(names))
	for _, name := range names {
		out = append(out, m.artifacts[name])
	}
	return out
}

// ArtifactCalculateHash implements dependency.ArtifactResolver.
func (m *Master) ArtifactCalculateHash(ctx context.Context, name string) (string, error) {
	a, ok := m.artifacts[name]
	if !ok {
		return "", fmt.Errorf("unknown artifact %q", name)
	}
	return a.CalculateHash(ctx)
}

// ArtifactCompare implements dependency.ArtifactResolver: it compares
// candidate against the named ARTIFACT's own stored hash, not against any
// dependency's stored hash (SPEC_FULL.md §4.2).
func (m *Master) ArtifactCompare(name string, candidate string, allowMissing bool) bool {
	a, ok := m.artifacts[name]
	if !ok {
		return false
	}
	return a.Compare(candidate, allowMissing)
}

// StepsLinkingArtifact returns the canonical path of every Step anywhere in
// the tree that links name, under any LinkType including Simple. Unlike
// artifact.Manager (which only ever records Aggregate/Post marks),
// this scans the live tree, needed to rebuild every consumer of an artifact
// whose content changed out from under it (SPEC_FULL.md §4.3).
func (m *Master) StepsLinkingArtifact(name string) []string {
	var paths []string

	_ = unit.ForEach(unit.Visitor{
		OnStep: func(s *unit.Step) error {
			if s.HasArtifact(name) {
				paths = append(paths, unit.CanonicalPath(s))
			}
			return nil
		},
	}).Travel(m.root)

	sort.Strings(paths)
	return paths
}
