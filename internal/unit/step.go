package unit

import "github.com/pjsaksa/swd/internal/dependency"

// ArtifactLink pairs an artifact name with how this step contributes to it
// (SPEC_FULL.md §4.3).
type ArtifactLink struct {
	Name string
	Link LinkType
}

// LinkType mirrors artifact.LinkType without importing the artifact
// package, avoiding a cycle (artifact has no need to know about unit, but
// a step's declared links are still typed). Conversion happens at the
// engine layer, which imports both.
type LinkType int

const (
	LinkSimple LinkType = iota
	LinkAggregate
	LinkPost
)

// Step is a leaf unit: an ordered sequence of artifact links and
// dependencies, a completion flag (mutated only through its parent
// Script's in-order discipline), and behavioral Flags.
type Step struct {
	name         string
	parent       *Script
	flags        Flags
	completed    bool
	artifacts    []ArtifactLink
	dependencies []dependency.Dependency
}

func NewStep(name string, flags Flags) *Step {
	return &Step{name: name, flags: flags}
}

func (s *Step) Name() string { return s.name }

func (s *Step) Parent() Unit {
	if s.parent == nil {
		return nil
	}
	return s.parent
}

func (s *Step) Flag(f Flag) bool { return s.flags.Has(f) }

// IsCompleted reports whether this step, and every step before it in its
// script, is flagged completed.
func (s *Step) IsCompleted() bool {
	return s.parent.IsCompleted(s.name)
}

// Complete marks this step completed, enforcing the script's in-order
// invariant.
func (s *Step) Complete() error {
	return s.parent.CompleteStep(s.name)
}

// Undo clears this step's completion and every step after it.
func (s *Step) Undo() error {
	return s.parent.UndoStep(s.name)
}

// AddArtifact appends an artifact link in declaration order.
func (s *Step) AddArtifact(name string, link LinkType) {
	s.artifacts = append(s.artifacts, ArtifactLink{Name: name, Link: link})
}

// HasArtifact reports whether this step already links the named artifact.
func (s *Step) HasArtifact(name string) bool {
	for _, a := range s.artifacts {
		if a.Name == name {
			return true
		}
	}
	return false
}

// Artifacts returns the ordered artifact links. Callers must not mutate it.
func (s *Step) Artifacts() []ArtifactLink {
	return s.artifacts
}

// AddDependency appends a dependency in declaration order.
func (s *Step) AddDependency(d dependency.Dependency) {
	s.dependencies = append(s.dependencies, d)
}

// Dependencies returns the ordered dependency list. Callers must not
// mutate it.
func (s *Step) Dependencies() []dependency.Dependency {
	return s.dependencies
}
