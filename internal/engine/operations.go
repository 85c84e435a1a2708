package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/pjsaksa/swd/internal/execshell"
	"github.com/pjsaksa/swd/internal/hashcache"
	"github.com/pjsaksa/swd/internal/master"
	"github.com/pjsaksa/swd/internal/unit"
)

// Force executes a single step unconditionally, still going through
// recalculateHashes and the normal completion invariant (spec §4.6's
// force(stepPath)).
func Force(ctx context.Context, m *master.Master, runner execshell.Runner, path string) error {
	u, err := unit.FindUnit(m.Root(), path)
	if err != nil {
		return err
	}

	step, ok := u.(*unit.Step)
	if !ok {
		return fmt.Errorf("%q is not a step", path)
	}

	sudo := step.Flag(unit.FlagSudo)
	command := unit.ExecPath(step)

	if err := runner.Run(ctx, command, sudo); err != nil {
		return fmt.Errorf("step '%s' failed: %w", path, err)
	}

	if err := recalculateHashes(ctx, m, step); err != nil {
		return err
	}

	return step.Complete()
}

// Undo clears completion for the unit at path, dispatching by kind (spec
// §4.6's undo(stepPath)): a Group recurses into each child, a Script clears
// all of its steps, a Step clears itself and its successors.
func Undo(m *master.Master, path string) error {
	u, err := unit.FindUnit(m.Root(), path)
	if err != nil {
		return err
	}
	return undoUnit(u)
}

// Rehash recomputes and unconditionally stores the named artifact's current
// hash, bypassing any staleness comparison (SPEC_FULL.md §2's supplemented
// --rehash function).
func Rehash(ctx context.Context, m *master.Master, name string) error {
	art, ok := m.Artifact(name)
	if !ok {
		return fmt.Errorf("unknown artifact %q", name)
	}

	h, err := art.CalculateHash(ctx)
	if err != nil {
		return err
	}

	art.StoreHash(h)
	return nil
}

// ListSteps returns every step's canonical path in pre-order (spec §6's
// --list-steps).
func ListSteps(m *master.Master) []string {
	var paths []string

	_ = unit.ForEach(unit.Visitor{
		OnStep: func(s *unit.Step) error {
			paths = append(paths, unit.CanonicalPath(s))
			return nil
		},
	}).Travel(m.Root())

	return paths
}

// ArtifactStatus classifies an artifact's current state for --list-artifacts.
type ArtifactStatus int

const (
	StatusUpToDate ArtifactStatus = iota
	StatusDirty
	StatusMissing
)

// ArtifactReport pairs an artifact's name with its freshly computed status.
type ArtifactReport struct {
	Name   string
	Status ArtifactStatus
}

// ListArtifacts reports every registered artifact's status, sorted by name
// (spec §6's --list-artifacts; colorizing the result is internal/cli's job).
func ListArtifacts(ctx context.Context, m *master.Master) ([]ArtifactReport, error) {
	artifacts := m.Artifacts()
	reports := make([]ArtifactReport, 0, len(artifacts))

	for _, art := range artifacts {
		current, err := art.CalculateHash(ctx)
		if err != nil {
			return nil, fmt.Errorf("hashing artifact %q: %w", art.Name(), err)
		}

		status := StatusDirty
		switch {
		case current == hashcache.Sentinel:
			status = StatusMissing
		case art.Compare(current, true):
			status = StatusUpToDate
		}

		reports = append(reports, ArtifactReport{Name: art.Name(), Status: status})
	}

	sort.Slice(reports, func(i, j int) bool { return reports[i].Name < reports[j].Name })
	return reports, nil
}
