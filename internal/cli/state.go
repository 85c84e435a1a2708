package cli

import (
	"fmt"
	"sort"

	"github.com/pjsaksa/swd/internal/artifact"
	"github.com/pjsaksa/swd/internal/cache"
	"github.com/pjsaksa/swd/internal/logging"
	"github.com/pjsaksa/swd/internal/master"
	"github.com/pjsaksa/swd/internal/unit"
)

// applyCachedState restores persisted artifact hashes/marks and step
// completion/dependency hashes onto a freshly probed tree (SPEC_FULL.md
// §4.7). A persisted artifact or step that no longer exists in the current
// tree is silently dropped, since discovery is re-run from scratch every
// invocation and the on-disk layout may have changed since the cache was
// written.
func applyCachedState(m *master.Master, artifacts map[string]cache.ArtifactRecord, steps map[string]cache.StepRecord, log logging.Logger) error {
	for name, rec := range artifacts {
		art, ok := m.Artifact(name)
		if !ok {
			continue
		}
		art.StoreHash(rec.Hash)

		for stepPath, markStr := range rec.Marks {
			link, err := artifact.ParseLinkType(markStr)
			if err != nil {
				return fmt.Errorf("artifact %s: %w", name, err)
			}
			art.Manager().SetMark(stepPath, link)
		}
	}

	paths := make([]string, 0, len(steps))
	for path := range steps {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		rec := steps[path]

		u, err := unit.FindUnit(m.Root(), path)
		if err != nil {
			continue
		}
		step, ok := u.(*unit.Step)
		if !ok {
			continue
		}

		for _, dep := range step.Dependencies() {
			for _, saved := range rec.Dependencies {
				if saved.ID == dep.ID() && saved.Type == string(dep.Kind()) {
					dep.StoreHash(saved.Hash)
				}
			}
		}

		if rec.Completed {
			if err := step.Complete(); err != nil {
				log.Warnf("restoring completion for %q: %v", path, err)
			}
		}
	}

	return nil
}

// collectCacheState snapshots the current tree into the records cache.Store
// persists (SPEC_FULL.md §4.7).
func collectCacheState(m *master.Master) (map[string]cache.ArtifactRecord, map[string]cache.StepRecord) {
	artifacts := make(map[string]cache.ArtifactRecord)
	for _, art := range m.Artifacts() {
		marks := make(map[string]string)
		for _, mark := range art.Manager().Marks() {
			if s := mark.Link.String(); s != "" {
				marks[mark.StepPath] = s
			}
		}
		artifacts[art.Name()] = cache.ArtifactRecord{Hash: art.GetHash(), Marks: marks}
	}

	steps := make(map[string]cache.StepRecord)
	_ = unit.ForEach(unit.Visitor{
		OnStep: func(s *unit.Step) error {
			var deps []cache.DepRecord
			for _, dep := range s.Dependencies() {
				deps = append(deps, cache.DepRecord{ID: dep.ID(), Type: string(dep.Kind()), Hash: dep.GetHash()})
			}
			steps[unit.CanonicalPath(s)] = cache.StepRecord{Completed: s.IsCompleted(), Dependencies: deps}
			return nil
		},
	}).Travel(m.Root())

	return artifacts, steps
}
