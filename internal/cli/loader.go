// Package cli wires discovery, info-probing, configuration, the cache
// store, and the engine together behind one cobra.Command (SPEC_FULL.md
// §6), generalizing the teacher's internal/cli/executor.go's single
// executeGraph orchestration function (load graph, build runner, run,
// record) into the equivalent swd sequence: scan, probe, load cache,
// execute, save cache.
package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/pjsaksa/swd/internal/artifact"
	"github.com/pjsaksa/swd/internal/cache"
	"github.com/pjsaksa/swd/internal/config"
	"github.com/pjsaksa/swd/internal/dependency"
	"github.com/pjsaksa/swd/internal/discovery"
	"github.com/pjsaksa/swd/internal/execshell"
	"github.com/pjsaksa/swd/internal/master"
	"github.com/pjsaksa/swd/internal/probe"
	"github.com/pjsaksa/swd/internal/unit"
)

const groupInfoFile = "group.swd"

// loadMaster scans cfg.Root, probes every Script and every Group that owns
// a group.swd, and wires the resulting artifacts/steps/dependencies into a
// fresh *master.Master. It does not touch the cache store — that happens
// one layer up, once the tree exists and every artifact name is known.
func loadMaster(ctx context.Context, cfg *config.Config, fsys afero.Fs, out execshell.Outputter, hasher execshell.Hasher) (*master.Master, error) {
	root, err := discovery.Scan(fsys, cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", cfg.Root, err)
	}

	m := master.New(root)

	scriptInfos, groupInfos, err := probeAll(ctx, fsys, out, cfg.Root, root)
	if err != nil {
		return nil, err
	}

	for script, info := range scriptInfos {
		scope := unit.CanonicalPath(script)
		scopeDir := filepath.Join(cfg.Root, unit.CanonicalPath(script.Parent()))
		if err := registerArtifacts(m, info.Artifacts, scope, scopeDir, hasher); err != nil {
			return nil, err
		}
	}
	for group, info := range groupInfos {
		scope := unit.CanonicalPath(group)
		scopeDir := filepath.Join(cfg.Root, unit.CanonicalPath(group))
		if err := registerArtifacts(m, info.Artifacts, scope, scopeDir, hasher); err != nil {
			return nil, err
		}
	}

	for script, info := range scriptInfos {
		scopeDir := filepath.Join(cfg.Root, unit.CanonicalPath(script.Parent()))
		if err := buildSteps(m, script, info, scopeDir, hasher); err != nil {
			return nil, err
		}
	}

	for group, info := range groupInfos {
		if err := applyRules(cfg.Root, group, info.Rules, unit.CanonicalPath(group), m, hasher); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func probeAll(ctx context.Context, fsys afero.Fs, out execshell.Outputter, rootDir string, root *unit.Group) (map[*unit.Script]*probe.Info, map[*unit.Group]*probe.Info, error) {
	scriptInfos := make(map[*unit.Script]*probe.Info)
	groupInfos := make(map[*unit.Group]*probe.Info)

	var walk func(g *unit.Group) error
	walk = func(g *unit.Group) error {
		groupDir := filepath.Join(rootDir, unit.CanonicalPath(g))
		candidate := filepath.Join(groupDir, groupInfoFile)
		if ok, _ := afero.Exists(fsys, candidate); ok {
			info, err := probe.Probe(ctx, out, candidate, unit.CanonicalPath(g)+"/"+groupInfoFile)
			if err != nil {
				return err
			}
			groupInfos[g] = info
		}

		for _, child := range g.Children() {
			switch t := child.(type) {
			case *unit.Group:
				if err := walk(t); err != nil {
					return err
				}
			case *unit.Script:
				execPath := filepath.Join(rootDir, unit.ExecPath(t))
				info, err := probe.Probe(ctx, out, execPath, unit.CanonicalPath(t))
				if err != nil {
					return err
				}
				scriptInfos[t] = info
			}
		}
		return nil
	}

	if err := walk(root); err != nil {
		return nil, nil, err
	}
	return scriptInfos, groupInfos, nil
}

func registerArtifacts(m *master.Master, specs map[string]probe.ArtifactSpec, scope, scopeDir string, hasher execshell.Hasher) error {
	for name, spec := range specs {
		path := filepath.Join(scopeDir, spec.Path)

		var art artifact.Artifact
		switch spec.Type {
		case "directory":
			art = artifact.NewDirectory(name, scope, path, spec.Exclude, hasher)
		default:
			art = artifact.NewFile(name, scope, path, hasher)
		}

		if err := m.AddArtifact(art); err != nil {
			return fmt.Errorf("%s: %w", scope, err)
		}
	}
	return nil
}

func buildSteps(m *master.Master, script *unit.Script, info *probe.Info, scopeDir string, hasher execshell.Hasher) error {
	for _, spec := range info.Steps {
		flags := stepFlags(spec.Flags)
		step := unit.NewStep(spec.Name, flags)

		for name, linkStr := range spec.Artifacts {
			link, err := parseLinkType(linkStr)
			if err != nil {
				return fmt.Errorf("%s %s: %w", unit.CanonicalPath(script), spec.Name, err)
			}
			step.AddArtifact(name, link)
		}

		for _, dep := range spec.Dependencies {
			d, err := buildDependency(dep, scopeDir, m, hasher)
			if err != nil {
				return fmt.Errorf("%s %s: %w", unit.CanonicalPath(script), spec.Name, err)
			}
			step.AddDependency(d)
		}

		if err := script.Add(step); err != nil {
			return fmt.Errorf("%s: %w", unit.CanonicalPath(script), err)
		}
	}
	return nil
}

// applyRules augments a step belonging to one of group's direct-child
// Scripts with the extra dependencies declared by a sibling unit's "rules"
// field (spec §6: "these augment the step discovered elsewhere within this
// group").
func applyRules(rootDir string, group *unit.Group, rules map[string]probe.RuleSpec, groupScope string, m *master.Master, hasher execshell.Hasher) error {
	for stepName, rule := range rules {
		step, scopeDir, found := findStepInGroup(rootDir, group, stepName)
		if !found {
			return fmt.Errorf("%s: rule for unknown step %q", groupScope, stepName)
		}
		for _, dep := range rule.Dependencies {
			d, err := buildDependency(dep, scopeDir, m, hasher)
			if err != nil {
				return fmt.Errorf("%s: rule %q: %w", groupScope, stepName, err)
			}
			step.AddDependency(d)
		}
	}
	return nil
}

func findStepInGroup(rootDir string, group *unit.Group, stepName string) (*unit.Step, string, bool) {
	for _, child := range group.Children() {
		script, ok := child.(*unit.Script)
		if !ok {
			continue
		}
		if step, ok := script.FindStep(stepName); ok {
			scopeDir := filepath.Join(rootDir, unit.CanonicalPath(script.Parent()))
			return step, scopeDir, true
		}
	}
	return nil, "", false
}

func stepFlags(names []string) unit.Flags {
	var flags []unit.Flag
	for _, name := range names {
		switch name {
		case "always":
			flags = append(flags, unit.FlagAlways)
		case "sudo":
			flags = append(flags, unit.FlagSudo)
		}
	}
	return unit.NewFlags(flags...)
}

// parseLinkType mirrors artifact.ParseLinkType's accepted strings (already
// validated once by probe.Parse) into the unit package's independent
// LinkType, since unit cannot import artifact without a cycle.
func parseLinkType(s string) (unit.LinkType, error) {
	switch s {
	case "", "simple":
		return unit.LinkSimple, nil
	case "aggregate":
		return unit.LinkAggregate, nil
	case "post":
		return unit.LinkPost, nil
	default:
		return unit.LinkSimple, fmt.Errorf("unknown link type %q", s)
	}
}

func buildDependency(dep probe.DepSpec, scopeDir string, resolver dependency.ArtifactResolver, hasher execshell.Hasher) (dependency.Dependency, error) {
	switch dep.Type {
	case "artifact":
		return dependency.NewArtifactRef(dep.ID, resolver), nil
	case "data":
		return dependency.NewInlineData(dep.ID, []byte(dep.Data), hasher), nil
	case "file":
		return dependency.NewFileOnDisk(dep.ID, filepath.Join(scopeDir, dep.Path), hasher), nil
	default:
		return nil, fmt.Errorf("unknown dependency type %q", dep.Type)
	}
}
