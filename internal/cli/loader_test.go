package cli

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/pjsaksa/swd/internal/config"
	"github.com/pjsaksa/swd/internal/unit"
)

type fakeOutputter struct {
	byCommand map[string]string
}

func (f fakeOutputter) Output(ctx context.Context, command string) ([]byte, error) {
	out, ok := f.byCommand[command]
	if !ok {
		return nil, fmt.Errorf("unexpected command: %s", command)
	}
	return []byte(out), nil
}

type fakeHasher struct{}

func (fakeHasher) HashBytes(ctx context.Context, data []byte) (string, error) { return "h-bytes", nil }
func (fakeHasher) HashReader(ctx context.Context, r io.Reader) (string, error) {
	return "h-reader", nil
}

func writeExecutable(t *testing.T, fsys afero.Fs, path string) {
	t.Helper()
	if err := afero.WriteFile(fsys, path, []byte("#!/bin/bash\n"), 0o755); err != nil {
		t.Fatal(err)
	}
}

func TestLoadMasterWiresArtifactsStepsAndDependencies(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeExecutable(t, fsys, "/proj/scripts/10-build.swd")
	writeExecutable(t, fsys, "/proj/scripts/20-test.swd")
	if err := afero.WriteFile(fsys, "/proj/scripts/main.go", []byte("package main"), 0o644); err != nil {
		t.Fatal(err)
	}

	out := fakeOutputter{byCommand: map[string]string{
		"/proj/scripts/10-build.swd swd_info": `{
			"artifacts": {"bin/app": {"type": "file", "path": "bin/app"}},
			"steps": [
				{"name": "compile", "artifacts": {"bin/app": "simple"}, "dependencies": [
					{"type": "file", "id": "main.go", "path": "main.go"}
				]}
			]
		}`,
		"/proj/scripts/20-test.swd swd_info": `{
			"steps": [
				{"name": "run", "dependencies": [
					{"type": "artifact", "id": "bin/app"}
				]}
			]
		}`,
	}}

	cfg := &config.Config{Root: "/proj/scripts"}

	m, err := loadMaster(context.Background(), cfg, fsys, out, fakeHasher{})
	require.NoError(t, err)

	_, ok := m.Artifact("bin/app")
	require.True(t, ok, "expected artifact bin/app to be registered")

	u, err := unit.FindUnit(m.Root(), "10-build compile")
	require.NoError(t, err)
	step, ok := u.(*unit.Step)
	require.True(t, ok, "expected *unit.Step, got %T", u)
	require.Len(t, step.Artifacts(), 1)
	require.Equal(t, "bin/app", step.Artifacts()[0].Name)
	require.Len(t, step.Dependencies(), 1)
	require.Equal(t, "main.go", step.Dependencies()[0].ID())

	u2, err := unit.FindUnit(m.Root(), "20-test run")
	require.NoError(t, err)
	runStep := u2.(*unit.Step)
	require.Len(t, runStep.Dependencies(), 1)
	require.Equal(t, "bin/app", runStep.Dependencies()[0].ID())
}

func TestLoadMasterRejectsDuplicateArtifactNames(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeExecutable(t, fsys, "/proj/scripts/10-a.swd")
	writeExecutable(t, fsys, "/proj/scripts/20-b.swd")

	out := fakeOutputter{byCommand: map[string]string{
		"/proj/scripts/10-a.swd swd_info": `{"artifacts": {"bin/app": {"type": "file", "path": "bin/app"}}}`,
		"/proj/scripts/20-b.swd swd_info": `{"artifacts": {"bin/app": {"type": "file", "path": "bin/app"}}}`,
	}}

	cfg := &config.Config{Root: "/proj/scripts"}

	if _, err := loadMaster(context.Background(), cfg, fsys, out, fakeHasher{}); err == nil {
		t.Fatal("expected an error for a duplicate artifact name")
	}
}

func TestLoadMasterAppliesGroupRules(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeExecutable(t, fsys, "/proj/scripts/10-sub/5-build.swd")
	writeExecutable(t, fsys, "/proj/scripts/10-sub/group.swd")
	_ = fsys.MkdirAll("/proj/scripts/10-sub", 0o755)

	out := fakeOutputter{byCommand: map[string]string{
		"/proj/scripts/10-sub/5-build.swd swd_info": `{"steps": [{"name": "compile"}]}`,
		"/proj/scripts/10-sub/group.swd swd_info": `{
			"rules": {"compile": {"dependencies": [{"type": "data", "id": "extra", "data": "x"}]}}
		}`,
	}}

	cfg := &config.Config{Root: "/proj/scripts"}

	m, err := loadMaster(context.Background(), cfg, fsys, out, fakeHasher{})
	if err != nil {
		t.Fatalf("loadMaster: %v", err)
	}

	u, err := unit.FindUnit(m.Root(), "10-sub/5-build compile")
	if err != nil {
		t.Fatalf("FindUnit: %v", err)
	}
	step := u.(*unit.Step)
	if len(step.Dependencies()) != 1 || step.Dependencies()[0].ID() != "extra" {
		t.Fatalf("Dependencies = %v", step.Dependencies())
	}
}
