package discovery

import (
	"testing"

	"github.com/spf13/afero"

	"github.com/pjsaksa/swd/internal/unit"
)

func writeExecutable(t *testing.T, fsys afero.Fs, path string) {
	t.Helper()
	if err := afero.WriteFile(fsys, path, []byte("#!/bin/bash\n"), 0o755); err != nil {
		t.Fatal(err)
	}
}

func TestScanBuildsScriptsAndGroups(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeExecutable(t, fsys, "/root/10-a.swd")
	writeExecutable(t, fsys, "/root/20-b.swd")
	writeExecutable(t, fsys, "/root/10-sub/5-c.swd")
	_ = fsys.MkdirAll("/root/10-sub", 0o755)

	g, err := Scan(fsys, "/root")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if _, ok := g.FindChild("10-a"); !ok {
		t.Error("expected script 10-a")
	}
	if _, ok := g.FindChild("20-b"); !ok {
		t.Error("expected script 20-b")
	}
	sub, ok := g.FindChild("10-sub")
	if !ok {
		t.Fatal("expected group 10-sub")
	}
	subGroup, ok := sub.(*unit.Group)
	if !ok {
		t.Fatalf("10-sub is a %T, not a *unit.Group", sub)
	}
	if _, ok := subGroup.FindChild("5-c"); !ok {
		t.Error("expected script 5-c under 10-sub")
	}
}

func TestScanSkipsDotfilesAndNonMatching(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeExecutable(t, fsys, "/root/.hidden.swd")
	writeExecutable(t, fsys, "/root/notascript.txt")
	writeExecutable(t, fsys, "/root/10-ok.swd")

	g, err := Scan(fsys, "/root")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(g.Children()) != 1 {
		t.Fatalf("children = %v, want exactly one match", g.Children())
	}
	if _, ok := g.FindChild("10-ok"); !ok {
		t.Error("expected script 10-ok")
	}
}

func TestScanSkipsNonExecutableScripts(t *testing.T) {
	fsys := afero.NewMemMapFs()
	_ = afero.WriteFile(fsys, "/root/10-a.swd", []byte("#!/bin/bash\n"), 0o644)

	g, err := Scan(fsys, "/root")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(g.Children()) != 0 {
		t.Fatalf("children = %v, want none (not owner-executable)", g.Children())
	}
}
