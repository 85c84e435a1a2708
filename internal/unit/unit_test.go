package unit

import "testing"

func buildTree(t *testing.T) *Group {
	t.Helper()

	root := NewRoot("")
	sub := NewGroup("sub", root)
	if err := root.Add(sub); err != nil {
		t.Fatal(err)
	}

	script := NewScript("10-a", root)
	if err := root.Add(script); err != nil {
		t.Fatal(err)
	}

	s1 := NewStep("s1", 0)
	s2 := NewStep("s2", 0)
	if err := script.Add(s1); err != nil {
		t.Fatal(err)
	}
	if err := script.Add(s2); err != nil {
		t.Fatal(err)
	}

	subScript := NewScript("20-b", sub)
	if err := sub.Add(subScript); err != nil {
		t.Fatal(err)
	}
	t1 := NewStep("t1", 0)
	if err := subScript.Add(t1); err != nil {
		t.Fatal(err)
	}

	return root
}

func TestCanonicalPath(t *testing.T) {
	root := buildTree(t)

	script, _ := root.FindChild("10-a")
	if got := CanonicalPath(script); got != "10-a" {
		t.Errorf("CanonicalPath(script) = %q, want %q", got, "10-a")
	}

	sub, _ := root.FindChild("sub")
	subGroup := sub.(*Group)
	subScript, _ := subGroup.FindChild("20-b")
	if got := CanonicalPath(subScript); got != "sub/20-b" {
		t.Errorf("CanonicalPath(subScript) = %q, want %q", got, "sub/20-b")
	}

	step, _ := subScript.(*Script).FindStep("t1")
	if got := CanonicalPath(step); got != "sub/20-b t1" {
		t.Errorf("CanonicalPath(step) = %q, want %q", got, "sub/20-b t1")
	}
}

func TestExecPath(t *testing.T) {
	root := buildTree(t)

	script, _ := root.FindChild("10-a")
	if got := ExecPath(script); got != "10-a.swd" {
		t.Errorf("ExecPath(script) = %q, want %q", got, "10-a.swd")
	}

	s, _ := script.(*Script).FindStep("s1")
	if got := ExecPath(s); got != "10-a.swd s1" {
		t.Errorf("ExecPath(step) = %q, want %q", got, "10-a.swd s1")
	}
}

func TestFindUnit(t *testing.T) {
	root := buildTree(t)

	u, err := FindUnit(root, "10-a s1")
	if err != nil {
		t.Fatalf("FindUnit: %v", err)
	}
	if u.(*Step).Name() != "s1" {
		t.Errorf("found step %q, want s1", u.(*Step).Name())
	}

	u, err = FindUnit(root, "sub/20-b t1")
	if err != nil {
		t.Fatalf("FindUnit: %v", err)
	}
	if u.(*Step).Name() != "t1" {
		t.Errorf("found step %q, want t1", u.(*Step).Name())
	}

	u, err = FindUnit(root, "sub/20-b")
	if err != nil {
		t.Fatalf("FindUnit: %v", err)
	}
	if u.(*Script).Name() != "20-b" {
		t.Errorf("found script %q, want 20-b", u.(*Script).Name())
	}
}

func TestFindUnitSpaceBeforeSlashIsInvalid(t *testing.T) {
	root := buildTree(t)

	if _, err := FindUnit(root, "sub s1/20-b"); err == nil {
		t.Fatal("expected an error for a space appearing before a slash")
	}
}

func TestFindUnitUnknown(t *testing.T) {
	root := buildTree(t)

	if _, err := FindUnit(root, "nope"); err == nil {
		t.Fatal("expected an error for an unknown unit")
	}
}

func TestForEachVisitsPreOrder(t *testing.T) {
	root := buildTree(t)

	var visited []string
	traveler := ForEach(Visitor{
		OnGroup:  func(g *Group) error { visited = append(visited, "G:"+g.Name()); return nil },
		OnScript: func(s *Script) error { visited = append(visited, "S:"+s.Name()); return nil },
		OnStep:   func(s *Step) error { visited = append(visited, "T:"+s.Name()); return nil },
	})

	if err := traveler.Travel(root); err != nil {
		t.Fatal(err)
	}

	want := []string{"G:", "S:10-a", "T:s1", "T:s2", "G:sub", "S:20-b", "T:t1"}
	if len(visited) != len(want) {
		t.Fatalf("visited = %v, want %v", visited, want)
	}
	for i := range want {
		if visited[i] != want[i] {
			t.Fatalf("visited = %v, want %v", visited, want)
		}
	}
}

func TestScriptCompletionInvariant(t *testing.T) {
	script := NewScript("s", NewRoot(""))
	s1 := NewStep("s1", 0)
	s2 := NewStep("s2", 0)
	s3 := NewStep("s3", 0)
	for _, s := range []*Step{s1, s2, s3} {
		if err := script.Add(s); err != nil {
			t.Fatal(err)
		}
	}

	if err := script.CompleteStep("s2"); err == nil {
		t.Fatal("expected out-of-order error completing s2 before s1")
	}

	if err := script.CompleteStep("s1"); err != nil {
		t.Fatal(err)
	}
	if err := script.CompleteStep("s2"); err != nil {
		t.Fatal(err)
	}
	if !script.IsCompleted("s2") {
		t.Fatal("s2 should be completed")
	}

	// Re-completing s1 must clear s2's completion (everything after it).
	if err := script.CompleteStep("s1"); err != nil {
		t.Fatal(err)
	}
	if script.IsCompleted("s2") {
		t.Fatal("s2 completion should have been cleared by re-completing s1")
	}
}

func TestScriptUndoClearsFollowingSteps(t *testing.T) {
	script := NewScript("s", NewRoot(""))
	s1 := NewStep("s1", 0)
	s2 := NewStep("s2", 0)
	for _, s := range []*Step{s1, s2} {
		if err := script.Add(s); err != nil {
			t.Fatal(err)
		}
	}

	if err := script.CompleteStep("s1"); err != nil {
		t.Fatal(err)
	}
	if err := script.CompleteStep("s2"); err != nil {
		t.Fatal(err)
	}

	if err := script.UndoStep("s1"); err != nil {
		t.Fatal(err)
	}
	if script.IsCompleted("s1") || script.IsCompleted("s2") {
		t.Fatal("undo should clear the step and everything after it")
	}
}
