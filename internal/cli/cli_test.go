package cli

import "testing"

func TestResolveModeDefaultIsExecute(t *testing.T) {
	m, err := resolveMode(flagSet{})
	if err != nil {
		t.Fatalf("resolveMode: %v", err)
	}
	if m != modeExecute {
		t.Fatalf("mode = %v, want modeExecute", m)
	}
}

func TestResolveModeSingleFlag(t *testing.T) {
	cases := []struct {
		name  string
		flags flagSet
		want  mode
	}{
		{"list-steps", flagSet{listSteps: true}, modeListSteps},
		{"list-artifacts", flagSet{listArtifacts: true}, modeListArtifacts},
		{"next", flagSet{next: true}, modeNext},
		{"undo", flagSet{undo: "10-a compile"}, modeUndo},
		{"force", flagSet{force: "10-a compile"}, modeForce},
		{"step", flagSet{step: 3}, modeStep},
		{"interactive", flagSet{interactive: true}, modeInteractive},
		{"rehash", flagSet{rehash: "bin/app"}, modeRehash},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			m, err := resolveMode(c.flags)
			if err != nil {
				t.Fatalf("resolveMode: %v", err)
			}
			if m != c.want {
				t.Fatalf("mode = %v, want %v", m, c.want)
			}
		})
	}
}

func TestResolveModeRejectsMultipleFlags(t *testing.T) {
	_, err := resolveMode(flagSet{listSteps: true, next: true})
	if err == nil {
		t.Fatal("expected an error when two function flags are set")
	}
}

func TestResolveModeRejectsNegativeStep(t *testing.T) {
	_, err := resolveMode(flagSet{step: -1})
	if err == nil {
		t.Fatal("expected an error for a negative --step value")
	}
}
