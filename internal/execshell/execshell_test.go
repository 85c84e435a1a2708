package execshell

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestBinHasherEmptyInputIsSentinel(t *testing.T) {
	h := NewBinHasher("/usr/bin/sha256sum", 64, "<does-not-exist>")

	got, err := h.HashBytes(context.Background(), nil)
	if err != nil {
		t.Fatalf("HashBytes(nil): %v", err)
	}
	if got != "<does-not-exist>" {
		t.Errorf("HashBytes(nil) = %q, want sentinel", got)
	}

	got, err = h.HashReader(context.Background(), strings.NewReader(""))
	if err != nil {
		t.Fatalf("HashReader(empty): %v", err)
	}
	if got != "<does-not-exist>" {
		t.Errorf("HashReader(empty) = %q, want sentinel", got)
	}
}

func TestShellRunnerStreamsOutput(t *testing.T) {
	var out bytes.Buffer
	r := &ShellRunner{BashBin: "/bin/bash", Stdout: &out, Stderr: &out}

	if err := r.Run(context.Background(), "echo hi", false); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "hi" {
		t.Errorf("Run output = %q, want %q", got, "hi")
	}
}
