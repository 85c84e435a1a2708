package probe

import (
	"context"
	"strings"
	"testing"
)

type fakeOutputter struct {
	out []byte
	err error
}

func (f fakeOutputter) Output(ctx context.Context, command string) ([]byte, error) {
	return f.out, f.err
}

func TestParseValidInfo(t *testing.T) {
	src := `{
		"artifacts": {"bin/app": {"type": "file", "path": "bin/app"}},
		"steps": [
			{"name": "compile", "artifacts": {"bin/app": "simple"}, "dependencies": [
				{"type": "file", "id": "main.go", "path": "main.go"}
			]}
		]
	}`

	info, err := Parse(strings.NewReader(src), "10-a.swd")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(info.Steps) != 1 || info.Steps[0].Name != "compile" {
		t.Fatalf("info = %+v", info)
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	src := `{"bogus": 1}`
	if _, err := Parse(strings.NewReader(src), "10-a.swd"); err == nil {
		t.Fatal("expected an error for an unknown top-level field")
	}
}

func TestParseRejectsBadArtifactType(t *testing.T) {
	src := `{"artifacts": {"x": {"type": "socket", "path": "x"}}}`
	_, err := Parse(strings.NewReader(src), "10-a.swd")
	if err == nil {
		t.Fatal("expected a schema error for an invalid artifact type")
	}
	se, ok := err.(*SchemaError)
	if !ok {
		t.Fatalf("expected *SchemaError, got %T", err)
	}
	if se.Unit != "10-a.swd" {
		t.Fatalf("Unit = %q, want %q", se.Unit, "10-a.swd")
	}
}

func TestParseRejectsMissingStepName(t *testing.T) {
	src := `{"steps": [{"name": ""}]}`
	if _, err := Parse(strings.NewReader(src), "10-a.swd"); err == nil {
		t.Fatal("expected an error for a missing step name")
	}
}

func TestParseRejectsBadDependencyType(t *testing.T) {
	src := `{"steps": [{"name": "s", "dependencies": [{"type": "network", "id": "x"}]}]}`
	if _, err := Parse(strings.NewReader(src), "10-a.swd"); err == nil {
		t.Fatal("expected an error for an unknown dependency type")
	}
}

func TestParseRejectsFileDependencyWithoutPath(t *testing.T) {
	src := `{"steps": [{"name": "s", "dependencies": [{"type": "file", "id": "x"}]}]}`
	if _, err := Parse(strings.NewReader(src), "10-a.swd"); err == nil {
		t.Fatal("expected an error for a file dependency missing its path")
	}
}

func TestProbeWrapsExecFailure(t *testing.T) {
	out := fakeOutputter{err: errExecFailure}
	_, err := Probe(context.Background(), out, "./10-a.swd", "10-a.swd")
	if err == nil {
		t.Fatal("expected Probe to surface the exec failure")
	}
	if _, ok := err.(*ExecError); !ok {
		t.Fatalf("expected *ExecError, got %T", err)
	}
}

var errExecFailure = &fakeExecError{}

type fakeExecError struct{}

func (*fakeExecError) Error() string { return "exit status 1" }
