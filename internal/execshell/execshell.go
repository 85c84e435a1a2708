// Package execshell wraps the two kinds of child-process plumbing the core
// engine needs but does not itself implement (SPEC_FULL.md §4.6): running a
// step's command through the configured shell, and streaming bytes through
// the configured hash binary. Both are real os/exec invocations; no
// ecosystem process-supervision library in the retrieval pack fits a
// one-shot synchronous child-wait, so this stays on the standard library
// (see DESIGN.md).
package execshell

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// ErrBadDigest is wrapped into a fatal error when the configured hash binary
// produces output that doesn't match the configured digest length.
var ErrBadDigest = errors.New("configured hash binary produces invalid hashes")

// Runner executes a step's command line through a shell, optionally
// escalated with sudo. It mirrors original_source/src/utils/exec.cc's
// pipe/fork/exec model via exec.CommandContext.
type Runner interface {
	Run(ctx context.Context, command string, sudo bool) error
}

// Outputter runs a shell command and captures its stdout, used by
// internal/probe to read a unit's `swd_info` JSON — unlike Runner, whose
// Stdout streams straight through to the parent process, a probe's output
// must be captured so it can be decoded (SPEC_FULL.md §6).
type Outputter interface {
	Output(ctx context.Context, command string) ([]byte, error)
}

// CommandOutputter is the default Outputter, invoking BashBin with
// "-c <command>" and returning its captured stdout.
type CommandOutputter struct {
	BashBin string
}

// NewCommandOutputter returns a CommandOutputter using the given shell.
func NewCommandOutputter(bashBin string) *CommandOutputter {
	return &CommandOutputter{BashBin: bashBin}
}

func (o *CommandOutputter) Output(ctx context.Context, command string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, o.BashBin, "-c", command)
	return cmd.Output()
}

// Hasher computes content hashes by feeding bytes through a configured hash
// binary, mirroring original_source/src/hash-tools.cc's calculate_hash.
type Hasher interface {
	// HashBytes returns the sentinel if data is empty, else the digest of data.
	HashBytes(ctx context.Context, data []byte) (string, error)
	// HashReader returns the sentinel if r is immediately at EOF, else the
	// digest of everything r produces.
	HashReader(ctx context.Context, r io.Reader) (string, error)
}

// ShellRunner is the default Runner, invoking BashBin with "-c <command>",
// prefixing a sudo invocation when sudo is requested (SPEC_FULL.md §4.6).
type ShellRunner struct {
	BashBin string
	Stdout  io.Writer
	Stderr  io.Writer
}

// NewShellRunner returns a ShellRunner that streams to the process's own
// stdout/stderr, matching original_source/src/utils/exec.cc's behavior of
// piping a child's output straight to the parent.
func NewShellRunner(bashBin string) *ShellRunner {
	return &ShellRunner{BashBin: bashBin, Stdout: os.Stdout, Stderr: os.Stderr}
}

func (r *ShellRunner) Run(ctx context.Context, command string, sudo bool) error {
	full := command
	if sudo {
		full = "sudo --non-interactive --preserve-env " + command
	}

	cmd := exec.CommandContext(ctx, r.BashBin, "-c", full)
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	return cmd.Run()
}

// BinHasher is the default Hasher, invoking a configured hash-binary such as
// sha256sum and validating the length of the first whitespace-delimited
// token of its stdout.
type BinHasher struct {
	HashBin      string
	HashsumSize  int
	sentinelFunc func() string
}

// NewBinHasher returns a BinHasher that reports the hashcache.Sentinel value
// for empty input, matching SPEC_FULL.md §4.2's "empty input maps to the
// sentinel" rule without importing the hashcache package: callers pass the
// sentinel string explicitly.
func NewBinHasher(hashBin string, hashsumSize int, sentinel string) *BinHasher {
	return &BinHasher{HashBin: hashBin, HashsumSize: hashsumSize, sentinelFunc: func() string { return sentinel }}
}

func (h *BinHasher) HashBytes(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return h.sentinelFunc(), nil
	}
	return h.calculate(ctx, bytes.NewReader(data))
}

func (h *BinHasher) HashReader(ctx context.Context, r io.Reader) (string, error) {
	br := bufio.NewReader(r)

	if _, err := br.Peek(1); err != nil {
		if errors.Is(err, io.EOF) {
			return h.sentinelFunc(), nil
		}
		return "", err
	}

	return h.calculate(ctx, br)
}

func (h *BinHasher) calculate(ctx context.Context, input io.Reader) (string, error) {
	cmd := exec.CommandContext(ctx, h.HashBin)

	cmd.Stdin = input

	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("running hash binary %q: %w", h.HashBin, err)
	}

	fields := bytes.Fields(out)
	if len(fields) == 0 || len(fields[0]) != h.HashsumSize {
		return "", fmt.Errorf("%w: %s", ErrBadDigest, h.HashBin)
	}

	return string(fields[0][:h.HashsumSize]), nil
}
