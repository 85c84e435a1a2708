package engine

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pjsaksa/swd/internal/execshell"
	"github.com/pjsaksa/swd/internal/logging"
	"github.com/pjsaksa/swd/internal/master"
	"github.com/pjsaksa/swd/internal/unit"
)

// Options configures one Executor.Run invocation. The three fields are
// mutually exclusive; the CLI layer is responsible for rejecting a request
// that sets more than one (spec §4.6's "modes are mutually exclusive"),
// since cobra has no native way to express that constraint on its flags.
type Options struct {
	// StepLimit bounds how many steps may complete; -1 means unbounded.
	StepLimit int
	// ShowNext prints the first out-of-date step's path instead of running it.
	ShowNext bool
	// Interactive prompts before running each out-of-date step.
	Interactive bool
}

// Executor is the scoped pre-order executor (spec §4.6): a Visitor-shaped
// traversal carrying mutable run state, parameterized over the whole tree
// via *master.Master so it can resolve artifact links during a single
// step's staleness check.
type Executor struct {
	master *master.Master
	runner execshell.Runner
	log    logging.Logger
	stdin  *bufio.Reader
	stdout io.Writer

	iterationLimit int
	showNext       bool
	interactive    bool
}

// New builds an Executor. stdout receives --next's printed step path and
// the interactive prompt; stdin supplies the interactive confirmation line.
func New(m *master.Master, runner execshell.Runner, log logging.Logger, stdin io.Reader, stdout io.Writer, opts Options) *Executor {
	limit := opts.StepLimit
	if limit == 0 {
		limit = -1
	}

	return &Executor{
		master:         m,
		runner:         runner,
		log:            log,
		stdin:          bufio.NewReader(stdin),
		stdout:         stdout,
		iterationLimit: limit,
		showNext:       opts.ShowNext,
		interactive:    opts.Interactive,
	}
}

// Run executes the whole tree to completion (or to the configured limit),
// starting at the root scope.
func (e *Executor) Run(ctx context.Context) error {
	return e.runGroup(ctx, e.master.Root())
}

// runGroup wraps the recursion into a Group's children in the
// InvalidateScope-catching restart loop (spec §4.6).
func (e *Executor) runGroup(ctx context.Context, g *unit.Group) error {
	path := unit.CanonicalPath(g)

	for {
		err := e.runGroupChildrenOnce(ctx, g)
		if err == nil {
			return nil
		}

		var inv *InvalidateScope
		if errors.As(err, &inv) && inv.Scope == path {
			continue
		}
		return err
	}
}

func (e *Executor) runGroupChildrenOnce(ctx context.Context, g *unit.Group) error {
	for _, child := range g.Children() {
		var err error
		switch t := child.(type) {
		case *unit.Group:
			err = e.runGroup(ctx, t)
		case *unit.Script:
			err = e.runScript(ctx, t)
		default:
			err = fmt.Errorf("unsupported unit %T under group %q", child, g.Name())
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// runScript wraps the recursion into a Script's steps in the same
// InvalidateScope-catching restart loop.
func (e *Executor) runScript(ctx context.Context, s *unit.Script) error {
	path := unit.CanonicalPath(s)

	for {
		err := e.runScriptStepsOnce(ctx, s)
		if err == nil {
			return nil
		}

		var inv *InvalidateScope
		if errors.As(err, &inv) && inv.Scope == path {
			continue
		}
		return err
	}
}

func (e *Executor) runScriptStepsOnce(ctx context.Context, s *unit.Script) error {
	for _, step := range s.Steps() {
		if err := e.runStep(ctx, step); err != nil {
			return err
		}
	}
	return nil
}

// runStep is the Step worker algorithm (spec §4.6).
func (e *Executor) runStep(ctx context.Context, step *unit.Step) error {
	if e.iterationLimit == 0 {
		return nil
	}

	upToDate, err := everythingUpToDate(ctx, e.master, step)
	if err != nil {
		return err
	}
	if upToDate {
		return nil
	}

	stepPath := unit.CanonicalPath(step)

	if e.showNext {
		fmt.Fprintln(e.stdout, stepPath)
		e.iterationLimit = 0
		return nil
	}

	if e.interactive {
		fmt.Fprintf(e.stdout, "exec '%s' ? [Y]: ", stepPath)
		line, _ := e.stdin.ReadString('\n')
		answer := strings.ToLower(strings.TrimSpace(line))
		if answer != "" && answer != "y" && answer != "yes" {
			e.iterationLimit = 0
			return nil
		}
	}

	if ctx.Err() != nil {
		return fmt.Errorf("step '%s' failed: INTERRUPTED", stepPath)
	}

	sudo := step.Flag(unit.FlagSudo)
	command := unit.ExecPath(step)

	if err := e.runner.Run(ctx, command, sudo); err != nil {
		return fmt.Errorf("step '%s' failed: %w", stepPath, err)
	}
	if ctx.Err() != nil {
		return fmt.Errorf("step '%s' failed: INTERRUPTED", stepPath)
	}

	if err := recalculateHashes(ctx, e.master, step); err != nil {
		return err
	}
	if err := step.Complete(); err != nil {
		return err
	}

	if e.iterationLimit > 0 {
		e.iterationLimit--
	}

	return nil
}
