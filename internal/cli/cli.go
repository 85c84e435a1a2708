package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// flagSet holds every flag NewRootCommand registers, read back inside RunE.
type flagSet struct {
	chdir         string
	listSteps     bool
	listArtifacts bool
	next          bool
	undo          string
	force         string
	step          int
	interactive   bool
	rehash        string
}

// NewRootCommand builds swd's single cobra.Command (SPEC_FULL.md §6): one
// root command, no subcommands, with the mutually-exclusive function flags
// spec.md §6's CLI surface table names. cobra has no native "at most one of
// these flags" constraint, so RunE enforces it with a manual count, the way
// original_source/src/main.cc's parseArguments rejects more than one
// function argument.
func NewRootCommand() *cobra.Command {
	var flags flagSet

	cmd := &cobra.Command{
		Use:           "swd",
		Short:         "Incremental build/ops orchestrator",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := resolveMode(flags)
			if err != nil {
				return err
			}
			return run(cmd, flags, mode)
		},
	}

	cmd.Flags().StringVarP(&flags.chdir, "directory", "C", "", "change to this directory before config discovery")
	cmd.Flags().BoolVar(&flags.listSteps, "list-steps", false, "print every step's canonical path")
	cmd.Flags().BoolVar(&flags.listArtifacts, "list-artifacts", false, "print every artifact's status")
	cmd.Flags().BoolVarP(&flags.next, "next", "n", false, "print the next out-of-date step without running it")
	cmd.Flags().StringVarP(&flags.undo, "undo", "u", "", "clear completion for the unit at this path")
	cmd.Flags().StringVarP(&flags.force, "force", "f", "", "execute a single step unconditionally")
	cmd.Flags().IntVarP(&flags.step, "step", "s", 0, "execute at most n steps (n > 0)")
	cmd.Flags().BoolVarP(&flags.interactive, "interactive", "i", false, "prompt before running each out-of-date step")
	cmd.Flags().StringVarP(&flags.rehash, "rehash", "r", "", "recompute and store an artifact's hash unconditionally")

	return cmd
}

// mode identifies which of spec.md §6's mutually exclusive functions this
// invocation requested.
type mode int

const (
	modeExecute mode = iota
	modeListSteps
	modeListArtifacts
	modeNext
	modeUndo
	modeForce
	modeStep
	modeInteractive
	modeRehash
)

func resolveMode(f flagSet) (mode, error) {
	set := 0
	m := modeExecute

	mark := func(active bool, candidate mode) {
		if active {
			set++
			m = candidate
		}
	}

	mark(f.listSteps, modeListSteps)
	mark(f.listArtifacts, modeListArtifacts)
	mark(f.next, modeNext)
	mark(f.undo != "", modeUndo)
	mark(f.force != "", modeForce)
	mark(f.step > 0, modeStep)
	mark(f.interactive, modeInteractive)
	mark(f.rehash != "", modeRehash)

	if set > 1 {
		return 0, fmt.Errorf("at most one of --list-steps, --list-artifacts, --next, --undo, --force, --step, --interactive, --rehash may be given")
	}
	if f.step < 0 {
		return 0, fmt.Errorf("--step requires n > 0")
	}

	return m, nil
}
