package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/pjsaksa/swd/internal/cache"
	"github.com/pjsaksa/swd/internal/config"
	"github.com/pjsaksa/swd/internal/engine"
	"github.com/pjsaksa/swd/internal/execshell"
	"github.com/pjsaksa/swd/internal/hashcache"
	"github.com/pjsaksa/swd/internal/logging"
)

// run is cobra's RunE body: load configuration, scan and probe the tree,
// restore cache state, perform the requested function, then persist cache
// state on the way out (SPEC_FULL.md §1's "out-of-scope concerns... are
// still real Go packages... built as separate, narrowly-interfaced
// packages the core depends on through small interfaces").
func run(cmd *cobra.Command, flags flagSet, m mode) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	log, err := logging.NewZap()
	if err != nil {
		log = logging.Nop{}
	}

	if flags.chdir != "" {
		if err := os.Chdir(flags.chdir); err != nil {
			return fmt.Errorf("changing directory to %s: %w", flags.chdir, err)
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	fsys := afero.NewOsFs()
	cfg, foundDir, err := config.Load(fsys, cwd)
	if err != nil {
		return err
	}
	if err := os.Chdir(foundDir); err != nil {
		return fmt.Errorf("changing directory to %s: %w", foundDir, err)
	}

	exportEnvironment(cfg, m == modeInteractive)

	store, err := cache.NewStore(fsys, cfg.CacheDir)
	if err != nil {
		return err
	}
	if err := store.Lock(); err != nil {
		return err
	}
	defer func() {
		if err := store.Unlock(); err != nil {
			log.Warnf("releasing cache lock: %v", err)
		}
	}()

	outputter := execshell.NewCommandOutputter(cfg.BashBin)
	hasher := execshell.NewBinHasher(cfg.HashBin, cfg.HashsumSize, hashcache.Sentinel)

	mst, err := loadMaster(ctx, cfg, fsys, outputter, hasher)
	if err != nil {
		return err
	}

	artifactRecords, err := store.LoadArtifacts()
	if err != nil {
		return err
	}
	stepRecords, err := store.LoadSteps()
	if err != nil {
		return err
	}
	if err := applyCachedState(mst, artifactRecords, stepRecords, log); err != nil {
		return err
	}

	defer func() {
		newArtifacts, newSteps := collectCacheState(mst)
		if err := store.SaveArtifacts(newArtifacts); err != nil {
			log.Errorf("saving artifacts cache: %v", err)
		}
		if err := store.SaveSteps(newSteps); err != nil {
			log.Errorf("saving steps cache: %v", err)
		}
	}()

	runner := execshell.NewShellRunner(cfg.BashBin)

	switch m {
	case modeListSteps:
		for _, path := range engine.ListSteps(mst) {
			fmt.Fprintln(cmd.OutOrStdout(), path)
		}
		return nil

	case modeListArtifacts:
		reports, err := engine.ListArtifacts(ctx, mst)
		if err != nil {
			return err
		}
		for _, r := range reports {
			fmt.Fprintln(cmd.OutOrStdout(), renderArtifactStatus(r))
		}
		return nil

	case modeUndo:
		return engine.Undo(mst, flags.undo)

	case modeForce:
		return engine.Force(ctx, mst, runner, flags.force)

	case modeRehash:
		return engine.Rehash(ctx, mst, flags.rehash)

	default:
		opts := engine.Options{StepLimit: -1}
		switch m {
		case modeStep:
			opts.StepLimit = flags.step
		case modeNext:
			opts.ShowNext = true
		case modeInteractive:
			opts.Interactive = true
		}

		exec := engine.New(mst, runner, log, cmd.InOrStdin(), cmd.OutOrStdout(), opts)
		return exec.Run(ctx)
	}
}

// exportEnvironment sets the environment spec.md §6 documents: augmented
// PATH, SWD_ROOT, SWD_INTERACTIVE when interactive, and every env
// directive — inherited by every child process this invocation spawns
// (probes, steps, and rehash/force's own runs).
func exportEnvironment(cfg *config.Config, interactive bool) {
	if len(cfg.AddPaths) > 0 {
		path := os.Getenv("PATH")
		augmented := strings.Join(cfg.AddPaths, string(os.PathListSeparator))
		if path != "" {
			augmented = augmented + string(os.PathListSeparator) + path
		}
		os.Setenv("PATH", augmented)
	}

	os.Setenv("SWD_ROOT", cfg.Root)

	if interactive {
		os.Setenv("SWD_INTERACTIVE", "yes")
	}

	for k, v := range cfg.Env {
		os.Setenv(k, v)
	}
}

var (
	styleUpToDateText = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	styleDirtyText    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	styleMissingText  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0"))
)

func renderArtifactStatus(r engine.ArtifactReport) string {
	switch r.Status {
	case engine.StatusUpToDate:
		return fmt.Sprintf("%s %s", styleUpToDateText.Render("Up to date"), r.Name)
	case engine.StatusDirty:
		return fmt.Sprintf("%s %s", styleDirtyText.Render("Dirty"), r.Name)
	default:
		return fmt.Sprintf("%s %s", styleMissingText.Render("Does not exist"), r.Name)
	}
}
