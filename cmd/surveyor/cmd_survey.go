package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/odvcencio/surveyor/pkg/repo"
	"github.com/odvcencio/surveyor/pkg/survey"
)

const progressInterval = 1024

func newSurveyCmd() *cobra.Command {
	var (
		jsonOut  bool
		nameRev  bool
		progress bool
		verbose  bool

		allRefs  bool
		branches bool
		tags     bool
		remotes  bool
		detached bool
		other    bool

		kCommitParents int
		kCommitSizes   int
		kTreeEntries   int
		kTreeSizes     int
		kBlobSizes     int
	)

	cmd := &cobra.Command{
		Use:   "survey",
		Short: "Collect size and shape statistics for the repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			cfg, err := survey.LoadConfig(r.GotDir)
			if err != nil {
				return err
			}

			// A flag set on the command line wins over the config file,
			// which wins over the built-in default.
			pickBool := func(name string, flagVal bool, cfgVal *bool, fallback bool) bool {
				if cmd.Flags().Changed(name) {
					return flagVal
				}
				if cfgVal != nil {
					return *cfgVal
				}
				return fallback
			}

			opts := survey.DefaultOptions()
			opts.NameRev = nameRev
			opts.KCommitParents = kCommitParents
			opts.KCommitSizes = kCommitSizes
			opts.KTreeEntries = kTreeEntries
			opts.KTreeSizes = kTreeSizes
			opts.KBlobSizes = kBlobSizes
			cfg.ApplyDefaults(&opts, cmd.Flags().Changed)

			opts.RefClasses = survey.ResolveRefClasses(
				pickBool("all-refs", allRefs, cfg.Survey.AllRefs, false),
				pickBool("branches", branches, cfg.Survey.Branches, false),
				pickBool("tags", tags, cfg.Survey.Tags, false),
				pickBool("remotes", remotes, cfg.Survey.Remotes, false),
				pickBool("detached", detached, cfg.Survey.Detached, false),
				pickBool("other", other, cfg.Survey.Other, false),
			)

			jsonOut := pickBool("json", jsonOut, cfg.Survey.JSON, false)
			verbose := pickBool("verbose", verbose, cfg.Survey.Verbose, false)
			stderrIsTTY := isatty.IsTerminal(os.Stderr.Fd())
			showProgress := pickBool("progress", progress, cfg.Survey.Progress, stderrIsTTY)

			var logger *slog.Logger
			if verbose {
				logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil))
				logger.Info("survey starting",
					"root", r.RootDir,
					"classes", fmt.Sprintf("%+v", opts.RefClasses),
					"name_rev", opts.NameRev,
				)
			}

			if showProgress {
				stderr := cmd.ErrOrStderr()
				opts.Progress = func(phase string, n int) {
					if n%progressInterval == 0 {
						fmt.Fprintf(stderr, "\r%s: %d ", phase, n)
					}
				}
			}

			stats, err := survey.Run(r, opts)
			if showProgress {
				fmt.Fprint(cmd.ErrOrStderr(), "\r")
			}
			if err != nil {
				return err
			}

			if logger != nil {
				logger.Info("survey finished",
					"refs", stats.Refs.Total,
					"commits", stats.Commits.Base.Seen,
					"trees", stats.Trees.Base.Seen,
					"blobs", stats.Blobs.Base.Seen,
				)
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return survey.WriteJSON(out, stats)
			}
			return survey.WriteText(out, stats)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&jsonOut, "json", false, "emit the report as JSON")
	flags.BoolVar(&nameRev, "name-rev", false, "label large items with ref-relative commit names")
	flags.BoolVar(&progress, "progress", false, "report progress to stderr (default: stderr is a TTY)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "log survey phases to stderr")

	flags.BoolVar(&allRefs, "all-refs", false, "survey every ref, known kind or not")
	flags.BoolVar(&branches, "branches", false, "survey branches")
	flags.BoolVar(&tags, "tags", false, "survey tags")
	flags.BoolVar(&remotes, "remotes", false, "survey remote-tracking refs")
	flags.BoolVar(&detached, "detached", false, "survey detached HEAD")
	flags.BoolVar(&other, "other", false, "survey refs outside the standard namespaces")

	flags.IntVar(&kCommitParents, "commit-parents", survey.DefaultTopK, "top commits by parent count (0 disables)")
	flags.IntVar(&kCommitSizes, "commit-sizes", survey.DefaultTopK, "top commits by size (0 disables)")
	flags.IntVar(&kTreeEntries, "tree-entries", survey.DefaultTopK, "top trees by entry count (0 disables)")
	flags.IntVar(&kTreeSizes, "tree-sizes", survey.DefaultTopK, "top trees by size (0 disables)")
	flags.IntVar(&kBlobSizes, "blob-sizes", survey.DefaultTopK, "top blobs by size (0 disables)")

	return cmd
}
