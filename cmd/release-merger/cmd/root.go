package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/oshokin/release-merger/internal/config"
	"github.com/oshokin/release-merger/internal/logger"
	"github.com/oshokin/release-merger/internal/service/merger"
	"github.com/oshokin/release-merger/internal/version"
)

// NewRootCommand builds the release-merger command tree.
func NewRootCommand() *cobra.Command {
	options := new(merger.Options)

	root := &cobra.Command{
		Use:   "release-merger [--workdir DIR --build-id ID | --output FILE META.json...]",
		Short: "Merge per-architecture build metadata into one release manifest.",
		Long: `Merges the meta.json documents of every architecture of a build into a single
release.json describing all architectures and their downloadable artifacts.

With --workdir and --build-id the documents are discovered under
<workdir>/builds/<build-id>/<arch>/meta.json and the manifest is written to
<workdir>/builds/<build-id>/release.json. Otherwise pass the documents as
arguments and the manifest path with --output.

An existing manifest is extended. Inputs for a different release or stream, or
media that differ from what the manifest already records, abort the run and
nothing is written.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options.Inputs = args

			return merger.Run(ctx, options)
		},
	}

	flags := root.Flags()
	flags.StringVarP(&options.ConfigPath, "config", "c", "",
		"path to configuration file (default "+config.DefaultConfigFilename+" when present)")
	flags.StringVar(&options.LogLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.StringVarP(&options.Workdir, "workdir", "w", "", "build working directory")
	flags.StringVarP(&options.BuildID, "build-id", "b", "", "build id inside the working directory")
	flags.StringVarP(&options.Output, "output", "o", "", "release manifest path for explicit input files")

	root.MarkFlagsRequiredTogether("workdir", "build-id")
	root.MarkFlagsMutuallyExclusive("workdir", "output")

	root.AddCommand(newInitConfigCommand())
	version.AttachCobraVersionCommand(root)

	return root
}

func newInitConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init-config [path]",
		Short: "Write the default settings, including the platform table, to a YAML file.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultConfigFilename
			if len(args) > 0 {
				path = args[0]
			}

			if err := config.Init(path); err != nil {
				return err
			}

			logger.InfoKV(cmd.Context(), "Settings written", "path", path)

			return nil
		},
	}
}

// Execute runs the release-merger CLI and exits with status 1 on error.
func Execute() {
	ctx := context.Background()
	defer logger.Sync()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		report(ctx, err)
		logger.Sync()
		os.Exit(1)
	}
}

// report logs err with the details and hints attached to it.
func report(ctx context.Context, err error) {
	kvs := []any{"error", err.Error()}

	if details := errors.FlattenDetails(err); details != "" {
		kvs = append(kvs, "details", details)
	}

	if hints := errors.FlattenHints(err); hints != "" {
		kvs = append(kvs, "hint", hints)
	}

	logger.ErrorKV(ctx, "Release merge failed", kvs...)
}
