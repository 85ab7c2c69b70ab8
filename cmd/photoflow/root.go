package main

import (
	"os"

	"github.com/iblazhko/photoflow/cmd/photoflow/commands"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the photoflow root command
func NewRootCmd() *cobra.Command {
	opts := &commands.RootOptions{}

	cmd := &cobra.Command{
		Use:   "photoflow",
		Short: "Personal photo library tooling",
		Long: `photoflow manages a photo library organized as projects:

    YYYY-MM-DD Description/
        0_RAW/       raw files and out-of-camera JPEGs
        1_EDIT/      full-size edited TIFFs
        2_EXPORT/    exported JPEGs

It renames raw files by capture timestamp, exports edited images for
sharing and reclaims disk space across the library.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(opts.Debug)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Debug, "debug", "d", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&opts.DryRun, "dry-run", "n", false, "print actions without changing any file")
	cmd.PersistentFlags().BoolVar(&opts.Async, "async", false, "process independent files in parallel")
	cmd.PersistentFlags().IntVar(&opts.Workers, "workers", 0, "parallel worker count for --async (0 = number of CPUs)")

	cmd.AddCommand(commands.NewRenameCmd(opts))
	cmd.AddCommand(commands.NewExportCmd(opts))
	cmd.AddCommand(commands.NewCleanupCmd(opts))

	return cmd
}

// setupLogging configures zerolog based on flags
func setupLogging(debug bool) {
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &log
}
