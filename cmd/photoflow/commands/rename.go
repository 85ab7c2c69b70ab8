package commands

import (
	"github.com/iblazhko/photoflow/pkg/operation"
	"github.com/spf13/cobra"
)

// NewRenameCmd creates the rename command
func NewRenameCmd(opts *RootOptions) *cobra.Command {
	var mtimeFallback bool

	cmd := &cobra.Command{
		Use:   "rename [project]",
		Short: "Rename raw files by capture timestamp",
		Long: `Rename renames every file in the project's 0_RAW directory to

    YYYYMMDD_hhmm_NNNN.ext

where the timestamp comes from the EXIF capture time (seconds truncated),
NNNN is the camera-assigned frame counter (last four characters of the
original name) and the extension is lowercased.

Files whose timestamp cannot be read are skipped with a warning. An
existing target name is never overwritten.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := targetPath(args)
			if err != nil {
				return logError(cmd, err)
			}

			err = runBatch(cmd.Context(), "rename", opts, func(o operation.Options) operation.Operation {
				return operation.NewRenameOperation(dir, mtimeFallback, o)
			})
			if err != nil {
				return logError(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&mtimeFallback, "mtime-fallback", false, "fall back to the file time when there is no EXIF timestamp")

	return cmd
}
