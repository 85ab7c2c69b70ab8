package commands

import (
	"github.com/iblazhko/photoflow/pkg/operation"
	"github.com/spf13/cobra"
)

// NewCleanupCmd creates the cleanup command
func NewCleanupCmd(opts *RootOptions) *cobra.Command {
	var (
		removeDotfiles  bool
		removeEdits     bool
		hardlinkSelects bool
	)

	cmd := &cobra.Command{
		Use:   "cleanup [library]",
		Short: "Remove temporary files and reclaim disk space",
		Long: `Cleanup walks the library tree and, for every project found:

1. Removes AppleDouble ._* files
2. Empties 1_EDIT (edits can be re-exported from the editing app)
3. Replaces raw selects in the project root with hard links to the
   matching files in 0_RAW, after verifying the contents are identical

A select whose content differs from its 0_RAW counterpart is left
untouched and reported.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := targetPath(args)
			if err != nil {
				return logError(cmd, err)
			}

			err = runBatch(cmd.Context(), "cleanup", opts, func(o operation.Options) operation.Operation {
				return operation.NewCleanupOperation(dir, removeDotfiles, removeEdits, hardlinkSelects, o)
			})
			if err != nil {
				return logError(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&removeDotfiles, "remove-dotfiles", true, "remove ._* files")
	cmd.Flags().BoolVar(&removeEdits, "remove-edits", true, "remove files from 1_EDIT")
	cmd.Flags().BoolVar(&hardlinkSelects, "hardlink-selects", true, "replace selects with hard links to matching files in 0_RAW")

	return cmd
}
