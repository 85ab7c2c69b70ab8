package commands

import (
	"strings"

	"github.com/iblazhko/photoflow/pkg/config"
	"github.com/iblazhko/photoflow/pkg/operation"
	"github.com/iblazhko/photoflow/pkg/rules"
	"github.com/spf13/cobra"
)

// NewExportCmd creates the export command
func NewExportCmd(opts *RootOptions) *cobra.Command {
	var (
		size      string
		border    bool
		rulesFile string
	)

	cmd := &cobra.Command{
		Use:   "export [project]",
		Short: "Convert edited photos to JPEGs suitable for sharing",
		Long: `Export converts the TIFFs in 1_EDIT into JPEGs in 2_EXPORT:

1. Scale down to the selected size preset (never upscaling)
2. Add a white border with a thin separator (optional)
3. Copy basic EXIF metadata from the matching file in 0_RAW
4. Apply EXIF override rules from --exif, if given

Override rule files are JSON, YAML or HCL; see the project README for
the format.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			dir, err := targetPath(args)
			if err != nil {
				return logError(cmd, err)
			}

			// All configuration problems surface here, before any file is
			// touched.
			cfg, err := config.NewExport(size, border, rulesFile)
			if err != nil {
				return logError(cmd, err)
			}
			var ruleSet rules.RuleSet
			if rulesFile != "" {
				ruleSet, err = rules.Load(ctx, rulesFile)
				if err != nil {
					return logError(cmd, err)
				}
			}

			err = runBatch(ctx, "export", opts, func(o operation.Options) operation.Operation {
				return operation.NewExportOperation(dir, cfg, ruleSet, o)
			})
			if err != nil {
				return logError(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&size, "size", "large", "exported image size ("+strings.Join(config.Sizes, "|")+")")
	cmd.Flags().BoolVar(&border, "border", true, "add a border around the exported image")
	cmd.Flags().StringVar(&rulesFile, "exif", "", "EXIF override rules file")

	return cmd
}
