package cli

import (
	"github.com/spf13/cobra"

	"github.com/markpad/annotkit/annotation"
	"github.com/markpad/annotkit/compliance"
)

type addOpts struct {
	annotationsPath string
	output          string
	inPlace         bool
	validate        bool
}

func newAddCmd() *cobra.Command {
	var opts addOpts

	cmd := &cobra.Command{
		Use:   "add <pdf>",
		Short: "Add annotations from a JSON file to a PDF",
		Long: `Add annotations described in a JSON file to a PDF.

The JSON file holds an array of annotation objects. Omitted color,
opacity, and stroke width fall back to the configured defaults; omitted
ids are generated.

Examples:
  annotkit add in.pdf --annotations marks.json -o out.pdf
  annotkit add in.pdf --annotations marks.json --in-place --validate`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			target, err := newWriteTarget(args[0], opts.output, opts.inPlace)
			if err != nil {
				return err
			}
			specs, err := loadAnnotationSpecs(opts.annotationsPath)
			if err != nil {
				return err
			}
			cfg := configFromContext(cmd.Context())
			annots := make([]annotation.Annotation, len(specs))
			for i, s := range specs {
				annots[i] = s.toModel(cfg)
			}

			result, err := newEngine(cmd.Context()).Add(target.source, target.dest, annots)
			if err != nil {
				return err
			}
			if opts.validate {
				// Validate the temp file before it replaces anything.
				if err := compliance.ValidateFile(target.dest); err != nil {
					return err
				}
			}
			if err := target.finalize(true); err != nil {
				return err
			}
			logger.Infof("Added %d annotations to %s", result.Count, target.resultPath())
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.annotationsPath, "annotations", "", "JSON file with annotations to add")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "destination file")
	cmd.Flags().BoolVar(&opts.inPlace, "in-place", false, "overwrite the source via a temp file and rename")
	cmd.Flags().BoolVar(&opts.validate, "validate", false, "run the output through an independent PDF validator")
	cobra.CheckErr(cmd.MarkFlagRequired("annotations"))
	return cmd
}
