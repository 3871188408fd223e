package cli

import (
	"github.com/spf13/cobra"
)

type removeOpts struct {
	page    int
	rect    string
	output  string
	inPlace bool
}

func newRemoveCmd() *cobra.Command {
	var opts removeOpts

	cmd := &cobra.Command{
		Use:   "remove <pdf>",
		Short: "Remove annotations matching a rectangle on one page",
		Long: `Remove every annotation on the page whose bounding rectangle matches
the target within one unit per coordinate. If nothing matches, no
output is produced.

Example:
  annotkit remove in.pdf --page 0 --rect 10,10,50,30 --in-place`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			target, err := newWriteTarget(args[0], opts.output, opts.inPlace)
			if err != nil {
				return err
			}
			rect, err := parseRect(opts.rect)
			if err != nil {
				return err
			}

			removed, err := newEngine(cmd.Context()).Remove(target.source, target.dest, opts.page, rect)
			if err != nil {
				return err
			}
			if err := target.finalize(removed); err != nil {
				return err
			}
			if removed {
				logger.Infof("Removed matching annotations, wrote %s", target.resultPath())
			} else {
				logger.Info("Nothing matched, no output written")
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.page, "page", 0, "0-based page index")
	cmd.Flags().StringVar(&opts.rect, "rect", "", "target rectangle as x1,y1,x2,y2")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "destination file")
	cmd.Flags().BoolVar(&opts.inPlace, "in-place", false, "overwrite the source via a temp file and rename")
	cobra.CheckErr(cmd.MarkFlagRequired("rect"))
	return cmd
}
