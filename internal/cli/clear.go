package cli

import (
	"github.com/spf13/cobra"
)

type clearOpts struct {
	page    int
	output  string
	inPlace bool
}

func newClearCmd() *cobra.Command {
	var opts clearOpts

	cmd := &cobra.Command{
		Use:   "clear <pdf>",
		Short: "Remove all annotations from one page",
		Long: `Remove every annotation from the given page. An already-empty page is
a no-op and produces no output.

Example:
  annotkit clear in.pdf --page 2 -o out.pdf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			target, err := newWriteTarget(args[0], opts.output, opts.inPlace)
			if err != nil {
				return err
			}

			count, err := newEngine(cmd.Context()).ClearPage(target.source, target.dest, opts.page)
			if err != nil {
				return err
			}
			if err := target.finalize(count > 0); err != nil {
				return err
			}
			if count > 0 {
				logger.Infof("Cleared %d annotations from page %d, wrote %s", count, opts.page, target.resultPath())
			} else {
				logger.Infof("Page %d has no annotations, no output written", opts.page)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.page, "page", 0, "0-based page index")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "destination file")
	cmd.Flags().BoolVar(&opts.inPlace, "in-place", false, "overwrite the source via a temp file and rename")
	return cmd
}
