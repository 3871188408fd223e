package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/markpad/annotkit/annotation"
)

type listOpts struct {
	jsonOut bool
}

func newListCmd() *cobra.Command {
	var opts listOpts

	cmd := &cobra.Command{
		Use:   "list <pdf>",
		Short: "Decode and print the annotations in a PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			annots, err := newEngine(cmd.Context()).Decode(args[0])
			if err != nil {
				return err
			}
			if opts.jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(annots)
			}
			for _, a := range annots {
				fmt.Fprintln(os.Stdout, formatAnnotation(a))
			}
			loggerFromContext(cmd.Context()).Infof("%d annotations", len(annots))
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "print as JSON")
	return cmd
}

func formatAnnotation(a annotation.Annotation) string {
	out := fmt.Sprintf("page %d  %-13s rect (%g, %g, %g, %g)  opacity %.2f",
		a.Page, a.Type, a.Rect.X1, a.Rect.Y1, a.Rect.X2, a.Rect.Y2, a.Opacity)
	switch {
	case a.Type == annotation.Ink:
		out += fmt.Sprintf("  strokes %d  width %g", len(a.InkPaths), a.StrokeWidth)
	case a.Type == annotation.Text:
		out += fmt.Sprintf("  %q", a.Contents)
	}
	return out
}
