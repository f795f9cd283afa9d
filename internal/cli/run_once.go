package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ricirt/devlog-poster/internal/service"
)

func newRunOnceCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run-once",
		Short: "Post the next pending work item now",
		Long: `Run the daily job once and exit. Useful from an external scheduler.

Exit status is 0 when an item was posted, nothing was pending, or another run
had already claimed the item; 1 on any failure.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := root.options()
			opts.Posting = true
			app, err := root.build(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer app.Close()

			res := app.Poster.RunOnce(cmd.Context())
			out := cmd.OutOrStdout()

			switch res.Outcome {
			case service.OutcomeIdle:
				fmt.Fprintln(out, "No pending work item.")
			case service.OutcomePosted:
				fmt.Fprintf(out, "Posted day %d: %s\n", res.Item.Sequence, res.Item.Topic)
				if res.PostID != "" {
					fmt.Fprintf(out, "Post: %s\n", res.PostID)
				}
			case service.OutcomeSkipped:
				fmt.Fprintf(out, "Day %d was claimed by another run.\n", res.Item.Sequence)
			default:
				fmt.Fprintf(cmd.ErrOrStderr(), "Run failed (%s): %v\n", res.Outcome, res.Err)
				return NewExitError(1)
			}
			return nil
		},
	}
}
