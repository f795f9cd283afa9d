package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ricirt/devlog-poster/internal/domain"
	"github.com/ricirt/devlog-poster/internal/generator"
)

func newSeedCommand(root *rootOptions) *cobra.Command {
	var (
		descriptionPath string
		force           bool
		dryRun          bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate a timeline from a project description and queue it",
		Long: `Ask the model for a day-by-day timeline (TIMELINE_DAYS, 30 by default)
of the project described in a YAML or JSON file, and insert it as pending
work items in one batch.

Seeding refuses to touch a store that already has items unless --force is
given; even then, a day that already exists aborts the whole batch.

Example:
  devlog seed --description examples/project.yaml --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, err := generator.LoadProjectDescription(descriptionPath)
			if err != nil {
				return err
			}

			opts := root.options()
			opts.Bootstrap = true
			app, err := root.build(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer app.Close()

			out := cmd.OutOrStdout()

			if dryRun {
				items, err := app.Bootstrapper.Plan(cmd.Context(), desc)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, renderItems(items))
				fmt.Fprintf(out, "Dry run: %d work items generated, nothing stored.\n", len(items))
				return nil
			}

			n, err := app.Bootstrapper.Seed(cmd.Context(), desc, force)
			if errors.Is(err, domain.ErrStoreNotEmpty) {
				return fmt.Errorf("%w (use --force to add to it)", err)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Seeded %d work items.\n", n)
			return nil
		},
	}

	cmd.Flags().StringVarP(&descriptionPath, "description", "d", "", "project description file (YAML or JSON)")
	cmd.Flags().BoolVar(&force, "force", false, "seed even if the store already has items")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "generate and print the timeline without storing it")
	_ = cmd.MarkFlagRequired("description")
	return cmd
}
