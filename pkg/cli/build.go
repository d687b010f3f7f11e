package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/entrhq/criteria/pkg/build"
	"github.com/entrhq/criteria/pkg/validate"
)

func newBuildCmd(a *app) *cobra.Command {
	var opts build.Options

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Validate the records and regenerate every artifact",
		Long: `Validates every record against the taxonomy and regenerates the master index,
the per-category views and the statistics summary. Nothing is written when
any record is invalid.`,
		Args: cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, cmd *cobra.Command, _ []string) error {
			b, err := build.NewBuilder(a.cfg, a.log)
			if err != nil {
				return err
			}
			res, err := b.Build(ctx, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			maxID := res.MaxID
			if maxID == "" {
				maxID = "none"
			}
			if res.DryRun {
				reportOK(out, "build", "dry run: criteria=%d categories=%d max_id=%s", res.Criteria, res.Categories, maxID)
				for _, p := range res.Written {
					reportNote(out, "would write %s", p)
				}
				for _, p := range res.Pruned {
					reportNote(out, "would remove %s", p)
				}
				return nil
			}
			reportOK(out, "build", "criteria=%d categories=%d max_id=%s", res.Criteria, res.Categories, maxID)
			for _, p := range res.Overridden {
				reportNote(out, "overwrote hand-edited %s", p)
			}
			for _, p := range res.Pruned {
				reportNote(out, "removed %s", p)
			}
			return nil
		}),
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false, "Overwrite generated artifacts even if they were edited by hand")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Check everything but write nothing")
	return cmd
}

func newValidateCmd(a *app) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the records without writing anything",
		Args:  cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, cmd *cobra.Command, _ []string) error {
			b, err := build.NewBuilder(a.cfg, a.log)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if !all {
				_, list, err := b.Load(ctx)
				if err != nil {
					return err
				}
				reportOK(out, "validate", "criteria=%d", len(list))
				return nil
			}

			n, errs, err := b.Violations(ctx)
			if err != nil {
				return err
			}
			if len(errs) == 0 {
				reportOK(out, "validate", "criteria=%d", n)
				return nil
			}
			for _, e := range errs {
				reportProblem(out, "%v", e)
			}
			reportNote(out, "%s", validate.ByKind(errs))
			return fmt.Errorf("validation failed: %s in %d records", validate.Summary(errs), n)
		}),
	}

	cmd.Flags().BoolVar(&all, "all", false, "Report every violation instead of stopping at the first")
	return cmd
}

func newVerifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Report generated artifacts changed since the last build",
		Args:  cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, cmd *cobra.Command, _ []string) error {
			b, err := build.NewBuilder(a.cfg, a.log)
			if err != nil {
				return err
			}
			drift, built, err := b.Verify(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !built {
				reportOK(out, "verify", "no previous build")
				return nil
			}
			if len(drift) == 0 {
				reportOK(out, "verify", "artifacts match the last build")
				return nil
			}
			for _, d := range drift {
				reportProblem(out, "%s %s", d.Kind, d.Path)
			}
			return fmt.Errorf("%d generated artifacts differ from the last build; run build to regenerate", len(drift))
		}),
	}
}
