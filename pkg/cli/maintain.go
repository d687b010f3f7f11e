package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/entrhq/criteria/pkg/bootstrap"
	"github.com/entrhq/criteria/pkg/config"
	"github.com/entrhq/criteria/pkg/enrich"
)

func newEnrichCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "enrich",
		Short: "Write resolved categories_info into every record",
		Args:  cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, cmd *cobra.Command, _ []string) error {
			e, err := enrich.NewEnricher(a.cfg, a.log)
			if err != nil {
				return err
			}
			res, err := e.Run(ctx)
			if err != nil {
				return err
			}
			reportOK(cmd.OutOrStdout(), "enrich", "updated=%d unchanged=%d", res.Updated, res.Unchanged)
			return nil
		}),
	}
}

func newBootstrapCmd(a *app) *cobra.Command {
	var opts bootstrap.Options

	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Seed the records from a legacy master list",
		Long: `Splits a legacy aggregated master list into one record per id and copies
the legacy detail documents into the details directory. Existing records with
the same id are overwritten.`,
		Args: cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, cmd *cobra.Command, _ []string) error {
			im, err := bootstrap.NewImporter(a.cfg, a.log)
			if err != nil {
				return err
			}
			res, err := im.Import(ctx, opts)
			if err != nil {
				return err
			}
			reportOK(cmd.OutOrStdout(), "bootstrap", "written=%d skipped=%d details=%d", res.Written, res.Skipped, res.Details)
			return nil
		}),
	}

	cmd.Flags().StringVar(&opts.Source, "source", "", "Legacy master list (default legacy.master_list)")
	cmd.Flags().StringVar(&opts.Details, "details", "", "Legacy details directory (default legacy.details_dir)")
	return cmd
}

func newInitCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default layout file",
		Args:  cobra.NoArgs,
		RunE: a.run(func(_ context.Context, cmd *cobra.Command, _ []string) error {
			path := a.configPath
			if path == "" {
				path = filepath.Join(a.cfg.BaseDir, config.FileName)
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("failed to stat %s: %w", path, err)
			}
			if err := a.cfg.Save(path); err != nil {
				return err
			}
			reportOK(cmd.OutOrStdout(), "init", "wrote %s", path)
			return nil
		}),
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing layout file")
	return cmd
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "criteria %s\n", version)
		},
	}
}
