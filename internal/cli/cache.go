package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/crossplot/pkg/cache"
	"github.com/matzehuels/crossplot/pkg/errors"
)

func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the dataset and artifact cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

func (c *CLI) cacheClearCommand() *cobra.Command {
	var datasetsOnly bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove cached datasets and rendered figures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			backend, err := c.openCache(ctx)
			if err != nil {
				return err
			}
			defer backend.Close()

			if datasetsOnly {
				if err := c.newLoader(backend, false).Invalidate(ctx); err != nil {
					return err
				}
				printSuccess("Cleared cached datasets")
				return nil
			}

			clearer, ok := backend.(cache.Clearer)
			if !ok {
				return errors.New(errors.ErrCodeUnsupported, "cache backend %T cannot be cleared", backend)
			}
			if err := clearer.Clear(ctx); err != nil {
				return err
			}
			printSuccess("Cleared cache")
			if fc, ok := backend.(*cache.FileCache); ok {
				printDetail("Directory: %s", fc.Dir())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&datasetsOnly, "datasets", false, "only remove cached datasets")
	return cmd
}

func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the default cache directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cache.DefaultDir()
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidPath, err, "locate cache directory")
			}
			fmt.Println(dir)
			return nil
		},
	}
}
