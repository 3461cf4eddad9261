package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/DaviAndorid/ArchitectureGuide/internal/catalog"
	"github.com/spf13/cobra"
)

func newProductCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "product <id>",
		Short: "Show one product and its comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid product id %q: %w", args[0], err)
			}
			if _, err := catalog.NewProductID(id); err != nil {
				return err
			}

			application, err := openApp()
			if err != nil {
				return err
			}
			defer application.Close()

			return application.run(cmd.Context(), func(ctx context.Context) error {
				if err := application.readiness.Wait(ctx); err != nil {
					return err
				}
				product, found, err := application.repository.ProductSync(ctx, id)
				if err != nil {
					return err
				}
				if !found {
					return fmt.Errorf("product %d not found", id)
				}

				comments, err := application.repository.Comments(id)
				if err != nil {
					return err
				}
				defer comments.Close()
				update, err := firstUpdate(ctx, comments)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				renderProducts(out, []catalog.Product{product})
				renderComments(out, update.Result.Comments)
				return nil
			})
		},
	}
}
