package main

import (
	"context"

	"github.com/spf13/cobra"
)

func newProductsCmd() *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "products",
		Short: "List products, optionally filtered by a search term",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := openApp()
			if err != nil {
				return err
			}
			defer application.Close()

			return application.run(cmd.Context(), func(ctx context.Context) error {
				observer, err := application.repository.Products(search)
				if err != nil {
					return err
				}
				defer observer.Close()

				update, err := firstUpdate(ctx, observer)
				if err != nil {
					return err
				}
				renderProducts(cmd.OutOrStdout(), update.Result.Products)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Match products whose name or description contains the term")
	return cmd
}
