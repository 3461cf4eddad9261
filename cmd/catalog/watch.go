package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/DaviAndorid/ArchitectureGuide/internal/catalog"
	"github.com/DaviAndorid/ArchitectureGuide/internal/diff"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newWatchCmd() *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow the product list and print each change until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := openApp()
			if err != nil {
				return err
			}
			defer application.Close()

			signalCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			err = application.run(signalCtx, func(ctx context.Context) error {
				observer, err := application.repository.Products(search)
				if err != nil {
					return err
				}
				defer observer.Close()
				application.logger.Info("watching products", zap.String("query", observer.Key().String()))

				out := cmd.OutOrStdout()
				var previous []catalog.Product
				first := true
				for {
					select {
					case <-ctx.Done():
						return ctx.Err()
					case update, ok := <-observer.Updates():
						if !ok {
							return errStreamClosed
						}
						if update.Err != nil {
							application.logger.Warn("product query failed", zap.Error(update.Err))
							continue
						}
						if first {
							renderProducts(out, update.Result.Products)
							first = false
						} else {
							fmt.Fprintln(out)
							renderProductOps(out, diff.Products(previous, update.Result.Products))
						}
						previous = update.Result.Products
					}
				}
			})
			if errors.Is(err, context.Canceled) && signalCtx.Err() != nil {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Match products whose name or description contains the term")
	return cmd
}
