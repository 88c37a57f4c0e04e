package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"bloggenie-server/internal/config"
	"bloggenie-server/internal/domain"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "bloggenie",
		Short: "BlogGenie - AI blog idea generator",
		Long: `BlogGenie generates blog ideas and full posts, enforces plan limits
and takes payments in the visitor's local currency.

Configuration is read from the environment (and .env). Without any backend
configured the commands run against an in-memory store and the offline
idea templates.`,
		SilenceUsage: true,
	}

	root.AddCommand(newServeCmd(), newIdeasCmd(), newPriceCmd())
	return root
}

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := config.NewContainer()
			if err != nil {
				return err
			}
			defer container.Close()

			if port == "" {
				port = container.Config.GetServerPort()
			}
			server := &http.Server{
				Addr:              ":" + port,
				Handler:           container.Router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				container.Logger.Info("Server listening", "address", server.Addr)
				errCh <- server.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-cmd.Context().Done():
			}

			container.Logger.Info("Shutting down server...")
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return server.Shutdown(ctx)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (default from PORT)")
	return cmd
}

func newIdeasCmd() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "ideas <topic>",
		Short: "Generate blog ideas for a topic",
		Long: `Generate blog ideas for a topic with the configured generation backend,
or the offline templates when none is configured. No quota applies.

Examples:
  bloggenie ideas "home gardening"
  bloggenie ideas "remote work" --count 5`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := config.NewContainer()
			if err != nil {
				return err
			}
			defer container.Close()

			topic := strings.Join(args, " ")
			ideas, err := container.Generator.GenerateIdeas(cmd.Context(), topic, count)
			if err != nil {
				return err
			}
			printIdeas(cmd.OutOrStdout(), ideas)
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", domain.DefaultIdeaCount, "number of ideas (1-10)")
	return cmd
}

func newPriceCmd() *cobra.Command {
	var country string

	cmd := &cobra.Command{
		Use:   "price",
		Short: "Show plan prices in a country's currency",
		Long: `Show plan prices converted to the local currency of a country, ISO code
or locale.

Examples:
  bloggenie price --country Nigeria
  bloggenie price --country en-GB`,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := config.NewContainer()
			if err != nil {
				return err
			}
			defer container.Close()

			printPricing(cmd.OutOrStdout(), container.PaymentService.Pricing(country))
			return nil
		},
	}

	cmd.Flags().StringVar(&country, "country", "", "country name, ISO code or locale")
	return cmd
}

func printIdeas(w io.Writer, ideas []*domain.BlogIdea) {
	for i, idea := range ideas {
		fmt.Fprintf(w, "%d. %s\n", i+1, idea.Title)
		fmt.Fprintf(w, "   %s\n", idea.Description)
		fmt.Fprintf(w, "   [%s] %d min read", idea.Category, idea.EstimatedReadTime)
		if len(idea.Tags) > 0 {
			fmt.Fprintf(w, " #%s", strings.Join(idea.Tags, " #"))
		}
		fmt.Fprintln(w)
	}
}

func printPricing(w io.Writer, view *domain.PricingView) {
	fmt.Fprintf(w, "Currency: %s\n", view.CurrencyCode)
	for _, p := range view.Plans {
		fmt.Fprintf(w, "  %-8s %s %s\n", p.Plan.Name, view.CurrencyCode, p.DisplayAmount)
	}
}
