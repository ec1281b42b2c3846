package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/pageza/circlekitchen/backend/internal/app"
	"github.com/pageza/circlekitchen/backend/internal/model"
)

// opener builds the application the commands act on.
type opener func(ctx context.Context) (*app.App, error)

func newRootCommand(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "recipectl",
		Short:         "Inspect and manage the recipe cache",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newGetCommand(open))
	cmd.AddCommand(newRefetchCommand(open))
	cmd.AddCommand(newPurgeCommand(open))
	cmd.AddCommand(newTokenCommand(open))
	return cmd
}

func newGetCommand(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "get <recipe-id>",
		Short: "Resolve a recipe, fetching it from the provider on a miss",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, open, func(a *app.App) error {
				recipe, err := a.Cache.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printRecipe(cmd.OutOrStdout(), recipe)
			})
		},
	}
}

func newRefetchCommand(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "refetch <recipe-id>",
		Short: "Replace a cached provider recipe with a fresh copy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, open, func(a *app.App) error {
				recipe, err := a.Cache.Refetch(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printRecipe(cmd.OutOrStdout(), recipe)
			})
		},
	}
}

func newPurgeCommand(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "purge <recipe-id>",
		Short: "Delete a stored recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, open, func(a *app.App) error {
				if err := a.Cache.Purge(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "purged %s\n", args[0])
				return nil
			})
		},
	}
}

func newTokenCommand(open opener) *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Issue a session token for local testing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, open, func(a *app.App) error {
				token, err := a.Auth.GenerateToken(args[0], ttl)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), token)
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	return cmd
}

func withApp(cmd *cobra.Command, open opener, fn func(*app.App) error) error {
	a, err := open(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func printRecipe(w io.Writer, recipe *model.Recipe) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(recipe)
}
