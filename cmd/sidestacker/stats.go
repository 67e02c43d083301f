package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sidestacker/sidestacker/internal/stats"
)

func newStatsCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats [USERNAME]",
		Short: "Show a player's game statistics",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load(cmd)
			if err != nil {
				return err
			}
			username := cfg.Username
			if len(args) == 1 {
				username = args[0]
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), statsTimeout)
			defer cancel()
			s, err := stats.NewClient(cfg.APIURL).Fetch(ctx, username)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Player\t%s\n", s.Username)
			fmt.Fprintf(w, "Played\t%d\n", s.GamesPlayed)
			fmt.Fprintf(w, "Won\t%d\n", s.Wins)
			fmt.Fprintf(w, "Lost\t%d\n", s.Losses)
			fmt.Fprintf(w, "Drawn\t%d\n", s.Draws)
			fmt.Fprintf(w, "Abandoned\t%d\n", s.AbandonedByUser)
			return w.Flush()
		},
	}
}

func newIDCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "id",
		Short: "Print the client identity used to connect",
		Long:  "Print the client identity. Without persist_identity every run uses a fresh one.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load(cmd)
			if err != nil {
				return err
			}
			id, err := clientIdentity(cfg)
			if err != nil {
				return err
			}
			if !cfg.PersistIdentity {
				fmt.Fprintf(cmd.ErrOrStderr(), "note: identities are not persisted, see --persist-identity\n")
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), id)
			return err
		},
	}
}
