package main

import (
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"

	"github.com/mhsenam/rentmio/internal/config"
	"github.com/mhsenam/rentmio/internal/migrations"
	"github.com/mhsenam/rentmio/internal/utils"
)

func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, _ := cmd.Flags().GetBool("list")
			if list {
				names, err := migrations.Names()
				if err != nil {
					return err
				}
				for _, n := range names {
					fmt.Println(n)
				}
				return nil
			}

			cfg := config.LoadConfig()
			pool, err := pgxpool.Connect(cmd.Context(), cfg.DBUrl)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			defer pool.Close()

			applied, err := migrations.Apply(cmd.Context(), pool)
			if err != nil {
				return err
			}
			utils.Logger.Infof("Applied %d migration(s)", applied)
			return nil
		},
	}
	cmd.Flags().Bool("list", false, "Print the embedded migrations without connecting")
	return cmd
}
