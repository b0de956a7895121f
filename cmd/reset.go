package main

import (
	"fmt"

	"silo_scanner/internal/repository"
	"silo_scanner/internal/repository/db"

	"github.com/spf13/cobra"
)

func newResetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Forget the stored scan progress",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig(opts, nil)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			conn, err := db.InitDB(cfg.DB.Path)
			if err != nil {
				return fmt.Errorf("init sqlite: %w", err)
			}
			defer func() { _ = conn.Close() }()

			repos := repository.NewRepository(conn, cfg.Scan.ProgressKey)
			if err := repos.ProgressRepo.Clear(cmd.Context()); err != nil {
				return err
			}
			log.Infow("scan_progress_cleared", "key", cfg.Scan.ProgressKey, "db", cfg.DB.Path)
			fmt.Fprintln(cmd.OutOrStdout(), "scan progress cleared")
			return nil
		},
	}
}
