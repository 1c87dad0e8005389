package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/receipts-inbox/internal/repository"
)

var dbhealthCmd = &cobra.Command{
	Use:   "dbhealth",
	Short: "Ping the configured Postgres store",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Store.Driver != "postgres" {
			return eris.Errorf("dbhealth needs store.driver=postgres, got %q", cfg.Store.Driver)
		}
		pool, err := repository.Open(cmd.Context(), repository.ConfigFrom(cfg.Store), logger)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := repository.HealthCheck(cmd.Context(), pool, cfg.Store.DialTimeout, logger); err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), "db: ok")
		return err
	},
}

func init() {
	rootCmd.AddCommand(dbhealthCmd)
}
