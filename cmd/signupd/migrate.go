package main

import (
	"github.com/spf13/cobra"

	"shift-signup-backend/internal/db"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := db.Init(&a.cfg.Database, a.log)
			return err
		},
	}
}
