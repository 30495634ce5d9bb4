package main

import (
	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/enventory/config"
	"github.com/shashiranjanraj/enventory/database/indexes"
	"github.com/shashiranjanraj/enventory/database/seeders"
	"github.com/shashiranjanraj/enventory/pkg/mongodb"
)

var dbIndexCmd = &cobra.Command{
	Use:   "db:index",
	Short: "Create the MongoDB indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return err
		}
		ctx := cmd.Context()
		if err := mongodb.Connect(ctx); err != nil {
			return err
		}
		defer mongodb.Disconnect(ctx) //nolint:errcheck

		return indexes.Ensure(ctx)
	},
}

var dbSeedCmd = &cobra.Command{
	Use:   "db:seed",
	Short: "Seed the default admin and sample products",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return err
		}
		ctx := cmd.Context()
		if err := mongodb.Connect(ctx); err != nil {
			return err
		}
		defer mongodb.Disconnect(ctx) //nolint:errcheck

		if err := indexes.Ensure(ctx); err != nil {
			return err
		}
		return seeders.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(dbIndexCmd, dbSeedCmd)
}
