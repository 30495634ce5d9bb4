package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/enventory/app/repositories"
	"github.com/shashiranjanraj/enventory/app/services"
	"github.com/shashiranjanraj/enventory/config"
	"github.com/shashiranjanraj/enventory/pkg/mongodb"
	"github.com/shashiranjanraj/enventory/pkg/rbac"
)

var (
	createUserRole     string
	createUserPassword string
)

var userCreateCmd = &cobra.Command{
	Use:   "user:create <username>",
	Short: "Create an admin or worker account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		role, err := rbac.ParseRole(createUserRole)
		if err != nil {
			return err
		}
		if err := config.Load(); err != nil {
			return err
		}

		ctx := cmd.Context()
		if err := mongodb.Connect(ctx); err != nil {
			return err
		}
		defer mongodb.Disconnect(ctx) //nolint:errcheck

		auth := services.NewAuthService(repositories.NewAccountRepository())
		acc, err := auth.Register(ctx, role, services.RegisterInput{
			Username: args[0],
			Password: createUserPassword,
		})
		if err != nil {
			return err
		}

		fmt.Printf("created %s account %s (%s)\n", role, acc.Username, acc.ID.Hex())
		return nil
	},
}

func init() {
	userCreateCmd.Flags().StringVar(&createUserRole, "role", "worker", "account role: admin or worker")
	userCreateCmd.Flags().StringVar(&createUserPassword, "password", "", "account password (required)")
	userCreateCmd.MarkFlagRequired("password") //nolint:errcheck

	rootCmd.AddCommand(userCreateCmd)
}
