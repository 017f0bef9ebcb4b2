package main

import (
	"context"
	"fmt"

	"blocks-cms/internal/domain/owners"

	"github.com/spf13/cobra"
)

var (
	userName     string
	userEmail    string
	userPassword string
	userAdmin    bool
)

var userAddCmd = &cobra.Command{
	Use:   "useradd",
	Short: "Create a user with a password",
	Long:  `Create a user and set its credentials. Use --admin for the first account of a new installation.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		reg := loadRegistry()
		svc := owners.NewService(openDB(), reg)
		ctx := context.Background()

		role := owners.RoleEditor
		if userAdmin {
			role = owners.RoleAdmin
		}
		u, err := svc.CreateUser(ctx, map[string]any{"username": userName, "email": userEmail}, userPassword, role)
		if err != nil {
			fatal("Failed to create user", err)
		}
		fmt.Printf("Created %s user %s (id %d).\n", role, u.Username, u.ID)
	},
}

func init() {
	rootCmd.AddCommand(userAddCmd)
	userAddCmd.Flags().StringVarP(&userName, "username", "u", "", "Username")
	userAddCmd.Flags().StringVarP(&userEmail, "email", "e", "", "Email address")
	userAddCmd.Flags().StringVarP(&userPassword, "password", "p", "", "Password")
	userAddCmd.Flags().BoolVar(&userAdmin, "admin", false, "Grant the admin role")
	userAddCmd.MarkFlagRequired("username")
	userAddCmd.MarkFlagRequired("email")
	userAddCmd.MarkFlagRequired("password")
}
