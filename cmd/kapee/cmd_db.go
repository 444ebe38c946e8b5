package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/kapee/app/repositories"
	"github.com/shashiranjanraj/kapee/app/repositories/memstore"
	"github.com/shashiranjanraj/kapee/app/repositories/mongostore"
	"github.com/shashiranjanraj/kapee/config"
	"github.com/shashiranjanraj/kapee/database/seeders"
	"github.com/shashiranjanraj/kapee/pkg/database"
)

// kapee db:indexes: create the unique and lookup indexes.
var indexesCmd = &cobra.Command{
	Use:   "db:indexes",
	Short: "Create MongoDB indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return err
		}
		ctx := cmd.Context()
		client, db, err := database.Connect(ctx, config.MongoURI(), config.MongoDatabase(), config.DBTimeout())
		if err != nil {
			return err
		}
		defer client.Disconnect(context.Background()) //nolint:errcheck

		if err := database.EnsureIndexes(ctx, db); err != nil {
			return err
		}
		for _, ix := range database.Indexes() {
			fmt.Fprintf(cmd.OutOrStdout(), "  ✓ %s.%s\n", ix.Collection, *ix.Model.Options.Name)
		}
		return nil
	},
}

// kapee seed: run every registered seeder.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Run all database seeders",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore(store)

		fmt.Fprintln(cmd.OutOrStdout(), "Seeding…")
		return seeders.RunAll(cmd.Context(), store, cmd.OutOrStdout())
	},
}

var (
	adminEmail    string
	adminPassword string
)

// kapee seed:admin: create or promote an admin account.
var seedAdminCmd = &cobra.Command{
	Use:   "seed:admin",
	Short: "Create or promote the admin account (ADMIN_EMAIL / ADMIN_PASSWORD)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return err
		}
		email := adminEmail
		if email == "" {
			email = config.Get("ADMIN_EMAIL", "")
		}
		password := adminPassword
		if password == "" {
			password = config.Get("ADMIN_PASSWORD", "")
		}
		if email == "" {
			return seeders.ErrNoAdminCredentials
		}

		store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore(store)

		if err := seeders.EnsureAdmin(cmd.Context(), store.Users, email, password); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ %s is an admin\n", email)
		return nil
	},
}

func init() {
	seedAdminCmd.Flags().StringVar(&adminEmail, "email", "", "admin e-mail (default ADMIN_EMAIL)")
	seedAdminCmd.Flags().StringVar(&adminPassword, "password", "", "password for a new account (default ADMIN_PASSWORD)")
}

func openStore(ctx context.Context) (*repositories.Store, error) {
	if err := config.Load(); err != nil {
		return nil, err
	}
	if config.DatabaseDriver() == "memory" {
		return memstore.New(), nil
	}
	client, db, err := database.Connect(ctx, config.MongoURI(), config.MongoDatabase(), config.DBTimeout())
	if err != nil {
		return nil, err
	}
	if err := database.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return mongostore.New(client, db, config.DBTimeout()), nil
}

func closeStore(s *repositories.Store) {
	if s.Close != nil {
		_ = s.Close(context.Background())
	}
}
