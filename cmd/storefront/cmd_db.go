package main

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

// storefront migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, gdb, ctx, err := bootDB(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close(gdb)

		if err := models.AutoMigrate(gdb.WithContext(ctx)); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logging.FromContext(ctx).Info("migrate_done")
		return nil
	},
}

// storefront seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the starter catalog; existing products are left alone",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, gdb, ctx, err := bootDB(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close(gdb)

		if err := models.AutoMigrate(gdb.WithContext(ctx)); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		svc := &service.CatalogService{Repo: repo.New(gdb)}
		n, err := svc.SeedProducts(ctx)
		if err != nil {
			return err
		}
		logging.FromContext(ctx).Info("seed_done", "inserted", n)
		return nil
	},
}

var (
	promoteEmail string
	promotePhone string
	promoteRole  string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
}

// storefront user promote --email a@b.c --role admin
var userPromoteCmd = &cobra.Command{
	Use:   "promote",
	Short: "Change a user's role",
	RunE: func(cmd *cobra.Command, args []string) error {
		role := strings.ToLower(strings.TrimSpace(promoteRole))
		if !slices.Contains(models.Roles, role) {
			return fmt.Errorf("role must be one of %s", strings.Join(models.Roles, ", "))
		}
		if (promoteEmail == "") == (promotePhone == "") {
			return fmt.Errorf("exactly one of --email or --phone is required")
		}

		_, gdb, ctx, err := bootDB(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close(gdb)

		r := repo.New(gdb)
		var u *models.User
		if promoteEmail != "" {
			u, err = r.UserByEmail(ctx, strings.ToLower(strings.TrimSpace(promoteEmail)))
		} else {
			u, err = r.UserByPhone(ctx, strings.TrimSpace(promotePhone))
		}
		if err != nil {
			if repo.IsNotFound(err) {
				return fmt.Errorf("user not found")
			}
			return err
		}
		if err := r.SetUserRole(ctx, u.ID, role); err != nil {
			return err
		}
		logging.FromContext(ctx).Info("user_role_changed", "user_id", u.ID, "from", u.Role, "to", role)
		return nil
	},
}

var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "Maintain stored refresh tokens",
}

var purgeGrace time.Duration

// storefront tokens purge
var tokensPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete refresh token records that expired before now minus --grace",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, gdb, ctx, err := bootDB(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close(gdb)

		n, err := repo.New(gdb).PurgeRefreshTokens(ctx, time.Now().Add(-purgeGrace))
		if err != nil {
			return err
		}
		logging.FromContext(ctx).Info("tokens_purged", "removed", n)
		return nil
	},
}

func init() {
	userPromoteCmd.Flags().StringVar(&promoteEmail, "email", "", "email of the user")
	userPromoteCmd.Flags().StringVar(&promotePhone, "phone", "", "phone number of the user")
	userPromoteCmd.Flags().StringVar(&promoteRole, "role", models.RoleAdmin, "new role")
	userCmd.AddCommand(userPromoteCmd)

	tokensPurgeCmd.Flags().DurationVar(&purgeGrace, "grace", 0, "keep records expired less than this long ago")
	tokensCmd.AddCommand(tokensPurgeCmd)
}
