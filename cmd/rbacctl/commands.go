package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"rbac/internal/app"
	"rbac/internal/config"
	"rbac/internal/logger"
	"rbac/internal/security/password"
	"rbac/internal/service"

	"github.com/spf13/cobra"
)

// connector builds the seeding service and returns a cleanup func.
type connector func() (service.SeedService, func(), error)

func connect() (service.SeedService, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	a, err := app.New(cfg, logger.New(cfg.LogLevel, cfg.LogFormat))
	if err != nil {
		return nil, nil, err
	}
	return a.SeedService, func() { _ = a.Close() }, nil
}

func newRootCmd(conn connector) *cobra.Command {
	root := &cobra.Command{
		Use:           "rbacctl",
		Short:         "Administrative tasks for the RBAC service.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newSeedCmd(conn), newCreateAdminCmd(conn))
	return root
}

func newSeedCmd(conn connector) *cobra.Command {
	var modules []string
	cmd := &cobra.Command{
		Use:     "seed",
		Short:   "Create the Super Admin and Admin roles if they do not exist.",
		Example: "rbacctl seed\nrbacctl seed --modules users,roles,audit,reports",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			seeds, cleanup, err := conn()
			if err != nil {
				return err
			}
			defer cleanup()

			roles, err := seeds.SeedSystemRoles(cmd.Context(), modules)
			if err != nil {
				return err
			}
			for _, r := range roles {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", r.ID, r.RoleName, strings.Join(r.AccessModules, ","))
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&modules, "modules", service.DefaultModules, "access modules granted to the system roles")
	return cmd
}

func newCreateAdminCmd(conn connector) *cobra.Command {
	var firstName, lastName, email, pass string
	cmd := &cobra.Command{
		Use:     "create-admin",
		Short:   "Create or reactivate a user holding the Admin role.",
		Long:    "Create or reactivate a user holding the Admin role. The password is read from --password or RBAC_ADMIN_PASSWORD.",
		Example: "RBAC_ADMIN_PASSWORD='Secret@1' rbacctl create-admin --email admin@example.com --first-name Ada --last-name Lovelace",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if pass == "" {
				pass = os.Getenv("RBAC_ADMIN_PASSWORD")
			}
			if strings.TrimSpace(email) == "" {
				return errors.New("--email is required")
			}
			if !password.IsStrong(pass) {
				return errors.New(password.StrengthMessage)
			}

			seeds, cleanup, err := conn()
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := seeds.BootstrapAdmin(cmd.Context(), firstName, lastName, email, pass)
			if err != nil {
				return err
			}
			verb := "created"
			if res.Reactivated {
				verb = "reactivated"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s: %s (%s)\n", verb, res.User.Email, res.User.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&firstName, "first-name", "System", "first name")
	cmd.Flags().StringVar(&lastName, "last-name", "Admin", "last name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&pass, "password", "", "password (prefer RBAC_ADMIN_PASSWORD)")
	return cmd
}
