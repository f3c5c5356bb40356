package main

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/ukydev/fleet-tracking/internal/db"
)

func (a *App) accessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "access",
		Short: "Manage the fleet database roles and users",
	}

	setup := &cobra.Command{
		Use:   "setup",
		Short: "Create the DataAnalyst, FleetManager and TelemetryWriter roles and their users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			database, err := a.database(ctx)
			if err != nil {
				return err
			}
			if err := db.CreateRoles(ctx, database, a.cfg.MongoDB); err != nil {
				return err
			}
			created := db.CreateUsers(ctx, database, db.AccessConfig{
				Database:          a.cfg.MongoDB,
				AnalystPassword:   a.cfg.AnalystPassword,
				ManagerPassword:   a.cfg.ManagerPassword,
				LogisticsPassword: a.cfg.LogisticsPassword,
			})
			log.WithField("created_users", created).Info("Access control setup completed")
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List the users and roles of the fleet database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			database, err := a.database(ctx)
			if err != nil {
				return err
			}
			access, err := db.ListUsersAndRoles(ctx, database, a.cfg.MongoDB)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Users:")
			for _, u := range access.Users {
				roles := make([]string, len(u.Roles))
				for i, r := range u.Roles {
					roles[i] = r.Role
				}
				fmt.Fprintf(out, "  %s: %s\n", u.User, strings.Join(roles, ", "))
			}
			fmt.Fprintln(out, "Roles:")
			for _, r := range access.Roles {
				fmt.Fprintf(out, "  %s (%d privileges)\n", r.Role, len(r.Privileges))
			}
			return nil
		},
	}

	cmd.AddCommand(setup, list)
	return cmd
}
