package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/skillpath/internal/catalog"
	"github.com/abhisek/skillpath/internal/dashboard"
	"github.com/abhisek/skillpath/internal/syncbus"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Live view of role progress that updates as other commands write",
	RunE: func(cmd *cobra.Command, args []string) error {
		role, _ := cmd.Flags().GetString("role")
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			eng, err := e.engine(ctx, false)
			if err != nil {
				return err
			}
			roles, err := e.progress.Roles(ctx)
			if err != nil {
				return err
			}
			if role != "" && !containsKey(roles, role) {
				roles = append([]string{catalog.Key(role)}, roles...)
			}
			if len(roles) == 0 {
				return fmt.Errorf("no roles tracked yet: pass --role or run `skillpath gap` first")
			}
			current := roles[0]
			if role != "" {
				current = catalog.Key(role)
			}

			return dashboard.Run(ctx, dashboard.Options{
				Source:  eng,
				Bus:     e.bus,
				Watcher: syncbus.NewWatcher(e.bus, e.epochs, e.cfg.PollInterval, e.logger),
				Roles:   roles,
				Role:    current,
				Logger:  e.logger,
			})
		})
	},
}

func init() {
	dashboardCmd.Flags().StringP("role", "r", "", "Role to show first")
}

func containsKey(keys []string, name string) bool {
	k := catalog.Key(name)
	for _, x := range keys {
		if x == k {
			return true
		}
	}
	return false
}
