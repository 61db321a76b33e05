package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/skillpath/internal/catalog"
)

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "List the roles in the catalog and their required skills",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cat, err := catalog.Load(cfg.Catalog)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, r := range cat.Roles() {
			fmt.Fprintln(out, r.Name)
			if r.Description != "" {
				fmt.Fprintf(out, "  %s\n", r.Description)
			}
			fmt.Fprintf(out, "  skills: %s\n", strings.Join(r.SkillNames(), ", "))
		}
		return nil
	},
}
