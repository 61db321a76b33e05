package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var signinCmd = &cobra.Command{
	Use:   "signin",
	Short: "Create your points account if it does not exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			eng, err := e.engine(ctx, false)
			if err != nil {
				return err
			}
			if name == "" {
				name = e.cfg.DisplayName
			}
			if email == "" {
				email = e.cfg.Email
			}
			created, err := eng.SignIn(ctx, name, email)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "Account created for %s.\n", eng.UserID())
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s.\n", eng.UserID())
			}
			return nil
		})
	},
}

func init() {
	signinCmd.Flags().String("name", "", "Display name (defaults to user.name from config)")
	signinCmd.Flags().String("email", "", "Email (defaults to user.email from config)")
}
