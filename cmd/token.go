package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/andrewpaige1/accent-api/auth"
	"github.com/andrewpaige1/accent-api/config"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token <subject>",
	Short: "Mint an HS256 development token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if config.Env.Auth0Domain != "" {
			return errors.New("AUTH0_DOMAIN is set; development tokens would be rejected")
		}
		email, _ := cmd.Flags().GetString("email")
		name, _ := cmd.Flags().GetString("name")
		admin, _ := cmd.Flags().GetBool("admin")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		opts := auth.TokenOptions{
			Subject:  args[0],
			Email:    email,
			Name:     name,
			Issuer:   config.Env.JWTIssuer,
			Audience: config.Env.Auth0Audience,
			TTL:      ttl,
		}
		if admin {
			opts.Roles = []string{auth.RoleAdmin}
		}

		token, err := auth.CreateToken(config.Env.JWTSecretKey, opts)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().String("email", "", "email claim")
	tokenCmd.Flags().String("name", "", "name claim")
	tokenCmd.Flags().Bool("admin", false, "grant the admin role")
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "token lifetime")
}
