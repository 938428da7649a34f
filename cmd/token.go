package cmd

import (
	"fmt"
	"time"

	"github.com/frahmantamala/attendance-engine/internal/auth"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token [subject]",
	Short: "Mint a dashboard token for local development",
	Long:  `Sign an admin token with the configured secret. Production tokens come from the identity provider.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(".")
		if err != nil {
			return err
		}

		role := tokenRole
		if role == "" {
			role = cfg.Security.AdminRole
		}

		token, err := auth.NewTokenVerifier(cfg.Security.AdminTokenSecret).Issue(args[0], role, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	},
}

var (
	tokenRole string
	tokenTTL  time.Duration
)

func init() {
	tokenCmd.Flags().StringVar(&tokenRole, "role", "", "role claim (defaults to the configured admin role)")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 8*time.Hour, "token lifetime")

	rootCmd.AddCommand(tokenCmd)
}
