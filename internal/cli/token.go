package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"flashwash/internal/domain"
	jwtsvc "flashwash/internal/pkg/jwt"
)

func newTokenCmd() *cobra.Command {
	var (
		userID int64
		role   string
	)

	c := &cobra.Command{
		Use:   "token",
		Short: "Issue an API token for a customer or provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			actor := domain.Actor{ID: userID, Role: domain.UserRole(role)}
			if actor.ID <= 0 || !actor.Role.Valid() {
				return fmt.Errorf("need --user-id > 0 and --role customer|provider")
			}

			token, err := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL).GenerateToken(actor)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	c.Flags().Int64Var(&userID, "user-id", 0, "customer user id, or provider id for providers")
	c.Flags().StringVar(&role, "role", string(domain.RoleCustomer), "customer or provider")
	_ = c.MarkFlagRequired("user-id")
	return c
}
