package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"carbonyx/internal/domain/auth"
)

func NewTokenCmd(opts *RootOptions) *cobra.Command {
	var (
		org    string
		user   string
		email  string
		roles  []string
		ttl    time.Duration
		secret string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API access token scoped to one organization",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireOrgFlag(org); err != nil {
				return err
			}
			if secret == "" {
				secret = opts.cfg.JWTSecret
			}

			jwtCfg := auth.DefaultJWTConfig(secret)
			jwtCfg.Issuer = opts.cfg.JWTIssuer
			jwtCfg.AccessTokenTTL = ttl

			svc, err := auth.NewJWTService(jwtCfg)
			if err != nil {
				return fmt.Errorf("%w (set JWT_SECRET or --secret)", err)
			}
			token, expiresAt, err := svc.GenerateAccessToken(user, org, email, roles)
			if err != nil {
				return err
			}

			result := map[string]any{"accessToken": token, "expiresAt": expiresAt.UTC()}
			return opts.print(cmd.OutOrStdout(), result, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, token)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&org, "org", "", "Organization id")
	cmd.Flags().StringVar(&user, "user", "carbonctl", "Subject of the token")
	cmd.Flags().StringVar(&email, "email", "", "Email claim")
	cmd.Flags().StringSliceVar(&roles, "role", nil, "Role claim, repeatable")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	cmd.Flags().StringVar(&secret, "secret", "", "Signing secret (default JWT_SECRET)")
	return cmd
}
