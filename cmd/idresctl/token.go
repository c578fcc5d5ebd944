package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	jwttoken "idres/internal/jwt_token"
)

type issuedToken struct {
	Operator  string    `json:"operator" yaml:"operator"`
	Token     string    `json:"token" yaml:"token"`
	ExpiresAt time.Time `json:"expires_at" yaml:"expires_at"`
}

func (a *app) tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Operator tokens for the HTTP API",
	}

	var (
		operator string
		scope    string
		ttl      time.Duration
	)
	issue := &cobra.Command{
		Use:   "issue",
		Short: "Sign a bearer token for the server's API",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			key := a.cfg.Auth.JWTSigningKey
			if env := os.Getenv("IDRES_JWT_SIGNING_KEY"); env != "" {
				key = env
			}
			if key == "" {
				return errors.New("no signing key: set IDRES_JWT_SIGNING_KEY or auth.jwt_signing_key in the config file")
			}
			svc := jwttoken.NewJWTService(key, a.cfg.Auth.JWTIssuer, jwttoken.APIAudience)
			token, err := svc.GenerateOperatorToken(operator, scope, ttl)
			if err != nil {
				return err
			}
			out := issuedToken{Operator: operator, Token: token, ExpiresAt: time.Now().Add(ttl).UTC().Truncate(time.Second)}
			return a.render(out, func(w *tabwriter.Writer) {
				fmt.Fprintln(w, out.Token)
			})
		},
	}
	issue.Flags().StringVar(&operator, "operator", "", "operator identity (token subject)")
	issue.Flags().StringVar(&scope, "scope", "identity:write", "token scope")
	issue.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "token lifetime")
	cmd.AddCommand(issue)
	return cmd
}
