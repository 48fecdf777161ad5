package commands

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/binlayout/cmd/binlayout/cmdutil"
	"github.com/marmos91/binlayout/pkg/api/auth"
)

var (
	tokenSubject string
	tokenScopes  string
	tokenTTL     time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage API tokens",
}

var tokenIssueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Issue an API token",
	Long: `Issue a bearer token signed with server.auth.jwt_secret.

Scopes are layouts:read and layouts:write; write implies read.

Examples:
  # Read-only token valid for a day
  binlayout token issue --subject ci --ttl 24h

  # Token that can register layouts
  binlayout token issue --subject deploy --scope layouts:write`,
	RunE: runTokenIssue,
}

func init() {
	tokenIssueCmd.Flags().StringVar(&tokenSubject, "subject", "", "token subject (required)")
	tokenIssueCmd.Flags().StringVar(&tokenScopes, "scope", auth.ScopeRead, "comma-separated scopes")
	tokenIssueCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime, 0 for no expiry")
	_ = tokenIssueCmd.MarkFlagRequired("subject")

	tokenCmd.AddCommand(tokenIssueCmd)
}

func runTokenIssue(cmd *cobra.Command, _ []string) error {
	cfg, err := cmdutil.Config()
	if err != nil {
		return err
	}
	svc, err := cfg.TokenService()
	if err != nil {
		return err
	}
	if svc == nil {
		return errors.New("server.auth.jwt_secret is not configured")
	}
	if tokenTTL < 0 {
		return errors.New("--ttl must not be negative")
	}

	scopes := cmdutil.ParseCommaSeparatedList(tokenScopes)
	valid := []string{auth.ScopeRead, auth.ScopeWrite}
	for _, s := range scopes {
		if !slices.Contains(valid, s) {
			return fmt.Errorf("invalid scope %q (valid: %s, %s)", s, auth.ScopeRead, auth.ScopeWrite)
		}
	}

	token, err := svc.Issue(tokenSubject, scopes, tokenTTL)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
