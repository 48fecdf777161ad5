package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/binlayout/cmd/binlayout/cmdutil"
	"github.com/marmos91/binlayout/internal/cli/credentials"
	"github.com/marmos91/binlayout/pkg/api/auth"
	"github.com/marmos91/binlayout/pkg/apiclient"
)

var loginName string

var loginCmd = &cobra.Command{
	Use:   "login <server-url>",
	Short: "Save a binlayout service as the current context",
	Long: `Connect to a running "binlayout serve" and save it as a named context.

While a context is current, the registry commands work on the service and
encode, decode and size fetch registered layouts from it. Pass --local to
ignore the context for one command, or run "binlayout logout".

The token is checked against the service before it is saved. Services
running without authentication accept an empty token.

Examples:
  # Log in with a token issued by "binlayout token issue"
  binlayout login http://localhost:8080 --token "$BINLAYOUT_TOKEN"

  # Save under an explicit context name
  binlayout login https://layouts.example.com --token "$T" --name prod`,
	Args:        cobra.ExactArgs(1),
	Annotations: cmdutil.NoConfig(),
	RunE:        runLogin,
}

func init() {
	loginCmd.Flags().StringVar(&loginName, "name", "", "context name (default: derived from the server URL)")
}

func runLogin(cmd *cobra.Command, args []string) error {
	serverURL := args[0]
	token := cmdutil.Flags.Token
	client := apiclient.New(serverURL).WithToken(token)

	if _, err := client.Health(cmd.Context()); err != nil {
		return fmt.Errorf("cannot reach %s: %w", serverURL, err)
	}
	if _, err := client.ListLayouts(cmd.Context(), false); err != nil {
		var apiErr *apiclient.APIError
		if errors.As(err, &apiErr) && apiErr.IsAuthError() {
			return fmt.Errorf("token rejected by %s: %w", serverURL, err)
		}
		return err
	}

	ctx := &credentials.Context{ServerURL: client.BaseURL(), Token: token}
	if token != "" {
		claims, err := auth.Inspect(token)
		if err != nil {
			return err
		}
		ctx.Subject = claims.Subject
		ctx.Scopes = claims.Scopes
		if claims.ExpiresAt != nil {
			ctx.ExpiresAt = claims.ExpiresAt.Time
		}
	}

	store, err := credentials.NewStore()
	if err != nil {
		return fmt.Errorf("failed to initialize credential store: %w", err)
	}
	name := loginName
	if name == "" {
		name = credentials.ContextName(serverURL)
	}
	if err := store.Set(name, ctx); err != nil {
		return fmt.Errorf("failed to save context: %w", err)
	}

	p, err := cmdutil.Printer(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	msg := fmt.Sprintf("Logged in to %s (context %s)", ctx.ServerURL, name)
	if ctx.Subject != "" {
		msg = fmt.Sprintf("Logged in to %s as %s (context %s)", ctx.ServerURL, ctx.Subject, name)
	}
	p.Success(msg)
	if !ctx.ExpiresAt.IsZero() {
		p.Printf("Token expires in %s\n", time.Until(ctx.ExpiresAt).Round(time.Minute))
	}
	return nil
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the token of the current context",
	Long: `Remove the token of the current context. The context keeps its server
URL so "binlayout login" can refresh it; "binlayout context delete" removes
it entirely.`,
	Args:        cobra.NoArgs,
	Annotations: cmdutil.NoConfig(),
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := credentials.NewStore()
		if err != nil {
			return fmt.Errorf("failed to initialize credential store: %w", err)
		}
		if err := store.ClearCurrent(); err != nil {
			if errors.Is(err, credentials.ErrNoCurrentContext) {
				return errors.New("not logged in")
			}
			return err
		}
		p, err := cmdutil.Printer(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		p.Success(fmt.Sprintf("Logged out of context %s", store.CurrentName()))
		return nil
	},
}
