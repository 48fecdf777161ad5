package context

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/binlayout/cmd/binlayout/cmdutil"
	"github.com/marmos91/binlayout/internal/cli/credentials"
	"github.com/marmos91/binlayout/internal/cli/timeutil"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all saved contexts",
	Args:    cobra.NoArgs,
	RunE:    runList,
}

// ContextInfo is one saved context for display. Tokens are never printed.
type ContextInfo struct {
	Name      string     `json:"name" yaml:"name"`
	Current   bool       `json:"current" yaml:"current"`
	ServerURL string     `json:"server_url" yaml:"server_url"`
	Subject   string     `json:"subject,omitempty" yaml:"subject,omitempty"`
	Scopes    []string   `json:"scopes,omitempty" yaml:"scopes,omitempty"`
	LoggedIn  bool       `json:"logged_in" yaml:"logged_in"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
}

// ContextList renders contexts as a table.
type ContextList []ContextInfo

func (cl ContextList) Headers() []string {
	return []string{"CURRENT", "NAME", "SERVER", "SUBJECT", "EXPIRES"}
}

func (cl ContextList) Rows() [][]string {
	rows := make([][]string, 0, len(cl))
	for _, c := range cl {
		current := ""
		if c.Current {
			current = "*"
		}
		subject := c.Subject
		if !c.LoggedIn {
			subject = "(logged out)"
		}
		expires := "never"
		if c.ExpiresAt != nil {
			expires = timeutil.FormatTime(*c.ExpiresAt)
		}
		rows = append(rows, []string{current, c.Name, c.ServerURL, subject, expires})
	}
	return rows
}

func newContextInfo(store *credentials.Store, name string, ctx *credentials.Context) ContextInfo {
	info := ContextInfo{
		Name:      name,
		Current:   name == store.CurrentName(),
		ServerURL: ctx.ServerURL,
		Subject:   ctx.Subject,
		Scopes:    ctx.Scopes,
		LoggedIn:  ctx.Token != "",
	}
	if !ctx.ExpiresAt.IsZero() {
		expires := ctx.ExpiresAt
		info.ExpiresAt = &expires
	}
	return info
}

func runList(cmd *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	var list ContextList
	for _, name := range store.Names() {
		ctx, err := store.Get(name)
		if err != nil {
			return err
		}
		list = append(list, newContextInfo(store, name, ctx))
	}

	return cmdutil.PrintOutput(cmd.OutOrStdout(), list, len(list) == 0,
		"No contexts saved. Run 'binlayout login <server-url>' to add one.", list)
}
