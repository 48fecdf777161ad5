package cmdutil

import (
	"errors"
	"fmt"

	"github.com/marmos91/binlayout/internal/cli/credentials"
	"github.com/marmos91/binlayout/pkg/apiclient"
)

// RemoteClient returns the client of remote mode, or nil in local mode.
// --server selects a service directly; otherwise the current login
// context does, unless --local is set. --token overrides the token of
// either.
func RemoteClient() (*apiclient.Client, error) {
	if Flags.Server != "" {
		return apiclient.New(Flags.Server).WithToken(Flags.Token), nil
	}
	if Flags.Local {
		return nil, nil
	}

	store, err := credentials.NewStore()
	if err != nil {
		return nil, err
	}
	ctx, err := store.Current()
	if errors.Is(err, credentials.ErrNoCurrentContext) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("context %q: %w", store.CurrentName(), err)
	}

	token := ctx.Token
	if Flags.Token != "" {
		token = Flags.Token
	} else if ctx.IsExpired() {
		return nil, fmt.Errorf("context %q: %w", store.CurrentName(), credentials.ErrTokenExpired)
	}
	return apiclient.New(ctx.ServerURL).WithToken(token), nil
}

// RequireRemoteClient is RemoteClient for commands that only make sense
// against a service.
func RequireRemoteClient() (*apiclient.Client, error) {
	client, err := RemoteClient()
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, errors.New("no server selected - run 'binlayout login' or pass --server")
	}
	return client, nil
}
