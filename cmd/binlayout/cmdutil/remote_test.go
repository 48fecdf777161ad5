package cmdutil

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/binlayout/internal/cli/credentials"
	"github.com/marmos91/binlayout/pkg/api"
	"github.com/marmos91/binlayout/pkg/apiclient"
	"github.com/marmos91/binlayout/pkg/config"
	"github.com/marmos91/binlayout/pkg/layout"
	"github.com/marmos91/binlayout/pkg/registry"
	"github.com/marmos91/binlayout/pkg/registry/memory"
	"github.com/marmos91/binlayout/pkg/schema"
)

func saveContext(t *testing.T, name string, ctx *credentials.Context) {
	t.Helper()
	store, err := credentials.NewStore()
	require.NoError(t, err)
	require.NoError(t, store.Set(name, ctx))
}

func TestRemoteClientLocalByDefault(t *testing.T) {
	isolateContexts(t)
	setFlags(t, GlobalFlags{})

	client, err := RemoteClient()
	require.NoError(t, err)
	assert.Nil(t, client)

	_, err = RequireRemoteClient()
	assert.Error(t, err)
}

func TestRemoteClientFromServerFlag(t *testing.T) {
	isolateContexts(t)
	setFlags(t, GlobalFlags{Server: "http://localhost:9090/", Local: true})

	client, err := RemoteClient()
	require.NoError(t, err)
	require.NotNil(t, client)
	assert.Equal(t, "http://localhost:9090", client.BaseURL())
}

func TestRemoteClientFromContext(t *testing.T) {
	isolateContexts(t)
	saveContext(t, "dev", &credentials.Context{ServerURL: "http://dev:8080", Token: "tok"})

	setFlags(t, GlobalFlags{})
	client, err := RemoteClient()
	require.NoError(t, err)
	require.NotNil(t, client)
	assert.Equal(t, "http://dev:8080", client.BaseURL())

	setFlags(t, GlobalFlags{Local: true})
	client, err = RemoteClient()
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestRemoteClientExpiredContext(t *testing.T) {
	isolateContexts(t)
	saveContext(t, "old", &credentials.Context{
		ServerURL: "http://old:8080",
		Token:     "tok",
		ExpiresAt: time.Now().Add(-time.Minute),
	})

	setFlags(t, GlobalFlags{})
	_, err := RemoteClient()
	assert.ErrorIs(t, err, credentials.ErrTokenExpired)

	setFlags(t, GlobalFlags{Token: "fresh"})
	client, err := RemoteClient()
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestResolveLayoutFromRemoteRegistry(t *testing.T) {
	isolateContexts(t)

	backend := memory.New()
	srv := httptest.NewServer(api.NewRouter(api.Config{}, api.Deps{Store: backend}))
	t.Cleanup(srv.Close)

	d, err := schema.Parse([]byte(headerDoc))
	require.NoError(t, err)
	require.NoError(t, apiclient.NewStore(apiclient.New(srv.URL)).Put(t.Context(),
		&registry.Layout{Name: "hdr", Descriptor: d}))

	setFlags(t, GlobalFlags{Server: srv.URL})
	name, got, err := ResolveLayout(t.Context(), config.GetDefaultConfig(), "hdr")
	require.NoError(t, err)
	assert.Equal(t, "hdr", name)
	assert.Equal(t, 3, layout.Size(got))

	_, _, err = ResolveLayout(t.Context(), config.GetDefaultConfig(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "neither a file nor a registered layout")
}
