// Package credentials stores the servers the binlayout CLI talks to in
// remote mode, one named context per server.
package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

const (
	// DefaultConfigDir is the directory under the user config home.
	DefaultConfigDir = "binlayout"
	// ContextsFileName is the name of the contexts file.
	ContextsFileName = "contexts.json"
	// FilePermissions for the contexts file (read/write for owner only).
	FilePermissions = 0600
	// DirPermissions for the contexts directory.
	DirPermissions = 0700
)

var (
	// ErrNoCurrentContext indicates no context is currently set.
	ErrNoCurrentContext = errors.New("no current context set")
	// ErrContextNotFound indicates the requested context doesn't exist.
	ErrContextNotFound = errors.New("context not found")
	// ErrTokenExpired indicates the context's token is past its expiry.
	ErrTokenExpired = errors.New("token expired - run 'binlayout login' again")
)

// Context is a connection to a binlayout service.
type Context struct {
	ServerURL string    `json:"server_url"`
	Token     string    `json:"token,omitempty"`
	Subject   string    `json:"subject,omitempty"`
	Scopes    []string  `json:"scopes,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

// IsExpired reports whether the token has expired. Tokens without an
// expiry never do.
func (c *Context) IsExpired() bool {
	if c.ExpiresAt.IsZero() {
		return false
	}
	return !time.Now().Before(c.ExpiresAt)
}

// contextsFile is the on-disk document.
type contextsFile struct {
	CurrentContext string              `json:"current_context"`
	Contexts       map[string]*Context `json:"contexts"`
}

// Store manages contexts on disk.
type Store struct {
	path string
	file *contextsFile
}

// NewStore opens the store at the default location.
func NewStore() (*Store, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return NewStoreAt(path)
}

// NewStoreAt opens the store kept in path. A missing file is an empty
// store.
func NewStoreAt(path string) (*Store, error) {
	s := &Store{path: path}
	if err := s.load(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		s.file = &contextsFile{Contexts: make(map[string]*Context)}
	}
	return s, nil
}

// DefaultPath returns $XDG_CONFIG_HOME/binlayout/contexts.json, falling
// back to ~/.config.
func DefaultPath() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, DefaultConfigDir, ContextsFileName), nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}

	s.file = &contextsFile{}
	if err := json.Unmarshal(data, s.file); err != nil {
		return err
	}
	if s.file.Contexts == nil {
		s.file.Contexts = make(map[string]*Context)
	}
	return nil
}

func (s *Store) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), DirPermissions); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	data, err := json.MarshalIndent(s.file, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, FilePermissions)
}

// Current returns the current context.
func (s *Store) Current() (*Context, error) {
	if s.file.CurrentContext == "" {
		return nil, ErrNoCurrentContext
	}
	ctx, ok := s.file.Contexts[s.file.CurrentContext]
	if !ok {
		return nil, ErrContextNotFound
	}
	return ctx, nil
}

// CurrentName returns the name of the current context.
func (s *Store) CurrentName() string {
	return s.file.CurrentContext
}

// Get returns the named context.
func (s *Store) Get(name string) (*Context, error) {
	ctx, ok := s.file.Contexts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrContextNotFound, name)
	}
	return ctx, nil
}

// Names returns every context name, sorted.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.file.Contexts))
	for name := range s.file.Contexts {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Set creates or replaces a context and makes it current.
func (s *Store) Set(name string, ctx *Context) error {
	s.file.Contexts[name] = ctx
	s.file.CurrentContext = name
	return s.save()
}

// Use switches the current context.
func (s *Store) Use(name string) error {
	if _, ok := s.file.Contexts[name]; !ok {
		return fmt.Errorf("%w: %s", ErrContextNotFound, name)
	}
	s.file.CurrentContext = name
	return s.save()
}

// Delete removes a context. Deleting the current context leaves none
// selected.
func (s *Store) Delete(name string) error {
	if _, ok := s.file.Contexts[name]; !ok {
		return fmt.Errorf("%w: %s", ErrContextNotFound, name)
	}
	delete(s.file.Contexts, name)
	if s.file.CurrentContext == name {
		s.file.CurrentContext = ""
	}
	return s.save()
}

// ClearCurrent drops the token of the current context (logout) and keeps
// its server URL.
func (s *Store) ClearCurrent() error {
	ctx, err := s.Current()
	if err != nil {
		return err
	}
	ctx.Token = ""
	ctx.Subject = ""
	ctx.Scopes = nil
	ctx.ExpiresAt = time.Time{}
	return s.save()
}

// Path returns the path of the contexts file.
func (s *Store) Path() string {
	return s.path
}

// ContextName derives a context name from a server URL: the host with
// the port joined by a dash, or "default" when the URL has no host.
func ContextName(serverURL string) string {
	u, err := url.Parse(serverURL)
	if err != nil || u.Hostname() == "" {
		return "default"
	}
	name := u.Hostname()
	if port := u.Port(); port != "" {
		name += "-" + port
	}
	return strings.ReplaceAll(name, ":", "-")
}
