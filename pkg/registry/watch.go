package registry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/marmos91/binlayout/internal/logger"
	"github.com/marmos91/binlayout/pkg/schema"
)

// descriptorExts are the file extensions LoadDir and Watch pick up.
var descriptorExts = map[string]bool{".yaml": true, ".yml": true, ".json": true}

// NameFromPath derives a layout name from a descriptor file name:
// "dir/header.v2.yaml" becomes "header.v2".
func NameFromPath(path string) (string, bool) {
	base := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(base))
	if !descriptorExts[ext] {
		return "", false
	}
	return strings.TrimSuffix(base, filepath.Ext(base)), true
}

// LoadFile parses the descriptor file at path and puts it into s under the
// name derived from the file name.
func LoadFile(ctx context.Context, s Store, path string) (*Layout, error) {
	name, ok := NameFromPath(path)
	if !ok {
		return nil, fmt.Errorf("%s: not a descriptor file", path)
	}

	d, err := schema.Load(path)
	if err != nil {
		return nil, err
	}

	l := &Layout{Name: name, Descriptor: d, Description: "loaded from " + filepath.Base(path)}
	if err := s.Put(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// LoadDir puts every descriptor file in dir into s. Files that fail to
// parse are logged and skipped; the number of loaded layouts is returned.
func LoadDir(ctx context.Context, s Store, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read layout directory: %w", err)
	}

	n := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := NameFromPath(e.Name()); !ok {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if _, err := LoadFile(ctx, s, path); err != nil {
			logger.Warn("skipping layout file", logger.File(path), logger.Err(err))
			continue
		}
		n++
	}
	return n, nil
}

// Watch loads dir into s and then keeps s in sync with it until ctx is
// done: written or created files are (re)loaded, removed or renamed files
// are deleted from s.
func Watch(ctx context.Context, s Store, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	n, err := LoadDir(ctx, s, dir)
	if err != nil {
		return err
	}
	logger.Info("watching layout directory", logger.File(dir), "layouts", n)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			handleEvent(ctx, s, event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("layout watcher error", logger.Err(err))
		}
	}
}

func handleEvent(ctx context.Context, s Store, event fsnotify.Event) {
	name, ok := NameFromPath(event.Name)
	if !ok {
		return
	}

	switch {
	case event.Has(fsnotify.Write) || event.Has(fsnotify.Create):
		if _, err := LoadFile(ctx, s, event.Name); err != nil {
			logger.Warn("failed to reload layout", logger.File(event.Name), logger.Err(err))
			return
		}
		logger.Info("layout reloaded", logger.Layout(name), logger.File(event.Name))
	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		if err := s.Delete(ctx, name); err != nil && !errors.Is(err, ErrNotFound) {
			logger.Warn("failed to drop layout", logger.Layout(name), logger.Err(err))
			return
		}
		logger.Info("layout dropped", logger.Layout(name), logger.File(event.Name))
	}
}
