package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/Ashfaaq98/clients-console/internal/client"
	"github.com/Ashfaaq98/clients-console/internal/prefs"
	"github.com/Ashfaaq98/clients-console/internal/store"
)

// needsDatabase reports whether the configured source or prefs backend uses SQLite.
func needsDatabase(config Config) bool {
	return strings.EqualFold(config.Source, "db") || strings.EqualFold(config.Prefs.Backend, "sqlite")
}

// openDatabase opens the SQLite store at the configured path, resolved against the working directory.
func openDatabase(config Config, logger *log.Logger) (*store.Store, error) {
	path := resolvePathRelativeToBase(getWorkingDir(), config.Database.Path)
	logger.Printf("Using database at %s", path)
	st, err := store.NewStore(path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}
	return st, nil
}

// openSource returns the record source selected by config.
func openSource(config Config, st *store.Store) (client.Source, error) {
	switch strings.ToLower(config.Source) {
	case "", "sample":
		return client.SampleSource{}, nil
	case "db":
		if st == nil {
			return nil, fmt.Errorf("db source requires a database")
		}
		return st, nil
	}
	return nil, fmt.Errorf("unknown source %q (use sample or db)", config.Source)
}

// openPrefs opens the configured sort preference backend.
func openPrefs(config Config, st *store.Store, logger *log.Logger) prefs.Store {
	path := config.Prefs.Path
	if path != "" {
		path = resolvePathRelativeToBase(getWorkingDir(), path)
	}
	return prefs.New(prefs.Options{
		Backend:     config.Prefs.Backend,
		Path:        path,
		RedisURL:    config.Redis.URL,
		RedisPrefix: config.Prefs.RedisPrefix,
		DB:          st,
		Logger:      logger,
	})
}

// getExecutableDir returns the directory of the running executable.
// Falls back to current directory on error.
func getExecutableDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// getWorkingDir returns the current working directory.
// Falls back to executable directory if os.Getwd fails.
func getWorkingDir() string {
	if wd, err := os.Getwd(); err == nil && wd != "" {
		return wd
	}
	return getExecutableDir()
}

// resolvePathRelativeToBase resolves a possibly relative path against a base directory.
// Absolute paths and ":memory:" are returned unchanged.
func resolvePathRelativeToBase(base, p string) string {
	if filepath.IsAbs(p) || p == ":memory:" {
		return p
	}
	p = strings.TrimPrefix(p, "./")
	return filepath.Join(base, p)
}

// resources bundles what a command opens from configuration.
type resources struct {
	db     *store.Store
	source client.Source
	prefs  prefs.Store
}

func openResources(config Config, logger *log.Logger) (*resources, error) {
	rt := &resources{}
	if needsDatabase(config) {
		st, err := openDatabase(config, logger)
		if err != nil {
			return nil, err
		}
		rt.db = st
	}
	source, err := openSource(config, rt.db)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.source = source
	rt.prefs = openPrefs(config, rt.db, logger)
	return rt, nil
}

func (rt *resources) Close() error {
	if rt.prefs != nil {
		rt.prefs.Close()
	}
	if rt.db != nil {
		return rt.db.Close()
	}
	return nil
}
