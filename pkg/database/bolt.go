package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.etcd.io/bbolt"
)

// OpenBolt opens (creating if needed) the bbolt file named by a bolt://
// URL. Both bolt:///abs/path and bolt://relative/path are accepted.
func OpenBolt(uri string) (*bbolt.DB, error) {
	path := BoltPath(uri)
	if path == "" {
		return nil, fmt.Errorf("bolt URL %q has no file path", uri)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt file %s: %w", path, err)
	}
	return db, nil
}

func BoltPath(uri string) string {
	return strings.TrimPrefix(uri, "bolt://")
}

// Scheme returns the backend named by a DATABASE_URL.
func Scheme(uri string) string {
	i := strings.Index(uri, "://")
	if i < 0 {
		return ""
	}
	switch s := strings.ToLower(uri[:i]); s {
	case "postgresql":
		return "postgres"
	case "mongodb+srv":
		return "mongodb"
	default:
		return s
	}
}
