// Package filex holds small filesystem helpers used while bootstrapping the
// client.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnsureParentDir creates the directory that will contain path, so SQLite
// and the log writer can create their files there. Paths without a
// directory component are left alone.
func EnsureParentDir(path string) error {
	if path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." || dir == string(filepath.Separator) {
		return nil
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}

// SQLitePath extracts the database file from a SQLite DSN. It returns ""
// for in-memory databases.
//
//	giftkeeper.db                      -> giftkeeper.db
//	file:data/gk.db?_pragma=foreign_keys(1) -> data/gk.db
//	file:x?mode=memory&cache=shared    -> ""
//	:memory:                           -> ""
func SQLitePath(dsn string) string {
	path, query, _ := strings.Cut(dsn, "?")
	if strings.Contains(query, "mode=memory") {
		return ""
	}
	path = strings.TrimPrefix(path, "file:")
	if path == "" || path == ":memory:" {
		return ""
	}
	return path
}
