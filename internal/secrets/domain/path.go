package domain

import (
	"fmt"
	"sort"
	"strings"
)

// MaxPathLength is the longest accepted path in bytes.
const MaxPathLength = 1024

// ValidatePath checks a secret path.
//
// Paths are opaque strings with two exceptions: "/" separates namespace segments
// for ListKeys, and a path may not start with "/" or contain a ".." segment.
func ValidatePath(path string) error {
	switch {
	case path == "":
		return fmt.Errorf("%w: path is empty", ErrInvalidPath)
	case len(path) > MaxPathLength:
		return fmt.Errorf("%w: path exceeds %d bytes", ErrInvalidPath, MaxPathLength)
	case strings.HasPrefix(path, "/"):
		return fmt.Errorf("%w: path must not start with '/'", ErrInvalidPath)
	case strings.ContainsRune(path, 0):
		return fmt.Errorf("%w: path contains a NUL byte", ErrInvalidPath)
	}

	for _, segment := range strings.Split(path, "/") {
		if segment == ".." {
			return fmt.Errorf("%w: path contains a '..' segment", ErrInvalidPath)
		}
	}
	return nil
}

// NormalizeDir returns dir with a trailing "/" unless it is empty.
func NormalizeDir(dir string) string {
	if dir == "" || strings.HasSuffix(dir, "/") {
		return dir
	}
	return dir + "/"
}

// ChildKeys returns the immediate children of dir among paths.
//
// A child that has descendants is returned with a trailing "/"; a leaf without it.
// When a name is both a leaf and a directory, both forms are returned. The result is
// sorted and free of duplicates.
func ChildKeys(paths []string, dir string) []string {
	dir = NormalizeDir(dir)

	seen := make(map[string]struct{})
	for _, p := range paths {
		if !strings.HasPrefix(p, dir) {
			continue
		}
		rest := p[len(dir):]
		if rest == "" {
			continue
		}
		if i := strings.Index(rest, "/"); i >= 0 {
			rest = rest[:i+1]
		}
		seen[rest] = struct{}{}
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FilterPrefix returns the sorted subset of paths starting with prefix.
func FilterPrefix(paths []string, prefix string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if strings.HasPrefix(p, prefix) {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}
