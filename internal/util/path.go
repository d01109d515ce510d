package util

import (
	"os"
	"path/filepath"
	"strings"
)

// SlugSessionID builds the accounting session identifier for a working
// directory: every path segment lower-cased and joined with hyphens, the
// same shape the accounting tool derives from project paths.
func SlugSessionID(cwd string) string {
	parts := SplitPath(cwd)
	if len(parts) == 0 {
		return ""
	}
	for i, p := range parts {
		parts[i] = strings.ToLower(p)
	}
	return strings.Join(parts, "-")
}

// SplitPath splits a path into its non-empty segments.
func SplitPath(path string) []string {
	segments := strings.Split(filepath.ToSlash(path), "/")
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return parts
}

// NormalizeDirName lower-cases a directory name and replaces spaces with
// hyphens, matching the indexing service's collection naming.
func NormalizeDirName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "-")
}

// LastSegment returns the final path segment, or "" for an empty path.
func LastSegment(path string) string {
	parts := SplitPath(path)
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}

// ExpandPath expands a leading "~/" to the user's home directory and
// resolves the result to an absolute path.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}

// EnsureDir creates dir and any missing parents.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}
