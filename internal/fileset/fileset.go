// Package fileset lists the files of a flat folder by extension.
package fileset

import (
	"fmt"
	"os"
	"strings"
)

// NotFoundError reports a folder or file path that does not exist.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("path %s does not exist", e.Path)
}

// SuffixList wraps one or more suffix values into the slice form Find
// expects. Callers holding a lone suffix write SuffixList("txt"); existing
// slices pass through Find unchanged.
func SuffixList(values ...string) []string {
	return values
}

// Find returns the names of the immediate children of folder whose suffix
// matches one of suffixes. The suffix is the segment after the final '.'
// of the name; names with no dot match on the whole name. Matching is
// case-insensitive. Subfolders are never descended into, and entries that
// are themselves directories are skipped. Result order follows the
// directory listing and is not guaranteed stable across platforms.
//
// A missing folder yields a *NotFoundError.
func Find(folder string, suffixes []string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{Path: folder}
		}
		return nil, fmt.Errorf("failed to list folder %s: %w", folder, err)
	}

	var matched []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		suffix := Suffix(entry.Name())
		for _, want := range suffixes {
			if strings.EqualFold(suffix, want) {
				matched = append(matched, entry.Name())
				break
			}
		}
	}
	return matched, nil
}

// Suffix returns the segment of name after the final '.', or the whole name
// when it contains no dot.
func Suffix(name string) string {
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		return name[idx+1:]
	}
	return name
}

// Exists reports whether path refers to an existing file or folder.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
