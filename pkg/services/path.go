package services

import (
	"path/filepath"
	"strings"
)

// SafeJoin only accepts a single path segment as id.
func SafeJoin(root, id string) (string, error) {
	if id == "" || id == "." || id == ".." {
		return "", ErrInvalidID
	}
	if strings.ContainsAny(id, `/\`+"\x00") {
		return "", ErrInvalidID
	}
	if filepath.VolumeName(id) != "" {
		return "", ErrInvalidID
	}
	return filepath.Join(root, id), nil
}
