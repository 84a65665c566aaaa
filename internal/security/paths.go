// Package security guards local paths built from remote object keys.
package security

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SafeJoin joins rel onto base and rejects results that escape base.
// Remote keys are slash-separated and converted to the local separator.
func SafeJoin(base, rel string) (string, error) {
	cleanBase := filepath.Clean(base)
	full := filepath.Join(cleanBase, filepath.FromSlash(rel))

	if err := ValidatePath(cleanBase, full); err != nil {
		return "", err
	}
	return full, nil
}

// ValidatePath checks if a path is within the allowed base directory.
// Returns an error if the path attempts to traverse outside the base.
func ValidatePath(basePath, targetPath string) error {
	cleanBase := filepath.Clean(basePath)
	cleanTarget := filepath.Clean(targetPath)

	if cleanTarget == cleanBase {
		return nil
	}

	// Add trailing separator to base to avoid partial directory matches
	if !strings.HasSuffix(cleanBase, string(filepath.Separator)) {
		cleanBase += string(filepath.Separator)
	}

	if !strings.HasPrefix(cleanTarget, cleanBase) {
		return fmt.Errorf("path traversal detected: %s is outside %s", targetPath, basePath)
	}

	return nil
}
