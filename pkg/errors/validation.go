package errors

import (
	"strings"
	"unicode"
)

// ValidateRepoPath validates a repository root path supplied by a caller.
// It rejects paths that could be used for traversal or injection attacks.
//
// The validation rules are intentionally conservative:
//   - No empty paths
//   - No control characters or null bytes
//   - No parent-directory traversal sequences
//   - Maximum length of 500 characters
func ValidateRepoPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "repository path cannot be empty")
	}

	if len(path) > 500 {
		return New(ErrCodeInvalidPath, "repository path too long (max 500 characters)")
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "repository path contains invalid control characters")
		}
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "repository path contains parent traversal: %q", path)
	}

	return nil
}

// ValidateInputPath validates an inventory or playbook path supplied by a caller.
// The path must stay inside the repository root when relative.
func ValidateInputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "input path cannot be empty")
	}

	if strings.Contains(path, "\x00") {
		return New(ErrCodeInvalidPath, "input path contains null byte")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "input path contains parent traversal: %q", path)
	}

	return nil
}
