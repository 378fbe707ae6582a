package errors

import (
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// ValidatePath validates a user supplied path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}
	return nil
}

// ValidateInputFile checks that path names an existing regular file.
func ValidateInputFile(path string) error {
	if err := ValidatePath(path); err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Wrap(ErrCodeNotFound, err, "input file %s does not exist", path)
		}
		return Wrap(ErrCodeInvalidPath, err, "cannot read %s", path)
	}
	if info.IsDir() {
		return New(ErrCodeInvalidPath, "%s is a directory", path)
	}
	return nil
}

// ValidateOutputDir checks that path can be created as a new directory:
// it must not exist yet and its parent must be an existing directory.
func ValidateOutputDir(path string) error {
	if err := ValidatePath(path); err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return New(ErrCodeInvalidPath, "output directory %s already exists", path)
	}
	parent := filepath.Dir(filepath.Clean(path))
	info, err := os.Stat(parent)
	if err != nil || !info.IsDir() {
		return New(ErrCodeInvalidPath, "parent directory %s does not exist", parent)
	}
	return nil
}

// ValidateName validates a short label such as an analysis name.
// Empty names are allowed.
func ValidateName(name string) error {
	if len(name) > 256 {
		return New(ErrCodeInvalidInput, "name too long (max 256 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "name contains invalid control characters")
		}
	}
	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidInput, "name cannot contain path separators")
	}
	return nil
}
