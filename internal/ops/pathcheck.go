package ops

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hpungsan/rolo/internal/config"
	"github.com/hpungsan/rolo/internal/errors"
	"github.com/hpungsan/rolo/internal/sheet"
)

// PathCheckMode indicates whether the path check is for reading or writing.
type PathCheckMode int

const (
	PathCheckRead  PathCheckMode = iota // import reads the file
	PathCheckWrite                      // export creates it
)

// ValidatePath checks a spreadsheet path given to import or export.
//
// The path must have no ".." component and a .xlsx or .csv extension, and
// neither the file nor its directory may be a symlink. Unless
// allow_unsafe_paths is set, the file must also sit directly in the exports
// directory or in one of allowed_paths: no subdirectories, so only the final
// component is left for O_NOFOLLOW to guard at open time.
func ValidatePath(path string, mode PathCheckMode, cfg *config.Config) error {
	if path == "" {
		return errors.NewInvalidRequest("path is required")
	}
	if containsTraversal(path) {
		return errors.NewInvalidRequest("path must not contain directory traversal (..)")
	}

	cleaned := filepath.Clean(path)
	if _, err := sheet.FormatFromPath(cleaned); err != nil {
		return errors.NewInvalidRequest("path must have .xlsx or .csv extension")
	}
	absPath, err := filepath.Abs(cleaned)
	if err != nil {
		return errors.NewInvalidRequest(fmt.Sprintf("invalid path: %v", err))
	}

	if cfg == nil || !cfg.AllowUnsafePaths {
		allowedDirs, err := getAllowedDirs(cfg)
		if err != nil {
			return err
		}
		parentDir := filepath.Dir(absPath)
		if !slices.Contains(allowedDirs, parentDir) {
			return errors.NewInvalidRequest(
				fmt.Sprintf("file must be directly in an allowed directory (no subdirectories); allowed: %v",
					allowedDirs))
		}
		if isSymlink(parentDir) {
			return errors.NewInvalidRequest("parent directory must not be a symlink")
		}
	}

	if mode == PathCheckRead {
		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			return errors.NewFileNotFound(path)
		}
	}
	if isSymlink(absPath) {
		return errors.NewInvalidRequest("path must not be a symlink")
	}
	return nil
}

// isSymlink reports whether path exists and is itself a symlink.
func isSymlink(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.Mode()&os.ModeSymlink != 0
}

// getAllowedDirs returns the exports directory plus the absolute entries of
// allowed_paths, each cleaned and with a symlinked entry replaced by its target.
func getAllowedDirs(cfg *config.Config) ([]string, error) {
	exportsDir, err := ExportsDir(cfg)
	if err != nil {
		return nil, err
	}
	dirs := []string{exportsDir}
	if cfg != nil {
		for _, p := range cfg.AllowedPaths {
			if filepath.IsAbs(p) {
				dirs = append(dirs, p)
			}
		}
	}

	for i, d := range dirs {
		abs, err := filepath.Abs(filepath.Clean(d))
		if err != nil {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid allowed path: %v", err))
		}
		if isSymlink(abs) {
			if abs, err = filepath.EvalSymlinks(abs); err != nil {
				return nil, errors.NewInvalidRequest(fmt.Sprintf("cannot resolve symlink in allowed path: %v", err))
			}
		}
		dirs[i] = abs
	}
	return dirs, nil
}

// ExportsDir returns the configured exports directory, or ~/.rolo/exports.
func ExportsDir(cfg *config.Config) (string, error) {
	if cfg != nil && cfg.ExportsDir != "" && filepath.IsAbs(cfg.ExportsDir) {
		return filepath.Clean(cfg.ExportsDir), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.NewInternal(fmt.Errorf("failed to get home directory: %w", err))
	}
	return filepath.Join(homeDir, ".rolo", "exports"), nil
}

// containsTraversal reports whether any component of path is "..". Both the
// OS separator and "/" delimit components.
func containsTraversal(path string) bool {
	parts := strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == filepath.Separator
	})
	return slices.Contains(parts, "..")
}
