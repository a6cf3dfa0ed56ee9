package app

import (
	"errors"
	"os"
	"path/filepath"
	"sort"

	"github.com/ludo-technologies/cukereport/internal/constants"
	ignore "github.com/sabhiram/go-gitignore"
)

// FileHelper provides file operation utilities
type FileHelper struct{}

// NewFileHelper creates a new FileHelper
func NewFileHelper() *FileHelper {
	return &FileHelper{}
}

// CollectResultFiles collects Cucumber JSON result files from paths.
//
// Files named explicitly are always kept, even when they cannot be
// stat'ed; reading them is left to the parser, which reports the failure.
// Files found in directories must match one of includePatterns (by base
// name) and must not be matched by excludePatterns or by a .cukereportignore
// file at the directory root. Exclude patterns use gitignore syntax.
func (h *FileHelper) CollectResultFiles(paths []string, recursive bool, includePatterns, excludePatterns []string) ([]string, error) {
	var files []string

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			files = append(files, path)
			continue
		}

		matcher, err := h.ignoreMatcher(path, excludePatterns)
		if err != nil {
			return nil, err
		}

		found, err := h.collectDir(path, recursive, includePatterns, matcher)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}

	return files, nil
}

func (h *FileHelper) collectDir(root string, recursive bool, includePatterns []string, matcher *ignore.GitIgnore) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(filePath string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, relErr := filepath.Rel(root, filePath)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if filePath == root {
				return nil
			}
			if !recursive || matcher.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if h.isIncluded(filePath, includePatterns) && !matcher.MatchesPath(rel) {
			files = append(files, filePath)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// ignoreMatcher combines exclude patterns with the ignore file found in dir
func (h *FileHelper) ignoreMatcher(dir string, excludePatterns []string) (*ignore.GitIgnore, error) {
	ignoreFile := filepath.Join(dir, constants.IgnoreFileName)
	if _, err := os.Stat(ignoreFile); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ignore.CompileIgnoreLines(excludePatterns...), nil
		}
		return nil, err
	}
	return ignore.CompileIgnoreFileAndLines(ignoreFile, excludePatterns...)
}

// FileExists checks if a file exists
func (h *FileHelper) FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

func (h *FileHelper) isIncluded(path string, includePatterns []string) bool {
	if len(includePatterns) == 0 {
		includePatterns = []string{"*.json"}
	}
	base := filepath.Base(path)
	for _, pattern := range includePatterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}

// ResolveFilePaths resolves file paths, returning existing files directly
// or collecting result files from directories
func ResolveFilePaths(
	fileHelper *FileHelper,
	paths []string,
	recursive bool,
	includePatterns []string,
	excludePatterns []string,
) ([]string, error) {
	allFiles := true
	for _, path := range paths {
		exists, err := fileHelper.FileExists(path)
		if err != nil || !exists {
			allFiles = false
			break
		}
	}

	if allFiles {
		return paths, nil
	}

	return fileHelper.CollectResultFiles(paths, recursive, includePatterns, excludePatterns)
}
