package source

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// FormatOf picks the check-in format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".jsonl", ".ndjson":
		return FormatJSONL, nil
	}
	return "", fmt.Errorf("%s: unsupported check-in file type", path)
}

// Discover expands paths into check-in files. Directories are walked and
// every file with a known extension is included, in lexical order; files
// given explicitly must have a known extension.
func Discover(paths []string) ([]CheckinFile, error) {
	var files []CheckinFile
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			format, err := FormatOf(p)
			if err != nil {
				return nil, err
			}
			files = append(files, CheckinFile{Path: p, Format: format})
			continue
		}

		var found []CheckinFile
		err = filepath.WalkDir(p, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return nil //nolint:nilerr // skip unreadable entries
			}
			if d.IsDir() {
				return nil
			}
			if format, err := FormatOf(path); err == nil {
				found = append(found, CheckinFile{Path: path, Format: format})
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		slices.SortFunc(found, func(a, b CheckinFile) int { return strings.Compare(a.Path, b.Path) })
		files = append(files, found...)
	}
	return files, nil
}
