package etl

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// FileLister enumerates the data files under a root directory. It is a
// separate collaborator so tests can substitute an in-memory listing.
type FileLister func(root string) ([]string, error)

// ListJSONFiles returns the absolute paths of every .json file under root,
// recursively, sorted lexically.
func ListJSONFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".json") {
			return nil
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		files = append(files, abs)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}
