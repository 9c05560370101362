package scan

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
)

// ListPDFs returns the PDF files in dir in lexicographic path order.
// The .pdf extension is matched case-insensitively. Without recursive,
// only the directory's immediate entries are considered.
func ListPDFs(dir string, recursive bool) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "scan: stat %s", dir)
	}
	if !info.IsDir() {
		return nil, eris.Errorf("scan: %s is not a directory", dir)
	}

	var files []string
	if recursive {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && isPDF(d.Name()) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, eris.Wrapf(err, "scan: walk %s", dir)
		}
	} else {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, eris.Wrapf(err, "scan: read dir %s", dir)
		}
		for _, e := range entries {
			if e.IsDir() || !isPDF(e.Name()) {
				continue
			}
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}

	sort.Strings(files)
	return files, nil
}

func isPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

// displayName is the name a file gets in output rows: its path relative
// to the scanned directory, which collapses to the base name for a flat
// scan.
func displayName(baseDir, path string) string {
	if rel, err := filepath.Rel(baseDir, path); err == nil {
		return rel
	}
	return filepath.Base(path)
}
