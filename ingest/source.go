package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// PDFPattern matches PDFs directly inside the data directory, in any
// letter case.
const PDFPattern = "*.[pP][dD][fF]"

// ScanPDFs returns the sorted paths of files in dir matching PDFPattern.
func ScanPDFs(dir string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(dir), PDFPattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}

	paths := make([]string, len(matches))
	for i, m := range matches {
		paths[i] = filepath.Join(dir, m)
	}
	sort.Strings(paths)
	return paths, nil
}

// Batches cuts paths into consecutive groups of at most size.
func Batches(paths []string, size int) [][]string {
	if size <= 0 {
		size = 1
	}
	var out [][]string
	for i := 0; i < len(paths); i += size {
		out = append(out, paths[i:min(i+size, len(paths))])
	}
	return out
}
