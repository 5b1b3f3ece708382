package scene

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Faultbox/meshport/internal/convert"
)

// LoadDir imports every .obj file in dir through im, naming each mesh after
// its file. Files are imported in name order; the first failure stops the
// load.
func LoadDir(im *convert.Importer, dir string) ([]*convert.ImportResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading scene directory %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".obj") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	results := make([]*convert.ImportResult, 0, len(files))
	for _, f := range files {
		name := strings.TrimSuffix(f, filepath.Ext(f))
		res, err := im.Import(filepath.Join(dir, f), name)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}
