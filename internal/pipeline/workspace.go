package pipeline

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

const (
	workspacePrefix = "finseries-"
	extractedDir    = "extracted"
)

// workspace is the staging directory of one run:
//
//	<base>/finseries-<run id>/
//	  MNZIRS0108.csv
//	  2014.zip
//	  extracted/
//	    2014/...
type workspace struct {
	root  string
	taken map[string]bool // Names already used, lower-cased
}

func newWorkspace(base, runID string) (*workspace, error) {
	if base == "" {
		base = os.TempDir()
	}
	root := filepath.Join(base, workspacePrefix+runID)
	if err := os.MkdirAll(filepath.Join(root, extractedDir), 0o755); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	return &workspace{root: root, taken: make(map[string]bool)}, nil
}

// stagePath returns a distinct local path for the object key. A key whose base name is taken gets an index
// prefix, repeated until the name is free.
func (w *workspace) stagePath(index int, key string) string {
	base := path.Base(key)
	if base == "." || base == "/" {
		base = "object"
	}
	name := base
	for n := index; w.taken["raw/"+strings.ToLower(name)]; n++ {
		name = fmt.Sprintf("%03d-%s", n, base)
	}
	w.taken["raw/"+strings.ToLower(name)] = true
	return filepath.Join(w.root, name)
}

// extractDir returns a distinct output directory for an archive, named after it without extension.
func (w *workspace) extractDir(archivePath string) string {
	base := strings.TrimSuffix(filepath.Base(archivePath), filepath.Ext(archivePath))
	name := base
	for i := 2; w.taken["extracted/"+strings.ToLower(name)]; i++ {
		name = fmt.Sprintf("%s-%d", base, i)
	}
	w.taken["extracted/"+strings.ToLower(name)] = true
	return filepath.Join(w.root, extractedDir, name)
}

func (w *workspace) remove() error {
	return os.RemoveAll(w.root)
}
