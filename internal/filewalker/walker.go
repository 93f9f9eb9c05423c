package filewalker

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// SupportedExtensions lists file types handled by the tool.
var SupportedExtensions = map[string]bool{
	".d":   true,
	".baf": true,
	".itm": true,
	".cre": true,
	".2da": true,
}

// Walker collects game export files of the requested extensions.
type Walker struct {
	exts map[string]bool
}

// New creates a Walker restricted to the given extensions. With no
// arguments every supported extension is accepted.
func New(exts ...string) *Walker {
	if len(exts) == 0 {
		return &Walker{exts: SupportedExtensions}
	}
	m := make(map[string]bool, len(exts))
	for _, e := range exts {
		m[strings.ToLower(e)] = true
	}
	return &Walker{exts: m}
}

// Walk discovers all matching files under the given root directory.
// Paths come back sorted so parse order and report order stay stable
// across runs.
func (w *Walker) Walk(root string) ([]string, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root path: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", root)
	}

	var paths []string

	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Error walking path")
			return nil
		}

		if info.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if !w.exts[ext] {
			return nil
		}

		paths = append(paths, path)
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}

	sort.Strings(paths)
	log.Info().Int("count", len(paths)).Str("root", root).Msg("Discovered files")
	return paths, nil
}
