package parser

import (
	"path/filepath"
	"strings"
)

// Stage names the pass a parser belongs to. Content parsers run over all
// input files first and fill the registry with records; structure parsers
// run second and only wire edges between records that already exist.
type Stage string

const (
	StageContent   Stage = "content"
	StageStructure Stage = "structure"
)

// Parser is the interface for all game file parsers. Parsers write into a
// shared string registry handed to their constructor.
type Parser interface {
	// CanParse returns true if this parser handles the given file extension.
	CanParse(ext string) bool
	// Stage returns the pass this parser runs in.
	Stage() Stage
	// Parse extracts string references from a file into the registry.
	Parse(filePath string) error
}

// baseName returns the file name without directory and extension. Dialog
// records are keyed this way because the game references dialog files by
// their bare resource name.
func baseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
