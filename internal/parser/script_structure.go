package parser

import (
	"path/filepath"

	"transtools/internal/strref"
)

// ScriptStructureParser links every pair of script strings found in the
// same file as neighbors. Script strings carry no ordering of their own;
// the flat same-file cluster is all the structure they get.
type ScriptStructureParser struct {
	reg *strref.Registry
}

func NewScriptStructureParser(reg *strref.Registry) *ScriptStructureParser {
	return &ScriptStructureParser{reg: reg}
}

func (p *ScriptStructureParser) CanParse(ext string) bool {
	return ext == ".baf" || ext == ".d"
}

func (p *ScriptStructureParser) Stage() Stage { return StageStructure }

func (p *ScriptStructureParser) Parse(filePath string) error {
	fileName := filepath.Base(filePath)
	all := p.reg.FileIDs(fileName)
	if len(all) == 0 {
		// The content pass found no new script strings here.
		return nil
	}
	// Dialog files list their dialog IDs under the same key scheme; only
	// script records join the neighbor cluster.
	var ids []int
	for _, id := range all {
		if rec := p.reg.Get(id); rec != nil && rec.Type.IsScript() {
			ids = append(ids, id)
		}
	}
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			p.reg.AddNeighbor(ids[i], ids[j])
		}
	}
	return nil
}
