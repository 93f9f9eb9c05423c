package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"transtools/internal/strref"
)

var (
	scriptAddJournal = regexp.MustCompile(`AddJournalEntry\((\d+),[^)]+\) {2}// ([^\n]+)`)
	scriptHead       = regexp.MustCompile(`DisplayStringHead\("([^"]+)",(\d+)\) {2}// ([^\n]+)`)
	scriptWait       = regexp.MustCompile(`DisplayStringWait\("([^"]+)",(\d+)\) {2}// ([^\n]+)`)
)

// ScriptContentParser extracts string IDs from decompiled scripts, both
// standalone BAF files and the script actions embedded in dialog files.
// IDs already claimed by the dialog passes are left alone; script records
// never shadow dialog records.
type ScriptContentParser struct {
	reg *strref.Registry
}

func NewScriptContentParser(reg *strref.Registry) *ScriptContentParser {
	return &ScriptContentParser{reg: reg}
}

func (p *ScriptContentParser) CanParse(ext string) bool {
	return ext == ".baf" || ext == ".d"
}

func (p *ScriptContentParser) Stage() Stage { return StageContent }

func (p *ScriptContentParser) Parse(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("read script file: %w", err)
	}
	content := string(data)
	// Script records are keyed by the full file name, extension included,
	// so the script strings of a dialog file never collide with the dialog
	// strings keyed by its bare resource name.
	fileName := filepath.Base(filePath)

	var ids []int
	for _, m := range scriptAddJournal.FindAllStringSubmatch(content, -1) {
		id := mustAtoi(m[1])
		if p.reg.Has(id) {
			continue
		}
		p.reg.Put(id, m[2], strref.TypeScriptJournal, fileName)
		ids = append(ids, id)
	}
	for _, m := range scriptHead.FindAllStringSubmatch(content, -1) {
		ids = p.putHeadString(ids, fileName, m)
	}
	for _, m := range scriptWait.FindAllStringSubmatch(content, -1) {
		ids = p.putHeadString(ids, fileName, m)
	}

	sort.Ints(ids)
	if len(ids) > 0 {
		p.reg.SetFileIDs(fileName, ids)
	}
	return nil
}

// putHeadString records a DisplayStringHead/Wait match. The speaking
// object is folded into the text so translators see who says the line.
func (p *ScriptContentParser) putHeadString(ids []int, fileName string, m []string) []int {
	id := mustAtoi(m[2])
	if p.reg.Has(id) {
		return ids
	}
	p.reg.Put(id, "("+m[1]+") "+m[3], strref.TypeScriptHead, fileName)
	return append(ids, id)
}
