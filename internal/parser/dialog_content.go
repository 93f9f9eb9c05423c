package parser

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"transtools/internal/strref"
)

var (
	dialogBegin      = regexp.MustCompile(`~ THEN BEGIN (\d+)`)
	dialogContentEnd = regexp.MustCompile(`[\r\n]END[\r\n]`)
	dialogSay        = regexp.MustCompile(`SAY #(\d+) /\* ~([^~]*)~`)
	dialogReply      = regexp.MustCompile(`~ THEN REPLY #(\d+) /\* ~([^~]*)~`)
	dialogAddJournal = regexp.MustCompile(`AddJournalEntry\((\d+)`)
	dialogJournal    = regexp.MustCompile(`JOURNAL #(\d+) /\* ~([^~]*)~`)
)

// journalPlaceholder stands in for journal entries that carry no inline
// text in the dialog file; the real text lives in a script elsewhere.
const journalPlaceholder = "** No text specified in file **"

// DialogContentParser extracts string IDs and texts from decompiled dialog
// files. Every dialog block also yields internal IDs ("file:block" and
// "file:block.reply") that the structure pass resolves into edges later.
type DialogContentParser struct {
	reg *strref.Registry
}

func NewDialogContentParser(reg *strref.Registry) *DialogContentParser {
	return &DialogContentParser{reg: reg}
}

func (p *DialogContentParser) CanParse(ext string) bool { return ext == ".d" }

func (p *DialogContentParser) Stage() Stage { return StageContent }

func (p *DialogContentParser) Parse(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("read dialog file: %w", err)
	}
	p.parseBlocks(baseName(filePath), string(data))
	return nil
}

// parseBlocks walks the dialog blocks of one file. A block starts at
// "~ THEN BEGIN n" and runs to the nearest following line holding only
// "END"; each one is examined separately.
func (p *DialogContentParser) parseBlocks(fileName, content string) {
	p.reg.ResetFileIDs(fileName)
	for _, begin := range dialogBegin.FindAllStringSubmatchIndex(content, -1) {
		blockID := fileName + ":" + content[begin[2]:begin[3]]
		end := dialogContentEnd.FindStringIndex(content[begin[0]:])
		if end == nil {
			log.Warn().Str("file", fileName).Str("block", blockID).
				Msg("Dialog block has no END, skipping")
			continue
		}
		p.parseBlock(fileName, blockID, content[begin[1]:begin[0]+end[0]])
	}
}

// parseBlock pulls the SAY line, the REPLY lines and the journal entries
// out of one dialog block. The SAY string ID is registered under the
// block's internal ID; replies and journals get derived internal IDs so
// they stay unique across files.
func (p *DialogContentParser) parseBlock(fileName, blockID, content string) {
	say := dialogSay.FindStringSubmatch(content)
	if say == nil {
		log.Warn().Str("file", fileName).Str("block", blockID).
			Msg("Dialog block has no SAY, skipping")
		return
	}
	id := mustAtoi(say[1])
	p.reg.Put(id, say[2], strref.TypeDialog, fileName)
	p.reg.SetInternalID(blockID, id)
	p.reg.AppendFileID(fileName, id)

	for i, reply := range dialogReply.FindAllStringSubmatch(content, -1) {
		id = mustAtoi(reply[1])
		p.reg.Put(id, reply[2], strref.TypeDialog, fileName)
		p.reg.SetInternalID(blockID+"."+strconv.Itoa(i), id)
	}

	// AddJournalEntry and JOURNAL share one counter, both being journal
	// entries of the same block.
	i := 0
	for _, entry := range dialogAddJournal.FindAllStringSubmatch(content, -1) {
		id = mustAtoi(entry[1])
		p.reg.Put(id, journalPlaceholder, strref.TypeJournal, fileName)
		p.reg.SetInternalID(blockID+".Journal."+strconv.Itoa(i), id)
		i++
	}
	for _, entry := range dialogJournal.FindAllStringSubmatch(content, -1) {
		id = mustAtoi(entry[1])
		p.reg.Put(id, entry[2], strref.TypeJournal, fileName)
		p.reg.SetInternalID(blockID+".Journal."+strconv.Itoa(i), id)
		i++
	}
}

// mustAtoi converts a regexp \d+ capture; the pattern guarantees digits.
func mustAtoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		panic(fmt.Sprintf("digit capture %q: %v", s, err))
	}
	return n
}
