package parser

import (
	"fmt"
	"os"
	"regexp"

	"github.com/rs/zerolog/log"

	"transtools/internal/strref"
)

var (
	structEnd        = regexp.MustCompile(`END[\r\n]`)
	structSay        = regexp.MustCompile(`SAY #(\d+)`)
	structReply      = regexp.MustCompile(`REPLY #(\d+)`)
	structGoto       = regexp.MustCompile(`GOTO (\d+)`)
	structJournal    = regexp.MustCompile(`JOURNAL #(\d+)`)
	structAddJournal = regexp.MustCompile(`AddJournalEntry\((\d+)`)
	structExtern     = regexp.MustCompile(`EXTERN ~([^~]*)~ (\d+)`)

	// Dialog lines within a block are indented by two spaces.
	structLineSplit = regexp.MustCompile(`[\r\n] {2}`)
)

// DialogStructureParser wires parent/child edges between the records the
// content pass created. It runs over the same dialog files a second time:
// within a block the SAY string is the parent, and every REPLY, GOTO,
// JOURNAL, AddJournalEntry and EXTERN on the following lines is a child.
type DialogStructureParser struct {
	reg *strref.Registry
}

func NewDialogStructureParser(reg *strref.Registry) *DialogStructureParser {
	return &DialogStructureParser{reg: reg}
}

func (p *DialogStructureParser) CanParse(ext string) bool { return ext == ".d" }

func (p *DialogStructureParser) Stage() Stage { return StageStructure }

func (p *DialogStructureParser) Parse(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("read dialog file: %w", err)
	}
	p.parseBlocks(baseName(filePath), string(data))
	return nil
}

func (p *DialogStructureParser) parseBlocks(fileName, content string) {
	for _, begin := range dialogBegin.FindAllStringIndex(content, -1) {
		end := structEnd.FindStringIndex(content[begin[0]:])
		if end == nil {
			continue
		}
		p.parseBlock(fileName, content[begin[1]:begin[0]+end[0]])
	}
}

func (p *DialogStructureParser) parseBlock(fileName, content string) {
	say := structSay.FindStringSubmatch(content)
	if say == nil {
		return
	}
	sayID := mustAtoi(say[1])
	for _, line := range structLineSplit.Split(content, -1) {
		p.parseLine(fileName, sayID, line)
	}
}

// parseLine links the references on one dialog line to the given parent.
// A REPLY shifts the parent for the remainder of the line: whatever the
// line transitions to is reached through that reply, not the SAY string.
func (p *DialogStructureParser) parseLine(fileName string, parentID int, line string) {
	if m := structReply.FindStringSubmatch(line); m != nil {
		id := mustAtoi(m[1])
		p.addEdge(parentID, id)
		parentID = id
	}
	if m := structGoto.FindStringSubmatch(line); m != nil {
		p.addInternalEdge(parentID, fileName+":"+m[1])
	}
	if m := structJournal.FindStringSubmatch(line); m != nil {
		p.addEdge(parentID, mustAtoi(m[1]))
	}
	if m := structAddJournal.FindStringSubmatch(line); m != nil {
		p.addEdge(parentID, mustAtoi(m[1]))
	}
	if m := structExtern.FindStringSubmatch(line); m != nil {
		p.addInternalEdge(parentID, m[1]+":"+m[2])
	}
}

// addEdge links parent and child, rerouting unknown endpoints to the
// sentinel so a stray reference never derails the rest of the file.
func (p *DialogStructureParser) addEdge(parentID, childID int) {
	if !p.reg.Has(parentID) {
		return
	}
	if !p.reg.Has(childID) {
		log.Debug().Int("parent", parentID).Int("child", childID).
			Msg("Unknown child ID, linking sentinel")
		childID = strref.Sentinel
	}
	p.reg.AddEdge(parentID, childID)
}

// addInternalEdge resolves a file-scoped label (GOTO and EXTERN targets)
// to a string ID; unresolvable labels link the sentinel instead.
func (p *DialogStructureParser) addInternalEdge(parentID int, internalID string) {
	if id, ok := p.reg.ResolveInternalID(internalID); ok {
		p.addEdge(parentID, id)
		return
	}
	log.Debug().Int("parent", parentID).Str("internal", internalID).
		Msg("Unresolvable reference, linking sentinel")
	p.addEdge(parentID, strref.Sentinel)
}
