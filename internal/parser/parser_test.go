package parser

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"transtools/internal/strref"
)

const abelaDialog = `BEGIN ~ABELA~

IF ~NumTimesTalkedTo(0)~ THEN BEGIN 0 // from:
  SAY #48403 /* ~Greetings.~ [ABELA] */
  IF ~~ THEN REPLY #48405 /* ~Who are you?~ */ GOTO 1
  IF ~~ THEN REPLY #48406 /* ~Farewell.~ */ EXTERN ~OTHER~ 2
END

IF ~~ THEN BEGIN 1 // from: 0.0
  SAY #48407 /* ~I am Abela.~ */
  IF ~~ THEN DO ~AddJournalEntry(52231,QUEST)~ JOURNAL #52230 /* ~We met Abela.~ */ EXIT
END
`

const patrolScript = `IF
	True()
THEN
	RESPONSE #100
		DisplayStringHead("Drizzt",31861)  // Something stirs in the woods.
		AddJournalEntry(31900,QUEST)  // A new task for the party.
		DisplayStringWait("Guard",31870)  // Halt! Who goes there?
END
`

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestDialogContentParser(t *testing.T) {
	reg := strref.New()
	path := writeFixture(t, "abela.d", abelaDialog)

	if err := NewDialogContentParser(reg).Parse(path); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	tests := []struct {
		id   int
		text string
		typ  strref.Type
	}{
		{48403, "Greetings.", strref.TypeDialog},
		{48405, "Who are you?", strref.TypeDialog},
		{48406, "Farewell.", strref.TypeDialog},
		{48407, "I am Abela.", strref.TypeDialog},
		{52231, "** No text specified in file **", strref.TypeJournal},
		{52230, "We met Abela.", strref.TypeJournal},
	}
	for _, tt := range tests {
		rec := reg.Get(tt.id)
		if rec == nil {
			t.Errorf("record %d missing", tt.id)
			continue
		}
		if rec.Text != tt.text || rec.Type != tt.typ {
			t.Errorf("record %d = %q (%v), want %q (%v)", tt.id, rec.Text, rec.Type, tt.text, tt.typ)
		}
		if rec.File != "abela" {
			t.Errorf("record %d file = %q, want %q", tt.id, rec.File, "abela")
		}
	}

	// Only SAY strings are listed under the file; the list follows block order.
	if got := reg.FileIDs("abela"); !reflect.DeepEqual(got, []int{48403, 48407}) {
		t.Errorf("FileIDs(abela) = %v, want [48403 48407]", got)
	}

	internal := map[string]int{
		"abela:0":           48403,
		"abela:0.0":         48405,
		"abela:0.1":         48406,
		"abela:1":           48407,
		"abela:1.Journal.0": 52231,
		"abela:1.Journal.1": 52230,
	}
	for label, want := range internal {
		got, ok := reg.ResolveInternalID(label)
		if !ok || got != want {
			t.Errorf("ResolveInternalID(%q) = %d, %v, want %d", label, got, ok, want)
		}
	}
}

func TestDialogStructureParser(t *testing.T) {
	reg := strref.New()
	path := writeFixture(t, "abela.d", abelaDialog)

	if err := NewDialogContentParser(reg).Parse(path); err != nil {
		t.Fatalf("content Parse() error = %v", err)
	}
	if err := NewDialogStructureParser(reg).Parse(path); err != nil {
		t.Fatalf("structure Parse() error = %v", err)
	}

	wantChildren := map[int][]int{
		48403: {48405, 48406},
		48405: {48407},
		48406: {strref.Sentinel}, // EXTERN into a file that was never parsed
		48407: {52230, 52231},
	}
	for id, want := range wantChildren {
		if got := reg.Get(id).Children(); !reflect.DeepEqual(got, want) {
			t.Errorf("children(%d) = %v, want %v", id, got, want)
		}
	}
	if got := reg.Get(52230).Parents(); !reflect.DeepEqual(got, []int{48407}) {
		t.Errorf("parents(52230) = %v, want [48407]", got)
	}
	if got := reg.Get(strref.Sentinel).Parents(); !reflect.DeepEqual(got, []int{48406}) {
		t.Errorf("parents(sentinel) = %v, want [48406]", got)
	}
}

func TestScriptContentParser(t *testing.T) {
	reg := strref.New()
	path := writeFixture(t, "patrol.baf", patrolScript)

	if err := NewScriptContentParser(reg).Parse(path); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	head := reg.Get(31861)
	if head == nil || head.Type != strref.TypeScriptHead {
		t.Fatalf("record 31861 = %+v, want script-head", head)
	}
	if want := "(Drizzt) Something stirs in the woods."; head.Text != want {
		t.Errorf("text(31861) = %q, want %q", head.Text, want)
	}
	if journal := reg.Get(31900); journal == nil || journal.Type != strref.TypeScriptJournal {
		t.Errorf("record 31900 = %+v, want script-journal", journal)
	}
	if wait := reg.Get(31870); wait == nil || wait.Text != "(Guard) Halt! Who goes there?" {
		t.Errorf("record 31870 = %+v, want wait string", wait)
	}

	// File listing is sorted and keyed by the full file name.
	if got := reg.FileIDs("patrol.baf"); !reflect.DeepEqual(got, []int{31861, 31870, 31900}) {
		t.Errorf("FileIDs(patrol.baf) = %v, want [31861 31870 31900]", got)
	}
}

func TestScriptContentParserKeepsDialogRecords(t *testing.T) {
	reg := strref.New()
	reg.Put(31861, "Spoken in a dialog", strref.TypeDialog, "abela")
	path := writeFixture(t, "patrol.baf", patrolScript)

	if err := NewScriptContentParser(reg).Parse(path); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if got := reg.Get(31861); got.Type != strref.TypeDialog {
		t.Errorf("record 31861 type = %v, want dialog record untouched", got.Type)
	}
	if got := reg.FileIDs("patrol.baf"); !reflect.DeepEqual(got, []int{31870, 31900}) {
		t.Errorf("FileIDs(patrol.baf) = %v, want [31870 31900]", got)
	}
}

func TestScriptStructureParser(t *testing.T) {
	reg := strref.New()
	path := writeFixture(t, "patrol.baf", patrolScript)

	if err := NewScriptContentParser(reg).Parse(path); err != nil {
		t.Fatalf("content Parse() error = %v", err)
	}
	if err := NewScriptStructureParser(reg).Parse(path); err != nil {
		t.Fatalf("structure Parse() error = %v", err)
	}

	for _, id := range []int{31861, 31870, 31900} {
		if got := reg.Get(id).Neighbors(); len(got) != 2 {
			t.Errorf("neighbors(%d) = %v, want the two other script IDs", id, got)
		}
	}
}

func TestScriptStructureParserSkipsUnlistedFile(t *testing.T) {
	reg := strref.New()
	path := writeFixture(t, "empty.baf", "IF\n\tTrue()\nTHEN\n\tRESPONSE #100\n\t\tContinue()\nEND\n")

	if err := NewScriptContentParser(reg).Parse(path); err != nil {
		t.Fatalf("content Parse() error = %v", err)
	}
	if err := NewScriptStructureParser(reg).Parse(path); err != nil {
		t.Fatalf("structure Parse() error = %v", err)
	}
	if got := reg.FileIDs("empty.baf"); len(got) != 0 {
		t.Errorf("FileIDs(empty.baf) = %v, want empty", got)
	}
}

func TestCanParseAndStage(t *testing.T) {
	reg := strref.New()
	if p := NewDialogContentParser(reg); !p.CanParse(".d") || p.CanParse(".baf") || p.Stage() != StageContent {
		t.Error("dialog content parser extension/stage mismatch")
	}
	if p := NewScriptContentParser(reg); !p.CanParse(".baf") || !p.CanParse(".d") {
		t.Error("script content parser must accept both .baf and .d")
	}
	if p := NewDialogStructureParser(reg); p.Stage() != StageStructure {
		t.Error("dialog structure parser stage mismatch")
	}
}
