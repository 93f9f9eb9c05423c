package report

import (
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"transtools/internal/strref"
)

// The overview mirrors the layout of a decompiled dialog file: every SAY
// string of every file becomes one block, preceded by its parents and
// followed by its replies and journal entries. IDs are anchored and
// cross-linked so translators can follow a conversation across files.
const overviewTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: monospace; background: #fdfdfd; }
.block { border-top: 1px solid #ccc; padding-top: 0.5em; }
.say, .reply, .journal { font-weight: bold; }
.idlink, .idlink a { color: magenta; text-decoration: none; }
.supporttext { color: #777; }
span { display: inline-block; margin-right: 0.6em; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p>String IDs in magenta are links to the connected strings of the dialog.</p>
<p>Created on: {{.Created}}</p>
{{range .Blocks}}<h2>// File {{.File}}.d</h2>
<p class="block">
{{range .Parents}}<span class="sayparent"><a class="idlink" href="#id{{.ID}}">#{{.ID}}</a></span><span class="supporttext">&#9662; {{.Text}}</span><br>
{{end}}<span class="say" id="id{{.SayID}}">SAY <span class="idlink">#{{.SayID}}</span></span><span class="text">{{.SayText}}</span><br>
{{range .Entries}}{{$e := .}}{{range .Parents}}<span class="{{$e.Class}}parent"><a class="idlink" href="#id{{.ID}}">#{{.ID}}</a></span><span class="supporttext">&#9662; {{.Text}}</span><br>
{{end}}<span class="{{.Class}}">{{.Kind}} <span class="idlink" id="id{{.ID}}">#{{.ID}}</span></span><span class="text">{{.Text}}</span><br>
{{range .Children}}<span class="replychild"><a class="idlink" href="#id{{.ID}}">#{{.ID}}</a></span><span class="supporttext">&#9656; {{.Text}}</span><br>
{{end}}{{end}}</p>
{{end}}</body>
</html>
`

var overviewTmpl = template.Must(template.New("overview").Parse(overviewTemplate))

type overviewRef struct {
	ID   int
	Text string
}

type overviewEntry struct {
	Kind     string
	ID       int
	Text     string
	Parents  []overviewRef
	Children []overviewRef
}

// Class is the CSS class stem of the entry kind.
func (e overviewEntry) Class() string { return strings.ToLower(e.Kind) }

type overviewBlock struct {
	File    string
	SayID   int
	SayText string
	Parents []overviewRef
	Entries []overviewEntry
}

// WriteOverview renders the dialog structure of the whole registry as a
// navigable HTML document.
func WriteOverview(w io.Writer, reg *strref.Registry, title string) error {
	data := struct {
		Title   string
		Created string
		Blocks  []overviewBlock
	}{
		Title:   title,
		Created: time.Now().UTC().Format(time.RFC3339),
	}
	for _, file := range reg.Files() {
		for _, id := range reg.FileIDs(file) {
			rec := reg.Get(id)
			if rec == nil || rec.Type != strref.TypeDialog {
				continue
			}
			data.Blocks = append(data.Blocks, buildBlock(reg, file, rec))
		}
	}
	if err := overviewTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render overview: %w", err)
	}
	return nil
}

func buildBlock(reg *strref.Registry, file string, say *strref.Record) overviewBlock {
	block := overviewBlock{File: file, SayID: say.ID, SayText: say.Label(say.File)}
	for _, parent := range say.Parents() {
		block.Parents = append(block.Parents, ref(reg, parent, say.File))
	}
	for _, childID := range say.Children() {
		child := reg.Get(childID)
		if child == nil {
			continue
		}
		entry := overviewEntry{Kind: entryKind(child.Type), ID: childID, Text: child.Label(say.File)}
		for _, parent := range child.Parents() {
			// The reference SAY string is already on screen.
			if parent == say.ID {
				continue
			}
			entry.Parents = append(entry.Parents, ref(reg, parent, say.File))
		}
		for _, grandchild := range child.Children() {
			entry.Children = append(entry.Children, ref(reg, grandchild, say.File))
		}
		block.Entries = append(block.Entries, entry)
	}
	return block
}

func ref(reg *strref.Registry, id int, file string) overviewRef {
	if rec := reg.Get(id); rec != nil {
		return overviewRef{ID: id, Text: rec.Label(file)}
	}
	return overviewRef{ID: id}
}

func entryKind(t strref.Type) string {
	if t == strref.TypeJournal || t == strref.TypeScriptJournal {
		return "JOURNAL"
	}
	return "REPLY"
}
