package report

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/goccy/go-graphviz"

	"transtools/internal/strref"
	"transtools/internal/textutil"
)

// ToDOT converts the dialog graph to Graphviz DOT format. Only dialog and
// journal records carry parent/child edges; the sentinel is included so
// unresolved references stay visible in the rendering.
func ToDOT(reg *strref.Registry) string {
	var buf bytes.Buffer
	buf.WriteString("digraph dialogs {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white];\n")
	buf.WriteString("\n")

	for _, id := range reg.Keys() {
		rec := reg.Get(id)
		if !rec.Type.IsDialog() && rec.Type != strref.TypeError {
			continue
		}
		label := fmt.Sprintf("#%d\n%s", id, textutil.Truncate(rec.Text, 40))
		attrs := ""
		if rec.Type == strref.TypeError {
			attrs = ", style=\"rounded,filled,dashed\", fillcolor=lightgrey"
		}
		fmt.Fprintf(&buf, "  %q [label=%q%s];\n", strconv.Itoa(id), label, attrs)
	}

	buf.WriteString("\n")
	for _, id := range reg.Keys() {
		for _, child := range reg.Get(id).Children() {
			fmt.Fprintf(&buf, "  %q -> %q;\n", strconv.Itoa(id), strconv.Itoa(child))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
