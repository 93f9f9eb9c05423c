package report

import (
	"bufio"
	"fmt"
	"io"

	"transtools/internal/strref"
)

// WriteGroups writes the linearized string groups as the translator work
// list: every group under a numbered header, the complement of never-used
// IDs as the final unnumbered block.
func WriteGroups(w io.Writer, groups []strref.Group) error {
	bw := bufio.NewWriter(w)
	count := 1
	for _, g := range groups {
		if g.Kind == strref.KindNotUsed {
			fmt.Fprintf(bw, "\n// Group: non dialog IDs, %d strings\n\n", len(g.IDs))
		} else {
			fmt.Fprintf(bw, "\n// Group %d, %d strings\n\n", count, len(g.IDs))
			count++
		}
		for _, id := range g.IDs {
			fmt.Fprintf(bw, "%d\n", id)
		}
	}
	return bw.Flush()
}
