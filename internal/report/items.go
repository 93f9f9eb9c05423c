package report

import (
	"bufio"
	"fmt"
	"io"

	"transtools/internal/record"
)

// WriteItemsTXT writes the in-range item string IDs as one plain column,
// one blank line between items, for feeding into translation tooling.
func WriteItemsTXT(w io.Writer, items []record.Item, minInclusive, maxInclusive int) error {
	bw := bufio.NewWriter(w)
	for _, it := range items {
		for _, id := range it.IDsInRange(minInclusive, maxInclusive) {
			fmt.Fprintf(bw, "%d\n", id)
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}

// WriteItemsCSV writes the items as a quoted CSV table. Unused slots
// (ID -1) become empty cells; a leading note names the range because the
// rows keep out-of-range IDs for context.
func WriteItemsCSV(w io.Writer, items []record.Item, minInclusive, maxInclusive int) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "\"The file can include string IDs out of the user-defined string range %d-%d\",\"\",\"\",\"\",\"\"\n",
		minInclusive, maxInclusive)
	fmt.Fprintln(bw, "\"\",\"\",\"\",\"\",\"\"")
	fmt.Fprintln(bw, "\"ITM File\",\"General Name\",\"Identified Name\",\"General Description\",\"Identified Description\"")
	for _, it := range items {
		fmt.Fprintf(bw, "\"%s\",%s,%s,%s,%s\n", it.File,
			csvID(it.GeneralName), csvID(it.IdentifiedName),
			csvID(it.GeneralDescription), csvID(it.IdentifiedDescription))
	}
	return bw.Flush()
}

// csvID renders a string ID as a quoted CSV cell, empty for the unused
// slot marker -1.
func csvID(id int) string {
	if id == -1 {
		return `""`
	}
	return fmt.Sprintf("\"%d\"", id)
}
