package report

import (
	"bufio"
	"fmt"
	"io"

	"transtools/internal/record"
)

// WriteTablesTXT writes the in-range table string IDs grouped per 2DA
// file under a comment header.
func WriteTablesTXT(w io.Writer, tables []record.Table, minInclusive, maxInclusive int) error {
	bw := bufio.NewWriter(w)
	for _, t := range tables {
		fmt.Fprintf(bw, "// %s\n\n", t.File)
		for _, id := range t.IDsInRange(minInclusive, maxInclusive) {
			fmt.Fprintf(bw, "%d\n", id)
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}

// WriteTablesCSV writes one quoted CSV row per 2DA file: the file name
// followed by one column per in-range string ID.
func WriteTablesCSV(w io.Writer, tables []record.Table, minInclusive, maxInclusive int) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "\"String IDs in the user-defined string range %d-%d\"\n",
		minInclusive, maxInclusive)
	fmt.Fprintln(bw, "\"\"")
	fmt.Fprintln(bw, "\"2DA File\",\"String IDs\"")
	for _, t := range tables {
		fmt.Fprintf(bw, "\"%s\"", t.File)
		for _, id := range t.IDsInRange(minInclusive, maxInclusive) {
			fmt.Fprintf(bw, ",\"%d\"", id)
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}
