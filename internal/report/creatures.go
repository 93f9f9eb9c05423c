package report

import (
	"bufio"
	"fmt"
	"io"

	"transtools/internal/record"
)

// WriteCreaturesTXT writes the in-range creature string IDs as one plain
// column: names first, then the pertaining strings, one blank line
// between creatures.
func WriteCreaturesTXT(w io.Writer, creatures []record.Creature, minInclusive, maxInclusive int) error {
	bw := bufio.NewWriter(w)
	for _, c := range creatures {
		if id := c.ShortName; minInclusive <= id && id <= maxInclusive {
			fmt.Fprintf(bw, "%d\n", id)
		}
		if id := c.LongName; minInclusive <= id && id <= maxInclusive {
			fmt.Fprintf(bw, "%d\n", id)
		}
		for _, id := range c.PertainingInRange(minInclusive, maxInclusive) {
			fmt.Fprintf(bw, "%d\n", id)
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}

// WriteCreaturesCSV writes the creatures as a quoted CSV table: file,
// short name, long name, then one column per in-range pertaining string.
func WriteCreaturesCSV(w io.Writer, creatures []record.Creature, minInclusive, maxInclusive int) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "\"The file can include string IDs out of the user-defined string range %d-%d\"\n",
		minInclusive, maxInclusive)
	fmt.Fprintln(bw, "\"\"")
	fmt.Fprintln(bw, "\"CRE File\",\"Short Name\",\"Long Name\",\"Pertaining Strings\"")
	for _, c := range creatures {
		fmt.Fprintf(bw, "\"%s\",%s,%s", c.File, csvID(c.ShortName), csvID(c.LongName))
		for _, id := range c.PertainingInRange(minInclusive, maxInclusive) {
			fmt.Fprintf(bw, ",\"%d\"", id)
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}
