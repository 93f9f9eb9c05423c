package progress

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	tableHeader    = "Date         # Untouched   # Suggested   # Accepted   Progress"
	tableSeparator = "-----------+-------------+-------------+------------+---------"
)

// AppendTable appends one progress row to the ASCII history table at
// path, creating the table with its header on first use. The suggestions
// count comes from the translation tool UI and cannot be derived from
// the exports; suggested strings weigh half an accepted one in the
// progress percentage. With ignoreUnused, strings the game never shows
// are excluded from the total.
func AppendTable(path string, snap *Snapshot, suggestions int, ignoreUnused bool, now time.Time) error {
	var lines []string
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		lines = []string{tableHeader, tableSeparator}
	case err != nil:
		return fmt.Errorf("read progress table: %w", err)
	default:
		lines = strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	}

	total := snap.Len()
	accepted := snap.Count(Accepted)
	unused := snap.Count(Unused)
	untouched := total - accepted - suggestions
	denominator := total
	if ignoreUnused {
		denominator -= unused
	}
	percentage := 0
	if denominator > 0 {
		percentage = int(100.0 * float64(suggestions+2*accepted) / float64(2*denominator))
	}

	lines = append(lines, fmt.Sprintf("%s   %11d   %11d   %10d   %7s",
		now.Format("2006-01-02"), untouched, suggestions, accepted, fmt.Sprintf("%d%%", percentage)))

	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		return fmt.Errorf("write progress table: %w", err)
	}
	return nil
}
