package record

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"transtools/internal/worker"
)

// Table carries the string IDs found in a 2DA table file, sorted and
// deduplicated.
type Table struct {
	File string
	IDs  []int
}

// DecodeTable scans a 2DA file for integer cells. 2DA tables are
// space-aligned text; every cell that parses as an integer is treated as
// a string ID, everything else is ignored.
func DecodeTable(file string, data []byte) Table {
	var ids []int
	for _, line := range strings.Split(string(data), "\n") {
		for _, cell := range strings.Split(strings.TrimRight(line, "\r"), " ") {
			if id, err := strconv.Atoi(cell); err == nil {
				ids = append(ids, id)
			}
		}
	}
	return Table{File: file, IDs: mergedIDs(ids...)}
}

// IDsInRange returns the table's string IDs that lie in
// [minInclusive, maxInclusive], ascending.
func (t Table) IDsInRange(minInclusive, maxInclusive int) []int {
	var ids []int
	for _, id := range t.IDs {
		if inRange(id, minInclusive, maxInclusive) {
			ids = append(ids, id)
		}
	}
	return ids
}

// InRange reports whether at least one of the table's string IDs lies in
// [minInclusive, maxInclusive].
func (t Table) InRange(minInclusive, maxInclusive int) bool {
	return len(t.IDsInRange(minInclusive, maxInclusive)) > 0
}

// ChopTables drops the tables with no string ID in the range.
func ChopTables(tables []Table, minInclusive, maxInclusive int) []Table {
	kept := tables[:0]
	for _, t := range tables {
		if t.InRange(minInclusive, maxInclusive) {
			kept = append(kept, t)
		}
	}
	return kept
}

// SortTables orders tables by file name.
func SortTables(tables []Table) {
	sort.Slice(tables, func(i, j int) bool { return tables[i].File < tables[j].File })
}

// DecodeTables reads and decodes the given 2DA files concurrently and
// returns the tables sorted.
func DecodeTables(ctx context.Context, paths []string, workers int) ([]Table, error) {
	pool := worker.NewPool(workers, func(ctx context.Context, path string) (Table, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return Table{}, fmt.Errorf("read table file: %w", err)
		}
		return DecodeTable(filepath.Base(path), data), nil
	})

	tables := make([]Table, 0, len(paths))
	for _, task := range pool.Execute(ctx, paths) {
		if task.Err != nil {
			return nil, task.Err
		}
		tables = append(tables, task.Result)
	}
	SortTables(tables)
	return tables, nil
}
