package record

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"transtools/internal/worker"
)

// ITM files hold their string references as little-endian int32 values at
// fixed header offsets; the identified description at 84 is the last one.
const itemMinSize = 88

// Item carries the four string IDs an ITM file contributes to the game
// text. An ID of -1 means the slot is unused.
type Item struct {
	File                  string
	GeneralName           int
	IdentifiedName        int
	GeneralDescription    int
	IdentifiedDescription int
}

// DecodeItem reads the four string IDs from a raw ITM file.
func DecodeItem(file string, data []byte) (Item, error) {
	if len(data) < itemMinSize {
		return Item{}, fmt.Errorf("item file %s: %d bytes, want at least %d", file, len(data), itemMinSize)
	}
	return Item{
		File:                  file,
		GeneralName:           readInt32(data, 8),
		IdentifiedName:        readInt32(data, 12),
		GeneralDescription:    readInt32(data, 80),
		IdentifiedDescription: readInt32(data, 84),
	}, nil
}

// IDs returns the item's string IDs, sorted and deduplicated.
func (it Item) IDs() []int {
	return mergedIDs(it.GeneralName, it.IdentifiedName, it.GeneralDescription, it.IdentifiedDescription)
}

// InRange reports whether at least one of the item's string IDs lies in
// [minInclusive, maxInclusive].
func (it Item) InRange(minInclusive, maxInclusive int) bool {
	for _, id := range it.IDs() {
		if inRange(id, minInclusive, maxInclusive) {
			return true
		}
	}
	return false
}

// IDsInRange returns the item's string IDs that lie in the range, in
// field order: names first, then descriptions.
func (it Item) IDsInRange(minInclusive, maxInclusive int) []int {
	var ids []int
	for _, id := range []int{it.GeneralName, it.IdentifiedName, it.GeneralDescription, it.IdentifiedDescription} {
		if inRange(id, minInclusive, maxInclusive) {
			ids = append(ids, id)
		}
	}
	return ids
}

// ChopItems drops the items with no string ID in the range.
func ChopItems(items []Item, minInclusive, maxInclusive int) []Item {
	kept := items[:0]
	for _, it := range items {
		if it.InRange(minInclusive, maxInclusive) {
			kept = append(kept, it)
		}
	}
	return kept
}

// SortItems orders items by their merged ID sequences, ties broken by
// file name. Items referencing low string IDs come first, which keeps the
// output aligned with the translation order.
func SortItems(items []Item) {
	sort.Slice(items, func(i, j int) bool {
		if c := compareIDSeq(items[i].IDs(), items[j].IDs()); c != 0 {
			return c < 0
		}
		return items[i].File < items[j].File
	})
}

// DecodeItems reads and decodes the given ITM files concurrently and
// returns the items sorted.
func DecodeItems(ctx context.Context, paths []string, workers int) ([]Item, error) {
	pool := worker.NewPool(workers, func(ctx context.Context, path string) (Item, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return Item{}, fmt.Errorf("read item file: %w", err)
		}
		return DecodeItem(filepath.Base(path), data)
	})

	items := make([]Item, 0, len(paths))
	for _, task := range pool.Execute(ctx, paths) {
		if task.Err != nil {
			return nil, task.Err
		}
		items = append(items, task.Result)
	}
	SortItems(items)
	return items, nil
}

func readInt32(data []byte, offset int) int {
	return int(int32(binary.LittleEndian.Uint32(data[offset:])))
}
