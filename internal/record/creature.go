package record

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"transtools/internal/worker"
)

// CRE files carry the short and long name at offsets 8 and 12 and a block
// of 100 pertaining string references starting at offset 164, all
// little-endian int32.
const (
	creaturePertainingOffset = 164
	creaturePertainingCount  = 100
	creatureMinSize          = creaturePertainingOffset + 4*creaturePertainingCount
)

// Creature carries the string IDs a CRE file contributes to the game
// text: the two display names plus the pertaining strings (sound and
// interaction lines), sorted and deduplicated.
type Creature struct {
	File       string
	ShortName  int
	LongName   int
	Pertaining []int
}

// DecodeCreature reads the string IDs from a raw CRE file.
func DecodeCreature(file string, data []byte) (Creature, error) {
	if len(data) < creatureMinSize {
		return Creature{}, fmt.Errorf("creature file %s: %d bytes, want at least %d", file, len(data), creatureMinSize)
	}
	pertaining := make([]int, creaturePertainingCount)
	for i := range pertaining {
		pertaining[i] = readInt32(data, creaturePertainingOffset+4*i)
	}
	return Creature{
		File:       file,
		ShortName:  readInt32(data, 8),
		LongName:   readInt32(data, 12),
		Pertaining: mergedIDs(pertaining...),
	}, nil
}

// IDs returns all of the creature's string IDs, sorted and deduplicated.
func (c Creature) IDs() []int {
	return mergedIDs(append([]int{c.ShortName, c.LongName}, c.Pertaining...)...)
}

// PertainingInRange returns the pertaining string IDs that lie in
// [minInclusive, maxInclusive], ascending.
func (c Creature) PertainingInRange(minInclusive, maxInclusive int) []int {
	var ids []int
	for _, id := range c.Pertaining {
		if inRange(id, minInclusive, maxInclusive) {
			ids = append(ids, id)
		}
	}
	return ids
}

// InRange reports whether at least one of the creature's string IDs lies
// in [minInclusive, maxInclusive].
func (c Creature) InRange(minInclusive, maxInclusive int) bool {
	if inRange(c.ShortName, minInclusive, maxInclusive) || inRange(c.LongName, minInclusive, maxInclusive) {
		return true
	}
	return len(c.PertainingInRange(minInclusive, maxInclusive)) > 0
}

// ChopCreatures drops the creatures with no string ID in the range.
func ChopCreatures(creatures []Creature, minInclusive, maxInclusive int) []Creature {
	kept := creatures[:0]
	for _, c := range creatures {
		if c.InRange(minInclusive, maxInclusive) {
			kept = append(kept, c)
		}
	}
	return kept
}

// SortCreatures orders creatures by their merged ID sequences, ties
// broken by file name.
func SortCreatures(creatures []Creature) {
	sort.Slice(creatures, func(i, j int) bool {
		if c := compareIDSeq(creatures[i].IDs(), creatures[j].IDs()); c != 0 {
			return c < 0
		}
		return creatures[i].File < creatures[j].File
	})
}

// DecodeCreatures reads and decodes the given CRE files concurrently and
// returns the creatures sorted.
func DecodeCreatures(ctx context.Context, paths []string, workers int) ([]Creature, error) {
	pool := worker.NewPool(workers, func(ctx context.Context, path string) (Creature, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return Creature{}, fmt.Errorf("read creature file: %w", err)
		}
		return DecodeCreature(filepath.Base(path), data)
	})

	creatures := make([]Creature, 0, len(paths))
	for _, task := range pool.Execute(ctx, paths) {
		if task.Err != nil {
			return nil, task.Err
		}
		creatures = append(creatures, task.Result)
	}
	SortCreatures(creatures)
	return creatures, nil
}
