package strref

import (
	"sort"

	"github.com/rs/zerolog/log"
)

// Kind tags a produced group with the pipeline that ordered it.
type Kind int

const (
	// KindDialog groups are connected over parent/child edges and
	// linearized by the dialog strategies.
	KindDialog Kind = iota
	// KindScript groups are connected over the neighbor relation.
	KindScript
	// KindNotUsed is the final complement group: IDs in the caller's
	// range that never appeared in the registry.
	KindNotUsed
)

func (k Kind) String() string {
	switch k {
	case KindDialog:
		return "dialog"
	case KindScript:
		return "script"
	case KindNotUsed:
		return "not used"
	}
	return "unknown"
}

// Group is one linearized connected component.
type Group struct {
	Kind Kind
	IDs  []int
}

// Partition drains a working copy of the registry into connected
// components, linearizes each with the strategy matching its seed type,
// and appends the complement group for [minInclusive, maxInclusive].
// Groups are ordered by their smallest member; the registry itself is
// left untouched.
func Partition(reg *Registry, minInclusive, maxInclusive int) []Group {
	notUsed := complementGroup(reg, minInclusive, maxInclusive)

	working := reg.workingCopy()
	var groups []Group
	for len(working) > 0 {
		seed := smallestKey(working)
		rec := working[seed]

		switch {
		case rec.Type.IsDialog():
			comp := extractComponent(working, seed, dialogEdges)
			ids, err := acyclicLinearizer{}.Linearize(comp)
			if err != nil {
				// The only expected error: fall back to the
				// best-effort ordering for cyclic structures.
				log.Debug().Int("seed", seed).Msg("Cycle detected, using fallback linearizer")
				ids, _ = cyclicLinearizer{}.Linearize(comp)
			}
			groups = append(groups, Group{Kind: KindDialog, IDs: ids})
		case rec.Type.IsScript():
			comp := extractComponent(working, seed, scriptEdges)
			ids, _ := scriptLinearizer{}.Linearize(comp)
			groups = append(groups, Group{Kind: KindScript, IDs: ids})
		default:
			// Error-type records (the sentinel, when in range) form no group.
			delete(working, seed)
		}
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return smallestOf(groups[i].IDs) < smallestOf(groups[j].IDs)
	})
	groups = append(groups, notUsed)
	return groups
}

// dialogEdges joins a record to its component over parents and children.
func dialogEdges(rec *Record) [][]int { return [][]int{rec.parents, rec.children} }

// scriptEdges joins a record to its component over the neighbor relation.
func scriptEdges(rec *Record) [][]int { return [][]int{rec.neighbors} }

// extractComponent removes the maximal connected component around seed
// from the working map and returns it. The traversal uses an explicit
// stack so component size does not bound into the goroutine stack.
func extractComponent(working map[int]*Record, seed int, edges func(*Record) [][]int) map[int]*Record {
	comp := make(map[int]*Record)
	stack := []int{seed}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		rec, ok := working[id]
		if !ok {
			continue
		}
		delete(working, id)
		comp[id] = rec
		for _, set := range edges(rec) {
			stack = append(stack, set...)
		}
	}
	return comp
}

// complementGroup returns the ascending IDs of [minInclusive,
// maxInclusive] that are absent from the registry.
func complementGroup(reg *Registry, minInclusive, maxInclusive int) Group {
	var ids []int
	for id := minInclusive; id <= maxInclusive; id++ {
		if !reg.Has(id) {
			ids = append(ids, id)
		}
	}
	return Group{Kind: KindNotUsed, IDs: ids}
}

func smallestKey(m map[int]*Record) int {
	first := true
	var smallest int
	for id := range m {
		if first || id < smallest {
			smallest = id
			first = false
		}
	}
	return smallest
}

func smallestOf(ids []int) int {
	if len(ids) == 0 {
		return int(^uint(0) >> 1)
	}
	smallest := ids[0]
	for _, id := range ids {
		if id < smallest {
			smallest = id
		}
	}
	return smallest
}
