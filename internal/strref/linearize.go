package strref

import (
	"errors"
	"sort"
)

// ErrCycle is returned by the acyclic linearizer when the component
// contains a cycle reachable over child edges. The partitioner catches it
// and retries the same component with the cyclic fallback; it is the only
// expected error in the pipeline.
var ErrCycle = errors.New("dialog component contains a cycle")

// Linearizer turns one connected component into a reading order.
// Implementations must emit every component ID exactly once.
type Linearizer interface {
	Linearize(comp map[int]*Record) ([]int, error)
}

// LinearizerFor selects the strategy for a component from the type of its
// seed record: dialog components get the strict ordering with the cyclic
// fallback handled by the caller, script components get the flat sort.
func LinearizerFor(t Type) Linearizer {
	if t.IsScript() {
		return scriptLinearizer{}
	}
	return acyclicLinearizer{}
}

// =============================================================================
// Cycle detection
// =============================================================================

// hasCycle reports whether any child-edge cycle exists in the component.
// Every node is used as a DFS start, since a cycle need not be reachable
// from the roots. Classic white/gray/black coloring, iterative.
func hasCycle(comp map[int]*Record) bool {
	const (
		white = iota
		gray
		black
	)
	color := make(map[int]int, len(comp))

	type frame struct {
		id  int
		idx int
	}
	for _, start := range sortedKeys(comp) {
		if color[start] != white {
			continue
		}
		stack := []frame{{id: start}}
		color[start] = gray
		for len(stack) > 0 {
			f := &stack[len(stack)-1]
			children := comp[f.id].children
			if f.idx >= len(children) {
				color[f.id] = black
				stack = stack[:len(stack)-1]
				continue
			}
			child := children[f.idx]
			f.idx++
			if _, ok := comp[child]; !ok {
				// Edge into a consumed record (the sentinel, when it is
				// in range): not part of this component.
				continue
			}
			switch color[child] {
			case white:
				color[child] = gray
				stack = append(stack, frame{id: child})
			case gray:
				return true
			}
		}
	}
	return false
}

// =============================================================================
// Acyclic dialog linearizer
// =============================================================================

// acyclicLinearizer produces the strict translator reading order: a node
// never appears before its parents, and sibling reply sets are emitted as
// contiguous batches.
type acyclicLinearizer struct{}

func (acyclicLinearizer) Linearize(comp map[int]*Record) ([]int, error) {
	if hasCycle(comp) {
		return nil, ErrCycle
	}

	deque := findRoots(comp)
	out := make([]int, 0, len(comp))
	emitted := make(map[int]bool, len(comp))
	queued := make(map[int]bool, len(comp))
	for _, id := range deque {
		queued[id] = true
	}

	for len(deque) > 0 {
		deque = rotateToCandidate(deque, comp, emitted)

		// Emit the whole sibling batch of the accepted candidate so the
		// replies to one line stay adjacent in the output.
		siblings := findSiblings(deque[0], comp)
		deque = removeAll(deque, siblings)
		for _, id := range siblings {
			delete(queued, id)
			if !emitted[id] {
				emitted[id] = true
				out = append(out, id)
			}
		}

		// Push the freshly discovered children to the front, preserving
		// their natural order, so they are tried next.
		var children []int
		for _, id := range siblings {
			children = append(children, comp[id].children...)
		}
		for i := len(children) - 1; i >= 0; i-- {
			child := children[i]
			if _, ok := comp[child]; !ok {
				continue
			}
			if queued[child] || emitted[child] {
				continue
			}
			queued[child] = true
			deque = append([]int{child}, deque...)
		}
	}
	return out, nil
}

// rotateToCandidate rotates the deque until its front ID has every parent
// already emitted and, for every such parent, every other child of that
// parent has all of its own parents emitted too. When no ID in the deque
// passes after a full rotation, it falls back to rotating the numerically
// smallest ID to the front.
func rotateToCandidate(deque []int, comp map[int]*Record, emitted map[int]bool) []int {
	for iteration := 0; iteration < len(deque); iteration++ {
		if isCandidate(deque[0], comp, emitted) {
			return deque
		}
		deque = append(deque[1:], deque[0])
	}
	smallest := deque[0]
	for _, id := range deque {
		if id < smallest {
			smallest = id
		}
	}
	for deque[0] != smallest {
		deque = append(deque[1:], deque[0])
	}
	return deque
}

func isCandidate(id int, comp map[int]*Record, emitted map[int]bool) bool {
	for _, parent := range comp[id].parents {
		prec, ok := comp[parent]
		if !ok {
			continue
		}
		if !emitted[parent] {
			return false
		}
		for _, sibling := range prec.children {
			srec, ok := comp[sibling]
			if !ok {
				continue
			}
			for _, siblingParent := range srec.parents {
				if _, ok := comp[siblingParent]; !ok {
					continue
				}
				if !emitted[siblingParent] {
					return false
				}
			}
		}
	}
	return true
}

// findSiblings returns every child of every parent of id, in insertion
// order, deduplicated. A root has no parents and is its own only sibling.
func findSiblings(id int, comp map[int]*Record) []int {
	var siblings []int
	for _, parent := range comp[id].parents {
		prec, ok := comp[parent]
		if !ok {
			continue
		}
		for _, child := range prec.children {
			if _, ok := comp[child]; !ok {
				continue
			}
			siblings = appendUnique(siblings, child)
		}
	}
	if len(siblings) == 0 {
		// A root, or a node whose parents all left the component.
		return []int{id}
	}
	return siblings
}

// findRoots returns the parent-less IDs of the component in ascending order.
func findRoots(comp map[int]*Record) []int {
	var roots []int
	for id, rec := range comp {
		if len(rec.parents) == 0 {
			roots = append(roots, id)
		}
	}
	sort.Ints(roots)
	return roots
}

func removeAll(deque []int, drop []int) []int {
	member := make(map[int]bool, len(drop))
	for _, id := range drop {
		member[id] = true
	}
	kept := deque[:0]
	for _, id := range deque {
		if !member[id] {
			kept = append(kept, id)
		}
	}
	return kept
}

// =============================================================================
// Cyclic dialog linearizer (fallback)
// =============================================================================

// cyclicLinearizer is the fallback for components the acyclic strategy
// rejects. It walks parents first, then the node, then its children, and
// breaks cycles by consuming each ID from a private working copy on first
// visit. The order only approximates parent-before-child.
type cyclicLinearizer struct{}

func (cyclicLinearizer) Linearize(comp map[int]*Record) ([]int, error) {
	working := make(map[int]*Record, len(comp))
	for id, rec := range comp {
		working[id] = rec
	}

	out := make([]int, 0, len(comp))
	emitted := make(map[int]bool, len(comp))

	// The traversal is the recursive parents/self/children walk of the
	// dialog group builder, run on an explicit frame stack so the depth
	// is bounded by the component size, not the goroutine stack.
	type frame struct {
		rec   *Record
		stage int
		idx   int
	}
	var stack []frame
	push := func(id int) {
		rec, ok := working[id]
		if !ok {
			return
		}
		delete(working, id)
		stack = append(stack, frame{rec: rec})
	}

	for _, seed := range sortedKeys(comp) {
		push(seed)
		for len(stack) > 0 {
			f := &stack[len(stack)-1]
			switch f.stage {
			case 0: // visit parents
				if f.idx < len(f.rec.parents) {
					parent := f.rec.parents[f.idx]
					f.idx++
					push(parent)
					continue
				}
				f.stage, f.idx = 1, 0
			case 1: // emit self and all child IDs
				if !emitted[f.rec.ID] {
					emitted[f.rec.ID] = true
					out = append(out, f.rec.ID)
				}
				for _, child := range f.rec.children {
					if _, ok := comp[child]; !ok {
						continue
					}
					if !emitted[child] {
						emitted[child] = true
						out = append(out, child)
					}
				}
				f.stage = 2
			case 2: // descend into children
				if f.idx < len(f.rec.children) {
					child := f.rec.children[f.idx]
					f.idx++
					push(child)
					continue
				}
				stack = stack[:len(stack)-1]
			}
		}
	}
	return out, nil
}

// =============================================================================
// Script linearizer
// =============================================================================

// scriptLinearizer orders a neighbor cluster by plain ascending ID. The
// neighbor relation carries no direction, so there is nothing better to
// preserve.
type scriptLinearizer struct{}

func (scriptLinearizer) Linearize(comp map[int]*Record) ([]int, error) {
	return sortedKeys(comp), nil
}

func sortedKeys(m map[int]*Record) []int {
	keys := make([]int, 0, len(m))
	for id := range m {
		keys = append(keys, id)
	}
	sort.Ints(keys)
	return keys
}
