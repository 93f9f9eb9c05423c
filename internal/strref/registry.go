package strref

import "sort"

// Sentinel is the reserved ID that stands in for references that could
// not be resolved during parsing. It always exists in a Registry.
const Sentinel = -1

// Registry owns the mapping from string ID to Record together with the
// auxiliary lookups the parsers maintain: internal dialog IDs
// ("file:block" and "file:block.reply") to string IDs, and source file
// names to the IDs found in them.
//
// All edges are symmetric by construction: AddEdge and AddNeighbor update
// both endpoints, and ChopToRange strips back-references when it drops a
// record. Registry is not safe for concurrent use; parse one file at a
// time, or merge per-file results under exclusive access.
type Registry struct {
	records     map[int]*Record
	internalIDs map[string]int
	fileIDs     map[string][]int
	seq         int
}

// New creates a registry holding only the sentinel record.
func New() *Registry {
	r := &Registry{
		records:     make(map[int]*Record),
		internalIDs: make(map[string]int),
		fileIDs:     make(map[string][]int),
	}
	r.Put(Sentinel, "INVALID REFERENCE", TypeError, "")
	return r
}

// Put creates a record and stores it under id, replacing any previous
// record with that id. The replacement keeps dialog content parsing
// idempotent when the same ID is declared in several files: the last
// file wins, matching the order the files were parsed in.
func (r *Registry) Put(id int, text string, typ Type, file string) *Record {
	rec := &Record{ID: id, Text: text, Type: typ, File: file, seq: r.seq}
	r.seq++
	r.records[id] = rec
	return rec
}

// PutIfAbsent creates a record under id unless one already exists.
// Script content parsing uses this so dialog strings keep precedence.
func (r *Registry) PutIfAbsent(id int, text string, typ Type, file string) (*Record, bool) {
	if rec, ok := r.records[id]; ok {
		return rec, false
	}
	return r.Put(id, text, typ, file), true
}

// Get returns the record stored under id, or nil.
func (r *Registry) Get(id int) *Record { return r.records[id] }

// Has reports whether id is present.
func (r *Registry) Has(id int) bool {
	_, ok := r.records[id]
	return ok
}

// Len returns the number of stored records, including the sentinel.
func (r *Registry) Len() int { return len(r.records) }

// Keys returns all stored IDs in ascending order.
func (r *Registry) Keys() []int {
	keys := make([]int, 0, len(r.records))
	for id := range r.records {
		keys = append(keys, id)
	}
	sort.Ints(keys)
	return keys
}

// AddEdge records a parent→child transition on both endpoints.
// Unknown endpoints are a contract violation by the caller; resolve
// unresolvable references to Sentinel before adding the edge.
func (r *Registry) AddEdge(parent, child int) {
	p := r.records[parent]
	c := r.records[child]
	p.children = appendUnique(p.children, child)
	c.parents = appendUnique(c.parents, parent)
}

// AddNeighbor records the undirected same-file relation on both endpoints.
// Adding a record as its own neighbor is a no-op.
func (r *Registry) AddNeighbor(a, b int) {
	if a == b {
		return
	}
	ra := r.records[a]
	rb := r.records[b]
	ra.neighbors = appendUnique(ra.neighbors, b)
	rb.neighbors = appendUnique(rb.neighbors, a)
}

// SetInternalID maps a file-scoped dialog label to a string ID.
func (r *Registry) SetInternalID(internal string, id int) {
	r.internalIDs[internal] = id
}

// ResolveInternalID returns the string ID for a file-scoped dialog label.
func (r *Registry) ResolveInternalID(internal string) (int, bool) {
	id, ok := r.internalIDs[internal]
	return id, ok
}

// ResetFileIDs starts a fresh ID listing for a source file.
func (r *Registry) ResetFileIDs(file string) {
	r.fileIDs[file] = nil
}

// AppendFileID adds an ID to the listing of a source file.
func (r *Registry) AppendFileID(file string, id int) {
	r.fileIDs[file] = append(r.fileIDs[file], id)
}

// SetFileIDs replaces the ID listing of a source file.
func (r *Registry) SetFileIDs(file string, ids []int) {
	r.fileIDs[file] = ids
}

// FileIDs returns the ID listing recorded for a source file.
func (r *Registry) FileIDs(file string) []int { return r.fileIDs[file] }

// Files returns all source files with a non-empty ID listing, sorted.
func (r *Registry) Files() []string {
	files := make([]string, 0, len(r.fileIDs))
	for f, ids := range r.fileIDs {
		if len(ids) > 0 {
			files = append(files, f)
		}
	}
	sort.Strings(files)
	return files
}

// ChopToRange drops every record whose ID lies outside
// [minInclusive, maxInclusive] and strips the dropped IDs from the edge
// sets of the records that remain. File listings are pruned the same way.
// The sentinel is dropped too when it is out of range, which it is for
// any non-negative range.
func (r *Registry) ChopToRange(minInclusive, maxInclusive int) {
	for _, id := range r.Keys() {
		if id >= minInclusive && id <= maxInclusive {
			continue
		}
		rec := r.records[id]
		for _, child := range rec.children {
			if c, ok := r.records[child]; ok {
				c.parents = removeValue(c.parents, id)
			}
		}
		for _, parent := range rec.parents {
			if p, ok := r.records[parent]; ok {
				p.children = removeValue(p.children, id)
			}
		}
		for _, neighbor := range rec.neighbors {
			if n, ok := r.records[neighbor]; ok {
				n.neighbors = removeValue(n.neighbors, id)
			}
		}
		delete(r.records, id)
	}
	for file, ids := range r.fileIDs {
		kept := ids[:0]
		for _, id := range ids {
			if _, ok := r.records[id]; ok {
				kept = append(kept, id)
			}
		}
		if len(kept) == 0 {
			delete(r.fileIDs, file)
		} else {
			r.fileIDs[file] = kept
		}
	}
}

// workingCopy returns a disposable view of the ID→Record mapping for the
// partitioner to drain. Records themselves are shared: partitioning only
// deletes map entries and never mutates edge sets.
func (r *Registry) workingCopy() map[int]*Record {
	m := make(map[int]*Record, len(r.records))
	for id, rec := range r.records {
		m[id] = rec
	}
	return m
}
