package strref

// Type classifies a string record by the construct that produced it.
type Type int

const (
	// TypeDialog is a spoken line from a D file (SAY or REPLY).
	TypeDialog Type = iota
	// TypeJournal is a journal entry referenced from a dialog block.
	TypeJournal
	// TypeScriptHead is a head-displayed string from a compiled script.
	TypeScriptHead
	// TypeScriptJournal is a journal entry referenced from a script.
	TypeScriptJournal
	// TypeError marks the sentinel record for unresolvable references.
	TypeError
)

func (t Type) String() string {
	switch t {
	case TypeDialog:
		return "dialog"
	case TypeJournal:
		return "journal"
	case TypeScriptHead:
		return "script-head"
	case TypeScriptJournal:
		return "script-journal"
	case TypeError:
		return "error"
	}
	return "unknown"
}

// IsDialog reports whether records of this type belong to the
// parent/child dialog pipeline.
func (t Type) IsDialog() bool { return t == TypeDialog || t == TypeJournal }

// IsScript reports whether records of this type belong to the flat
// neighbor pipeline.
func (t Type) IsScript() bool { return t == TypeScriptHead || t == TypeScriptJournal }

// Record is one translatable string with its position in the dialog graph.
// Text, Type and File are fixed at creation; only the edge sets change,
// and only through the owning Registry so that both endpoints stay in sync.
type Record struct {
	ID   int
	Text string
	Type Type
	File string

	// seq is the registry-assigned creation sequence, used to keep
	// insertion order stable when records carry identical text.
	seq int

	parents   []int
	children  []int
	neighbors []int
}

// Parents returns the IDs pointing at this record, in insertion order.
// The returned slice is the record's own storage; callers must not modify it.
func (r *Record) Parents() []int { return r.parents }

// Children returns the IDs this record transitions to, in insertion order.
func (r *Record) Children() []int { return r.children }

// Neighbors returns the same-file script IDs, in insertion order.
func (r *Record) Neighbors() []int { return r.neighbors }

// Label returns the record text, prefixed with the source file when the
// record originates from a different file than the one being rendered.
func (r *Record) Label(file string) string {
	if r.File == file {
		return r.Text
	}
	return r.File + ": " + r.Text
}

func appendUnique(s []int, v int) []int {
	for _, e := range s {
		if e == v {
			return s
		}
	}
	return append(s, v)
}

func removeValue(s []int, v int) []int {
	for i, e := range s {
		if e == v {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}
