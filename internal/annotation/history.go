package annotation

// EntryKind says which collection an undo entry points into.
type EntryKind int

const (
	KindMeasurement EntryKind = iota
	KindAnnotation
)

func (k EntryKind) String() string {
	if k == KindMeasurement {
		return "measurement"
	}
	return "annotation"
}

// UndoEntry locates one committed shape.
type UndoEntry struct {
	Kind  EntryKind
	Image ImageID
	ID    ID
}

// History is a last-in first-out log of commits across every image.
type History struct {
	entries []UndoEntry
}

// Push appends e as the most recent commit.
func (h *History) Push(e UndoEntry) { h.entries = append(h.entries, e) }

// Pop removes and returns the most recent commit.
func (h *History) Pop() (UndoEntry, bool) {
	if len(h.entries) == 0 {
		return UndoEntry{}, false
	}
	e := h.entries[len(h.entries)-1]
	h.entries = h.entries[:len(h.entries)-1]
	return e, true
}

// Len returns the number of undoable commits.
func (h *History) Len() int { return len(h.entries) }
