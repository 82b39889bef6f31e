package annotation

import "github.com/example/xrayview/internal/geometry"

// Store keeps the shapes of every image in the session. Entries for an image
// are created on its first commit. Slices handed out by the store are never
// modified afterwards; removal builds a new slice.
type Store struct {
	measurements map[ImageID][]Measurement
	annotations  map[ImageID][]Annotation
	history      History
	nextID       ID
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		measurements: make(map[ImageID][]Measurement),
		annotations:  make(map[ImageID][]Annotation),
	}
}

func (s *Store) allocID() ID {
	s.nextID++
	return s.nextID
}

// AddMeasurement appends m to img's measurements, assigning it a fresh ID,
// and records the commit for undo.
func (s *Store) AddMeasurement(img ImageID, m Measurement) Measurement {
	m.ID = s.allocID()
	m.Points = clonePoints(m.Points)
	s.measurements[img] = append(s.measurements[img], m)
	s.history.Push(UndoEntry{Kind: KindMeasurement, Image: img, ID: m.ID})
	return m
}

// AddAnnotation appends a to img's annotations, assigning it a fresh ID, and
// records the commit for undo.
func (s *Store) AddAnnotation(img ImageID, a Annotation) Annotation {
	a.ID = s.allocID()
	a.Points = clonePoints(a.Points)
	s.annotations[img] = append(s.annotations[img], a)
	s.history.Push(UndoEntry{Kind: KindAnnotation, Image: img, ID: a.ID})
	return a
}

// ListFor returns img's measurements and annotations in commit order. Both
// are empty for an image that was never edited.
func (s *Store) ListFor(img ImageID) ([]Measurement, []Annotation) {
	ms := s.measurements[img]
	as := s.annotations[img]
	return ms[:len(ms):len(ms)], as[:len(as):len(as)]
}

// Has reports whether img has ever received a commit.
func (s *Store) Has(img ImageID) bool {
	_, m := s.measurements[img]
	_, a := s.annotations[img]
	return m || a
}

// UndoLen returns how many commits can still be undone.
func (s *Store) UndoLen() int { return s.history.Len() }

// Undo removes the most recent commit of the session from the image it
// belongs to. It returns false when there is nothing to undo.
func (s *Store) Undo() (UndoEntry, bool) {
	e, ok := s.history.Pop()
	if !ok {
		return UndoEntry{}, false
	}
	switch e.Kind {
	case KindMeasurement:
		s.measurements[e.Image] = removeByID(s.measurements[e.Image], e.ID, func(m Measurement) ID { return m.ID })
	case KindAnnotation:
		s.annotations[e.Image] = removeByID(s.annotations[e.Image], e.ID, func(a Annotation) ID { return a.ID })
	}
	return e, true
}

func removeByID[T any](items []T, id ID, idOf func(T) ID) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if idOf(it) != id {
			out = append(out, it)
		}
	}
	return out
}

func clonePoints(pts []geometry.ImagePoint) []geometry.ImagePoint {
	return append([]geometry.ImagePoint(nil), pts...)
}
