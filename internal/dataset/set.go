package dataset

// Set is an insertion-ordered mapping of name to dataset. Replacing an
// existing name keeps its position; new names are appended.
type Set struct {
	order []string
	items map[string]*Dataset
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{items: make(map[string]*Dataset)}
}

// Put stores ds under name. The dataset's Name field is set to name.
func (s *Set) Put(name string, ds *Dataset) {
	if s.items == nil {
		s.items = make(map[string]*Dataset)
	}
	if _, ok := s.items[name]; !ok {
		s.order = append(s.order, name)
	}
	if ds != nil {
		ds.Name = name
	}
	s.items[name] = ds
}

// Get returns the dataset stored under name.
func (s *Set) Get(name string) (*Dataset, bool) {
	if s == nil {
		return nil, false
	}
	ds, ok := s.items[name]
	return ds, ok
}

// Has reports whether name is present.
func (s *Set) Has(name string) bool {
	_, ok := s.Get(name)
	return ok
}

// Names returns the names in iteration order.
func (s *Set) Names() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of entries.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Each calls fn for every entry in order and stops at the first error.
func (s *Set) Each(fn func(name string, ds *Dataset) error) error {
	if s == nil {
		return nil
	}
	for _, name := range s.order {
		if err := fn(name, s.items[name]); err != nil {
			return err
		}
	}
	return nil
}

// Clone deep-copies the set and every dataset in it.
func (s *Set) Clone() *Set {
	c := NewSet()
	if s == nil {
		return c
	}
	for _, name := range s.order {
		c.Put(name, s.items[name].Clone())
	}
	return c
}
