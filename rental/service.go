package rental

import (
	"path/filepath"
	"slices"

	"github.com/kjk/rentman/linestore"
	"github.com/kjk/rentman/log"
	"github.com/kjk/rentman/order"
	"github.com/kjk/rentman/record"
)

// Service stores entities of one kind in a file in data directory
type Service[T Entity] struct {
	Kind  *Kind[T]
	Store *linestore.Store
}

// NewService returns a service for kind with file in dataDir.
// onChange, if not nil, is called after every change to the file.
func NewService[T Entity](dataDir string, kind *Kind[T], onChange func(*linestore.Change)) *Service[T] {
	st := linestore.New(filepath.Join(dataDir, kind.FileName))
	st.OnChange = onChange
	return &Service[T]{
		Kind:  kind,
		Store: st,
	}
}

// LoadResult is what Load returns
type LoadResult[T Entity] struct {
	Items []T
	// number of lines that couldn't be decoded
	Skipped int
}

// Load decodes all lines. Lines that can't be decoded are skipped.
// A missing file has no entities.
func (s *Service[T]) Load() (*LoadResult[T], error) {
	lines, err := s.Store.ReadLines()
	if err != nil {
		if linestore.IsNotExist(err) {
			return &LoadResult[T]{}, nil
		}
		return nil, err
	}
	res := &LoadResult[T]{
		Items: make([]T, 0, len(lines)),
	}
	for i, l := range lines {
		v, err := s.decodeLine(l)
		if err != nil {
			res.Skipped++
			log.Verbosef("%s: skipping line %d: %s\n", s.Store.Path, i+1, err)
			continue
		}
		res.Items = append(res.Items, v)
	}
	return res, nil
}

func (s *Service[T]) decodeLine(l linestore.Line) (T, error) {
	var zero T
	if l.Number < 1 {
		return zero, linestore.ErrInvalidLineNumber
	}
	r, err := record.Unmarshal(l.Payload)
	if err != nil {
		return zero, err
	}
	return s.Kind.Decode(l.Number, r)
}

// Add stores v as a new last record
func (s *Service[T]) Add(v T) error {
	payload, err := s.Kind.Encode(v)
	if err != nil {
		return err
	}
	_, err = s.Store.ReadAll()
	if linestore.IsNotExist(err) {
		err = s.Store.WriteInitial(payload)
	} else if err == nil {
		err = s.Store.Append(payload)
	}
	if err != nil {
		return err
	}
	log.Event("record.added", "kind", s.Kind.Name, "key", v.SortKey())
	return nil
}

// Edit replaces record n (1-based) with v
func (s *Service[T]) Edit(n int, v T) error {
	payload, err := s.Kind.Encode(v)
	if err != nil {
		return err
	}
	if err = s.Store.Edit(n, payload); err != nil {
		return err
	}
	log.Event("record.edited", "kind", s.Kind.Name, "line", n)
	return nil
}

// Delete removes record n (1-based). Records after it are renumbered.
func (s *Service[T]) Delete(n int) error {
	if err := s.Store.Delete(n); err != nil {
		return err
	}
	log.Event("record.deleted", "kind", s.Kind.Name, "line", n)
	return nil
}

// Sorted returns all entities sorted ascending by key
func (s *Service[T]) Sorted() ([]T, error) {
	res, err := s.Load()
	if err != nil {
		return nil, err
	}
	s.Kind.Sort(res.Items, order.ByKey[T])
	return res.Items, nil
}

// Ordered returns entities in display order. Same as Sorted except for
// kinds that show the largest key first.
func (s *Service[T]) Ordered() ([]T, error) {
	items, err := s.Sorted()
	if err != nil {
		return nil, err
	}
	if s.Kind.Descending {
		slices.Reverse(items)
	}
	return items, nil
}

// Search returns an entity with a given key
func (s *Service[T]) Search(key int) (T, bool, error) {
	var zero T
	items, err := s.Sorted()
	if err != nil {
		return zero, false, err
	}
	idx, ok := order.BinarySearch(items, order.ByKey[T], key)
	if !ok {
		return zero, false, nil
	}
	return items[idx], true, nil
}
