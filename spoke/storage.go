package spoke

import (
	"fmt"
	"iter"
	"log/slog"

	"github.com/oliverbestmann/bykenet"
	"github.com/oliverbestmann/bykenet/mask"
)

// ErasedColumn gives access to a Column without knowing its component type.
type ErasedColumn[P bykenet.Protocol] interface {
	Kind() P
	Len() int
	Has(entity EntityId) bool
	Entities() iter.Seq[EntityId]
	Remove(entity EntityId) bool

	Changed(entity EntityId) (Tick, bool)
	ChangedSince(tick Tick) iter.Seq[EntityId]
	AddedSince(tick Tick) iter.Seq[EntityId]
	LastChanged() Tick

	Dirty(entity EntityId) (*mask.ChangeMask, bool)
	MarkDirty(entity EntityId, field int) bool

	DynRef(entity EntityId) (*bykenet.ComponentDynRef[P], bool)
	DynMut(tick Tick, entity EntityId) (*bykenet.ComponentDynMut[P], bool)
}

var _ ErasedColumn[uint8] = &Column[uint8, bykenet.ReplicateSafe[uint8]]{}

// Storage holds one column per component kind of the protocol P.
type Storage[P bykenet.Protocol] struct {
	columns map[P]ErasedColumn[P]

	// kinds in the order their columns were created
	kinds []P
}

func NewStorage[P bykenet.Protocol]() *Storage[P] {
	return &Storage[P]{
		columns: map[P]ErasedColumn[P]{},
	}
}

// Column returns the column for the given kind.
func (s *Storage[P]) Column(kind P) (ErasedColumn[P], bool) {
	column, ok := s.columns[kind]
	return column, ok
}

// Columns yields all columns in the order they were created.
func (s *Storage[P]) Columns() iter.Seq[ErasedColumn[P]] {
	return func(yield func(ErasedColumn[P]) bool) {
		for _, kind := range s.kinds {
			if !yield(s.columns[kind]) {
				return
			}
		}
	}
}

// Components yields the columns holding a component of the given entity.
func (s *Storage[P]) Components(entity EntityId) iter.Seq[ErasedColumn[P]] {
	return func(yield func(ErasedColumn[P]) bool) {
		for column := range s.Columns() {
			if !column.Has(entity) {
				continue
			}

			if !yield(column) {
				return
			}
		}
	}
}

// Despawn removes all components of the given entity and returns how many were removed.
func (s *Storage[P]) Despawn(entity EntityId) int {
	var removed int

	for _, kind := range s.kinds {
		if s.columns[kind].Remove(entity) {
			removed += 1
		}
	}

	return removed
}

// Register adds a column to the storage. Use this for columns whose kind
// can not be derived from the component type alone.
func (s *Storage[P]) Register(column ErasedColumn[P]) {
	if _, exists := s.columns[column.Kind()]; exists {
		panic(fmt.Sprintf("column of kind %d already registered", column.Kind()))
	}

	s.columns[column.Kind()] = column
	s.kinds = append(s.kinds, column.Kind())

	slog.Debug(
		"New component column registered",
		slog.Int("kind", int(column.Kind())),
		slog.Int("columns", len(s.kinds)),
	)
}

// kindOf returns the kind of R. Kind must not dereference its receiver,
// as it is called on the zero value of R.
func kindOf[P bykenet.Protocol, R bykenet.ReplicateSafe[P]]() P {
	var zeroValue R

	//goland:noinspection GoDfaNilDereference
	return zeroValue.Kind()
}

// ColumnOf returns the typed column for components of type R,
// creating it if it does not exist yet.
func ColumnOf[P bykenet.Protocol, R bykenet.ReplicateSafe[P]](s *Storage[P]) *Column[P, R] {
	kind := kindOf[P, R]()

	existing, ok := s.columns[kind]
	if !ok {
		column := NewColumn[P, R](kind)
		s.Register(column)
		return column
	}

	column, ok := existing.(*Column[P, R])
	if !ok {
		var zero R
		panic(fmt.Sprintf("column of kind %d does not hold %T", kind, zero))
	}

	return column
}

// Insert adds or replaces the component of the given entity.
func Insert[P bykenet.Protocol, R bykenet.ReplicateSafe[P]](s *Storage[P], tick Tick, entity EntityId, value R) {
	ColumnOf[P, R](s).Insert(tick, entity, value)
}

// RefOf returns a read only view of the entities component of type R.
func RefOf[P bykenet.Protocol, R bykenet.ReplicateSafe[P]](s *Storage[P], entity EntityId) (*bykenet.ComponentRef[P, R], bool) {
	return ColumnOf[P, R](s).Ref(entity)
}

// MutOf returns a mutable view of the entities component of type R.
func MutOf[P bykenet.Protocol, R bykenet.ReplicateSafe[P]](s *Storage[P], tick Tick, entity EntityId) (*bykenet.ComponentMut[P, R], bool) {
	return ColumnOf[P, R](s).Mut(tick, entity)
}
