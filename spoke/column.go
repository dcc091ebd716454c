package spoke

import (
	"fmt"
	"iter"
	"log/slog"

	"github.com/oliverbestmann/bykenet"
	"github.com/oliverbestmann/bykenet/internal/borrow"
	"github.com/oliverbestmann/bykenet/mask"
)

type columnEntry[P bykenet.Protocol, R bykenet.ReplicateSafe[P]] struct {
	entity EntityId
	value  R
	flag   borrow.Flag

	// fields changed since the dirty mask was last collected
	dirty *mask.ChangeMask
}

// Column stores all components of one kind, densely packed by Row.
// Views handed out by a column borrow the row they point to. A borrowed row
// can not be removed.
type Column[P bykenet.Protocol, R bykenet.ReplicateSafe[P]] struct {
	ChangeTracker
	kind    P
	rows    map[EntityId]Row
	entries []*columnEntry[P, R]
}

func NewColumn[P bykenet.Protocol, R bykenet.ReplicateSafe[P]](kind P) *Column[P, R] {
	return &Column[P, R]{
		kind: kind,
		rows: map[EntityId]Row{},
	}
}

func (c *Column[P, R]) Kind() P {
	return c.kind
}

func (c *Column[P, R]) Len() int {
	return len(c.entries)
}

func (c *Column[P, R]) Has(entity EntityId) bool {
	_, ok := c.rows[entity]
	return ok
}

// Entities yields the entities of this column in row order.
func (c *Column[P, R]) Entities() iter.Seq[EntityId] {
	return func(yield func(EntityId) bool) {
		for _, entry := range c.entries {
			if !yield(entry.entity) {
				return
			}
		}
	}
}

// Insert adds the component for the given entity. An existing component
// is replaced, in which case all of its fields are marked dirty.
func (c *Column[P, R]) Insert(tick Tick, entity EntityId, value R) {
	if value.Kind() != c.kind {
		panic(fmt.Sprintf("component %T of kind %d inserted into column of kind %d", value, value.Kind(), c.kind))
	}

	if row, ok := c.rows[entity]; ok {
		entry := c.entries[row]
		if !entry.flag.Free() {
			panic(&borrow.Error{Target: c.describe(entity), Err: borrow.ErrAlreadyBorrowed})
		}

		entry.value = value
		entry.dirty = c.bind(value)
		for field := range value.FieldCount() {
			entry.dirty.SetBit(field, true)
		}

		c.touch(row, tick)
		return
	}

	c.rows[entity] = Row(len(c.entries))
	c.entries = append(c.entries, &columnEntry[P, R]{
		entity: entity,
		value:  value,
		dirty:  c.bind(value),
	})

	c.push(tick)

	slog.Debug(
		"Component inserted",
		slog.Int("kind", int(c.kind)),
		slog.Any("entity", entity),
	)
}

func (c *Column[P, R]) bind(value R) *mask.ChangeMask {
	dirty := bykenet.NewChangeMask[P](value)

	if binder, ok := any(value).(bykenet.MutatorBinder); ok {
		binder.BindMutator(bykenet.MaskMutator{Mask: dirty})
	}

	return dirty
}

// Take removes the component of the given entity and returns it.
func (c *Column[P, R]) Take(entity EntityId) (R, bool) {
	row, ok := c.rows[entity]
	if !ok {
		var zero R
		return zero, false
	}

	removed := c.entries[row]
	if !removed.flag.Free() {
		panic(&borrow.Error{Target: c.describe(entity), Err: borrow.ErrAlreadyBorrowed})
	}

	// move the last row into the gap
	last := Row(len(c.entries) - 1)
	moved := c.entries[last]
	c.entries[row] = moved
	c.rows[moved.entity] = row
	c.swapRemove(row)

	c.entries[last] = nil
	c.entries = c.entries[:last]

	delete(c.rows, entity)

	return removed.value, true
}

func (c *Column[P, R]) Remove(entity EntityId) bool {
	_, ok := c.Take(entity)
	return ok
}

// Get returns the component without borrowing it.
func (c *Column[P, R]) Get(entity EntityId) (R, bool) {
	entry, ok := c.lookup(entity)
	if !ok {
		var zero R
		return zero, false
	}

	return entry.value, true
}

// Changed returns the tick the component was last changed at.
func (c *Column[P, R]) Changed(entity EntityId) (Tick, bool) {
	row, ok := c.rows[entity]
	if !ok {
		return NoTick, false
	}

	return c.ChangeTracker.Changed(row), true
}

// ChangedSince yields all entities with a component changed after the given tick.
func (c *Column[P, R]) ChangedSince(tick Tick) iter.Seq[EntityId] {
	return c.entitiesOf(c.rowsAfter(tick, c.LastChanged(), func(t rowTicks) Tick { return t.changed }))
}

// AddedSince yields all entities whose component was inserted after the given
// tick. Replacing a component does not count as adding it.
func (c *Column[P, R]) AddedSince(tick Tick) iter.Seq[EntityId] {
	return c.entitiesOf(c.rowsAfter(tick, c.LastAdded(), func(t rowTicks) Tick { return t.added }))
}

func (c *Column[P, R]) entitiesOf(rows iter.Seq[Row]) iter.Seq[EntityId] {
	return func(yield func(EntityId) bool) {
		for row := range rows {
			if !yield(c.entries[row].entity) {
				return
			}
		}
	}
}

// Dirty returns the mask of fields that changed since it was last cleared.
func (c *Column[P, R]) Dirty(entity EntityId) (*mask.ChangeMask, bool) {
	entry, ok := c.lookup(entity)
	if !ok {
		return nil, false
	}

	return entry.dirty, true
}

// MarkDirty marks a single field of the entities component as dirty.
func (c *Column[P, R]) MarkDirty(entity EntityId, field int) bool {
	entry, ok := c.lookup(entity)
	if !ok {
		return false
	}

	return entry.dirty.SetBit(field, true)
}

func (c *Column[P, R]) Ref(entity EntityId) (*bykenet.ComponentRef[P, R], bool) {
	entry, ok := c.lookup(entity)
	if !ok {
		return nil, false
	}

	entry.flag.MustShared(func() string { return c.describe(entity) })
	return bykenet.NewComponentRef[P, R](&rowRef[P, R]{entry: entry}), true
}

// Mut returns a mutable view of the component. Calling Mut on the view
// marks the component as changed at the given tick.
func (c *Column[P, R]) Mut(tick Tick, entity EntityId) (*bykenet.ComponentMut[P, R], bool) {
	entry, ok := c.lookup(entity)
	if !ok {
		return nil, false
	}

	entry.flag.MustExclusive(func() string { return c.describe(entity) })
	return bykenet.NewComponentMut[P, R](&rowMut[P, R]{column: c, entry: entry, tick: tick}), true
}

func (c *Column[P, R]) DynRef(entity EntityId) (*bykenet.ComponentDynRef[P], bool) {
	entry, ok := c.lookup(entity)
	if !ok {
		return nil, false
	}

	entry.flag.MustShared(func() string { return c.describe(entity) })
	return bykenet.NewComponentDynRef[P](&rowRef[P, R]{entry: entry}), true
}

func (c *Column[P, R]) DynMut(tick Tick, entity EntityId) (*bykenet.ComponentDynMut[P], bool) {
	entry, ok := c.lookup(entity)
	if !ok {
		return nil, false
	}

	entry.flag.MustExclusive(func() string { return c.describe(entity) })
	return bykenet.NewComponentDynMut[P](&rowMut[P, R]{column: c, entry: entry, tick: tick}), true
}

func (c *Column[P, R]) lookup(entity EntityId) (*columnEntry[P, R], bool) {
	row, ok := c.rows[entity]
	if !ok {
		return nil, false
	}

	return c.entries[row], true
}

func (c *Column[P, R]) describe(entity EntityId) string {
	return fmt.Sprintf("component of kind %d on entity %s", c.kind, entity)
}

type rowRef[P bykenet.Protocol, R bykenet.ReplicateSafe[P]] struct {
	entry *columnEntry[P, R]
}

func (r *rowRef[P, R]) ComponentRef() R {
	return r.entry.value
}

func (r *rowRef[P, R]) ComponentDynRef() bykenet.ReplicateSafe[P] {
	return r.entry.value
}

func (r *rowRef[P, R]) Release() {
	r.entry.flag.ReleaseShared()
}

type rowMut[P bykenet.Protocol, R bykenet.ReplicateSafe[P]] struct {
	column *Column[P, R]
	entry  *columnEntry[P, R]
	tick   Tick
}

func (r *rowMut[P, R]) ComponentRef() R {
	return r.entry.value
}

func (r *rowMut[P, R]) ComponentMut() R {
	r.touch()
	return r.entry.value
}

func (r *rowMut[P, R]) ComponentDynRef() bykenet.ReplicateSafe[P] {
	return r.entry.value
}

func (r *rowMut[P, R]) ComponentDynMut() bykenet.ReplicateSafe[P] {
	r.touch()
	return r.entry.value
}

func (r *rowMut[P, R]) touch() {
	// rows might have moved since the view was created
	row := r.column.rows[r.entry.entity]
	r.column.touch(row, r.tick)
}

func (r *rowMut[P, R]) Release() {
	r.entry.flag.ReleaseExclusive()
}
