package spoke

import "iter"

type rowTicks struct {
	added   Tick
	changed Tick
}

// ChangeTracker keeps the tick every row of a column was inserted and last changed at,
// together with the most recent of each over all rows.
type ChangeTracker struct {
	rows        []rowTicks
	lastAdded   Tick
	lastChanged Tick
}

func (c *ChangeTracker) push(tick Tick) {
	c.rows = append(c.rows, rowTicks{added: tick, changed: tick})
	c.lastAdded = max(c.lastAdded, tick)
	c.lastChanged = max(c.lastChanged, tick)
}

func (c *ChangeTracker) touch(row Row, tick Tick) {
	c.rows[row].changed = tick
	c.lastChanged = max(c.lastChanged, tick)
}

// swapRemove moves the ticks of the last row to row and drops the last row.
func (c *ChangeTracker) swapRemove(row Row) {
	last := len(c.rows) - 1
	c.rows[row] = c.rows[last]
	c.rows = c.rows[:last]
}

// rowsAfter yields the rows whose selected tick is newer than tick.
func (c *ChangeTracker) rowsAfter(tick Tick, latest Tick, selectTick func(rowTicks) Tick) iter.Seq[Row] {
	return func(yield func(Row) bool) {
		if latest <= tick {
			return
		}

		for idx, ticks := range c.rows {
			if selectTick(ticks) > tick && !yield(Row(idx)) {
				return
			}
		}
	}
}

func (c *ChangeTracker) Added(row Row) Tick {
	return c.rows[row].added
}

func (c *ChangeTracker) Changed(row Row) Tick {
	return c.rows[row].changed
}

// LastAdded returns the most recent tick any row was inserted at.
func (c *ChangeTracker) LastAdded() Tick {
	return c.lastAdded
}

// LastChanged returns the most recent tick any row was changed at.
// Use it to skip a column without looking at individual rows.
func (c *ChangeTracker) LastChanged() Tick {
	return c.lastChanged
}
