package spoke

import (
	"log/slog"
	"strconv"
)

// Tick counts updates of a storage. Ticks are handed in by the caller
// and are expected to increase monotonically.
type Tick uint32

const NoTick Tick = 0

type EntityId uint32

func (e EntityId) String() string {
	return strconv.Itoa(int(e))
}

func (e EntityId) LogValue() slog.Value {
	return slog.StringValue(e.String())
}

// Row is the index of an entity within a column.
type Row uint32
