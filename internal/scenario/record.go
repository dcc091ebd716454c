package scenario

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/oliverbestmann/bykenet"
	"github.com/oliverbestmann/bykenet/mask"
)

const maxFields = 64

var errTruncated = errors.New("truncated field value")

// Kind is the protocol of scenario components.
type Kind uint16

// Record is a component with a number of integer fields, declared
// by the scenario file. All declared components share this type, their
// kind is stored in the value itself.
//
// Kind reads the value, so it can not be called on a nil *Record. Columns of
// records must be created with spoke.NewColumn and added with Storage.Register,
// never through spoke.ColumnOf or the typed helpers built on it.
type Record struct {
	kind   Kind
	Fields []bykenet.Property[int64]
}

var _ bykenet.ReplicateSafe[Kind] = &Record{}

func NewRecord(kind Kind, values []int64) *Record {
	record := &Record{kind: kind, Fields: make([]bykenet.Property[int64], len(values))}
	for idx, value := range values {
		record.Fields[idx] = bykenet.NewProperty(idx, value)
	}

	return record
}

func (r *Record) Kind() Kind {
	return r.kind
}

func (r *Record) FieldCount() int {
	return len(r.Fields)
}

func (r *Record) BindMutator(mutator bykenet.Mutator) {
	for idx := range r.Fields {
		r.Fields[idx].Bind(mutator)
	}
}

// AppendReplica writes every selected field as a zigzag varint.
func (r *Record) AppendReplica(dst []byte, fields *mask.ChangeMask) []byte {
	for idx := range r.Fields {
		if dirty, _ := fields.Bit(idx); dirty {
			dst = binary.AppendVarint(dst, r.Fields[idx].Get())
		}
	}

	return dst
}

func (r *Record) ReadReplica(src []byte, fields *mask.ChangeMask) (int, error) {
	var consumed int

	for idx := range r.Fields {
		if dirty, _ := fields.Bit(idx); !dirty {
			continue
		}

		value, n := binary.Varint(src[consumed:])
		if n <= 0 {
			return consumed, fmt.Errorf("field %d: %w", idx, errTruncated)
		}

		r.Fields[idx].Set(value)
		consumed += n
	}

	return consumed, nil
}
