package bykenet

import (
	"fmt"

	"github.com/oliverbestmann/bykenet/mask"
)

// Protocol is the kind tag type of an application protocol. Every replicable
// component type of a protocol is identified by one value of P.
type Protocol interface {
	~uint8 | ~uint16 | ~uint32
}

// ReplicateSafe is implemented by components that can be replicated as part of
// the protocol P. It is usually implemented on the pointer type of a component,
// so that a ReplicateSafe value refers to the component in its storage.
//
//	type Position struct {
//	   X, Y bykenet.Property[float64]
//	}
//
//	func (p *Position) Kind() Kind { return KindPosition }
//	func (p *Position) FieldCount() int { return 2 }
//	...
//
// Encoding of the values is owned by the component. AppendReplica writes the
// fields selected by the given mask, ReadReplica reads the fields selected by
// the mask and returns the number of bytes consumed.
//
// Storage that derives the kind from the type alone calls Kind on the zero
// value of the implementing type. Types whose kind is stored in the value
// read their receiver in Kind and must be given to storage with their kind
// spelled out instead.
type ReplicateSafe[P Protocol] interface {
	Kind() P
	FieldCount() int
	AppendReplica(dst []byte, fields *mask.ChangeMask) []byte
	ReadReplica(src []byte, fields *mask.ChangeMask) (int, error)
}

// NewChangeMask creates a ChangeMask with one bit for every field of the component.
func NewChangeMask[P Protocol](value ReplicateSafe[P]) *mask.ChangeMask {
	return mask.ForFields(value.FieldCount())
}

func describe[P Protocol](value ReplicateSafe[P]) string {
	return fmt.Sprintf("%T(kind=%d)", value, value.Kind())
}
