package bykenet

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/oliverbestmann/bykenet/mask"
)

type testKind uint8

const (
	kindPosition testKind = iota + 1
	kindHealth
)

type position struct {
	X, Y Property[int64]
}

func newPosition(x, y int64) *position {
	return &position{
		X: NewProperty(0, x),
		Y: NewProperty(1, y),
	}
}

func (p *position) Kind() testKind  { return kindPosition }
func (p *position) FieldCount() int { return 2 }

func (p *position) fields() []*Property[int64] {
	return []*Property[int64]{&p.X, &p.Y}
}

func (p *position) BindMutator(mutator Mutator) {
	for _, field := range p.fields() {
		field.Bind(mutator)
	}
}

func (p *position) AppendReplica(dst []byte, fields *mask.ChangeMask) []byte {
	for _, field := range p.fields() {
		if dirty, _ := fields.Bit(field.Field()); dirty {
			dst = binary.AppendVarint(dst, field.Get())
		}
	}

	return dst
}

func (p *position) ReadReplica(src []byte, fields *mask.ChangeMask) (int, error) {
	var consumed int

	for _, field := range p.fields() {
		if dirty, _ := fields.Bit(field.Field()); !dirty {
			continue
		}

		value, n := binary.Varint(src[consumed:])
		if n <= 0 {
			return consumed, fmt.Errorf("decode field %d: %w", field.Field(), errShortBuffer)
		}

		field.Set(value)
		consumed += n
	}

	return consumed, nil
}

var errShortBuffer = errors.New("short buffer")

type health struct {
	Value Property[uint8]
}

func (h *health) Kind() testKind  { return kindHealth }
func (h *health) FieldCount() int { return 1 }

func (h *health) AppendReplica(dst []byte, fields *mask.ChangeMask) []byte {
	if dirty, _ := fields.Bit(0); dirty {
		dst = append(dst, h.Value.Get())
	}

	return dst
}

func (h *health) ReadReplica(src []byte, fields *mask.ChangeMask) (int, error) {
	if dirty, _ := fields.Bit(0); !dirty {
		return 0, nil
	}

	if len(src) == 0 {
		return 0, errShortBuffer
	}

	h.Value.Set(src[0])
	return 1, nil
}
