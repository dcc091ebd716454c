// Package mask implements ChangeMask, the per-component dirty field bitmap
// used to decide which fields must be sent to a peer.
package mask

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math"
)

// ErrCapacityMismatch is returned by the set operations if both masks
// do not have the same number of bytes.
var ErrCapacityMismatch = errors.New("change mask capacity mismatch")

// MaxFields is the number of fields a ChangeMask can track at most.
const MaxFields = math.MaxUint8 * 8

// ChangeMask is a fixed size bit vector with one bit per field of a component.
// Bit i is stored in byte i/8 at bit offset i%8, least significant bit first.
// The byte order matches the order the bytes are written to the wire.
type ChangeMask struct {
	bits []byte
}

// New creates a ChangeMask with the given number of bytes. All bits are cleared.
// A mask with zero bytes is valid and always empty.
func New(byteNumber uint8) *ChangeMask {
	return &ChangeMask{bits: make([]byte, byteNumber)}
}

// ForFields creates a ChangeMask large enough to hold fieldCount bits.
func ForFields(fieldCount int) *ChangeMask {
	if fieldCount < 0 || fieldCount > MaxFields {
		panic(fmt.Sprintf("field count %d out of range [0, %d]", fieldCount, MaxFields))
	}

	return New(uint8((fieldCount + 7) / 8))
}

// FromBytes creates a ChangeMask holding a copy of the given raw bytes.
func FromBytes(raw []byte) (*ChangeMask, error) {
	if len(raw) > math.MaxUint8 {
		return nil, fmt.Errorf("change mask of %d bytes exceeds %d bytes", len(raw), math.MaxUint8)
	}

	m := New(uint8(len(raw)))
	copy(m.bits, raw)
	return m, nil
}

// Bit returns the value of the bit at index. ok is false if the index
// is not covered by the mask.
func (m *ChangeMask) Bit(index int) (value, ok bool) {
	if index < 0 || index >= len(m.bits)*8 {
		return false, false
	}

	return m.bits[index/8]&(1<<(index%8)) != 0, true
}

// SetBit sets or clears the bit at index. Indices not covered by the mask
// are ignored, in which case SetBit returns false.
func (m *ChangeMask) SetBit(index int, value bool) bool {
	if index < 0 || index >= len(m.bits)*8 {
		return false
	}

	bit := byte(1) << (index % 8)
	if value {
		m.bits[index/8] |= bit
	} else {
		m.bits[index/8] &^= bit
	}

	return true
}

// Clear resets all bits to zero.
func (m *ChangeMask) Clear() {
	clear(m.bits)
}

// IsClear reports whether no bit is set.
func (m *ChangeMask) IsClear() bool {
	for _, b := range m.bits {
		if b != 0 {
			return false
		}
	}

	return true
}

// ByteNumber returns the capacity of the mask in bytes.
func (m *ChangeMask) ByteNumber() uint8 {
	return uint8(len(m.bits))
}

// Byte returns the raw byte at index. It panics if index is out of range.
func (m *ChangeMask) Byte(index int) byte {
	return m.bits[index]
}

// Nand removes every bit set in other from m: m = m &^ other.
// If both masks differ in capacity, m is left unchanged and
// ErrCapacityMismatch is returned.
func (m *ChangeMask) Nand(other *ChangeMask) error {
	if err := m.compatible(other); err != nil {
		return err
	}

	for idx, b := range other.bits {
		m.bits[idx] &^= b
	}

	return nil
}

// Or adds every bit set in other to m.
// If both masks differ in capacity, m is left unchanged and
// ErrCapacityMismatch is returned.
func (m *ChangeMask) Or(other *ChangeMask) error {
	if err := m.compatible(other); err != nil {
		return err
	}

	for idx, b := range other.bits {
		m.bits[idx] |= b
	}

	return nil
}

// Clone returns an independent copy of the mask.
func (m *ChangeMask) Clone() *ChangeMask {
	return &ChangeMask{bits: append(make([]byte, 0, len(m.bits)), m.bits...)}
}

// Equal reports whether both masks have the same capacity and bits.
func (m *ChangeMask) Equal(other *ChangeMask) bool {
	if len(m.bits) != len(other.bits) {
		return false
	}

	for idx, b := range m.bits {
		if other.bits[idx] != b {
			return false
		}
	}

	return true
}

// AppendBytes appends the raw bytes of the mask to dst in wire order.
func (m *ChangeMask) AppendBytes(dst []byte) []byte {
	return append(dst, m.bits...)
}

func (m *ChangeMask) String() string {
	return hex.EncodeToString(m.bits)
}

func (m *ChangeMask) compatible(other *ChangeMask) error {
	if len(m.bits) != len(other.bits) {
		return fmt.Errorf("%w: %d bytes, other has %d bytes",
			ErrCapacityMismatch, len(m.bits), len(other.bits))
	}

	return nil
}
