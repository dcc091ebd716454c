// Package diff keeps track of which fields of a component still need to
// be delivered to each peer.
package diff

import (
	"errors"
	"fmt"
	"iter"
	"maps"
	"slices"

	"github.com/oliverbestmann/bykenet/mask"
)

// ErrDuplicatePacket is returned by Send if the packet index is still in flight.
var ErrDuplicatePacket = errors.New("packet index still in flight")

type PeerId uint32

// PacketIndex identifies an outgoing packet. Packet indices of a peer
// are expected to increase with every sent packet.
type PacketIndex uint32

type peerState struct {
	pending  *mask.ChangeMask
	inFlight map[PacketIndex]*mask.ChangeMask
}

// Tracker holds the replication state of one component instance for all peers.
// For every peer it knows the fields that are pending, and the fields that were
// sent in packets that are not yet acknowledged.
type Tracker struct {
	byteNumber uint8
	fieldCount int
	peers      map[PeerId]*peerState
}

func NewTracker(fieldCount int) *Tracker {
	return &Tracker{
		byteNumber: mask.ForFields(fieldCount).ByteNumber(),
		fieldCount: fieldCount,
		peers:      map[PeerId]*peerState{},
	}
}

// AddPeer starts tracking a peer. The peer has not seen any field yet,
// so all fields start out as pending.
func (t *Tracker) AddPeer(peer PeerId) {
	if _, exists := t.peers[peer]; exists {
		return
	}

	pending := mask.New(t.byteNumber)
	for field := range t.fieldCount {
		pending.SetBit(field, true)
	}

	t.peers[peer] = &peerState{
		pending:  pending,
		inFlight: map[PacketIndex]*mask.ChangeMask{},
	}
}

func (t *Tracker) RemovePeer(peer PeerId) {
	delete(t.peers, peer)
}

// Peers yields all tracked peers in ascending order.
func (t *Tracker) Peers() iter.Seq[PeerId] {
	return slices.Values(slices.Sorted(maps.Keys(t.peers)))
}

// Merge adds the fields in dirty to the pending fields of every peer.
func (t *Tracker) Merge(dirty *mask.ChangeMask) error {
	if dirty.ByteNumber() != t.byteNumber {
		return fmt.Errorf("merge %d byte mask into tracker of %d bytes: %w",
			dirty.ByteNumber(), t.byteNumber, mask.ErrCapacityMismatch)
	}

	for peer, state := range t.peers {
		if err := state.pending.Or(dirty); err != nil {
			return fmt.Errorf("merge into peer %d: %w", peer, err)
		}
	}

	return nil
}

// Pending returns the fields not yet sent to the peer.
// The returned mask must not be modified.
func (t *Tracker) Pending(peer PeerId) (*mask.ChangeMask, bool) {
	state, ok := t.peers[peer]
	if !ok {
		return nil, false
	}

	return state.pending, true
}

// InFlight returns the number of packets sent to the peer that
// were neither acknowledged nor dropped.
func (t *Tracker) InFlight(peer PeerId) int {
	state, ok := t.peers[peer]
	if !ok {
		return 0
	}

	return len(state.inFlight)
}

// Send records that the pending fields go out to the peer with the given packet.
// It returns the fields to encode and clears the pending fields. If nothing is
// pending, nothing is recorded and ok is false. Reusing the index of a packet
// that is still in flight fails with ErrDuplicatePacket and keeps the pending fields.
func (t *Tracker) Send(peer PeerId, packet PacketIndex) (fields *mask.ChangeMask, ok bool, err error) {
	state, ok := t.peers[peer]
	if !ok || state.pending.IsClear() {
		return nil, false, nil
	}

	if _, exists := state.inFlight[packet]; exists {
		return nil, false, fmt.Errorf("%w: packet %d to peer %d", ErrDuplicatePacket, packet, peer)
	}

	fields = state.pending.Clone()
	state.inFlight[packet] = fields
	state.pending.Clear()

	return fields, true, nil
}

// Ack marks the packet as delivered.
func (t *Tracker) Ack(peer PeerId, packet PacketIndex) bool {
	state, ok := t.peers[peer]
	if !ok {
		return false
	}

	if _, exists := state.inFlight[packet]; !exists {
		return false
	}

	delete(state.inFlight, packet)
	return true
}

// Drop marks the packet as lost. Its fields become pending again, except for
// fields that were sent again in a later packet that is still in flight.
func (t *Tracker) Drop(peer PeerId, packet PacketIndex) (bool, error) {
	state, ok := t.peers[peer]
	if !ok {
		return false, nil
	}

	lost, ok := state.inFlight[packet]
	if !ok {
		return false, nil
	}

	delete(state.inFlight, packet)

	for later, fields := range state.inFlight {
		if later <= packet {
			continue
		}

		if err := lost.Nand(fields); err != nil {
			return false, fmt.Errorf("drop packet %d of peer %d: %w", packet, peer, err)
		}
	}

	if err := state.pending.Or(lost); err != nil {
		return false, fmt.Errorf("drop packet %d of peer %d: %w", packet, peer, err)
	}

	return true, nil
}
