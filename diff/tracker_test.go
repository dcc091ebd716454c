package diff

import (
	"slices"
	"testing"

	"github.com/oliverbestmann/bykenet/mask"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dirtyMask(fieldCount int, fields ...int) *mask.ChangeMask {
	m := mask.ForFields(fieldCount)
	for _, field := range fields {
		m.SetBit(field, true)
	}

	return m
}

func requirePending(t *testing.T, tracker *Tracker, peer PeerId, expected string) {
	t.Helper()

	pending, ok := tracker.Pending(peer)
	require.True(t, ok)
	require.Equal(t, expected, pending.String())
}

func TestTracker_NewPeerGetsAllFields(t *testing.T) {
	tracker := NewTracker(10)
	tracker.AddPeer(1)

	requirePending(t, tracker, 1, "ff03")

	// adding again keeps the state
	_, _, _ = tracker.Send(1, 1)
	tracker.AddPeer(1)
	requirePending(t, tracker, 1, "0000")
}

func TestTracker_SendAndAck(t *testing.T) {
	tracker := NewTracker(4)
	tracker.AddPeer(1)

	fields, ok, err := tracker.Send(1, 1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "0f", fields.String())
	requirePending(t, tracker, 1, "00")

	// nothing pending, nothing to send
	_, ok, err = tracker.Send(1, 2)
	require.NoError(t, err)
	require.False(t, ok)

	require.Equal(t, 1, tracker.InFlight(1))
	require.True(t, tracker.Ack(1, 1))
	require.False(t, tracker.Ack(1, 1))
	require.Equal(t, 0, tracker.InFlight(1))
}

func TestTracker_MergeReachesAllPeers(t *testing.T) {
	tracker := NewTracker(4)
	tracker.AddPeer(1)
	tracker.AddPeer(2)

	_, _, _ = tracker.Send(1, 1)
	_, _, _ = tracker.Send(2, 1)

	require.NoError(t, tracker.Merge(dirtyMask(4, 1, 2)))

	requirePending(t, tracker, 1, "06")
	requirePending(t, tracker, 2, "06")

	require.Equal(t, []PeerId{1, 2}, slices.Collect(tracker.Peers()))
}

func TestTracker_MergeCapacityMismatch(t *testing.T) {
	tracker := NewTracker(4)
	tracker.AddPeer(1)

	err := tracker.Merge(dirtyMask(12, 9))
	require.ErrorIs(t, err, mask.ErrCapacityMismatch)
}

func TestTracker_DropRestoresFields(t *testing.T) {
	tracker := NewTracker(4)
	tracker.AddPeer(1)
	_, _, _ = tracker.Send(1, 1)
	tracker.Ack(1, 1)

	require.NoError(t, tracker.Merge(dirtyMask(4, 1, 2)))
	_, _, _ = tracker.Send(1, 2)

	dropped, err := tracker.Drop(1, 2)
	require.NoError(t, err)
	require.True(t, dropped)

	requirePending(t, tracker, 1, "06")
	require.Equal(t, 0, tracker.InFlight(1))
}

func TestTracker_DropSkipsFieldsSentLater(t *testing.T) {
	tracker := NewTracker(4)
	tracker.AddPeer(1)
	_, _, _ = tracker.Send(1, 1)
	tracker.Ack(1, 1)

	// packet 2 carries fields 1 and 2
	require.NoError(t, tracker.Merge(dirtyMask(4, 1, 2)))
	_, _, _ = tracker.Send(1, 2)

	// packet 3 carries a newer value of field 2
	require.NoError(t, tracker.Merge(dirtyMask(4, 2)))
	_, _, _ = tracker.Send(1, 3)

	// field 3 changed and is not sent yet
	require.NoError(t, tracker.Merge(dirtyMask(4, 3)))

	dropped, err := tracker.Drop(1, 2)
	require.NoError(t, err)
	require.True(t, dropped)

	// only field 1 needs to be resent, field 2 is still in flight
	requirePending(t, tracker, 1, "0a")

	// losing packet 3 too brings back field 2
	dropped, err = tracker.Drop(1, 3)
	require.NoError(t, err)
	require.True(t, dropped)
	requirePending(t, tracker, 1, "0e")
}

func TestTracker_UnknownPeerOrPacket(t *testing.T) {
	tracker := NewTracker(1)

	_, ok := tracker.Pending(5)
	assert.False(t, ok)

	_, ok, err := tracker.Send(5, 1)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, tracker.Ack(5, 1))

	dropped, err := tracker.Drop(5, 1)
	assert.NoError(t, err)
	assert.False(t, dropped)

	tracker.AddPeer(5)
	dropped, err = tracker.Drop(5, 1)
	assert.NoError(t, err)
	assert.False(t, dropped)

	tracker.RemovePeer(5)
	assert.Equal(t, 0, tracker.InFlight(5))
}

func TestTracker_DuplicatePacket(t *testing.T) {
	tracker := NewTracker(2)
	tracker.AddPeer(1)
	_, _, _ = tracker.Send(1, 1)

	require.NoError(t, tracker.Merge(dirtyMask(2, 0)))

	_, ok, err := tracker.Send(1, 1)
	require.ErrorIs(t, err, ErrDuplicatePacket)
	require.False(t, ok)

	// the pending fields stay and go out with the next packet
	requirePending(t, tracker, 1, "01")
	require.Equal(t, 1, tracker.InFlight(1))

	fields, ok, err := tracker.Send(1, 2)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "01", fields.String())
}
