package scenario

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/oliverbestmann/bykenet/diff"
	"github.com/oliverbestmann/bykenet/spoke"
)

type trackerKey struct {
	entity spoke.EntityId
	kind   Kind
}

// Runner replays the steps of a scenario and writes one line per event.
type Runner struct {
	scenario *Scenario
	out      io.Writer

	storage  *spoke.Storage[Kind]
	columns  map[string]*spoke.Column[Kind, *Record]
	names    map[Kind]string
	trackers map[trackerKey]*diff.Tracker
	peers    map[diff.PeerId]bool

	tick spoke.Tick
}

func NewRunner(scenario *Scenario, out io.Writer) *Runner {
	r := &Runner{
		scenario: scenario,
		out:      out,
		storage:  spoke.NewStorage[Kind](),
		columns:  map[string]*spoke.Column[Kind, *Record]{},
		names:    map[Kind]string{},
		trackers: map[trackerKey]*diff.Tracker{},
		peers:    map[diff.PeerId]bool{},
		tick:     1,
	}

	for _, peer := range scenario.Peers {
		r.peers[diff.PeerId(peer)] = true
	}

	for _, component := range scenario.Components {
		column := spoke.NewColumn[Kind, *Record](component.Kind)
		r.storage.Register(column)
		r.columns[component.Name] = column
		r.names[component.Kind] = component.Name
	}

	for _, entity := range scenario.Entities {
		// follow declaration order of the components, not map order
		for _, component := range scenario.Components {
			values, ok := entity.Components[component.Name]
			if !ok {
				continue
			}

			if len(values) == 0 {
				values = make([]int64, component.Fields)
			}

			entityId := spoke.EntityId(entity.Id)
			r.columns[component.Name].Insert(r.tick, entityId, NewRecord(component.Kind, values))

			tracker := diff.NewTracker(component.Fields)
			for _, peer := range scenario.Peers {
				tracker.AddPeer(diff.PeerId(peer))
			}

			r.trackers[trackerKey{entity: entityId, kind: component.Kind}] = tracker
		}
	}

	return r
}

// Run executes all steps. With a non strict config, steps targeting unknown
// entities or peers are skipped.
func (r *Runner) Run() error {
	for idx, step := range r.scenario.Steps {
		r.tick += 1

		var err error
		switch {
		case step.Set != nil:
			err = r.set(step.Set)
		case step.Send != nil:
			err = r.send(step.Send)
		case step.Ack != nil:
			err = r.ack(step.Ack)
		case step.Drop != nil:
			err = r.drop(step.Drop)
		}

		if err == nil {
			continue
		}

		if errors.Is(err, ErrUnknownTarget) && !r.scenario.Config.Strict {
			slog.Warn(
				"Skipping step",
				slog.Int("step", idx+1),
				slog.String("reason", err.Error()),
			)

			continue
		}

		return fmt.Errorf("step %d: %w", idx+1, err)
	}

	return nil
}

func (r *Runner) set(step *SetStep) error {
	entity := spoke.EntityId(step.Entity)
	column := r.columns[step.Component]

	view, ok := column.Mut(r.tick, entity)
	if !ok {
		return fmt.Errorf("%w: entity %d has no component %q", ErrUnknownTarget, step.Entity, step.Component)
	}

	defer view.Release()

	changed := view.Mut().Fields[step.Field].Set(step.Value)
	dirty, _ := column.Dirty(entity)

	r.printf("set entity=%d component=%s field=%d value=%d changed=%t dirty=%s",
		step.Entity, step.Component, step.Field, step.Value, changed, dirty)

	return nil
}

// collect moves the dirty fields of every component into the pending
// fields of all peers.
func (r *Runner) collect() error {
	for column := range r.storage.Columns() {
		for entity := range column.Entities() {
			dirty, _ := column.Dirty(entity)
			if dirty.IsClear() {
				continue
			}

			tracker := r.trackers[trackerKey{entity: entity, kind: column.Kind()}]
			if err := tracker.Merge(dirty); err != nil {
				return err
			}

			dirty.Clear()
		}
	}

	return nil
}

func (r *Runner) send(step *PacketStep) error {
	peer := diff.PeerId(step.Peer)
	if !r.peers[peer] {
		return fmt.Errorf("%w: peer %d", ErrUnknownTarget, step.Peer)
	}

	if err := r.collect(); err != nil {
		return err
	}

	var sent int

	for column := range r.storage.Columns() {
		for entity := range column.Entities() {
			tracker := r.trackers[trackerKey{entity: entity, kind: column.Kind()}]

			fields, ok, err := tracker.Send(peer, diff.PacketIndex(step.Packet))
			if err != nil {
				return fmt.Errorf("entity %d component %s: %w", entity, r.names[column.Kind()], err)
			}

			if !ok {
				continue
			}

			view, _ := column.DynRef(entity)
			payload := view.Get().AppendReplica(fields.AppendBytes(nil), fields)
			view.Release()

			r.printf("send peer=%d packet=%d entity=%d component=%s fields=%s payload=%x",
				step.Peer, step.Packet, entity, r.names[column.Kind()], fields, payload)

			sent += 1
		}
	}

	if sent == 0 {
		r.printf("send peer=%d packet=%d nothing pending", step.Peer, step.Packet)
	}

	return nil
}

func (r *Runner) ack(step *PacketStep) error {
	peer := diff.PeerId(step.Peer)
	if !r.peers[peer] {
		return fmt.Errorf("%w: peer %d", ErrUnknownTarget, step.Peer)
	}

	var acked int
	for _, tracker := range r.trackers {
		if tracker.Ack(peer, diff.PacketIndex(step.Packet)) {
			acked += 1
		}
	}

	r.printf("ack peer=%d packet=%d components=%d", step.Peer, step.Packet, acked)
	return nil
}

func (r *Runner) drop(step *PacketStep) error {
	peer := diff.PeerId(step.Peer)
	if !r.peers[peer] {
		return fmt.Errorf("%w: peer %d", ErrUnknownTarget, step.Peer)
	}

	var dropped int

	for column := range r.storage.Columns() {
		for entity := range column.Entities() {
			tracker := r.trackers[trackerKey{entity: entity, kind: column.Kind()}]

			ok, err := tracker.Drop(peer, diff.PacketIndex(step.Packet))
			if err != nil {
				return err
			}

			if !ok {
				continue
			}

			pending, _ := tracker.Pending(peer)
			r.printf("drop peer=%d packet=%d entity=%d component=%s pending=%s",
				step.Peer, step.Packet, entity, r.names[column.Kind()], pending)

			dropped += 1
		}
	}

	if dropped == 0 {
		r.printf("drop peer=%d packet=%d nothing in flight", step.Peer, step.Packet)
	}

	return nil
}

func (r *Runner) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out, "[%03d] "+format+"\n", append([]any{r.tick}, args...)...)
}
