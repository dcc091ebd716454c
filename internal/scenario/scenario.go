// Package scenario replays a scripted sequence of field changes, sends,
// acknowledgements and packet losses against the replication primitives.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is the content of a scenario file.
//
//	components:
//	  - name: position
//	    kind: 1
//	    fields: 2
//	entities:
//	  - id: 1
//	    components:
//	      position: [0, 0]
//	peers: [1]
//	steps:
//	  - set: {entity: 1, component: position, field: 0, value: 5}
//	  - send: {peer: 1, packet: 1}
//	  - ack: {peer: 1, packet: 1}
type Scenario struct {
	Config     Config          `yaml:"config"`
	Components []ComponentSpec `yaml:"components"`
	Entities   []EntitySpec    `yaml:"entities"`
	Peers      []uint32        `yaml:"peers"`
	Steps      []Step          `yaml:"steps"`
}

type ComponentSpec struct {
	Name   string `yaml:"name"`
	Kind   Kind   `yaml:"kind"`
	Fields int    `yaml:"fields"`
}

type EntitySpec struct {
	Id         uint32             `yaml:"id"`
	Components map[string][]int64 `yaml:"components"`
}

// Step holds exactly one action.
type Step struct {
	Set  *SetStep    `yaml:"set,omitempty"`
	Send *PacketStep `yaml:"send,omitempty"`
	Ack  *PacketStep `yaml:"ack,omitempty"`
	Drop *PacketStep `yaml:"drop,omitempty"`
}

type SetStep struct {
	Entity    uint32 `yaml:"entity"`
	Component string `yaml:"component"`
	Field     int    `yaml:"field"`
	Value     int64  `yaml:"value"`
}

type PacketStep struct {
	Peer   uint32 `yaml:"peer"`
	Packet uint32 `yaml:"packet"`
}

// Load reads and validates the scenario file at path.
func Load(path string) (*Scenario, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scenario: %w", err)
	}

	defer fp.Close()

	return Parse(fp)
}

// Parse decodes and validates a scenario. Fields not set in the
// config section keep the values of DefaultConfig.
func Parse(r io.Reader) (*Scenario, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	scenario := &Scenario{Config: DefaultConfig()}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(scenario); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrScenarioParse, err)
	}

	if err := scenario.Validate(); err != nil {
		return nil, err
	}

	return scenario, nil
}

func (s *Scenario) Validate() error {
	if err := s.Config.Validate(); err != nil {
		return err
	}

	components := map[string]ComponentSpec{}
	kinds := map[Kind]string{}

	for _, component := range s.Components {
		if component.Name == "" {
			return fmt.Errorf("%w: component of kind %d has no name", ErrInvalidScenario, component.Kind)
		}

		if _, exists := components[component.Name]; exists {
			return fmt.Errorf("%w: component %q declared twice", ErrInvalidScenario, component.Name)
		}

		if other, exists := kinds[component.Kind]; exists {
			return fmt.Errorf("%w: components %q and %q share kind %d",
				ErrInvalidScenario, other, component.Name, component.Kind)
		}

		if component.Fields < 1 || component.Fields > maxFields {
			return fmt.Errorf("%w: component %q needs between 1 and %d fields",
				ErrInvalidScenario, component.Name, maxFields)
		}

		components[component.Name] = component
		kinds[component.Kind] = component.Name
	}

	entities := map[uint32]bool{}

	for _, entity := range s.Entities {
		if entities[entity.Id] {
			return fmt.Errorf("%w: entity %d declared twice", ErrInvalidScenario, entity.Id)
		}

		entities[entity.Id] = true

		for name, values := range entity.Components {
			component, ok := components[name]
			if !ok {
				return fmt.Errorf("%w: entity %d uses unknown component %q", ErrInvalidScenario, entity.Id, name)
			}

			if len(values) != 0 && len(values) != component.Fields {
				return fmt.Errorf("%w: entity %d has %d values for component %q, expected %d",
					ErrInvalidScenario, entity.Id, len(values), name, component.Fields)
			}
		}
	}

	for idx, step := range s.Steps {
		if err := step.validate(components); err != nil {
			return fmt.Errorf("%w: step %d: %w", ErrInvalidScenario, idx+1, err)
		}
	}

	return nil
}

func (s *Step) validate(components map[string]ComponentSpec) error {
	var actions int
	for _, set := range []bool{s.Set != nil, s.Send != nil, s.Ack != nil, s.Drop != nil} {
		if set {
			actions += 1
		}
	}

	if actions != 1 {
		return fmt.Errorf("expected exactly one action, got %d", actions)
	}

	if s.Set != nil {
		component, ok := components[s.Set.Component]
		if !ok {
			return fmt.Errorf("unknown component %q", s.Set.Component)
		}

		if s.Set.Field < 0 || s.Set.Field >= component.Fields {
			return fmt.Errorf("field %d out of range for component %q", s.Set.Field, s.Set.Component)
		}
	}

	return nil
}
