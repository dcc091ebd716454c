package scenario

import (
	"bytes"
	"strings"
	"testing"

	"github.com/oliverbestmann/bykenet/diff"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_Golden(t *testing.T) {
	scenario, err := Load("testdata/basic.yaml")
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, NewRunner(scenario, &out).Run())

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	g.Assert(t, "basic", out.Bytes())
}

// entities come last, so test cases can append more of them
const minimal = `
components:
  - {name: position, kind: 1, fields: 2}
peers: [1]
entities:
  - id: 1
    components:
      position: [1, 2]
`

func parse(t *testing.T, source string) (*Scenario, error) {
	t.Helper()
	return Parse(strings.NewReader(source))
}

func TestParse_Defaults(t *testing.T) {
	scenario, err := parse(t, minimal)
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig(), scenario.Config)
	assert.Len(t, scenario.Components, 1)
	assert.Equal(t, []int64{1, 2}, scenario.Entities[0].Components["position"])
}

func TestParse_PartialConfigKeepsDefaults(t *testing.T) {
	scenario, err := parse(t, "config: {log_level: debug}\n"+minimal)
	require.NoError(t, err)

	assert.True(t, scenario.Config.Strict)
	assert.Equal(t, "debug", scenario.Config.LogLevel)
}

func TestParse_Empty(t *testing.T) {
	scenario, err := parse(t, "")
	require.NoError(t, err)
	assert.Empty(t, scenario.Steps)
}

func TestParse_Errors(t *testing.T) {
	cases := []struct {
		name     string
		source   string
		expected error
	}{
		{"syntax", "components: [", ErrScenarioParse},
		{"unknown key", "colors: []", ErrScenarioParse},
		{"log level", "config: {log_level: loud}", ErrInvalidLogLevel},
		{"no name", "components: [{kind: 1, fields: 1}]", ErrInvalidScenario},
		{"no fields", "components: [{name: a, kind: 1}]", ErrInvalidScenario},
		{"too many fields", "components: [{name: a, kind: 1, fields: 65}]", ErrInvalidScenario},
		{"duplicate name", "components: [{name: a, kind: 1, fields: 1}, {name: a, kind: 2, fields: 1}]", ErrInvalidScenario},
		{"duplicate kind", "components: [{name: a, kind: 1, fields: 1}, {name: b, kind: 1, fields: 1}]", ErrInvalidScenario},
		{"unknown entity component", minimal + "  - {id: 2, components: {velocity: []}}\n", ErrInvalidScenario},
		{"duplicate entity", minimal + "  - {id: 1, components: {position: [3, 4]}}\n", ErrInvalidScenario},
		{"wrong value count", minimal + "  - {id: 2, components: {position: [1]}}\n", ErrInvalidScenario},
		{"two actions", minimal + "steps: [{send: {peer: 1, packet: 1}, ack: {peer: 1, packet: 1}}]", ErrInvalidScenario},
		{"no action", minimal + "steps: [{}]", ErrInvalidScenario},
		{"unknown component", minimal + "steps: [{set: {entity: 1, component: hp, field: 0, value: 1}}]", ErrInvalidScenario},
		{"field out of range", minimal + "steps: [{set: {entity: 1, component: position, field: 2, value: 1}}]", ErrInvalidScenario},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parse(t, tc.source)
			require.ErrorIs(t, err, tc.expected)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("testdata/does-not-exist.yaml")
	require.Error(t, err)
}

func TestRunner_StrictUnknownTarget(t *testing.T) {
	scenario, err := parse(t, minimal+"steps: [{send: {peer: 9, packet: 1}}]")
	require.NoError(t, err)

	var out bytes.Buffer
	err = NewRunner(scenario, &out).Run()
	require.ErrorIs(t, err, ErrUnknownTarget)
	require.ErrorContains(t, err, "step 1")
}

func TestRunner_PacketReusedWhileInFlight(t *testing.T) {
	source := "config: {strict: false}\n" + minimal + `
steps:
  - send: {peer: 1, packet: 1}
  - set: {entity: 1, component: position, field: 0, value: 5}
  - send: {peer: 1, packet: 1}
`

	scenario, err := parse(t, source)
	require.NoError(t, err)

	var out bytes.Buffer
	err = NewRunner(scenario, &out).Run()
	require.ErrorIs(t, err, diff.ErrDuplicatePacket)
	require.ErrorContains(t, err, "step 3")
}

func TestRunner_PacketReusedAfterAck(t *testing.T) {
	scenario, err := parse(t, minimal+`
steps:
  - send: {peer: 1, packet: 1}
  - ack: {peer: 1, packet: 1}
  - set: {entity: 1, component: position, field: 0, value: 5}
  - send: {peer: 1, packet: 1}
`)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, NewRunner(scenario, &out).Run())
	require.Contains(t, out.String(), "[005] send peer=1 packet=1 entity=1 component=position fields=01 payload=010a\n")
}

func TestRunner_LenientSkipsUnknownTargets(t *testing.T) {
	source := "config: {strict: false}\n" + minimal + `
steps:
  - set: {entity: 5, component: position, field: 0, value: 1}
  - ack: {peer: 9, packet: 1}
  - drop: {peer: 9, packet: 1}
  - set: {entity: 1, component: position, field: 0, value: 7}
  - send: {peer: 1, packet: 1}
  - drop: {peer: 1, packet: 7}
`

	scenario, err := parse(t, source)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, NewRunner(scenario, &out).Run())

	expected := "" +
		"[005] set entity=1 component=position field=0 value=7 changed=true dirty=01\n" +
		"[006] send peer=1 packet=1 entity=1 component=position fields=03 payload=030e04\n" +
		"[007] drop peer=1 packet=7 nothing in flight\n"

	require.Equal(t, expected, out.String())
}
