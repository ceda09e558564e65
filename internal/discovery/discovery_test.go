package discovery_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thatsimonsguy/firesim/internal/discovery"
	"github.com/thatsimonsguy/firesim/internal/model"
	"github.com/thatsimonsguy/firesim/internal/plan"
)

func device(id string, typeID model.DeviceType, label string) model.PlacedDevice {
	return model.PlacedDevice{InstanceID: id, TypeID: typeID, Label: label}
}

func wire(fromDev, fromTerm, toDev, toTerm string) model.Connection {
	return model.Connection{
		FromDeviceID:   fromDev,
		FromTerminalID: fromTerm,
		ToDeviceID:     toDev,
		ToTerminalID:   toTerm,
	}
}

func TestDiscover_SimpleChain(t *testing.T) {
	snap := plan.New(
		[]model.PlacedDevice{
			device("ld1", model.TypeLoopDriver, ""),
			device("a", model.TypeCallPoint, "A.001.001"),
			device("b", model.TypeSounder, "A.001.002"),
			device("c", model.TypeCallPoint, "A.001.003"),
		},
		[]model.Connection{
			wire("ld1", model.TerminalLoopOut, "a", "in"),
			wire("a", "out", "b", "in"),
			wire("b", "out", "c", "in"),
		},
	)

	result := discovery.Discover(snap, "ld1")
	require.Len(t, result, 3)

	assert.Equal(t, "a", result[0].InstanceID)
	assert.Equal(t, "b", result[1].InstanceID)
	assert.Equal(t, "c", result[2].InstanceID)
	for i, d := range result {
		assert.Equal(t, i+1, d.CAddress)
		assert.Equal(t, model.DiscoveredOut, d.DiscoveredFrom)
	}
}

func TestDiscover_BranchCoverage(t *testing.T) {
	// A T-branch: the driver feeds A, and both B and C hang off A. Depth
	// first descent must follow connection-list order.
	snap := plan.New(
		[]model.PlacedDevice{
			device("ld1", model.TypeLoopDriver, ""),
			device("a", model.TypeCallPoint, "A.001.001"),
			device("b", model.TypeSounder, "A.001.002"),
			device("c", model.TypeSounder, "A.001.003"),
		},
		[]model.Connection{
			wire("ld1", model.TerminalLoopOut, "a", "in"),
			wire("a", "out1", "b", "in"),
			wire("a", "out2", "c", "in"),
		},
	)

	result := discovery.Discover(snap, "ld1")
	require.Len(t, result, 3)
	assert.Equal(t, "a", result[0].InstanceID)
	assert.Equal(t, "b", result[1].InstanceID)
	assert.Equal(t, "c", result[2].InstanceID)
}

func TestDiscover_BranchDescendsDepthFirst(t *testing.T) {
	// B has its own tail D; depth-first means D is addressed before C.
	snap := plan.New(
		[]model.PlacedDevice{
			device("ld1", model.TypeLoopDriver, ""),
			device("a", model.TypeCallPoint, ""),
			device("b", model.TypeCallPoint, ""),
			device("c", model.TypeCallPoint, ""),
			device("d", model.TypeCallPoint, ""),
		},
		[]model.Connection{
			wire("ld1", model.TerminalLoopOut, "a", "in"),
			wire("a", "out1", "b", "in"),
			wire("a", "out2", "c", "in"),
			wire("b", "out", "d", "in"),
		},
	)

	result := discovery.Discover(snap, "ld1")
	require.Len(t, result, 4)
	order := []string{result[0].InstanceID, result[1].InstanceID, result[2].InstanceID, result[3].InstanceID}
	assert.Equal(t, []string{"a", "b", "d", "c"}, order)
}

func TestDiscover_BrokenLoop(t *testing.T) {
	// Physical run ld1 -> a -> b ✗ c -> d -> ld1, broken between b and c.
	// The loop-in leg finds d then c; reversal restores physical order and
	// the address counter continues from the out leg.
	snap := plan.New(
		[]model.PlacedDevice{
			device("ld1", model.TypeLoopDriver, ""),
			device("a", model.TypeCallPoint, "A.001.001"),
			device("b", model.TypeCallPoint, "A.001.002"),
			device("c", model.TypeCallPoint, "A.001.003"),
			device("d", model.TypeCallPoint, "A.001.004"),
		},
		[]model.Connection{
			wire("ld1", model.TerminalLoopOut, "a", "in"),
			wire("a", "out", "b", "in"),
			wire("c", "out", "d", "in"),
			wire("d", "out", "ld1", model.TerminalLoopIn),
		},
	)

	result := discovery.Discover(snap, "ld1")
	require.Len(t, result, 4)

	assert.Equal(t, "a", result[0].InstanceID)
	assert.Equal(t, "b", result[1].InstanceID)
	assert.Equal(t, "c", result[2].InstanceID)
	assert.Equal(t, "d", result[3].InstanceID)

	for i, d := range result {
		assert.Equal(t, i+1, d.CAddress)
	}
	assert.Equal(t, model.DiscoveredOut, result[0].DiscoveredFrom)
	assert.Equal(t, model.DiscoveredOut, result[1].DiscoveredFrom)
	assert.Equal(t, model.DiscoveredIn, result[2].DiscoveredFrom)
	assert.Equal(t, model.DiscoveredIn, result[3].DiscoveredFrom)
}

func TestDiscover_HealthyLoopUsesOutLegOnly(t *testing.T) {
	snap := plan.New(
		[]model.PlacedDevice{
			device("ld1", model.TypeLoopDriver, ""),
			device("a", model.TypeCallPoint, ""),
			device("b", model.TypeCallPoint, ""),
		},
		[]model.Connection{
			wire("ld1", model.TerminalLoopOut, "a", "in"),
			wire("a", "out", "b", "in"),
			wire("b", "out", "ld1", model.TerminalLoopIn),
		},
	)

	result := discovery.Discover(snap, "ld1")
	require.Len(t, result, 2)
	for _, d := range result {
		assert.Equal(t, model.DiscoveredOut, d.DiscoveredFrom)
	}
}

func TestDiscover_SocketHeadSubstitution(t *testing.T) {
	snap := plan.New(
		[]model.PlacedDevice{
			device("ld1", model.TypeLoopDriver, ""),
			{
				InstanceID:        "sock",
				TypeID:            model.TypeSocket,
				Label:             "",
				SN:                "sn-sock",
				MountedDetectorID: "head",
			},
			{
				InstanceID:        "head",
				TypeID:            model.TypeDetectorHead,
				Label:             "A.001.001",
				SN:                "sn-head",
				Features:          []model.Feature{model.FeatureSounder},
				MountedOnSocketID: "sock",
			},
		},
		[]model.Connection{
			wire("ld1", model.TerminalLoopOut, "sock", "in"),
		},
	)

	result := discovery.Discover(snap, "ld1")
	require.Len(t, result, 1)

	got := result[0]
	assert.Equal(t, "sock", got.InstanceID, "connectivity bookkeeping stays on the socket")
	assert.Equal(t, model.TypeDetector, got.TypeID)
	assert.Equal(t, "A.001.001", got.Label)
	assert.Equal(t, "sn-head", got.SN)
	assert.Equal(t, []model.Feature{model.FeatureSounder}, got.Features)
}

func TestDiscover_BareSocketReportsItself(t *testing.T) {
	snap := plan.New(
		[]model.PlacedDevice{
			device("ld1", model.TypeLoopDriver, ""),
			device("sock", model.TypeSocket, "A.001.001"),
		},
		[]model.Connection{
			wire("ld1", model.TerminalLoopOut, "sock", "in"),
		},
	)

	result := discovery.Discover(snap, "ld1")
	require.Len(t, result, 1)
	assert.Equal(t, model.TypeSocket, result[0].TypeID)
}

func TestDiscover_CycleStopsSilently(t *testing.T) {
	snap := plan.New(
		[]model.PlacedDevice{
			device("ld1", model.TypeLoopDriver, ""),
			device("a", model.TypeCallPoint, ""),
			device("b", model.TypeCallPoint, ""),
		},
		[]model.Connection{
			wire("ld1", model.TerminalLoopOut, "a", "in"),
			wire("a", "out", "b", "in"),
			wire("b", "out", "a", "aux"),
		},
	)

	result := discovery.Discover(snap, "ld1")
	require.Len(t, result, 2)
}

func TestDiscover_DanglingEndpointStopsBranch(t *testing.T) {
	snap := plan.New(
		[]model.PlacedDevice{
			device("ld1", model.TypeLoopDriver, ""),
			device("a", model.TypeCallPoint, ""),
		},
		[]model.Connection{
			wire("ld1", model.TerminalLoopOut, "a", "in"),
			wire("a", "out", "ghost", "in"),
		},
	)

	result := discovery.Discover(snap, "ld1")
	require.Len(t, result, 1)
	assert.Equal(t, "a", result[0].InstanceID)
}

func TestDiscover_OtherDriversAndPanelsTerminateBranch(t *testing.T) {
	snap := plan.New(
		[]model.PlacedDevice{
			device("ld1", model.TypeLoopDriver, ""),
			device("a", model.TypeCallPoint, ""),
			device("ld2", model.TypeLoopDriver, ""),
			device("panel", model.TypePanel, ""),
		},
		[]model.Connection{
			wire("ld1", model.TerminalLoopOut, "a", "in"),
			wire("a", "out1", "ld2", model.TerminalLoopIn),
			wire("a", "out2", "panel", "bus"),
		},
	)

	result := discovery.Discover(snap, "ld1")
	require.Len(t, result, 1)
	assert.Equal(t, "a", result[0].InstanceID)
}

func TestDiscover_UnconnectedDriverYieldsEmpty(t *testing.T) {
	snap := plan.New(
		[]model.PlacedDevice{
			device("ld1", model.TypeLoopDriver, ""),
			device("a", model.TypeCallPoint, ""),
		},
		nil,
	)

	assert.Empty(t, discovery.Discover(snap, "ld1"))
}

func TestDiscover_NonDriverYieldsNil(t *testing.T) {
	snap := plan.New(
		[]model.PlacedDevice{device("a", model.TypeCallPoint, "")},
		nil,
	)

	assert.Nil(t, discovery.Discover(snap, "a"))
	assert.Nil(t, discovery.Discover(snap, "nope"))
}

func TestDiscover_Deterministic(t *testing.T) {
	snap := plan.New(
		[]model.PlacedDevice{
			device("ld1", model.TypeLoopDriver, ""),
			device("a", model.TypeCallPoint, ""),
			device("b", model.TypeCallPoint, ""),
			device("c", model.TypeCallPoint, ""),
			device("d", model.TypeCallPoint, ""),
		},
		[]model.Connection{
			wire("ld1", model.TerminalLoopOut, "a", "in"),
			wire("a", "out1", "b", "in"),
			wire("a", "out2", "c", "in"),
			wire("c", "out", "d", "in"),
		},
	)

	first := discovery.Discover(snap, "ld1")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, discovery.Discover(snap, "ld1"))
	}
}

func TestDiscoverAll(t *testing.T) {
	snap := plan.New(
		[]model.PlacedDevice{
			device("ld1", model.TypeLoopDriver, ""),
			device("ld2", model.TypeLoopDriver, ""),
			device("a", model.TypeCallPoint, ""),
			device("b", model.TypeSounder, ""),
		},
		[]model.Connection{
			wire("ld1", model.TerminalLoopOut, "a", "in"),
			wire("ld2", model.TerminalLoopOut, "b", "in"),
		},
	)

	loops := discovery.DiscoverAll(snap)
	require.Len(t, loops, 2)
	require.Len(t, loops["ld1"], 1)
	require.Len(t, loops["ld2"], 1)
	assert.Equal(t, "a", loops["ld1"][0].InstanceID)
	assert.Equal(t, "b", loops["ld2"][0].InstanceID)
}
