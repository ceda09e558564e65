package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thatsimonsguy/firesim/internal/configdoc"
	"github.com/thatsimonsguy/firesim/internal/model"
	"github.com/thatsimonsguy/firesim/internal/plan"
)

func sessionFixture(t *testing.T, delay float64) *Session {
	t.Helper()

	doc := &configdoc.Document{
		Version: configdoc.CurrentVersion,
		Devices: []configdoc.Device{
			{
				PrimaryUUID: "d1", Address: "A.001.001", Type: "mcp", Location: "lobby",
				Functions: []configdoc.Function{{UUID: "f1", Type: "mcp", Role: configdoc.RoleInput}},
			},
			{
				PrimaryUUID: "d2", Address: "A.001.002", Type: "sounder", Location: "lobby",
				Functions: []configdoc.Function{{UUID: "f2", Type: "sounder", Role: configdoc.RoleOutput}},
			},
		},
		Zones: configdoc.Zones{
			Detection: []configdoc.DetectionZone{{UUID: "dz-1", Devices: []string{"A.001.001"}}},
			Alarm:     []configdoc.AlarmZone{{UUID: "az-1", Devices: []string{"A.001.002"}}},
		},
		CauseEffect: []configdoc.Rule{
			{ID: "r1", InputZone: "dz-1", OutputZone: "az-1", Logic: configdoc.LogicOR, Delay: delay},
		},
	}

	snap := plan.New(
		[]model.PlacedDevice{
			{InstanceID: "mcp1", TypeID: model.TypeCallPoint, Label: "A.001.001"},
			{InstanceID: "snd1", TypeID: model.TypeSounder, Label: "A.001.002"},
		},
		nil,
	)

	return New(doc, snap, nil)
}

func TestActivate_LatchesOutputsImmediately(t *testing.T) {
	s := sessionFixture(t, 0)

	require.NoError(t, s.Activate("mcp1"))
	assert.Equal(t, []string{"mcp1"}, s.Activated())
	assert.Equal(t, []string{"snd1"}, s.Outputs())

	// Repeated activation is a no-op.
	require.NoError(t, s.Activate("mcp1"))
	assert.Equal(t, []string{"mcp1"}, s.Activated())
}

func TestActivate_UnknownDevice(t *testing.T) {
	s := sessionFixture(t, 0)

	err := s.Activate("not-on-plan")
	assert.ErrorIs(t, err, ErrUnknownDevice)
	assert.ErrorIs(t, s.Clear("not-on-plan"), ErrUnknownDevice)
	assert.Empty(t, s.Activated())
}

func TestClear_ReleasesOutputs(t *testing.T) {
	s := sessionFixture(t, 0)

	require.NoError(t, s.Activate("mcp1"))
	require.Equal(t, []string{"snd1"}, s.Outputs())

	require.NoError(t, s.Clear("mcp1"))
	assert.Empty(t, s.Activated())
	assert.Empty(t, s.Outputs())

	// Clearing an inactive device is a no-op.
	require.NoError(t, s.Clear("mcp1"))
}

func TestDelay_GatesOutputsUntilElapsed(t *testing.T) {
	s := sessionFixture(t, 30)

	clock := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	require.NoError(t, s.Activate("mcp1"))
	assert.Empty(t, s.Outputs(), "delayed rule must not latch at activation time")

	clock = clock.Add(29 * time.Second)
	s.mu.Lock()
	s.refresh()
	s.mu.Unlock()
	assert.Empty(t, s.Outputs(), "delay has not elapsed yet")

	clock = clock.Add(1 * time.Second)
	s.mu.Lock()
	s.refresh()
	s.mu.Unlock()
	assert.Equal(t, []string{"snd1"}, s.Outputs())
}

func TestDelay_ClearBeforeElapseNeverLatches(t *testing.T) {
	s := sessionFixture(t, 30)

	clock := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	require.NoError(t, s.Activate("mcp1"))
	clock = clock.Add(10 * time.Second)
	require.NoError(t, s.Clear("mcp1"))

	// The pending delay was discarded with the trigger; re-activating starts
	// the countdown over.
	clock = clock.Add(time.Hour)
	require.NoError(t, s.Activate("mcp1"))
	assert.Empty(t, s.Outputs())

	clock = clock.Add(30 * time.Second)
	s.mu.Lock()
	s.refresh()
	s.mu.Unlock()
	assert.Equal(t, []string{"snd1"}, s.Outputs())
}

func TestReset_ClearsEverything(t *testing.T) {
	s := sessionFixture(t, 0)

	require.NoError(t, s.Activate("mcp1"))
	require.NotEmpty(t, s.Outputs())

	s.Reset()
	assert.Empty(t, s.Activated())
	assert.Empty(t, s.Outputs())
	assert.Empty(t, s.firstTriggered)
}

func TestRunStopCyclesAreClean(t *testing.T) {
	// The clock goroutine must always observe the close, even across rapid
	// restart cycles with activity racing the ticker.
	s := sessionFixture(t, 0)
	for i := 0; i < 20; i++ {
		s.Run(time.Millisecond)
		require.NoError(t, s.Activate("mcp1"))
		require.NoError(t, s.Clear("mcp1"))
		s.Stop()
	}
}

func TestRunAndStop(t *testing.T) {
	s := sessionFixture(t, 0)

	s.Run(time.Millisecond)
	require.NoError(t, s.Activate("mcp1"))
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, []string{"snd1"}, s.Outputs())
	s.Stop()
	s.Stop() // idempotent
}
