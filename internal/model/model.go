package model

// DeviceType identifies the kind of a placed device on the wiring graph.
type DeviceType string

const (
	TypeSocket       DeviceType = "socket"
	TypeDetectorHead DeviceType = "detector-head"
	TypeCallPoint    DeviceType = "manual-call-point"
	TypeSounder      DeviceType = "sounder"
	TypeLoopDriver   DeviceType = "loop-driver"
	TypePanel        DeviceType = "panel"
	TypeInputUnit    DeviceType = "input-unit"
	TypeOutputUnit   DeviceType = "output-unit"

	// TypeDetector is the composite reporting kind for a socket with a
	// mounted head. It never appears on the wiring graph itself.
	TypeDetector DeviceType = "detector"
)

// Feature names an extra function present on a physical head unit.
type Feature string

const (
	FeatureSounder     Feature = "sounder"
	FeatureBeaconRed   Feature = "beacon-red"
	FeatureBeaconWhite Feature = "beacon-white"
	FeatureCOSensor    Feature = "co-sensor"
	FeatureVoice       Feature = "voice"
)

// Loop driver terminal ids. Discovery walks out of TerminalLoopOut first and
// then probes TerminalLoopIn to find devices stranded behind a wiring break.
const (
	TerminalLoopOut = "loop-out"
	TerminalLoopIn  = "loop-in"
)

// PlacedDevice is a device instance on the wiring graph, as supplied by the
// floor-plan editor. When Label matches the loop-address pattern it is the
// device's loop address.
type PlacedDevice struct {
	InstanceID string     `json:"instanceId"`
	TypeID     DeviceType `json:"typeId"`
	Label      string     `json:"label"`
	SN         string     `json:"sn"`
	Features   []Feature  `json:"features,omitempty"`

	// MountedDetectorID points from a socket to the head mounted on it.
	// MountedOnSocketID is the inverse reference held by the head. A mounted
	// head is never wired directly; all connectivity flows through its socket.
	MountedDetectorID string `json:"mountedDetectorId,omitempty"`
	MountedOnSocketID string `json:"mountedOnSocketId,omitempty"`
}

// Connection is an undirected wire edge between two device terminals.
// Multiple edges may touch the same device; branches and spurs are legal.
type Connection struct {
	FromDeviceID   string `json:"fromDeviceId"`
	FromTerminalID string `json:"fromTerminalId"`
	ToDeviceID     string `json:"toDeviceId"`
	ToTerminalID   string `json:"toTerminalId"`
}

// Other returns the endpoint of c that is not deviceID. The second return is
// false when deviceID is on neither end.
func (c Connection) Other(deviceID string) (string, bool) {
	switch deviceID {
	case c.FromDeviceID:
		return c.ToDeviceID, true
	case c.ToDeviceID:
		return c.FromDeviceID, true
	}
	return "", false
}

// DiscoveredFrom records which loop terminal a device was found from.
type DiscoveredFrom string

const (
	DiscoveredOut DiscoveredFrom = "out"
	DiscoveredIn  DiscoveredFrom = "in"
)

// DiscoveredDevice is one entry of a loop driver's power-up discovery result.
// It is a computed view over placed devices and connections, recreated on
// every run and never persisted.
type DiscoveredDevice struct {
	InstanceID     string         `json:"instanceId"`
	CAddress       int            `json:"cAddress"`
	DiscoveredFrom DiscoveredFrom `json:"discoveredFrom"`
	Label          string         `json:"label"`
	TypeID         DeviceType     `json:"typeId"`
	SN             string         `json:"sn"`
	Features       []Feature      `json:"features,omitempty"`
}
