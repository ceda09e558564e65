package plan

import (
	"encoding/json"
	"os"

	"github.com/thatsimonsguy/firesim/internal/model"
)

// Snapshot is an immutable view of the floor plan as supplied by the external
// editor: the flat placed-device list plus the flat wire-edge list. Devices
// are indexed by instance id and connections by touching device, with the
// original connection-list order preserved so that traversal order stays a
// stable function of the edge list.
type Snapshot struct {
	Devices     []model.PlacedDevice `json:"devices"`
	Connections []model.Connection   `json:"connections"`

	byID  map[string]*model.PlacedDevice
	wires map[string][]model.Connection
}

// New builds an indexed snapshot from device and connection lists.
func New(devices []model.PlacedDevice, connections []model.Connection) *Snapshot {
	s := &Snapshot{Devices: devices, Connections: connections}
	s.index()
	return s
}

// Load reads a plan snapshot from a JSON file written by the floor-plan editor.
func Load(path string) (*Snapshot, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var snap Snapshot
	if err := json.NewDecoder(file).Decode(&snap); err != nil {
		return nil, err
	}
	snap.index()
	return &snap, nil
}

func (s *Snapshot) index() {
	s.byID = make(map[string]*model.PlacedDevice, len(s.Devices))
	for i := range s.Devices {
		d := &s.Devices[i]
		s.byID[d.InstanceID] = d
	}

	s.wires = make(map[string][]model.Connection)
	for _, c := range s.Connections {
		s.wires[c.FromDeviceID] = append(s.wires[c.FromDeviceID], c)
		if c.ToDeviceID != c.FromDeviceID {
			s.wires[c.ToDeviceID] = append(s.wires[c.ToDeviceID], c)
		}
	}
}

// Device looks up a placed device by instance id.
func (s *Snapshot) Device(id string) (*model.PlacedDevice, bool) {
	d, ok := s.byID[id]
	return d, ok
}

// WiresAt returns every connection touching the given device, in original
// connection-list order.
func (s *Snapshot) WiresAt(deviceID string) []model.Connection {
	return s.wires[deviceID]
}

// LoopDrivers returns the loop-driver devices in placement order.
func (s *Snapshot) LoopDrivers() []model.PlacedDevice {
	var drivers []model.PlacedDevice
	for _, d := range s.Devices {
		if d.TypeID == model.TypeLoopDriver {
			drivers = append(drivers, d)
		}
	}
	return drivers
}

// MountedHead returns the head mounted on the given socket, or nil when the
// socket is bare or the back-reference dangles.
func (s *Snapshot) MountedHead(socket *model.PlacedDevice) *model.PlacedDevice {
	if socket.MountedDetectorID == "" {
		return nil
	}
	head, ok := s.byID[socket.MountedDetectorID]
	if !ok {
		return nil
	}
	return head
}

// EffectiveType is the kind a device reports as at the matching boundary:
// a socket with a mounted head reports as the composite detector kind, a
// bare socket as itself.
func (s *Snapshot) EffectiveType(d *model.PlacedDevice) model.DeviceType {
	if d.TypeID == model.TypeSocket && s.MountedHead(d) != nil {
		return model.TypeDetector
	}
	return d.TypeID
}

// EffectiveLabel is the label a device reports at the addressing boundary:
// a socket with a mounted head inherits the head's label, since the head
// itself is never wired.
func (s *Snapshot) EffectiveLabel(d *model.PlacedDevice) string {
	if d.TypeID == model.TypeSocket {
		if head := s.MountedHead(d); head != nil {
			return head.Label
		}
	}
	return d.Label
}
