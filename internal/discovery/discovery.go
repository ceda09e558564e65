package discovery

import (
	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/firesim/internal/model"
	"github.com/thatsimonsguy/firesim/internal/plan"
)

// Discover mimics a loop driver's power-up discovery run. Phase one walks the
// wiring graph depth-first from the driver's loop-out terminal, assigning
// addresses 1, 2, 3... in visitation order. Phase two repeats the walk from
// loop-in, skipping anything already found; that leg only yields devices when
// the loop is physically broken, so its visitation order is reversed before
// the address counter continues over it.
//
// Branch exploration follows the original connection-list order, which keeps
// repeated runs over the same plan byte-for-byte identical.
func Discover(snap *plan.Snapshot, loopDriverID string) []model.DiscoveredDevice {
	driver, ok := snap.Device(loopDriverID)
	if !ok || driver.TypeID != model.TypeLoopDriver {
		log.Warn().Str("device", loopDriverID).Msg("Discovery requested for a device that is not a loop driver")
		return nil
	}

	w := &walker{
		snap:  snap,
		found: map[string]bool{loopDriverID: true},
	}

	outLeg := w.walk(loopDriverID, model.TerminalLoopOut)
	inLeg := w.walk(loopDriverID, model.TerminalLoopIn)

	result := make([]model.DiscoveredDevice, 0, len(outLeg)+len(inLeg))
	addr := 1
	for _, id := range outLeg {
		result = append(result, report(snap, id, addr, model.DiscoveredOut))
		addr++
	}
	for i := len(inLeg) - 1; i >= 0; i-- {
		result = append(result, report(snap, inLeg[i], addr, model.DiscoveredIn))
		addr++
	}

	if len(inLeg) > 0 {
		log.Info().
			Str("loop_driver", loopDriverID).
			Int("stranded_devices", len(inLeg)).
			Msg("Loop-in leg found devices — loop wiring is broken")
	}

	return result
}

// DiscoverAll runs discovery for every loop driver on the plan, keyed by
// driver instance id.
func DiscoverAll(snap *plan.Snapshot) map[string][]model.DiscoveredDevice {
	loops := make(map[string][]model.DiscoveredDevice)
	for _, driver := range snap.LoopDrivers() {
		loops[driver.InstanceID] = Discover(snap, driver.InstanceID)
	}
	return loops
}

type walker struct {
	snap  *plan.Snapshot
	found map[string]bool
	order []string
}

// walk runs one discovery leg from the given driver terminal and returns the
// instance ids visited on that leg, in visitation order.
func (w *walker) walk(driverID, terminal string) []string {
	w.order = w.order[:0]
	for _, c := range w.snap.WiresAt(driverID) {
		if c.FromDeviceID == driverID && c.FromTerminalID == terminal {
			w.visit(c.ToDeviceID, c)
		} else if c.ToDeviceID == driverID && c.ToTerminalID == terminal {
			w.visit(c.FromDeviceID, c)
		}
	}
	leg := make([]string, len(w.order))
	copy(leg, w.order)
	return leg
}

// visit appends the device pre-order and descends into every other wire
// touching it. Already-found devices, loop boundaries (other drivers and
// panels) and dangling endpoints all terminate the branch silently.
func (w *walker) visit(deviceID string, entry model.Connection) {
	if w.found[deviceID] {
		return
	}
	dev, ok := w.snap.Device(deviceID)
	if !ok {
		log.Debug().Str("device", deviceID).Msg("Wire endpoint references an unknown device, stopping branch")
		return
	}
	if dev.TypeID == model.TypeLoopDriver || dev.TypeID == model.TypePanel {
		return
	}

	w.found[deviceID] = true
	w.order = append(w.order, deviceID)

	for _, c := range w.snap.WiresAt(deviceID) {
		if c == entry {
			continue
		}
		next, ok := c.Other(deviceID)
		if !ok || next == deviceID {
			continue
		}
		w.visit(next, c)
	}
}

// report builds the discovery entry for a device. A socket with a mounted
// head reports the head's label, serial and features under the composite
// detector kind, while the instance id stays the socket's: the head inherits
// the socket's wiring position without being wired itself.
func report(snap *plan.Snapshot, deviceID string, addr int, from model.DiscoveredFrom) model.DiscoveredDevice {
	dev, _ := snap.Device(deviceID)
	entry := model.DiscoveredDevice{
		InstanceID:     dev.InstanceID,
		CAddress:       addr,
		DiscoveredFrom: from,
		Label:          dev.Label,
		TypeID:         dev.TypeID,
		SN:             dev.SN,
		Features:       dev.Features,
	}
	if dev.TypeID == model.TypeSocket {
		if head := snap.MountedHead(dev); head != nil {
			entry.Label = head.Label
			entry.TypeID = model.TypeDetector
			entry.SN = head.SN
			entry.Features = head.Features
		}
	}
	return entry
}
