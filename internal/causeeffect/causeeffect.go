// Package causeeffect derives which output devices must activate given the
// set of currently-activated input devices, according to zone membership and
// per-rule trigger logic. Evaluation is pure and synchronous: the rule delay
// is data only, and any delay semantics belong to an external simulation
// clock feeding activation snapshots over time.
package causeeffect

import (
	"github.com/thatsimonsguy/firesim/internal/configdoc"
	"github.com/thatsimonsguy/firesim/internal/plan"
)

// RuleResult is the evaluation outcome for one C&E rule. Outputs holds the
// placed-device instance ids of the rule's output zone members that are
// output-capable and physically realized, in zone declaration order; it is
// only populated when the rule triggered.
type RuleResult struct {
	Rule      configdoc.Rule
	Triggered bool
	Outputs   []string
}

// ComputeActivatedOutputs returns the set of placed-device instance ids that
// must activate for the given activation set: the union of every triggered
// rule's outputs.
func ComputeActivatedOutputs(doc *configdoc.Document, snap *plan.Snapshot, activatedInstanceIDs []string) map[string]bool {
	outputs := make(map[string]bool)
	for _, res := range EvaluateRules(doc, snap, activatedInstanceIDs) {
		if !res.Triggered {
			continue
		}
		for _, id := range res.Outputs {
			outputs[id] = true
		}
	}
	return outputs
}

// EvaluateRules evaluates every C&E rule against the activation set and
// reports the per-rule outcome in document order.
func EvaluateRules(doc *configdoc.Document, snap *plan.Snapshot, activatedInstanceIDs []string) []RuleResult {
	idx := buildIndex(doc, snap)
	activated := idx.activatedAddresses(snap, activatedInstanceIDs)

	results := make([]RuleResult, 0, len(doc.CauseEffect))
	for _, rule := range doc.CauseEffect {
		res := RuleResult{Rule: rule}
		if zone, ok := doc.DetectionZoneByUUID(rule.InputZone); ok {
			res.Triggered = idx.zoneTriggered(zone, activated, rule.Logic)
		}
		if res.Triggered {
			res.Outputs = idx.zoneOutputs(doc, rule.OutputZone)
		}
		results = append(results, res)
	}
	return results
}

// index precomputes the address lookups evaluation needs, per the design rule
// that traversal never does repeated linear scans over the raw lists.
type index struct {
	deviceByAddr    map[string]*configdoc.Device
	instanceByLabel map[string]string
}

func buildIndex(doc *configdoc.Document, snap *plan.Snapshot) *index {
	idx := &index{
		deviceByAddr:    make(map[string]*configdoc.Device, len(doc.Devices)),
		instanceByLabel: make(map[string]string),
	}
	for i := range doc.Devices {
		d := &doc.Devices[i]
		if _, seen := idx.deviceByAddr[d.Address]; !seen {
			idx.deviceByAddr[d.Address] = d
		}
	}
	for i := range snap.Devices {
		d := &snap.Devices[i]
		if d.Label == "" {
			continue
		}
		if _, seen := idx.instanceByLabel[d.Label]; !seen {
			idx.instanceByLabel[d.Label] = d.InstanceID
		}
	}
	return idx
}

// activatedAddresses maps activated instance ids to their labels. Unknown
// instances and instances without a label are expected steady-state
// conditions and are dropped silently.
func (idx *index) activatedAddresses(snap *plan.Snapshot, instanceIDs []string) map[string]bool {
	addrs := make(map[string]bool, len(instanceIDs))
	for _, id := range instanceIDs {
		dev, ok := snap.Device(id)
		if !ok || dev.Label == "" {
			continue
		}
		addrs[dev.Label] = true
	}
	return addrs
}

// zoneTriggered applies the rule logic over the zone's input-capable member
// addresses. A zone with no input-capable members never triggers.
func (idx *index) zoneTriggered(zone *configdoc.DetectionZone, activated map[string]bool, logic configdoc.Logic) bool {
	inputMembers := 0
	for _, addr := range zone.Devices {
		dev, ok := idx.deviceByAddr[addr]
		if !ok || !dev.HasInputFunction() {
			continue
		}
		inputMembers++
		if activated[addr] {
			if logic != configdoc.LogicAND {
				return true
			}
		} else if logic == configdoc.LogicAND {
			return false
		}
	}
	if inputMembers == 0 {
		return false
	}
	return logic == configdoc.LogicAND
}

// zoneOutputs resolves an alarm zone's output-capable member addresses back
// to placed-device instance ids. Addresses with no matching placed device are
// dropped silently.
func (idx *index) zoneOutputs(doc *configdoc.Document, alarmZoneUUID string) []string {
	zone, ok := doc.AlarmZoneByUUID(alarmZoneUUID)
	if !ok {
		return nil
	}
	var out []string
	for _, addr := range zone.Devices {
		dev, ok := idx.deviceByAddr[addr]
		if !ok || !dev.HasOutputFunction() {
			continue
		}
		if instance, ok := idx.instanceByLabel[addr]; ok {
			out = append(out, instance)
		}
	}
	return out
}
