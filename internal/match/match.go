// Package match reconciles the configuration document's declared devices
// against the devices physically placed and wired on the floor plan.
package match

import (
	"github.com/thatsimonsguy/firesim/internal/configdoc"
	"github.com/thatsimonsguy/firesim/internal/model"
	"github.com/thatsimonsguy/firesim/internal/plan"
)

// Report classifies every configured address, plus the placed devices whose
// label looks like an address but is not configured. All buckets hold
// loop-address strings in declaration/placement order.
type Report struct {
	Matched      []string `json:"matched"`
	Missing      []string `json:"missing"`
	TypeMismatch []string `json:"typeMismatch"`
	Extra        []string `json:"extra"`
}

// Valid reports whether the installation realizes the configuration: nothing
// missing and nothing of the wrong kind. Extra placed devices do not
// invalidate the result.
func (r Report) Valid() bool {
	return len(r.Missing) == 0 && len(r.TypeMismatch) == 0
}

// Verify classifies every configuration device address as matched, missing or
// type-mismatch, and reports unconfigured addressed devices as extra.
//
// Only placed devices whose effective label matches the address pattern are
// candidates. Loop drivers and panels are never candidates, and neither are
// heads: a mounted head is represented by its hosting socket under the
// composite detector kind, while an unmounted head is not wired at all. A
// bare socket competes under its own kind and never satisfies a detector
// entry.
func Verify(doc *configdoc.Document, snap *plan.Snapshot) Report {
	type candidate struct {
		label string
		kind  model.DeviceType
	}

	var order []candidate
	kinds := make(map[string]model.DeviceType)
	for i := range snap.Devices {
		d := &snap.Devices[i]
		switch d.TypeID {
		case model.TypeLoopDriver, model.TypePanel, model.TypeDetectorHead:
			continue
		}
		label := snap.EffectiveLabel(d)
		if !model.IsLoopAddress(label) {
			continue
		}
		if _, seen := kinds[label]; seen {
			continue
		}
		kind := snap.EffectiveType(d)
		kinds[label] = kind
		order = append(order, candidate{label: label, kind: kind})
	}

	var report Report
	configured := make(map[string]bool, len(doc.Devices))
	for _, dev := range doc.Devices {
		configured[dev.Address] = true
		kind, ok := kinds[dev.Address]
		switch {
		case !ok:
			report.Missing = append(report.Missing, dev.Address)
		case configTypeFor(kind) == dev.Type:
			report.Matched = append(report.Matched, dev.Address)
		default:
			report.TypeMismatch = append(report.TypeMismatch, dev.Address)
		}
	}

	for _, c := range order {
		if !configured[c.label] {
			report.Extra = append(report.Extra, c.label)
		}
	}

	return report
}

// configTypeFor maps an effective placed-device kind to the type vocabulary
// used by the configuration document.
func configTypeFor(kind model.DeviceType) string {
	switch kind {
	case model.TypeCallPoint:
		return "mcp"
	default:
		return string(kind)
	}
}
