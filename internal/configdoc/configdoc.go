// Package configdoc parses, validates and migrates the fire-alarm
// configuration document produced by the external authoring tool. Validation
// is fail-fast: the first structural violation is returned as a field-path
// error and nothing is applied. Documents in the legacy single-function
// schema are migrated in memory to the current multi-function schema.
package configdoc

import (
	"encoding/json"
	"os"
)

// Schema versions. Any document not declaring CurrentVersion is treated as
// the legacy single-function schema and migrated.
const (
	LegacyVersion  = "1.0"
	CurrentVersion = "2.0"
)

// Role of a device function.
type Role string

const (
	RoleInput  Role = "input"
	RoleOutput Role = "output"
)

// Logic selects how a C&E rule combines its input zone's members.
type Logic string

const (
	LogicOR  Logic = "OR"
	LogicAND Logic = "AND"
)

// Function is one capability of a configuration device. Multi-function
// devices (e.g. a detector with built-in sounder and beacon) carry several.
type Function struct {
	UUID string `json:"uuid"`
	Type string `json:"type"`
	Role Role   `json:"role"`
}

// Device is a configured loop device. Address is the loop-address string that
// must match a placed device's label to be considered physically realized.
type Device struct {
	Address     string     `json:"address"`
	PrimaryUUID string     `json:"primaryUuid"`
	Type        string     `json:"type"`
	SubType     string     `json:"subType,omitempty"`
	Location    string     `json:"location"`
	Label       string     `json:"label,omitempty"`
	Functions   []Function `json:"functions"`
}

// HasInputFunction reports whether any function carries the input role.
func (d Device) HasInputFunction() bool {
	for _, f := range d.Functions {
		if f.Role == RoleInput {
			return true
		}
	}
	return false
}

// HasOutputFunction reports whether any function carries the output role.
func (d Device) HasOutputFunction() bool {
	for _, f := range d.Functions {
		if f.Role == RoleOutput {
			return true
		}
	}
	return false
}

// DetectionZone groups input-capable device addresses that can trigger alarm
// behavior. Zones hold addresses only, never device records.
type DetectionZone struct {
	UUID             string   `json:"uuid"`
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Devices          []string `json:"devices"`
	LinkedAlarmZones []string `json:"linkedAlarmZones,omitempty"`
}

// AlarmZone groups output-capable device addresses activated as a result of
// triggering.
type AlarmZone struct {
	UUID    string   `json:"uuid"`
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Devices []string `json:"devices"`
}

// Zones is the detection/alarm zone split of the document.
type Zones struct {
	Detection []DetectionZone `json:"detection"`
	Alarm     []AlarmZone     `json:"alarm"`
}

// Rule links a detection zone to an alarm zone. Delay is carried as data
// only; the evaluator is stateless and any delay semantics belong to an
// external simulation clock.
type Rule struct {
	ID         string  `json:"id"`
	InputZone  string  `json:"inputZone"`
	OutputZone string  `json:"outputZone"`
	Logic      Logic   `json:"logic"`
	Delay      float64 `json:"delay"`
}

// Document is the root configuration aggregate. After Parse it is always in
// the current schema version and treated as immutable for the session.
type Document struct {
	Version     string   `json:"version"`
	ProjectName string   `json:"projectName"`
	CreatedAt   string   `json:"createdAt"`
	Devices     []Device `json:"devices"`
	Zones       Zones    `json:"zones"`
	CauseEffect []Rule   `json:"causeEffect"`
}

// Parse decodes, validates and (when needed) migrates a configuration
// document. Validation runs before migration and fails on the first
// violation; migration is total over any document that passed it.
func Parse(data []byte) (*Document, error) {
	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if err := raw.validate(); err != nil {
		return nil, err
	}
	return raw.migrate(), nil
}

// LoadFile reads and parses a configuration document from disk.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// DeviceByAddress does a linear scan for the first device at the given
// address. Callers that resolve many addresses should build their own index.
func (doc *Document) DeviceByAddress(address string) (*Device, bool) {
	for i := range doc.Devices {
		if doc.Devices[i].Address == address {
			return &doc.Devices[i], true
		}
	}
	return nil, false
}

// DetectionZoneByUUID looks up a detection zone.
func (doc *Document) DetectionZoneByUUID(id string) (*DetectionZone, bool) {
	for i := range doc.Zones.Detection {
		if doc.Zones.Detection[i].UUID == id {
			return &doc.Zones.Detection[i], true
		}
	}
	return nil, false
}

// AlarmZoneByUUID looks up an alarm zone.
func (doc *Document) AlarmZoneByUUID(id string) (*AlarmZone, bool) {
	for i := range doc.Zones.Alarm {
		if doc.Zones.Alarm[i].UUID == id {
			return &doc.Zones.Alarm[i], true
		}
	}
	return nil, false
}
