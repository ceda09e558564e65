package configdoc

import "fmt"

// The raw* types are the untrusted wire shape: every required field is a
// pointer so that presence can be checked, and devices carry both the legacy
// `uuid` and current `primaryUuid` identifier fields. Type mismatches (e.g. a
// numeric address) are rejected by the JSON decoder before validation runs.

type rawDocument struct {
	Version     *string     `json:"version"`
	ProjectName *string     `json:"projectName"`
	CreatedAt   *string     `json:"createdAt"`
	Devices     []rawDevice `json:"devices"`
	Zones       *rawZones   `json:"zones"`
	CauseEffect []rawRule   `json:"causeEffect"`
}

type rawDevice struct {
	UUID        *string       `json:"uuid"`
	PrimaryUUID *string       `json:"primaryUuid"`
	Address     *string       `json:"address"`
	Type        *string       `json:"type"`
	SubType     *string       `json:"subType"`
	Location    *string       `json:"location"`
	Label       *string       `json:"label"`
	Functions   []rawFunction `json:"functions"`
}

type rawFunction struct {
	UUID *string `json:"uuid"`
	Type *string `json:"type"`
	Role *string `json:"role"`
}

type rawZones struct {
	Detection []rawZone `json:"detection"`
	Alarm     []rawZone `json:"alarm"`
}

type rawZone struct {
	UUID             *string  `json:"uuid"`
	ID               *string  `json:"id"`
	Name             *string  `json:"name"`
	Devices          []string `json:"devices"`
	LinkedAlarmZones []string `json:"linkedAlarmZones"`
}

type rawRule struct {
	ID         *string  `json:"id"`
	InputZone  *string  `json:"inputZone"`
	OutputZone *string  `json:"outputZone"`
	Logic      *string  `json:"logic"`
	Delay      *float64 `json:"delay"`
}

// identifier returns the device's id under either schema: primaryUuid in the
// current shape, uuid in the legacy one.
func (d rawDevice) identifier() (string, bool) {
	if d.PrimaryUUID != nil {
		return *d.PrimaryUUID, true
	}
	if d.UUID != nil {
		return *d.UUID, true
	}
	return "", false
}

// validate applies the structural rules and stops at the first violation.
func (raw *rawDocument) validate() error {
	if raw.Version == nil {
		return fmt.Errorf("configdoc: missing field version")
	}
	if raw.ProjectName == nil {
		return fmt.Errorf("configdoc: missing field projectName")
	}
	if raw.CreatedAt == nil {
		return fmt.Errorf("configdoc: missing field createdAt")
	}

	for i, d := range raw.Devices {
		if _, ok := d.identifier(); !ok {
			return fmt.Errorf("configdoc: devices[%d]: missing device identifier (primaryUuid or uuid)", i)
		}
		if d.Address == nil {
			return fmt.Errorf("configdoc: devices[%d]: missing field address", i)
		}
		if d.Type == nil {
			return fmt.Errorf("configdoc: devices[%d]: missing field type", i)
		}
		if d.Location == nil {
			return fmt.Errorf("configdoc: devices[%d]: missing field location", i)
		}
		for j, f := range d.Functions {
			if f.UUID == nil {
				return fmt.Errorf("configdoc: devices[%d].functions[%d]: missing field uuid", i, j)
			}
			if f.Type == nil {
				return fmt.Errorf("configdoc: devices[%d].functions[%d]: missing field type", i, j)
			}
			if f.Role == nil || (*f.Role != string(RoleInput) && *f.Role != string(RoleOutput)) {
				return fmt.Errorf("configdoc: devices[%d].functions[%d]: role must be %q or %q", i, j, RoleInput, RoleOutput)
			}
		}
	}

	if raw.Zones == nil {
		return fmt.Errorf("configdoc: missing field zones")
	}
	if err := validateZones("zones.detection", raw.Zones.Detection); err != nil {
		return err
	}
	if err := validateZones("zones.alarm", raw.Zones.Alarm); err != nil {
		return err
	}

	for i, r := range raw.CauseEffect {
		if r.InputZone == nil {
			return fmt.Errorf("configdoc: causeEffect[%d]: missing field inputZone", i)
		}
		if r.OutputZone == nil {
			return fmt.Errorf("configdoc: causeEffect[%d]: missing field outputZone", i)
		}
	}

	return nil
}

func validateZones(path string, zones []rawZone) error {
	for i, z := range zones {
		if z.UUID == nil {
			return fmt.Errorf("configdoc: %s[%d]: missing field uuid", path, i)
		}
		if z.Devices == nil {
			return fmt.Errorf("configdoc: %s[%d]: missing field devices", path, i)
		}
	}
	return nil
}
