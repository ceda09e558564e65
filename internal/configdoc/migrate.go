package configdoc

// migrate converts a validated raw document into the current schema. It is
// total: every document that passed validation migrates, and migrating a
// document already in the current schema changes nothing.
//
// Legacy documents declare one implicit function per device. Migration
// renames uuid to primaryUuid and, when the functions array is absent or
// empty, synthesizes exactly one function from the device's declared type,
// reusing the device identifier as the function identifier. Synthesis only
// applies to legacy documents: in the current schema an empty functions array
// means the device genuinely has no capabilities.
func (raw *rawDocument) migrate() *Document {
	legacy := *raw.Version != CurrentVersion
	doc := &Document{
		Version:     CurrentVersion,
		ProjectName: *raw.ProjectName,
		CreatedAt:   *raw.CreatedAt,
	}

	doc.Devices = make([]Device, 0, len(raw.Devices))
	for _, rd := range raw.Devices {
		id, _ := rd.identifier()
		d := Device{
			Address:     *rd.Address,
			PrimaryUUID: id,
			Type:        *rd.Type,
			Location:    *rd.Location,
		}
		if rd.SubType != nil {
			d.SubType = *rd.SubType
		}
		if rd.Label != nil {
			d.Label = *rd.Label
		}
		for _, rf := range rd.Functions {
			d.Functions = append(d.Functions, Function{
				UUID: *rf.UUID,
				Type: *rf.Type,
				Role: Role(*rf.Role),
			})
		}
		if legacy && len(d.Functions) == 0 {
			d.Functions = []Function{synthesizeFunction(id, d.Type)}
		}
		doc.Devices = append(doc.Devices, d)
	}

	doc.Zones.Detection = make([]DetectionZone, 0, len(raw.Zones.Detection))
	for _, rz := range raw.Zones.Detection {
		doc.Zones.Detection = append(doc.Zones.Detection, DetectionZone{
			UUID:             *rz.UUID,
			ID:               deref(rz.ID),
			Name:             deref(rz.Name),
			Devices:          rz.Devices,
			LinkedAlarmZones: rz.LinkedAlarmZones,
		})
	}
	doc.Zones.Alarm = make([]AlarmZone, 0, len(raw.Zones.Alarm))
	for _, rz := range raw.Zones.Alarm {
		doc.Zones.Alarm = append(doc.Zones.Alarm, AlarmZone{
			UUID:    *rz.UUID,
			ID:      deref(rz.ID),
			Name:    deref(rz.Name),
			Devices: rz.Devices,
		})
	}

	doc.CauseEffect = make([]Rule, 0, len(raw.CauseEffect))
	for _, rr := range raw.CauseEffect {
		rule := Rule{
			ID:         deref(rr.ID),
			InputZone:  *rr.InputZone,
			OutputZone: *rr.OutputZone,
			Logic:      LogicOR,
		}
		if rr.Logic != nil && Logic(*rr.Logic) == LogicAND {
			rule.Logic = LogicAND
		}
		if rr.Delay != nil {
			rule.Delay = *rr.Delay
		}
		doc.CauseEffect = append(doc.CauseEffect, rule)
	}

	return doc
}

// synthesizeFunction maps a legacy device type to its single implicit
// function. Detection types take the input role, signalling types the output
// role, and anything unrecognized falls back to a plain input detector.
func synthesizeFunction(deviceID, deviceType string) Function {
	switch deviceType {
	case "detector", "mcp", "co-sensor":
		return Function{UUID: deviceID, Type: deviceType, Role: RoleInput}
	case "sounder", "beacon-red", "beacon-white", "voice":
		return Function{UUID: deviceID, Type: deviceType, Role: RoleOutput}
	default:
		return Function{UUID: deviceID, Type: "detector", Role: RoleInput}
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
