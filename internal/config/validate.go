// internal/config/validate.go
package config

import (
	"fmt"
)

// Register footprint per read kind at a target: single-register values, or
// length register plus 16 packed registers for a block.
const blockSpan = 17

func kindSpan(kind string) (uint16, bool) {
	switch kind {
	case "byte", "byte_data", "word_data":
		return 1, true
	case "block_data":
		return blockSpan, true
	}
	return 0, false
}

// RegisterSpan is the total holding-register footprint of a device's reads
// at each of its targets.
func RegisterSpan(reads []ReadConfig) uint16 {
	var total uint16
	for _, r := range reads {
		if n, ok := kindSpan(r.Kind); ok {
			total += n
		}
	}
	return total
}

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	type span struct {
		start  uint16
		end    uint16
		device string
	}

	seenID := make(map[string]bool)

	// ------------------------------------------------------------
	// PER-DEVICE VALIDATION
	// ------------------------------------------------------------

	for _, d := range cfg.Bridge.Devices {
		if d.ID == "" {
			return fmt.Errorf("device with empty id")
		}
		if seenID[d.ID] {
			return fmt.Errorf("duplicate device id %q", d.ID)
		}
		seenID[d.ID] = true

		if d.Address > 0x7F {
			return fmt.Errorf("device %q: address 0x%02x is not a 7-bit SMBus address", d.ID, d.Address)
		}
		if len(d.Reads) == 0 {
			return fmt.Errorf("device %q: at least one read required", d.ID)
		}
		for _, r := range d.Reads {
			if _, ok := kindSpan(r.Kind); !ok {
				return fmt.Errorf("device %q: unknown read kind %q", d.ID, r.Kind)
			}
		}
		if d.Poll.IntervalMs <= 0 {
			return fmt.Errorf("device %q: poll interval_ms must be > 0", d.ID)
		}
		for _, t := range d.Targets {
			switch t.Protocol {
			case "", "modbus", "ingest":
			default:
				return fmt.Errorf("device %q: unknown target protocol %q", d.ID, t.Protocol)
			}
		}

		// name sanity (ASCII only)
		for i := 0; i < len(d.Name); i++ {
			if d.Name[i] > 0x7F {
				return fmt.Errorf("device %q: name must contain ASCII characters only", d.ID)
			}
		}
	}

	// ------------------------------------------------------------
	// DEVICE STATUS BLOCK VALIDATION (PER-TARGET, OPT-IN)
	// ------------------------------------------------------------

	// key = status_unit_id | status_slot (one shared status memory)
	statusOwner := make(map[string]string)

	for _, d := range cfg.Bridge.Devices {
		// status is opt-in
		if d.StatusSlot == nil {
			continue
		}

		// status requires at least one target
		if len(d.Targets) == 0 {
			return fmt.Errorf(
				"device %q: status_slot is set but no targets are defined",
				d.ID,
			)
		}

		slot := *d.StatusSlot

		for _, t := range d.Targets {
			// each target must declare status_unit_id
			if t.StatusUnitID == nil {
				return fmt.Errorf(
					"device %q: status_slot is set but target %q has no status_unit_id",
					d.ID,
					t.Endpoint,
				)
			}

			key := fmt.Sprintf("%d|%d", *t.StatusUnitID, slot)

			if prev, exists := statusOwner[key]; exists {
				return fmt.Errorf(
					"status_slot collision: status_unit_id=%d slot=%d used by devices %q and %q",
					*t.StatusUnitID,
					slot,
					prev,
					d.ID,
				)
			}

			statusOwner[key] = d.ID
		}
	}

	// ------------------------------------------------------------
	// DESTINATION REGISTER GEOMETRY VALIDATION
	// ------------------------------------------------------------

	// key = endpoint | unit_id
	spans := make(map[string][]span)

	for _, d := range cfg.Bridge.Devices {
		width := RegisterSpan(d.Reads)
		for _, t := range d.Targets {
			start := t.BaseAddress
			end := start + width - 1

			key := fmt.Sprintf("%s|%d", t.Endpoint, t.UnitID)

			existing := spans[key]
			for _, s := range existing {
				// overlap check (inclusive)
				if !(end < s.start || start > s.end) {
					return fmt.Errorf(
						"register overlap: endpoint=%s unit=%d range=%d-%d overlaps with device=%s range=%d-%d",
						t.Endpoint,
						t.UnitID,
						start,
						end,
						s.device,
						s.start,
						s.end,
					)
				}
			}

			spans[key] = append(spans[key], span{
				start:  start,
				end:    end,
				device: d.ID,
			})
		}
	}

	return nil
}
