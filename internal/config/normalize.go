// internal/config/normalize.go
package config

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	for di := range cfg.Bridge.Devices {
		d := &cfg.Bridge.Devices[di]

		// Device name: ASCII already validated, truncate to the status
		// block limit.
		if len(d.Name) > 16 {
			d.Name = d.Name[:16]
		}

		for ti := range d.Targets {
			t := &d.Targets[ti]
			if t.Protocol == "" {
				t.Protocol = "modbus"
			}
			if t.TimeoutMs <= 0 {
				t.TimeoutMs = 2000
			}
		}
	}
}
