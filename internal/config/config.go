// internal/config/config.go
package config

type Config struct {
	Bridge BridgeConfig `yaml:"bridge"`
}

type BridgeConfig struct {
	Controller   ControllerConfig   `yaml:"controller"`
	StatusMemory StatusMemoryConfig `yaml:"status_memory"`
	Devices      []DeviceConfig     `yaml:"devices"`
}

// ---- CONTROLLER ----

// ControllerConfig carries the two dangerous setup overrides. Both assume
// the firmware already configured the device; leave them off unless you
// know exactly why you need them.
type ControllerConfig struct {
	// ForceEnable forcibly enables the SMBus host. DANGEROUS.
	ForceEnable bool `yaml:"force_enable"`

	// ForceAddr relocates and enables the SMBus host at the given I/O
	// address. EXTREMELY DANGEROUS.
	ForceAddr uint16 `yaml:"force_addr"`

	// Platform path overrides, mainly for tests and odd mounts.
	SysfsRoot  string `yaml:"sysfs_root"`
	PortDevice string `yaml:"port_device"`
}

// ---- STATUS MEMORY ----

type StatusMemoryConfig struct {
	Endpoint string `yaml:"endpoint"`
}

// ---- DEVICE ----

type DeviceConfig struct {
	ID      string         `yaml:"id"`
	Address uint8          `yaml:"address"` // 7-bit SMBus slave address
	Name    string         `yaml:"name"`
	Reads   []ReadConfig   `yaml:"reads"`
	Targets []TargetConfig `yaml:"targets"`
	Poll    PollConfig     `yaml:"poll"`

	// Device status block (optional, opt-in)
	StatusSlot *uint16 `yaml:"status_slot"`
}

// ---- READ GEOMETRY ----

type ReadConfig struct {
	Kind    string `yaml:"kind"` // byte, byte_data, word_data, block_data
	Command uint8  `yaml:"command"`
}

// ---- TARGET ----

type TargetConfig struct {
	Endpoint     string `yaml:"endpoint"`
	Protocol     string `yaml:"protocol"` // modbus (default) or ingest
	UnitID       uint8  `yaml:"unit_id"`
	BaseAddress  uint16 `yaml:"base_address"`
	StatusUnitID *uint8 `yaml:"status_unit_id"` // required when status_slot is set
	TimeoutMs    int    `yaml:"timeout_ms"`
}

// ---- POLL ----

type PollConfig struct {
	IntervalMs int `yaml:"interval_ms"`
}
