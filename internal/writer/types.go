// internal/writer/types.go
package writer

import "github.com/hoichong/osb4/internal/poller"

// TargetEndpoint is one destination register window at a remote endpoint.
type TargetEndpoint struct {
	Endpoint string
	UnitID   uint8
	Base     uint16
}

// StatusPlan describes where this device's status block lives.
type StatusPlan struct {
	Endpoint   string
	UnitID     uint8
	BaseSlot   uint16
	DeviceName string
}

// Plan is the fully-built write plan for one device.
type Plan struct {
	DeviceID string
	Targets  []TargetEndpoint
	Status   *StatusPlan // nil when status publishing is disabled
}

// Writer writes poll snapshots into targets.
type Writer interface {
	Write(res poller.PollResult) error
}
