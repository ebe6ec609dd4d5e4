// internal/poller/types.go
package poller

import "time"

// Kind selects the SMBus read shape for one data point.
type Kind uint8

const (
	KindByte Kind = iota
	KindByteData
	KindWordData
	KindBlockData
)

// ReadBlock describes one SMBus read geometry.
// Geometry only: no semantics.
type ReadBlock struct {
	Kind    Kind
	Command uint8 // unused for KindByte
}

// BlockResult is the raw result of a single read.
type BlockResult struct {
	Kind    Kind
	Command uint8

	// Exactly one of these is used depending on Kind.
	Byte  uint8
	Word  uint16
	Block []byte
}

// PollResult is a snapshot produced by one poll cycle.
type PollResult struct {
	DeviceID string
	At       time.Time

	Blocks []BlockResult
	Err    error // non-nil means the poll cycle failed
}
