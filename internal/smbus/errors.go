// internal/smbus/errors.go
package smbus

import (
	"errors"
	"strings"
)

// Setup failures. Each one is terminal for that setup attempt; the caller
// decides whether to retry the whole thing.
var (
	ErrNoBus       = errors.New("smbus: no PCI bus")
	ErrNotFound    = errors.New("smbus: OSB4 function 0 not found")
	ErrRegionBusy  = errors.New("smbus: I/O region already in use")
	ErrDisabled    = errors.New("smbus: host SMBus controller not enabled")
	ErrReservation = errors.New("smbus: I/O region reservation failed")
)

// ErrNotSupported rejects a transaction type this host cannot run.
var ErrNotSupported = errors.New("smbus: transaction type not supported")

// TxStatus is the set of failure causes decoded from one transaction.
// Causes are not exclusive: a timeout and a failed-transaction bit can
// co-occur and both stay visible here.
type TxStatus uint8

const (
	TxBusyStuck TxStatus = 1 << iota // host busy and not resettable
	TxFailed                         // generic failed bus transaction
	TxCollision                      // multiple masters drove the bus
	TxNoResponse                     // addressed device did not ack
	TxTimeout                        // in-progress bit never cleared
)

var txStatusStrings = []struct {
	flag TxStatus
	name string
}{
	{TxBusyStuck, "host busy and not resettable"},
	{TxFailed, "failed bus transaction"},
	{TxCollision, "bus collision"},
	{TxNoResponse, "no response"},
	{TxTimeout, "timeout"},
}

func (s TxStatus) String() string {
	if s == 0 {
		return "ok"
	}
	var parts []string
	for _, t := range txStatusStrings {
		if s&t.flag != 0 {
			parts = append(parts, t.name)
		}
	}
	return strings.Join(parts, ", ")
}

// ToError returns nil when no cause is set.
func (s TxStatus) ToError() error {
	if s == 0 {
		return nil
	}
	return &TransactionError{Status: s}
}

// TransactionError reports a failed bus cycle with every decoded cause.
type TransactionError struct {
	Status TxStatus
}

func (e *TransactionError) Error() string {
	return "smbus: transaction failed: " + e.Status.String()
}
