// internal/status/codes.go
package status

import (
	"errors"

	"github.com/hoichong/osb4/internal/smbus"
)

// Raw error codes published in SlotLastErrorCode.
// These values define the protocol and MUST NOT change meaning.
const (
	CodeOK          uint16 = 0
	CodeGeneric     uint16 = 1
	CodeDeviceError uint16 = 2
	CodeNoResponse  uint16 = 3
	CodeCollision   uint16 = 4
	CodeTimeout     uint16 = 5
	CodeBusStuck    uint16 = 6
)

// CodeFor maps a poll error to a raw status code. A transaction can carry
// several condition flags at once; the code reflects the most actionable one.
func CodeFor(err error) uint16 {
	if err == nil {
		return CodeOK
	}
	var te *smbus.TransactionError
	if !errors.As(err, &te) {
		return CodeGeneric
	}
	switch {
	case te.Status&smbus.TxCollision != 0:
		return CodeCollision
	case te.Status&smbus.TxBusyStuck != 0:
		return CodeBusStuck
	case te.Status&smbus.TxNoResponse != 0:
		return CodeNoResponse
	case te.Status&smbus.TxTimeout != 0:
		return CodeTimeout
	case te.Status&smbus.TxFailed != 0:
		return CodeDeviceError
	}
	return CodeGeneric
}
