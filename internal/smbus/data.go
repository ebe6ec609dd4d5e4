// internal/smbus/data.go
package smbus

// BlockMax is the largest payload of a block transfer.
const BlockMax = 32

// SizeClass selects the shape of an SMBus transaction: how many payload
// bytes move and which registers carry them.
type SizeClass int

const (
	Quick SizeClass = iota
	Byte
	ByteData
	WordData
	ProcCall // not supported by this host
	BlockData
)

var sizeClassNames = map[SizeClass]string{
	Quick:     "quick",
	Byte:      "byte",
	ByteData:  "byte_data",
	WordData:  "word_data",
	ProcCall:  "proc_call",
	BlockData: "block_data",
}

func (s SizeClass) String() string {
	if n, ok := sizeClassNames[s]; ok {
		return n
	}
	return "unknown"
}

// ReadWrite is the transaction direction; its value is the direction bit
// that lands in the address register.
type ReadWrite uint8

const (
	Write ReadWrite = 0
	Read  ReadWrite = 1
)

// Data carries the payload of one transaction. Which field is live depends
// on the size class. Block[0] holds the block length, Block[1:] the bytes.
type Data struct {
	Byte  uint8
	Word  uint16
	Block [BlockMax + 1]byte
}
