// internal/poller/poller.go
package poller

import (
	"errors"
	"sync"
	"time"
)

// Client abstracts the SMBus reads the poller needs.
// The poller depends on geometry only.
type Client interface {
	ReadByte(addr uint8) (uint8, error)
	ReadByteData(addr, command uint8) (uint8, error)
	ReadWordData(addr, command uint8) (uint16, error)
	ReadBlockData(addr, command uint8) ([]byte, error)
}

// Config is the minimal runtime config the poller needs.
type Config struct {
	DeviceID string
	Address  uint8 // 7-bit slave address
	Interval time.Duration
	Reads    []ReadBlock
}

// Poller is a dumb, clock-driven reader.
type Poller struct {
	cfg    Config
	client Client
}

// New creates a poller with immutable config.
func New(cfg Config, client Client) (*Poller, error) {
	if cfg.DeviceID == "" {
		return nil, errors.New("poller: device id required")
	}
	if cfg.Address > 0x7f {
		return nil, errors.New("poller: slave address out of range")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("poller: interval must be > 0")
	}
	if len(cfg.Reads) == 0 {
		return nil, errors.New("poller: at least one read block required")
	}
	return &Poller{cfg: cfg, client: client}, nil
}

// PollOnce performs exactly one poll cycle.
// All-or-nothing: any failure aborts the cycle.
func (p *Poller) PollOnce() PollResult {
	res := PollResult{
		DeviceID: p.cfg.DeviceID,
		At:       time.Now(),
	}

	var blocks []BlockResult

	for _, rb := range p.cfg.Reads {
		switch rb.Kind {
		case KindByte:
			v, err := p.client.ReadByte(p.cfg.Address)
			if err != nil {
				res.Err = err
				return res
			}
			blocks = append(blocks, BlockResult{Kind: rb.Kind, Byte: v})

		case KindByteData:
			v, err := p.client.ReadByteData(p.cfg.Address, rb.Command)
			if err != nil {
				res.Err = err
				return res
			}
			blocks = append(blocks, BlockResult{
				Kind: rb.Kind, Command: rb.Command, Byte: v,
			})

		case KindWordData:
			v, err := p.client.ReadWordData(p.cfg.Address, rb.Command)
			if err != nil {
				res.Err = err
				return res
			}
			blocks = append(blocks, BlockResult{
				Kind: rb.Kind, Command: rb.Command, Word: v,
			})

		case KindBlockData:
			v, err := p.client.ReadBlockData(p.cfg.Address, rb.Command)
			if err != nil {
				res.Err = err
				return res
			}
			blocks = append(blocks, BlockResult{
				Kind: rb.Kind, Command: rb.Command, Block: v,
			})

		default:
			res.Err = errors.New("poller: unsupported read kind")
			return res
		}
	}

	// Commit only if all reads succeeded
	res.Blocks = blocks
	return res
}

// Serialized wraps a client so that pollers for different devices share one
// controller without overlapping transactions.
func Serialized(mu *sync.Mutex, c Client) Client {
	return &serialClient{mu: mu, c: c}
}

type serialClient struct {
	mu *sync.Mutex
	c  Client
}

func (s *serialClient) ReadByte(addr uint8) (uint8, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.ReadByte(addr)
}

func (s *serialClient) ReadByteData(addr, command uint8) (uint8, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.ReadByteData(addr, command)
}

func (s *serialClient) ReadWordData(addr, command uint8) (uint16, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.ReadWordData(addr, command)
}

func (s *serialClient) ReadBlockData(addr, command uint8) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.ReadBlockData(addr, command)
}
