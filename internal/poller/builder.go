// internal/poller/builder.go
package poller

import (
	"fmt"
	"time"

	cfg "github.com/hoichong/osb4/internal/config"
)

// Build constructs a Poller for one configured device over an already
// serialized client. Config is assumed validated.
func Build(d cfg.DeviceConfig, client Client) (*Poller, error) {
	reads := make([]ReadBlock, 0, len(d.Reads))
	for _, r := range d.Reads {
		kind, err := kindFor(r.Kind)
		if err != nil {
			return nil, err
		}
		reads = append(reads, ReadBlock{Kind: kind, Command: r.Command})
	}

	return New(
		Config{
			DeviceID: d.ID,
			Address:  d.Address,
			Interval: time.Duration(d.Poll.IntervalMs) * time.Millisecond,
			Reads:    reads,
		},
		client,
	)
}

func kindFor(name string) (Kind, error) {
	switch name {
	case "byte":
		return KindByte, nil
	case "byte_data":
		return KindByteData, nil
	case "word_data":
		return KindWordData, nil
	case "block_data":
		return KindBlockData, nil
	}
	return 0, fmt.Errorf("poller: unknown read kind %q", name)
}
