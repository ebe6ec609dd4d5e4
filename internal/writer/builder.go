// internal/writer/builder.go
package writer

import (
	"errors"
	"fmt"
	"time"

	cfg "github.com/hoichong/osb4/internal/config"
	"github.com/hoichong/osb4/internal/writer/ingest"
	wmodbus "github.com/hoichong/osb4/internal/writer/modbus"
)

// BuildPlan converts one device config into a Writer Plan.
// Assumes config has already passed conflict validation.
func BuildPlan(d cfg.DeviceConfig, statusEndpoint string) (Plan, error) {
	if d.ID == "" {
		return Plan{}, errors.New("writer: device.id required")
	}

	plan := Plan{DeviceID: d.ID}

	for _, t := range d.Targets {
		plan.Targets = append(plan.Targets, TargetEndpoint{
			Endpoint: t.Endpoint,
			UnitID:   t.UnitID,
			Base:     t.BaseAddress,
		})
	}

	if d.StatusSlot != nil {
		if statusEndpoint == "" {
			return Plan{}, fmt.Errorf("writer: device %q has status_slot but no status memory endpoint", d.ID)
		}
		if len(d.Targets) == 0 || d.Targets[0].StatusUnitID == nil {
			return Plan{}, fmt.Errorf("writer: device %q has status_slot but no status_unit_id", d.ID)
		}
		plan.Status = &StatusPlan{
			Endpoint:   statusEndpoint,
			UnitID:     *d.Targets[0].StatusUnitID,
			BaseSlot:   *d.StatusSlot,
			DeviceName: d.Name,
		}
	}

	return plan, nil
}

// BuildEndpointClients creates one client per unique endpoint, picking the
// transport from the target's protocol. The status memory endpoint always
// speaks Modbus.
func BuildEndpointClients(d cfg.DeviceConfig, statusEndpoint string) (map[string]EndpointClient, func() error, error) {
	clients := make(map[string]EndpointClient)
	var closers []func() error

	fail := func(err error) (map[string]EndpointClient, func() error, error) {
		for _, fn := range closers {
			_ = fn()
		}
		return nil, nil, err
	}

	for _, t := range d.Targets {
		if _, ok := clients[t.Endpoint]; ok {
			continue
		}

		timeout := time.Duration(t.TimeoutMs) * time.Millisecond

		switch t.Protocol {
		case "ingest":
			c, err := ingest.NewEndpointClient(ingest.Config{
				Endpoint: t.Endpoint,
				Timeout:  timeout,
			})
			if err != nil {
				return fail(err)
			}
			clients[t.Endpoint] = c
			closers = append(closers, c.Close)
		default: // "modbus"
			c, err := wmodbus.NewEndpointClient(wmodbus.Config{
				Endpoint: t.Endpoint,
				Timeout:  timeout,
			})
			if err != nil {
				return fail(err)
			}
			clients[t.Endpoint] = c
			closers = append(closers, c.Close)
		}
	}

	if d.StatusSlot != nil && statusEndpoint != "" {
		if _, ok := clients[statusEndpoint]; !ok {
			c, err := wmodbus.NewEndpointClient(wmodbus.Config{
				Endpoint: statusEndpoint,
				Timeout:  2 * time.Second,
			})
			if err != nil {
				return fail(err)
			}
			clients[statusEndpoint] = c
			closers = append(closers, c.Close)
		}
	}

	closeAll := func() error {
		var last error
		for _, fn := range closers {
			if err := fn(); err != nil {
				last = err
			}
		}
		return last
	}

	return clients, closeAll, nil
}
