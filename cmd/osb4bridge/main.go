// cmd/osb4bridge/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hoichong/osb4/internal/config"
	"github.com/hoichong/osb4/internal/ioport"
	"github.com/hoichong/osb4/internal/pcibus"
	"github.com/hoichong/osb4/internal/poller"
	"github.com/hoichong/osb4/internal/smbus"
	"github.com/hoichong/osb4/internal/status"
	"github.com/hoichong/osb4/internal/writer"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	if len(os.Args) < 2 {
		logger.Fatal("usage: osb4bridge <config.yaml>")
	}

	cfgPath := os.Args[1]

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Fatal("config load failed", zap.Error(err))
	}
	if err := config.Validate(cfg); err != nil {
		logger.Fatal("config validation failed", zap.Error(err))
	}
	config.Normalize(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --------------------
	// Bring up the host controller
	// --------------------

	ports, err := ioport.OpenDevPorts(cfg.Bridge.Controller.PortDevice)
	if err != nil {
		logger.Fatal("port device open failed", zap.Error(err))
	}
	defer ports.Close()

	regions := ioport.NewRegistry()
	regions.SystemProbe = ioport.ProcProbe("")

	reg := smbus.NewRegistry()

	ctrl, err := smbus.Install(
		smbus.Config{
			ForceEnable: cfg.Bridge.Controller.ForceEnable,
			ForceAddr:   cfg.Bridge.Controller.ForceAddr,
		},
		smbus.Deps{
			Bus:     pcibus.NewSysfsBus(cfg.Bridge.Controller.SysfsRoot),
			Regions: regions,
			Open: func(base uint16) (smbus.RegisterFile, error) {
				return ioport.NewWindow(ports, base), nil
			},
			Log: logger,
		},
		reg,
	)
	if err != nil {
		logger.Fatal("controller setup failed", zap.Error(err))
	}
	defer ctrl.Close()

	logger.Info("controller up",
		zap.String("adapter", ctrl.Name()),
		zap.Uint16("base", ctrl.BaseAddress()),
	)

	// One transaction at a time on the shared register window.
	var busMu sync.Mutex
	client := poller.Serialized(&busMu, ctrl)

	// --------------------
	// Build per-device pipelines
	// --------------------

	var wg sync.WaitGroup

	for _, dev := range cfg.Bridge.Devices {

		// ---- poller ----
		p, err := poller.Build(dev, client)
		if err != nil {
			logger.Fatal("poller build failed",
				zap.String("device", dev.ID), zap.Error(err))
		}

		// ---- writer plan ----
		plan, err := writer.BuildPlan(dev, cfg.Bridge.StatusMemory.Endpoint)
		if err != nil {
			logger.Fatal("writer plan failed",
				zap.String("device", dev.ID), zap.Error(err))
		}

		// ---- writer clients (DATA + STATUS) ----
		clients, closeWriters, err := writer.BuildEndpointClients(
			dev,
			cfg.Bridge.StatusMemory.Endpoint,
		)
		if err != nil {
			logger.Fatal("writer clients failed",
				zap.String("device", dev.ID), zap.Error(err))
		}
		defer closeWriters()

		dataWriter := writer.New(plan, clients)

		// Status writer (optional per device)
		statusWriter, statusEnabled := writer.NewDeviceStatusWriter(plan, clients)

		// ---- channel between poller and writer ----
		out := make(chan poller.PollResult)

		// Orchestrator (runner-owned state + 1Hz seconds ticker)
		wg.Add(1)
		go func(deviceID string) {
			defer wg.Done()

			ctrl.Acquire()
			defer ctrl.Release()

			var snap status.Snapshot

			// Default snapshot state on start.
			snap.Health = status.HealthUnknown
			snap.LastErrorCode = 0
			snap.SecondsInError = 0

			secTicker := time.NewTicker(time.Second)
			defer secTicker.Stop()

			// Full block write on start (identity re-assert) if enabled.
			if statusEnabled {
				if err := statusWriter.WriteStatus(snap); err != nil {
					logger.Warn("status write failed on start",
						zap.String("device", deviceID), zap.Error(err))
				}
			}

			for {
				select {
				case <-ctx.Done():
					return

				case res := <-out:
					// --- data delivery ---
					if err := dataWriter.Write(res); err != nil {
						logger.Warn("writer error",
							zap.String("device", deviceID), zap.Error(err))
					}

					// --- status update (device-level truth) ---
					if !statusEnabled {
						continue
					}

					if res.Err == nil {
						// Recovery / OK
						changed := false

						if snap.Health != status.HealthOK {
							snap.Health = status.HealthOK
							changed = true
						}
						// Reset last error code when healthy.
						if snap.LastErrorCode != 0 {
							snap.LastErrorCode = 0
							changed = true
						}
						// Reset seconds-in-error on recovery.
						if snap.SecondsInError != 0 {
							snap.SecondsInError = 0
							changed = true
						}

						if changed {
							if err := statusWriter.WriteStatus(snap); err != nil {
								logger.Warn("status write failed",
									zap.String("device", deviceID), zap.Error(err))
							}
						}
					} else {
						// Error
						changed := false

						if snap.Health != status.HealthError {
							snap.Health = status.HealthError
							changed = true
						}

						code := status.CodeFor(res.Err)
						if snap.LastErrorCode != code {
							snap.LastErrorCode = code
							changed = true
						}

						// NOTE: seconds_in_error increments on the 1Hz ticker only.
						// No increment here.

						if changed {
							if err := statusWriter.WriteStatus(snap); err != nil {
								logger.Warn("status write failed",
									zap.String("device", deviceID), zap.Error(err))
							}
						}
					}

				case <-secTicker.C:
					if !statusEnabled {
						continue
					}

					// Tick 1 Hz while not OK.
					if snap.Health != status.HealthOK {
						if snap.SecondsInError < 65535 {
							snap.SecondsInError++
							if err := statusWriter.WriteStatus(snap); err != nil {
								logger.Warn("status seconds tick write failed",
									zap.String("device", deviceID), zap.Error(err))
							}
						}
					}
				}
			}
		}(dev.ID)

		// poller producer
		go p.Run(ctx, out)
	}

	<-ctx.Done()
	logger.Info("shutting down")
	wg.Wait()
}
