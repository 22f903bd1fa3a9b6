// Command rack-io polls a 16-channel I/O bank, classifies input events and
// drives interlocked outputs, bridging both to MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/rack-io/internal/config"
	"github.com/sweeney/rack-io/internal/expander"
	"github.com/sweeney/rack-io/internal/input"
	"github.com/sweeney/rack-io/internal/mqtt"
	"github.com/sweeney/rack-io/internal/output"
	"github.com/sweeney/rack-io/internal/status"
	"github.com/sweeney/rack-io/internal/web"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file (empty for defaults)")
	device := flag.String("device", "", "Device name, scopes the MQTT topics (overrides config)")
	broker := flag.String("broker", "", "MQTT broker address (overrides config)")
	poll := flag.Duration("poll", 0, "Sampling interval (overrides config)")
	heartbeat := flag.Duration("heartbeat", 0, "Heartbeat interval, 0 disables (overrides config)")
	httpAddr := flag.String("http", "", "HTTP status address, empty disables (overrides config)")
	printState := flag.Bool("print-state", false, "Read the input bank once, print it and exit")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	// Flags given on the command line win over the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "device":
			cfg.Device = *device
		case "broker":
			cfg.Broker = *broker
		case "poll":
			cfg.PollMs = int(poll.Milliseconds())
		case "heartbeat":
			cfg.HeartbeatSecs = int(heartbeat.Seconds())
		case "http":
			cfg.HTTP = *httpAddr
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("fatal: %v", err)
	}

	if err := run(cfg, *printState); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func newBank(cfg *config.Config) (expander.Bank, error) {
	switch cfg.IO.Driver {
	case "mcp23017":
		// Outputs live on the chip one address above the input chip.
		return expander.NewMCP23017(cfg.IO.Bus, cfg.IO.Address, cfg.IO.Address+1)
	case "gpio":
		return expander.NewGPIO(cfg.IO.Chip, cfg.IO.InputLines, cfg.IO.OutputLines)
	case "fake":
		// Idle inputs sit at the pulled-up level.
		return expander.NewFakeBank([]uint16{0xFFFF}), nil
	}
	return nil, fmt.Errorf("unknown io driver %q", cfg.IO.Driver)
}

func run(cfg *config.Config, printState bool) error {
	bank, err := newBank(cfg)
	if err != nil {
		return fmt.Errorf("init io bank: %w", err)
	}
	defer bank.Close()

	if printState {
		sample, err := bank.Read()
		if err != nil {
			return fmt.Errorf("read io bank: %w", err)
		}
		fmt.Printf("inputs: %016b\n", sample)
		return nil
	}

	publisher, err := mqtt.NewRealPublisher(cfg.Broker, cfg.Device)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	tracker := status.NewTracker(time.Now(), status.Config{
		Device:        cfg.Device,
		PollMs:        int64(cfg.PollMs),
		HeartbeatSecs: int64(cfg.HeartbeatSecs),
		Broker:        cfg.Broker,
		HTTPPort:      cfg.HTTP,
		Driver:        cfg.IO.Driver,
	})
	publisher.BadCommand = func() { tracker.RecordCommand(false) }
	tracker.SetMQTTConnected(publisher.IsConnected())

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp: snap.Now,
		Event:     "STARTUP",
		Retained:  true,
	}
	if err := publisher.PublishSystemRaw(startupEvent, status.FormatStatusEvent(snap, "STARTUP", "")); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Start HTTP status server
	if cfg.HTTP != "" {
		srv := web.New(cfg.HTTP, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTP)
	}

	log.Printf("started: device=%s driver=%s poll=%dms broker=%s heartbeat=%ds",
		cfg.Device, cfg.IO.Driver, cfg.PollMs, cfg.Broker, cfg.HeartbeatSecs)

	ticker := time.NewTicker(time.Duration(cfg.PollMs) * time.Millisecond)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(cfg, bank, publisher, publisher, tracker, publisher.Commands(), time.Now, ticker.C, sigCh)
}

func runLoop(cfg *config.Config, bank expander.Bank, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, commands <-chan mqtt.Command, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	startTime := now()

	// tickTime is the wall time of the current tick; everything inside the
	// loop is stamped with it so the clock is read once per tick.
	tickTime := startTime

	// shadow mirrors the output bank; only the callback below mutates it.
	var shadow uint16
	outEngine := output.New(func(id, ch uint8, t output.Type, level output.Level) {
		if level == output.On {
			shadow |= 1 << ch
		} else {
			shadow &^= 1 << ch
		}
		if err := bank.Write(shadow); err != nil {
			log.Printf("output write error: %v", err)
		}
		log.Printf("output %d: %s %s", ch, t, level)
		event := mqtt.OutputEvent{Timestamp: tickTime, Channel: ch, Type: t, Level: level}
		if err := publisher.PublishOutput(event); err != nil {
			log.Printf("publish error: %v", err)
		}
		if tracker != nil {
			tracker.RecordOutputChange(ch, level, event.Timestamp)
		}
	}, output.TypeRelay)
	cfg.ApplyOutputs(outEngine)

	inEngine := input.New(func(id, ch uint8, t input.Type, event input.Event) {
		log.Printf("input %d: %s %s", ch, t, event)
		ev := mqtt.InputEvent{Timestamp: tickTime, Channel: ch, Type: t, Event: event}
		if err := publisher.PublishInput(ev); err != nil {
			log.Printf("publish error: %v", err)
			// Don't crash on publish failure
		}
		if tracker != nil {
			tracker.RecordInputEvent(ch, event, ev.Timestamp)
		}
	}, input.TypeSwitch)
	cfg.ApplyInputs(inEngine)

	if tracker != nil {
		for ch := uint8(0); ch < input.Count; ch++ {
			tracker.ConfigureInput(ch, inEngine.Type(ch), inEngine.Invert(ch), inEngine.Disabled(ch))
		}
		for ch := uint8(0); ch < output.Count; ch++ {
			tracker.ConfigureOutput(ch, outEngine.Type(ch), outEngine.Interlock(ch), outEngine.Timer(ch))
		}
	}

	heartbeat := time.Duration(cfg.HeartbeatSecs) * time.Second
	lastHeartbeat := startTime

	// republish reports the current level of an output channel without
	// driving it.
	republish := func(ch uint8) {
		event := mqtt.OutputEvent{Timestamp: tickTime, Channel: ch, Type: outEngine.Type(ch), Level: outEngine.State(ch)}
		if err := publisher.PublishOutput(event); err != nil {
			log.Printf("publish error: %v", err)
		}
	}

	handleCommand := func(cmd mqtt.Command) {
		if tracker != nil {
			tracker.RecordCommand(true)
		}
		switch cmd.Command {
		case "on", "off":
			outEngine.HandleCommand(0, *cmd.Channel, cmd.Level())
		case "query":
			if cmd.Channel != nil {
				inEngine.Query(0, *cmd.Channel)
				republish(*cmd.Channel)
			} else {
				inEngine.QueryAll(0)
				for ch := uint8(0); ch < output.Count; ch++ {
					republish(ch)
				}
			}
		}
	}

	for {
		select {
		case s := <-sig:
			// Act on commands already queued before announcing shutdown.
		drain:
			for {
				select {
				case cmd := <-commands:
					handleCommand(cmd)
				default:
					break drain
				}
			}

			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			var err error
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				payload := status.FormatStatusEvent(tracker.Snapshot(), "SHUTDOWN", signalName)
				err = publisher.PublishSystemRaw(event, payload)
			} else {
				err = publisher.PublishSystem(event)
			}
			if err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case cmd := <-commands:
			handleCommand(cmd)

		case <-tick:
			tickTime = now()
			t := tickTime
			ms := uint32(t.Sub(startTime).Milliseconds())

			sample, err := bank.Read()
			if err != nil {
				log.Printf("io read error: %v", err)
				// Still run the output engine so pending timers fire.
				outEngine.Process(ms)
				continue
			}

			inEngine.Process(0, sample, ms)
			outEngine.Process(ms)

			if heartbeat > 0 && t.Sub(lastHeartbeat) >= heartbeat {
				lastHeartbeat = t
				hbEvent := mqtt.SystemEvent{
					Timestamp: t,
					Event:     "HEARTBEAT",
				}
				var err error
				if tracker != nil {
					if mqttStatus != nil {
						tracker.SetMQTTConnected(mqttStatus.IsConnected())
					}
					snap := tracker.Snapshot()
					log.Printf("heartbeat: uptime=%v inputs=%d outputs=%d commands=%d",
						snap.Uptime().Truncate(time.Second), snap.Counts.InputEvents,
						snap.Counts.OutputChanges, snap.Counts.Commands)
					err = publisher.PublishSystemRaw(hbEvent, status.FormatStatusEvent(snap, "HEARTBEAT", ""))
				} else {
					err = publisher.PublishSystem(hbEvent)
				}
				if err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}

			if tracker != nil && mqttStatus != nil {
				tracker.SetMQTTConnected(mqttStatus.IsConnected())
			}
		}
	}
}
