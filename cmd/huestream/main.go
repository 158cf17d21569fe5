// huestream - entertainment streaming for Hue bridges
//
// This is the main entry point for huestream. It opens a secured datagram
// session to a bridge and streams colour frames at a fixed rate, taking
// colours from one of:
//   - a fixed colour sequence
//   - a raw PCM capture mapped to colour by loudness
//   - colour commands received over MQTT
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/huestream/internal/capture"
	"github.com/nerrad567/huestream/internal/discovery"
	"github.com/nerrad567/huestream/internal/hue"
	"github.com/nerrad567/huestream/internal/infrastructure/config"
	"github.com/nerrad567/huestream/internal/infrastructure/influxdb"
	"github.com/nerrad567/huestream/internal/infrastructure/logging"
	"github.com/nerrad567/huestream/internal/infrastructure/mqtt"
	"github.com/nerrad567/huestream/internal/ringbuf"
	"github.com/nerrad567/huestream/internal/securechannel"
	"github.com/nerrad567/huestream/internal/stream"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//   - args: Command-line arguments without the program name
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context, args []string) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}
	if opts.showVersion {
		fmt.Printf("huestream %s (commit %s, built %s)\n", version, commit, date)
		return nil
	}

	cfg, err := config.Load(configPath(opts), opts.apply)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	sessionID := uuid.NewString()
	log := logging.New(cfg.Logging, version).With("session", sessionID)
	log.Info("starting huestream",
		"version", version,
		"commit", commit,
		"build_date", date,
		"source", cfg.Stream.Source,
		"lights", cfg.Stream.Lights,
	)

	host, err := bridgeHost(ctx, cfg, log)
	if err != nil {
		return err
	}

	// Optional MQTT status bus
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT, sessionID)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log)
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt health check: %w", err)
		}
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
	}

	// Optional InfluxDB telemetry
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(ctx, cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb health check: %w", err)
		}
		log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
	}

	// Secured session to the bridge
	started := time.Now()
	channel, err := securechannel.Connect(ctx, securechannel.Config{
		Host:             host,
		Port:             cfg.Bridge.Port,
		Identity:         cfg.Bridge.Identity,
		PSK:              cfg.Bridge.PSK,
		HandshakeTimeout: cfg.GetHandshakeTimeout(),
		ReceiveTimeout:   cfg.GetReceiveTimeout(),
		DSCP:             cfg.Bridge.DSCP,
		Logger:           log.With("component", "securechannel"),
	})
	if influxClient != nil {
		influxClient.WriteHandshake(sessionID, host, time.Since(started), err == nil)
	}
	if err != nil {
		return fmt.Errorf("connecting to bridge %s: %w", host, err)
	}
	defer func() {
		if closeErr := channel.Close(); closeErr != nil {
			log.Error("error closing bridge session", "error", closeErr)
		}
	}()

	buf, err := ringbuf.NewShared(hue.ElementSize, cfg.Stream.BufferCapacity)
	if err != nil {
		return fmt.Errorf("allocating colour buffer: %w", err)
	}
	buf.SetLogger(log.With("component", "ringbuf"))

	source, stopProducer, err := startProducer(ctx, cfg, buf, mqttClient, log)
	if err != nil {
		return err
	}
	defer stopProducer()

	loop, err := stream.New(stream.Config{
		Rate:        cfg.Stream.RateHz,
		Duration:    cfg.GetDuration(),
		Supersample: cfg.Stream.Supersample,
		Lights:      cfg.LightIDs(),
		Brightness:  cfg.Stream.Brightness,
	}, source, channel)
	if err != nil {
		return fmt.Errorf("creating stream loop: %w", err)
	}
	loop.SetLogger(log.With("component", "stream"))

	reporter := &statsReporter{
		sessionID: sessionID,
		source:    cfg.Stream.Source,
		rate:      cfg.Stream.RateHz,
		lights:    len(cfg.Stream.Lights),
		loop:      loop,
		channel:   channel,
		buf:       buf,
		mqtt:      mqttClient,
		influx:    influxClient,
		log:       log,
	}
	reportCtx, stopReports := context.WithCancel(ctx)
	reportDone := make(chan struct{})
	go func() {
		defer close(reportDone)
		reporter.run(reportCtx, cfg.GetStatsInterval())
	}()

	log.Info("streaming",
		"bridge", channel.RemoteAddr().String(),
		"frame_interval", loop.FrameInterval(),
	)
	runErr := loop.Run(ctx)

	stopReports()
	<-reportDone
	reporter.report()

	if runErr != nil {
		return fmt.Errorf("streaming: %w", runErr)
	}
	log.Info("huestream stopped")
	return nil
}

// configPath returns the configuration file path.
// The -config flag wins over HUESTREAM_CONFIG; no path means defaults only.
func configPath(opts *options) string {
	if opts.configPath != "" {
		return opts.configPath
	}
	return os.Getenv("HUESTREAM_CONFIG")
}

// bridgeHost returns the configured bridge host, discovering one over mDNS
// when none is set.
func bridgeHost(ctx context.Context, cfg *config.Config, log *logging.Logger) (string, error) {
	if cfg.Bridge.Host != "" {
		return cfg.Bridge.Host, nil
	}

	log.Info("discovering bridge", "timeout", cfg.GetDiscoveryTimeout())
	bridge, err := discovery.FindBridge(ctx, discovery.Config{
		Timeout:   cfg.GetDiscoveryTimeout(),
		Interface: cfg.Bridge.Discovery.Interface,
		BridgeID:  cfg.Bridge.Discovery.BridgeID,
	})
	if err != nil {
		return "", fmt.Errorf("discovering bridge: %w", err)
	}
	log.Info("bridge discovered",
		"instance", bridge.Instance,
		"id", bridge.ID,
		"model", bridge.Model,
		"address", bridge.Address(),
	)
	return bridge.Address(), nil
}

// startProducer starts the configured colour producer and returns the
// source the stream loop reads from.
//
// The sequence source needs no producer. Capture and MQTT producers write
// into buf; the loop falls back to the sequence until the first colour
// arrives.
//
// Returns:
//   - stream.Source: Source for the stream loop
//   - func(): Stops the producer; always non-nil
//   - error: If the producer cannot be started
func startProducer(ctx context.Context, cfg *config.Config, buf *ringbuf.Shared, mqttClient *mqtt.Client, log *logging.Logger) (stream.Source, func(), error) {
	fallback := stream.NewSequenceSource(hue.FallbackSet, cfg.GetSequenceStep(), stream.SystemClock())
	noop := func() {}

	switch cfg.Stream.Source {
	case config.SourceCapture:
		reader, err := capture.OpenPCM(cfg.Capture.Path, cfg.Capture.Channels, cfg.Capture.BlockSize, cfg.Capture.SampleRate)
		if err != nil {
			return nil, noop, fmt.Errorf("opening capture: %w", err)
		}
		reader.SetLogger(log.With("component", "capture"))
		analyzer := capture.NewAnalyzer(buf, capture.AnalyzerConfig{
			Gain:    cfg.Capture.Gain,
			HueStep: cfg.Capture.HueStep,
		})

		captureCtx, cancel := context.WithCancel(ctx)
		done := make(chan struct{})
		go func() {
			defer close(done)
			if err := reader.Run(captureCtx, analyzer); err != nil {
				log.Warn("capture stopped", "error", err)
				return
			}
			log.Info("capture finished", "blocks", analyzer.Blocks())
		}()

		source, err := stream.NewBufferSource(buf, fallback)
		if err != nil {
			cancel()
			<-done
			return nil, noop, err
		}
		return source, func() { cancel(); <-done }, nil

	case config.SourceMQTT:
		if mqttClient == nil {
			return nil, noop, errors.New("mqtt source requires an MQTT connection")
		}
		producer := mqtt.NewCommandProducer(mqttClient, mqttClient.Topics().ColorCommand(), byte(cfg.MQTT.QoS), buf)
		source, err := stream.NewBufferSource(buf, fallback)
		if err != nil {
			return nil, noop, err
		}
		if err := producer.Start(); err != nil {
			return nil, noop, fmt.Errorf("subscribing to colour commands: %w", err)
		}
		log.Info("accepting colour commands", "topic", mqttClient.Topics().ColorCommand())
		return source, func() {
			if err := producer.Stop(); err != nil {
				log.Warn("unsubscribing colour commands", "error", err)
			}
			stats := producer.Stats()
			log.Info("colour commands", "accepted", stats.Accepted, "rejected", stats.Rejected)
		}, nil

	default:
		return fallback, noop, nil
	}
}
