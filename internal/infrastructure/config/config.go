package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Source names for StreamConfig.Source.
const (
	SourceSequence = "sequence"
	SourceCapture  = "capture"
	SourceMQTT     = "mqtt"
)

// Limits shared with the streaming packages.
const (
	maxLights     = 10
	maxOutputRate = 60.0
	pskHexLength  = 32
)

// Config is the root configuration structure for huestream.
// All configuration is loaded from YAML and can be overridden by environment
// variables and command-line flags.
type Config struct {
	Bridge   BridgeConfig   `yaml:"bridge"`
	Stream   StreamConfig   `yaml:"stream"`
	Capture  CaptureConfig  `yaml:"capture"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// BridgeConfig contains the bridge address and streaming credentials.
type BridgeConfig struct {
	Host             string          `yaml:"host"`
	Port             int             `yaml:"port"`
	Identity         string          `yaml:"identity"`
	PSK              string          `yaml:"psk"`
	HandshakeTimeout int             `yaml:"handshake_timeout"` // seconds, 0 = context only
	ReceiveTimeout   int             `yaml:"receive_timeout"`   // seconds
	DSCP             int             `yaml:"dscp"`
	Discovery        DiscoveryConfig `yaml:"discovery"`
}

// DiscoveryConfig contains mDNS bridge discovery settings.
type DiscoveryConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Timeout   int    `yaml:"timeout"` // seconds
	Interface string `yaml:"interface"`
	BridgeID  string `yaml:"bridge_id"`
}

// StreamConfig contains frame pacing and colour source settings.
type StreamConfig struct {
	RateHz         float64 `yaml:"rate_hz"`
	Duration       int     `yaml:"duration"` // seconds, 0 = forever
	Supersample    int     `yaml:"supersample"`
	Lights         []int   `yaml:"lights"`
	Brightness     float64 `yaml:"brightness"`
	Source         string  `yaml:"source"`
	BufferCapacity int     `yaml:"buffer_capacity"`
	SequenceStep   int     `yaml:"sequence_step"`  // milliseconds
	StatsInterval  int     `yaml:"stats_interval"` // seconds
}

// CaptureConfig contains raw PCM capture settings.
type CaptureConfig struct {
	Path       string  `yaml:"path"`
	Channels   int     `yaml:"channels"`
	BlockSize  int     `yaml:"block_size"`
	SampleRate int     `yaml:"sample_rate"` // Hz; paces regular files
	Gain       float64 `yaml:"gain"`
	HueStep    float64 `yaml:"hue_step"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled     bool                `yaml:"enabled"`
	Broker      MQTTBrokerConfig    `yaml:"broker"`
	Auth        MQTTAuthConfig      `yaml:"auth"`
	QoS         int                 `yaml:"qos"`
	TopicPrefix string              `yaml:"topic_prefix"`
	Reconnect   MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration, applies overrides and validates the result.
//
// Sources are applied in order: defaults, the YAML file (skipped when path
// is empty), environment variables, then each override function (used for
// command-line flags).
//
// Environment variables follow the pattern HUESTREAM_SECTION_KEY.
// For example: HUESTREAM_BRIDGE_PSK, HUESTREAM_MQTT_HOST
//
// Parameters:
//   - path: Path to the YAML configuration file, or "" for none
//   - overrides: Applied after environment variables
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string, overrides ...func(*Config)) (*Config, error) {
	// Start with defaults
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	for _, override := range overrides {
		override(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns a Config with sensible defaults. Credentials and lights
// have no defaults.
func Default() *Config {
	return &Config{
		Bridge: BridgeConfig{
			Port:             2100,
			HandshakeTimeout: 10,
			ReceiveTimeout:   2,
			Discovery: DiscoveryConfig{
				Timeout: 5,
			},
		},
		Stream: StreamConfig{
			RateHz:         25,
			Supersample:    1,
			Brightness:     1,
			Source:         SourceSequence,
			BufferCapacity: 64,
			SequenceStep:   650,
			StatsInterval:  10,
		},
		Capture: CaptureConfig{
			Channels:   2,
			BlockSize:  512,
			SampleRate: 48000,
			Gain:       4,
			HueStep:    2,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "huestream",
			},
			QoS:         1,
			TopicPrefix: "huestream",
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: HUESTREAM_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Bridge
	if v := os.Getenv("HUESTREAM_BRIDGE_HOST"); v != "" {
		cfg.Bridge.Host = v
	}
	if v := os.Getenv("HUESTREAM_BRIDGE_IDENTITY"); v != "" {
		cfg.Bridge.Identity = v
	}
	if v := os.Getenv("HUESTREAM_BRIDGE_PSK"); v != "" {
		cfg.Bridge.PSK = v
	}

	// Stream
	if v := os.Getenv("HUESTREAM_STREAM_SOURCE"); v != "" {
		cfg.Stream.Source = v
	}
	if v := os.Getenv("HUESTREAM_STREAM_LIGHTS"); v != "" {
		if lights, err := ParseLights(v); err == nil {
			cfg.Stream.Lights = lights
		}
	}

	// MQTT
	if v := os.Getenv("HUESTREAM_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("HUESTREAM_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("HUESTREAM_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("HUESTREAM_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Logging
	if v := os.Getenv("HUESTREAM_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// ParseLights parses a comma-separated list of light ids, e.g. "1,2,5".
func ParseLights(s string) ([]int, error) {
	var lights []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid light id %q: %w", part, err)
		}
		lights = append(lights, id)
	}
	return lights, nil
}

// Validate checks the configuration for errors.
//
// All problems are collected and reported together.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Bridge validation
	if c.Bridge.Host == "" && !c.Bridge.Discovery.Enabled {
		errs = append(errs, "bridge.host is required unless bridge.discovery.enabled is set")
	}
	if c.Bridge.Port < 1 || c.Bridge.Port > 65535 {
		errs = append(errs, "bridge.port must be between 1 and 65535")
	}
	if c.Bridge.Identity == "" {
		errs = append(errs, "bridge.identity is required (set HUESTREAM_BRIDGE_IDENTITY environment variable)")
	}
	if len(c.Bridge.PSK) != pskHexLength {
		errs = append(errs, "bridge.psk must be 32 hexadecimal characters (set HUESTREAM_BRIDGE_PSK environment variable)")
	} else if _, err := hex.DecodeString(c.Bridge.PSK); err != nil {
		errs = append(errs, "bridge.psk must only contain hexadecimal characters")
	}
	if c.Bridge.HandshakeTimeout < 0 || c.Bridge.ReceiveTimeout < 0 {
		errs = append(errs, "bridge timeouts must not be negative")
	}
	if c.Bridge.DSCP < 0 || c.Bridge.DSCP > 63 {
		errs = append(errs, "bridge.dscp must be between 0 and 63")
	}

	// Stream validation
	if c.Stream.RateHz <= 0 {
		errs = append(errs, "stream.rate_hz must be positive")
	}
	if c.Stream.Supersample < 1 {
		errs = append(errs, "stream.supersample must be at least 1")
	} else if c.Stream.RateHz*float64(c.Stream.Supersample) > maxOutputRate {
		errs = append(errs, fmt.Sprintf("stream.rate_hz * stream.supersample must not exceed %.0f", maxOutputRate))
	}
	if c.Stream.Duration < 0 {
		errs = append(errs, "stream.duration must not be negative")
	}
	switch {
	case len(c.Stream.Lights) == 0:
		errs = append(errs, "stream.lights requires at least one light id")
	case len(c.Stream.Lights) > maxLights:
		errs = append(errs, fmt.Sprintf("stream.lights allows at most %d lights", maxLights))
	}
	for _, id := range c.Stream.Lights {
		if id < 0 || id > 0xFFFF {
			errs = append(errs, fmt.Sprintf("stream.lights id %d out of range", id))
		}
	}
	if c.Stream.Brightness <= 0 || c.Stream.Brightness > 1 {
		errs = append(errs, "stream.brightness must be in (0, 1]")
	}
	if c.Stream.BufferCapacity < 1 {
		errs = append(errs, "stream.buffer_capacity must be at least 1")
	}
	switch c.Stream.Source {
	case SourceSequence:
	case SourceCapture:
		if c.Capture.Path == "" {
			errs = append(errs, "capture.path is required when stream.source is capture")
		}
		if c.Capture.Channels < 1 || c.Capture.BlockSize < 1 {
			errs = append(errs, "capture.channels and capture.block_size must be at least 1")
		}
		if c.Capture.SampleRate < 1 {
			errs = append(errs, "capture.sample_rate must be at least 1")
		}
	case SourceMQTT:
		if !c.MQTT.Enabled {
			errs = append(errs, "mqtt.enabled is required when stream.source is mqtt")
		}
	default:
		errs = append(errs, "stream.source must be sequence, capture or mqtt")
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	// InfluxDB validation
	if c.InfluxDB.Enabled && (c.InfluxDB.URL == "" || c.InfluxDB.Org == "" || c.InfluxDB.Bucket == "") {
		errs = append(errs, "influxdb.url, influxdb.org and influxdb.bucket are required when influxdb is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetHandshakeTimeout returns the bridge handshake timeout as a Duration.
func (c *Config) GetHandshakeTimeout() time.Duration {
	return time.Duration(c.Bridge.HandshakeTimeout) * time.Second
}

// GetReceiveTimeout returns the bridge receive timeout as a Duration.
func (c *Config) GetReceiveTimeout() time.Duration {
	return time.Duration(c.Bridge.ReceiveTimeout) * time.Second
}

// GetDuration returns the stream run duration (0 = forever).
func (c *Config) GetDuration() time.Duration {
	return time.Duration(c.Stream.Duration) * time.Second
}

// GetSequenceStep returns how long each fallback colour is shown.
func (c *Config) GetSequenceStep() time.Duration {
	return time.Duration(c.Stream.SequenceStep) * time.Millisecond
}

// GetStatsInterval returns the stats reporting interval.
func (c *Config) GetStatsInterval() time.Duration {
	return time.Duration(c.Stream.StatsInterval) * time.Second
}

// GetDiscoveryTimeout returns the mDNS browse timeout.
func (c *Config) GetDiscoveryTimeout() time.Duration {
	return time.Duration(c.Bridge.Discovery.Timeout) * time.Second
}

// LightIDs returns the configured lights as protocol ids.
// Validate must have succeeded.
func (c *Config) LightIDs() []uint16 {
	ids := make([]uint16, len(c.Stream.Lights))
	for i, id := range c.Stream.Lights {
		ids[i] = uint16(id)
	}
	return ids
}
