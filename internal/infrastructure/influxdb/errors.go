package influxdb

import "errors"

// Sentinel errors for the telemetry client. Check with errors.Is().
var (
	// ErrDisabled is returned by Connect when influxdb.enabled is false.
	// Telemetry is optional; callers skip it rather than fail.
	ErrDisabled = errors.New("influxdb: disabled in configuration")

	// ErrConnectionFailed is returned when the startup ping fails.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrNotConnected is returned by HealthCheck after Close.
	ErrNotConnected = errors.New("influxdb: not connected")

	// ErrUnhealthy is returned when the server answers but reports itself
	// unhealthy.
	ErrUnhealthy = errors.New("influxdb: server not healthy")
)
