// Package config handles loading and validating huestream configuration.
//
// This package manages:
//   - Loading configuration from YAML files (optional)
//   - Overriding with environment variables and command-line flags
//   - Validation of required fields
//   - Default value handling
//
// Security Considerations:
//   - The pre-shared key should be set via HUESTREAM_BRIDGE_PSK rather than
//     written to the config file
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("huestream.yaml", func(c *config.Config) {
//	    c.Bridge.Host = *bridgeFlag
//	})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cfg.Bridge.Host)
package config
