// Package config handles loading and validating the sensor agent configuration.
//
// This package manages:
//   - Loading the hardware build configuration from YAML
//   - Overriding with environment variables
//   - Validation of required fields
//   - Default value handling
//
// Operator settings that must survive reboots and are entered interactively
// on first boot (server, interval, token, pin, calibration) are not part of
// this file; they live in the key store.
//
// Usage:
//
//	cfg, err := config.Load("/etc/sensoragent/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Sensor.Kind)
package config
