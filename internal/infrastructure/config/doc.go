// Package config handles loading and validating HomeHub Core configuration.
//
// This package manages:
//   - Loading configuration from an optional YAML file
//   - Loading a .env file for secrets such as PEM keys
//   - Overriding with environment variables
//   - Validation of required fields
//
// Security Considerations:
//   - Token private keys should be supplied through the environment, not the YAML file
//   - Access and refresh tokens must use different key pairs; Validate rejects a shared private key
//   - The config and .env files should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.API.Port)
package config
