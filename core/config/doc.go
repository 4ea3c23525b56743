// Package config provides configuration management for the device manager.
//
// Values come from environment variables, optionally seeded from a .env file,
// and fall back to the `default` struct tags of each section.
//
// # Configuration Structure
//
//   - Server: HTTP port and API key
//   - Log: level, encoding and service name
//   - Database: local store driver and connection
//   - Storage: S3/MinIO bucket for archived sync reports
//   - Omie: ERP endpoint, credentials and request rate
//   - Reconcile: apply workers and fetch retry policy
//   - Scheduler: periodic synchronization interval
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Omie.BaseURL)
package config
