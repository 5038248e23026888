// Package config loads service configuration from defaults, an optional
// config.yaml, an optional .env file and environment variables, in
// increasing order of precedence. PORT overrides server.port.
package config
