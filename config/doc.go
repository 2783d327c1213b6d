// Package config loads service configuration: environment variables for
// the gateway and scheduler, and a YAML roster file naming the
// departments a broadcast can address.
package config
