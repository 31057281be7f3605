// Package config handles configuration loading, parsing, and validation
// from defaults, an optional config.yaml, an optional .env file and
// VOCAB_-prefixed environment variables. It also converts the loaded values
// into the explicit parameter structs the scheduling core accepts.
package config
