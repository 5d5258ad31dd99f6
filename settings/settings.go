// Package settings loads the handful of values the engine needs at
// startup: a shared secret, the remote host/port, the DNS literal to
// hand clients, and whether the client should take over the default
// route. Grounded on the teacher's
// infrastructure/PAL/configuration/{server,client} split — a JSON file
// on disk, overlaid by environment variables and then command-line
// flags, each layer overriding the last.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ServerConfiguration is read by the server role.
type ServerConfiguration struct {
	Port   string `json:"Port"`
	Secret string `json:"Secret"`
	DNS    string `json:"DNS"`
}

// ClientConfiguration is read by the client role.
type ClientConfiguration struct {
	Host                string `json:"Host"`
	Port                string `json:"Port"`
	Secret              string `json:"Secret"`
	ReplaceDefaultRoute bool   `json:"ReplaceDefaultRoute"`
}

// DefaultServerConfiguration mirrors NewDefaultConfiguration: a safe
// starting point a fresh deployment can tweak rather than needing to
// author a configuration file from scratch.
func DefaultServerConfiguration() *ServerConfiguration {
	return &ServerConfiguration{
		Port:   "8964",
		Secret: "",
		DNS:    "8.8.8.8",
	}
}

// DefaultClientConfiguration is the client-side counterpart.
func DefaultClientConfiguration() *ClientConfiguration {
	return &ClientConfiguration{
		Host:                "",
		Port:                "8964",
		Secret:              "",
		ReplaceDefaultRoute: false,
	}
}

// ReadServerConfiguration loads path as JSON, falling back to the
// defaults and writing them out if the file doesn't exist yet — the
// same "materialize on first run" behavior as the teacher's
// server/manager.go Configuration method. Secret and DNS may be
// overridden by the TUNNEL_SECRET and TUNNEL_DNS environment variables.
func ReadServerConfiguration(path string) (*ServerConfiguration, error) {
	cfg := DefaultServerConfiguration()
	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("settings: stat %s: %w", path, err)
		}
		if writeErr := writeJSON(path, cfg); writeErr != nil {
			return nil, fmt.Errorf("settings: write default configuration: %w", writeErr)
		}
	} else if readErr := readJSON(path, cfg); readErr != nil {
		return nil, readErr
	}

	if v := os.Getenv("TUNNEL_SECRET"); v != "" {
		cfg.Secret = v
	}
	if v := os.Getenv("TUNNEL_DNS"); v != "" {
		cfg.DNS = v
	}
	return cfg, nil
}

// ReadClientConfiguration is the client counterpart of
// ReadServerConfiguration.
func ReadClientConfiguration(path string) (*ClientConfiguration, error) {
	cfg := DefaultClientConfiguration()
	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("settings: stat %s: %w", path, err)
		}
		if writeErr := writeJSON(path, cfg); writeErr != nil {
			return nil, fmt.Errorf("settings: write default configuration: %w", writeErr)
		}
	} else if readErr := readJSON(path, cfg); readErr != nil {
		return nil, readErr
	}

	if v := os.Getenv("TUNNEL_SECRET"); v != "" {
		cfg.Secret = v
	}
	return cfg, nil
}

func readJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("settings: read %s: %w", path, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("settings: parse %s: %w", path, err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "\t")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0600)
}

// Validate rejects a server configuration too incomplete to start.
func (c *ServerConfiguration) Validate() error {
	if c.Secret == "" {
		return fmt.Errorf("settings: Secret must not be empty")
	}
	if c.DNS == "" {
		return fmt.Errorf("settings: DNS must not be empty")
	}
	return nil
}

// Validate rejects a client configuration too incomplete to start.
func (c *ClientConfiguration) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("settings: Host must not be empty")
	}
	if c.Secret == "" {
		return fmt.Errorf("settings: Secret must not be empty")
	}
	return nil
}
