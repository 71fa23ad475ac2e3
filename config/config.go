// Package config loads the service configuration from YAML with validated
// defaults. The deployed component addresses live here because the
// preparation service treats them as external configuration it does not own.
package config

import (
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

// Default placement of the two components. Overridable so several deployments
// can share one binary.
const (
	DefaultListenAddr     = ":8080"
	DefaultEventStorePath = "data/events.db"
	DefaultCoordinator    = "0x00000000000000000000000000000000C0000001"
	DefaultIssuer         = "0x00000000000000000000000000000000C0000002"
	DefaultAdmin          = "0x00000000000000000000000000000000000A0001"
)

// Config is the full service configuration.
type Config struct {
	ListenAddr     string `yaml:"listen_addr"`
	EventStorePath string `yaml:"event_store_path"`
	LogLevel       string `yaml:"log_level"`

	// Deployed component addresses.
	CoordinatorAddr string `yaml:"coordinator_addr"`
	IssuerAddr      string `yaml:"issuer_addr"`
	// AdminAddr administers both components.
	AdminAddr string `yaml:"admin_addr"`
}

// Default returns the baked-in configuration.
func Default() Config {
	return Config{
		ListenAddr:      DefaultListenAddr,
		EventStorePath:  DefaultEventStorePath,
		LogLevel:        "info",
		CoordinatorAddr: DefaultCoordinator,
		IssuerAddr:      DefaultIssuer,
		AdminAddr:       DefaultAdmin,
	}
}

// Load reads path over the defaults. An empty path keeps the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "read config %s", path)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, cfg.Validate()
}

// Validate rejects configurations the service could not run with.
func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return errors.New("listen_addr must not be empty")
	}
	if !common.IsHexAddress(c.CoordinatorAddr) {
		return errors.Errorf("bad coordinator_addr %q", c.CoordinatorAddr)
	}
	if !common.IsHexAddress(c.IssuerAddr) {
		return errors.Errorf("bad issuer_addr %q", c.IssuerAddr)
	}
	if c.Coordinator() == c.Issuer() {
		return errors.New("coordinator_addr and issuer_addr must differ")
	}
	if c.AdminAddr != "" && !common.IsHexAddress(c.AdminAddr) {
		return errors.Errorf("bad admin_addr %q", c.AdminAddr)
	}
	return nil
}

// Coordinator returns the coordinator address in parsed form.
func (c Config) Coordinator() common.Address {
	return common.HexToAddress(c.CoordinatorAddr)
}

// Issuer returns the issuer address in parsed form.
func (c Config) Issuer() common.Address {
	return common.HexToAddress(c.IssuerAddr)
}

// Admin returns the administrator address in parsed form.
func (c Config) Admin() common.Address {
	return common.HexToAddress(c.AdminAddr)
}
