// Package config loads the deployment configuration: everything that is
// specific to one school's JAMF tenant rather than to the SchILD export
// format itself.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/liebero3/schild2jamf/pkg/schema"
)

// Config is the per-deployment configuration file.
type Config struct {
	// OrgPrefix is prepended to every provisioned username
	// (e.g. "164501" -> "164501-michmuel").
	OrgPrefix string `yaml:"orgPrefix"`
	// EmailDomain forms the synthetic account email
	// (username@<EmailDomain>).
	EmailDomain string `yaml:"emailDomain"`
	// Strategy selects the group canonicalization strategy,
	// "group-id" or "group-name".
	Strategy schema.Strategy `yaml:"strategy"`
	// SchoolYear overrides the two-digit year code scanned from the
	// export. Leave empty to use the scanned value.
	SchoolYear string `yaml:"schoolYear"`
	// ClassLabels is the whitelist of known homeroom-class labels used
	// for class filtering ("05A", "07D", ...).
	ClassLabels []string `yaml:"classLabels"`
	// StudentSupplementaryGroups are appended to a student's group list
	// on catch-all expansion (device-room and iPad-cart pools).
	StudentSupplementaryGroups []string `yaml:"studentSupplementaryGroups"`
	// StaffSupplementaryGroups are appended to a staff member's group
	// list on catch-all expansion.
	StaffSupplementaryGroups []string `yaml:"staffSupplementaryGroups"`
}

// Default returns the configuration the tool ships with, matching the
// deployment the converter was originally written for.
func Default() *Config {
	return &Config{
		OrgPrefix:   "164501",
		EmailDomain: "164501.nrw.schule",
		Strategy:    schema.StrategyGroupName,
		StaffSupplementaryGroups: []string{
			"iPads-Lehrerzimmer_1-15",
			"iPads-Lehrerzimmer_alle",
			"iPads-Lehrerzimmer_16-30",
		},
	}
}

// Load reads and validates a YAML config file. Fields absent from the
// file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.OrgPrefix == "" {
		return fmt.Errorf("orgPrefix must not be empty")
	}
	if c.EmailDomain == "" {
		return fmt.Errorf("emailDomain must not be empty")
	}
	switch c.Strategy {
	case schema.StrategyGroupID, schema.StrategyGroupName:
	default:
		return fmt.Errorf("unknown strategy %q", c.Strategy)
	}
	return nil
}
