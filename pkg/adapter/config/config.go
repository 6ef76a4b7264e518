// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package config is an adapter which accepts yaml formatted config
// files and allows the dbman to instantiate a lifecycle manager with
// its engine adapter, collaborators, and processors using those
// loaded configuration settings. The parsed settings are validated
// declaratively before any component is instantiated, so a broken
// configuration is reported without touching the target database.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config contains all settings which are required by the lifecycle
// manager composition: the target database connection, the scripts
// directory for named batches, the supported upgrades range, the
// default batch execution policies, and the optional processors.
type Config struct {
	// Database addresses the target database.
	Database Database `yaml:"database" validate:"required"`

	// ReadOnly optionally addresses a read-only replica of the target
	// database, serving the batches which are marked as read-only.
	// Both databases must run the same engine.
	ReadOnly *Database `yaml:"read-only-database,omitempty"`

	// Scripts locates the named batch script files.
	Scripts Scripts `yaml:"scripts"`

	// Upgrades describes the supported schema versions range. Without
	// this section, the composed manager has no upgrade capability and
	// accepts any successfully detected version.
	Upgrades *Upgrades `yaml:"upgrades,omitempty"`

	// Batches holds the default batch execution policies.
	Batches Batches `yaml:"batches"`

	// Processors names the batches of the optional backup, cleanup,
	// and database creation operations. An empty name leaves the
	// corresponding operation unsupported.
	Processors Processors `yaml:"processors"`
}

// Database contains the connection settings of one database.
type Database struct {
	// Engine selects the engine adapter.
	Engine string `yaml:"engine" validate:"required,oneof=postgres sqlite"`

	// URL is the connection string for the postgres engine and the
	// database file path (or file: URI) for the sqlite engine.
	URL string `yaml:"url" validate:"required"`
}

// Scripts contains the batch script files location settings.
type Scripts struct {
	// Dir is the directory holding one <name>.sql file per named
	// batch.
	Dir string `yaml:"dir" validate:"required"`
}

// Upgrades contains the supported schema versions range settings.
type Upgrades struct {
	// Min is the oldest schema version which can be upgraded.
	Min int `yaml:"min" validate:"min=1"`

	// Max is the version which upgrades lead to.
	Max int `yaml:"max" validate:"gtefield=Min"`

	// Table optionally overrides the version table name.
	Table string `yaml:"table,omitempty"`

	// BatchPattern optionally overrides the fmt pattern which forms
	// the per-step upgrade batch names from the target version.
	BatchPattern string `yaml:"batch-pattern,omitempty"`
}

// Batches contains the default batch execution policies.
type Batches struct {
	// DefaultTx applies when a batch merges to no hard transaction
	// requirement, defaulting to disallowed.
	DefaultTx string `yaml:"default-tx,omitempty" validate:"omitempty,oneof=dont-care required disallowed"`

	// DefaultIsolation is the ambient transaction isolation level
	// which applies when no batch command overrides it.
	DefaultIsolation string `yaml:"default-isolation,omitempty" validate:"omitempty,oneof=default read-uncommitted read-committed repeatable-read serializable"`
}

// Processors contains the optional processors settings.
type Processors struct {
	// Backup names the backup batch.
	Backup string `yaml:"backup,omitempty"`

	// BackupLabelParam optionally names the parameter which passes
	// the generated backup label to the backup batch commands.
	BackupLabelParam string `yaml:"backup-label-param,omitempty"`

	// Cleanup names the cleanup batch.
	Cleanup string `yaml:"cleanup,omitempty"`

	// Create names the database creation batch.
	Create string `yaml:"create,omitempty"`
}

// Load function loads, validates, and normalizes the configuration
// file and returns its settings as an instance of the Config struct.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	c := &Config{}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("unmarshalling yaml: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}
	return c, nil
}

// Validate checks the c settings declaratively and enforces the
// cross-section constraints which tags cannot express.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.ReadOnly != nil && c.ReadOnly.Engine != c.Database.Engine {
		return fmt.Errorf(
			"read-only database engine %q differs from %q",
			c.ReadOnly.Engine, c.Database.Engine,
		)
	}
	return nil
}
