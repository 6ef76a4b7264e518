// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package command provides the root and sub-commands for the dbman
// project. Commands are organized using the cobra library.
// Each sub-command composes a lifecycle manager from the configuration
// file and runs one manager operation against the target database.
//
//	./dbman detect [-c /path/of/config.yaml]
//	./dbman upgrade [--to N] [-c /path/of/config.yaml]
//	./dbman exec some-batch [--result] [--read-only]
//	./dbman create
//	./dbman backup
//	./dbman cleanup
package command

import (
	"context"
	"fmt"
	"os"

	"github.com/momeni/db-manager/pkg/adapter/config"
	"github.com/momeni/db-manager/pkg/core/usecase/manageruc"
	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "dbman",
	Short: "A database schema lifecycle manager",
	Long: `A database schema lifecycle manager which detects the
current schema version of a target database, classifies its readiness,
walks it forward through single-version upgrade steps, and executes
multi-command script batches under well-defined transaction semantics.
The target database, the scripts directory, the supported versions
range, and the optional backup/cleanup/creation processors are all
described by a yaml configuration file, so the same binary can manage
PostgreSQL and SQLite databases alike.`,
}

// loadManager composes a lifecycle manager from the configuration
// file. The returned closer releases the manager connection pools.
func loadManager(ctx context.Context) (
	*manageruc.Manager, func() error, error,
) {
	c, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, fmt.Errorf("config.Load(%q): %w", cfgPath, err)
	}
	return c.NewManager(ctx)
}

// Execute runs the rootCmd which in turn parses CLI arguments and
// flags and runs the most specific cobra command. The exit code may
// be a boolean (zero for success and non-zero for failure) or may be
// chosen based on the error condition (if it is desired to report
// several error conditions in the CLI of this program).
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(fixConfigPath)
	rootCmd.PersistentFlags().StringVarP(
		&cfgPath, "config", "c", "", "config file path",
	)
}

// fixConfigPath ensures that cfgPath is set respectively by either the
// CLI args, the CONFIG_FILE environment variable, or its default value.
func fixConfigPath() {
	if cfgPath != "" {
		return
	}
	var found bool
	if cfgPath, found = os.LookupEnv("CONFIG_FILE"); !found {
		// the default path should usually be in the /etc directory
		cfgPath = "configs/sample-config.yaml"
	}
}
