// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package command

import (
	"context"
	"fmt"

	"github.com/momeni/db-manager/pkg/core/usecase/manageruc"
	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Run the database creation batch",
	RunE: func(_ *cobra.Command, _ []string) error {
		return runProcessor("create", (*manageruc.Manager).Create)
	},
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Run the backup creation batch",
	RunE: func(_ *cobra.Command, _ []string) error {
		return runProcessor("backup", (*manageruc.Manager).Backup)
	},
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Run the cleanup batch",
	RunE: func(_ *cobra.Command, _ []string) error {
		return runProcessor("cleanup", (*manageruc.Manager).Cleanup)
	},
}

// runProcessor composes a manager and delegates to the op processor
// operation. Operations without a configured processor are reported
// as unsupported by the manager itself.
func runProcessor(
	name string,
	op func(*manageruc.Manager, context.Context) error,
) error {
	ctx := context.Background()
	m, closer, err := loadManager(ctx)
	if err != nil {
		return err
	}
	defer closer()
	if err := op(m, ctx); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	fmt.Printf("%s: done\n", name)
	return nil
}

func init() {
	rootCmd.AddCommand(createCmd, backupCmd, cleanupCmd)
}
