// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package command

import (
	"context"
	"fmt"

	"github.com/momeni/db-manager/pkg/core/model"
	"github.com/spf13/cobra"
)

var upgradeCeiling int

var upgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Upgrade the target database schema",
	Long: `Upgrade walks the target database forward, one schema
version at a time, until it reaches the upper bound of the supported
versions range or the --to ceiling. A failing step leaves the database
at the last completed version, so a later upgrade resumes from there.`,
	RunE: runUpgrade,
}

func runUpgrade(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	m, closer, err := loadManager(ctx)
	if err != nil {
		return err
	}
	defer closer()
	ceiling := model.VersionUnknown
	if upgradeCeiling > 0 {
		ceiling = model.Version(upgradeCeiling)
	}
	if err := m.UpgradeTo(ctx, ceiling); err != nil {
		return fmt.Errorf("upgrading database: %w", err)
	}
	fmt.Printf("state: %s\nversion: %s\n", m.State(), m.Version())
	return nil
}

func init() {
	upgradeCmd.Flags().IntVar(
		&upgradeCeiling, "to", 0,
		"ceiling version, defaulting to the range upper bound",
	)
	rootCmd.AddCommand(upgradeCmd)
}
