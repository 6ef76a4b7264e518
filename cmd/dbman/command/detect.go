// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package command

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Detect the target database state",
	Long: `Detect connects to the target database, reads its schema
version, and classifies its readiness against the supported versions
range. The detected state and version are printed on the standard
output.`,
	RunE: runDetect,
}

func runDetect(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	m, closer, err := loadManager(ctx)
	if err != nil {
		return err
	}
	defer closer()
	state, err := m.DetectState(ctx)
	if err != nil {
		return fmt.Errorf("detecting database state: %w", err)
	}
	fmt.Printf("state: %s\nversion: %s\n", state, m.Version())
	return nil
}

func init() {
	rootCmd.AddCommand(detectCmd)
}
