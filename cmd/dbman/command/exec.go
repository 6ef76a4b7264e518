// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package command

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/momeni/db-manager/pkg/core/usecase/manageruc"
	"github.com/spf13/cobra"
)

var (
	execWantResult bool
	execReadOnly   bool
)

var execCmd = &cobra.Command{
	Use:   "exec <batch>",
	Short: "Execute a named batch",
	Long: `Exec resolves the named batch from the configured scripts
directory and executes it against the target database under the batch
resolved transaction policy. With --result, the batch result (the row
set of its last reader command, or its last captured command value) is
printed on the standard output as json.`,
	Args: cobra.ExactArgs(1),
	RunE: runExec,
}

func runExec(_ *cobra.Command, args []string) error {
	ctx := context.Background()
	m, closer, err := loadManager(ctx)
	if err != nil {
		return err
	}
	defer closer()
	result, err := m.ExecuteNamed(ctx, args[0], manageruc.BatchOptions{
		WantResult: execWantResult,
		ReadOnly:   execReadOnly,
	})
	if err != nil {
		return fmt.Errorf("executing %q batch: %w", args[0], err)
	}
	if !execWantResult {
		return nil
	}
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling result: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func init() {
	execCmd.Flags().BoolVar(
		&execWantResult, "result", false, "print the batch result",
	)
	execCmd.Flags().BoolVar(
		&execReadOnly, "read-only", false,
		"run on the read-only pool, if one is configured",
	)
	rootCmd.AddCommand(execCmd)
}
