// Copyright 2025 stridemap contributors.
// SPDX-License-Identifier: 	AGPL-3.0-or-later

package commands

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "stridemap-cli",
	Short: "Management cli",
	Long:  `The stridemap cli can be used to manage a running stridemap instance.`,
}

func GetRootCmd() *cobra.Command {
	return rootCmd
}
