// Copyright 2025 stridemap contributors.
// SPDX-License-Identifier: 	AGPL-3.0-or-later

package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/stridemap-dev/stridemap/database/models"
	"github.com/stridemap-dev/stridemap/database/repositories"
	"github.com/stridemap-dev/stridemap/shared"
)

func NewScannersCommand() *cobra.Command {
	scanners := cobra.Command{
		Use:   "scanners",
		Short: "Manage registered scanners",
	}
	scanners.AddCommand(newScannersListCommand())
	scanners.AddCommand(newScannersRegisterCommand())
	return &scanners
}

func newScannersListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered scanners",
		Args:  cobra.ExactArgs(0),
		Run: func(cmd *cobra.Command, args []string) {
			shared.LoadConfig() // nolint
			database, err := shared.DatabaseFactory()
			if err != nil {
				slog.Error("could not connect to database", "err", err)
				return
			}

			scannerRepository := repositories.NewScannerRepository(database)
			scanners, err := scannerRepository.All()
			if err != nil {
				slog.Error("could not list scanners", "err", err)
				return
			}
			for _, scanner := range scanners {
				fmt.Printf("%s\t%s\tenabled=%t\n", scanner.Name, scanner.Kind, scanner.Enabled)
			}
		},
	}
}

func newScannersRegisterCommand() *cobra.Command {
	register := &cobra.Command{
		Use:   "register <name>",
		Short: "Register a scanning tool",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			shared.LoadConfig() // nolint
			database, err := shared.DatabaseFactory()
			if err != nil {
				slog.Error("could not connect to database", "err", err)
				return
			}

			kind, _ := cmd.Flags().GetString("kind")
			scannerRepository := repositories.NewScannerRepository(database)
			scanner := models.Scanner{
				Name:    args[0],
				Kind:    kind,
				Enabled: true,
			}
			if err := scannerRepository.Create(nil, &scanner); err != nil {
				slog.Error("could not register scanner", "err", err)
				return
			}
			slog.Info("scanner registered", "name", scanner.Name, "kind", scanner.Kind)
		},
	}
	register.Flags().String("kind", "sca", "tool family: sast, sca, image or dast")
	return register
}
