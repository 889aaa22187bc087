// Copyright 2025 stridemap contributors.
// SPDX-License-Identifier: 	AGPL-3.0-or-later

package commands

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/stridemap-dev/stridemap/shared"
)

func NewMigrateCommand() *cobra.Command {
	migrate := cobra.Command{
		Use:   "migrate",
		Short: "Run the database migrations",
		Args:  cobra.ExactArgs(0),
		Run: func(cmd *cobra.Command, args []string) {
			shared.LoadConfig() // nolint
			// NewConnection runs AutoMigrate, connecting is migrating
			_, err := shared.DatabaseFactory()
			if err != nil {
				slog.Error("could not connect to database", "err", err)
				return
			}
			slog.Info("migrations applied")
		},
	}
	return &migrate
}
