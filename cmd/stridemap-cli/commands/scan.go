// Copyright 2025 stridemap contributors.
// SPDX-License-Identifier: 	AGPL-3.0-or-later

package commands

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/stridemap-dev/stridemap/classification"
	"github.com/stridemap-dev/stridemap/database/repositories"
	"github.com/stridemap-dev/stridemap/services"
	"github.com/stridemap-dev/stridemap/shared"
)

func NewScanCommand() *cobra.Command {
	scan := cobra.Command{
		Use:   "scan",
		Short: "Inspect and repair scan state",
	}
	scan.AddCommand(newScanForceFinishCommand())
	return &scan
}

// force-finish is the operator escape hatch for an artifact stuck scanning
// because a scanner crashed and will never report.
func newScanForceFinishCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "force-finish <artifactID>",
		Short: "End a scan whose scanners will never all report and reconcile the staged findings",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			artifactID, err := uuid.Parse(args[0])
			if err != nil {
				slog.Error("invalid artifact id", "err", err)
				return
			}

			shared.LoadConfig() // nolint
			database, err := shared.DatabaseFactory()
			if err != nil {
				slog.Error("could not connect to database", "err", err)
				return
			}

			projectRepository := repositories.NewProjectRepository(database)
			artifactRepository := repositories.NewArtifactRepository(database)
			threatRepository := repositories.NewThreatRepository(database)
			ticketRepository := repositories.NewTicketRepository(database)
			scanHistoryRepository := repositories.NewScanHistoryRepository(database)
			scannerRepository := repositories.NewScannerRepository(database)

			classifier := classification.NewClassifier(classification.DefaultRuleset())
			ticketService := services.NewTicketService(ticketRepository, projectRepository)
			workflowService := services.NewWorkflowService(artifactRepository, ticketRepository)
			reconciler := services.NewThreatReconcilerService(artifactRepository, threatRepository, scanHistoryRepository, ticketService, classifier, workflowService)
			scanAggregator := services.NewScanAggregatorService(artifactRepository, scannerRepository, reconciler)

			if err := scanAggregator.ForceFinishScan(artifactID); err != nil {
				slog.Error("could not force-finish scan", "err", err)
				return
			}
			slog.Info("scan finished, staged findings reconciled", "artifactId", artifactID)
		},
	}
}
