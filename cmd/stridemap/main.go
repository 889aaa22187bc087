// Copyright (C) 2025 stridemap contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/stridemap-dev/stridemap/classification"
	"github.com/stridemap-dev/stridemap/controllers"
	"github.com/stridemap-dev/stridemap/database/repositories"
	"github.com/stridemap-dev/stridemap/enrich"
	"github.com/stridemap-dev/stridemap/normalize"
	"github.com/stridemap-dev/stridemap/router"
	"github.com/stridemap-dev/stridemap/services"
	"github.com/stridemap-dev/stridemap/shared"
	"github.com/stridemap-dev/stridemap/utils"
)

func main() {
	shared.LoadConfig() // nolint: errcheck
	shared.InitLogger()

	db, err := shared.DatabaseFactory()
	if err != nil {
		slog.Error("could not connect to database", "err", err)
		os.Exit(1)
	}

	// repositories
	projectRepository := repositories.NewProjectRepository(db)
	artifactRepository := repositories.NewArtifactRepository(db)
	threatRepository := repositories.NewThreatRepository(db)
	ticketRepository := repositories.NewTicketRepository(db)
	scanHistoryRepository := repositories.NewScanHistoryRepository(db)
	scannerRepository := repositories.NewScannerRepository(db)

	// services
	classifier := classification.NewClassifier(classification.DefaultRuleset())
	ticketService := services.NewTicketService(ticketRepository, projectRepository)
	workflowService := services.NewWorkflowService(artifactRepository, ticketRepository)
	reconciler := services.NewThreatReconcilerService(artifactRepository, threatRepository, scanHistoryRepository, ticketService, classifier, workflowService)
	scanAggregator := services.NewScanAggregatorService(artifactRepository, scannerRepository, reconciler)
	statisticsService := services.NewStatisticsService(artifactRepository)

	var enrichment normalize.EnrichmentLookup
	if base := os.Getenv("ENRICHMENT_API_URL"); base != "" {
		client, err := enrich.NewClient(base, nil, 10)
		if err != nil {
			slog.Error("could not initialize enrichment client", "err", err)
			os.Exit(1)
		}
		enrichment = client
	}
	adapter := normalize.NewJSONAdapter(enrichment)

	// controllers
	synchronizer := utils.NewFireAndForgetSynchronizer()
	projectController := controllers.NewProjectController(projectRepository, statisticsService)
	artifactController := controllers.NewArtifactController(artifactRepository, ticketRepository, scanHistoryRepository, statisticsService)
	scanController := controllers.NewScanController(scanAggregator, adapter)
	workflowController := controllers.NewWorkflowController(workflowService, artifactRepository)
	ticketController := controllers.NewTicketController(ticketRepository, workflowService, synchronizer)
	scannerController := controllers.NewScannerController(scannerRepository)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(ctx shared.Context, v middleware.RequestLoggerValues) error {
			slog.Info("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency.Round(time.Millisecond))
			return nil
		},
	}))

	router.NewAPIV1Router(e, projectController, artifactController, scanController, workflowController, ticketController, scannerController, projectRepository, artifactRepository)

	port := utils.OrDefault(utils.EmptyThenNil(os.Getenv("PORT")), "8080")
	slog.Info("starting server", "port", port)
	if err := e.Start(":" + port); err != nil {
		slog.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
