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

package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stridemap-dev/stridemap/controllers"
	"github.com/stridemap-dev/stridemap/middlewares"
	"github.com/stridemap-dev/stridemap/shared"
)

type APIV1Router struct {
	*echo.Group
}

// NewAPIV1Router mounts the full HTTP surface. Path layout:
//
//	/api/v1/projects/                               project collection
//	/api/v1/projects/:projectID/...                 project scoped
//	/api/v1/projects/:projectID/artifacts/:artifactID/...  artifact scoped
func NewAPIV1Router(
	srv shared.Server,
	projectController *controllers.ProjectController,
	artifactController *controllers.ArtifactController,
	scanController *controllers.ScanController,
	workflowController *controllers.WorkflowController,
	ticketController *controllers.TicketController,
	scannerController *controllers.ScannerController,
	projectRepository shared.ProjectRepository,
	artifactRepository shared.ArtifactRepository,
) APIV1Router {
	srv.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	srv.GET("/health", func(ctx shared.Context) error {
		return ctx.JSON(200, map[string]string{"status": "ok"})
	})

	apiV1 := srv.Group("/api/v1")

	apiV1.GET("/scanners/", scannerController.List)
	apiV1.POST("/scanners/", scannerController.Register)

	apiV1.GET("/projects/", projectController.List)
	apiV1.POST("/projects/", projectController.Create)

	projectRouter := apiV1.Group("/projects/:projectID", middlewares.ProjectScoped(projectRepository))
	projectRouter.GET("/", projectController.Read)
	projectRouter.DELETE("/", projectController.Delete)
	projectRouter.GET("/stats/workflow/", projectController.WorkflowStats)
	projectRouter.GET("/artifacts/", artifactController.List)
	projectRouter.POST("/artifacts/", artifactController.Create)

	artifactRouter := projectRouter.Group("/artifacts/:artifactID", middlewares.ArtifactScoped(artifactRepository))
	artifactRouter.GET("/", artifactController.Read)
	artifactRouter.DELETE("/", artifactController.Delete)
	artifactRouter.GET("/scan-history/", artifactController.ScanHistory)

	artifactRouter.POST("/scan/begin/", scanController.BeginScan)
	artifactRouter.POST("/scan/results/", scanController.SubmitResult)
	artifactRouter.POST("/scan/results/raw/", scanController.SubmitRawResult)

	artifactRouter.POST("/workflow/trigger/", workflowController.TriggerStep)
	artifactRouter.GET("/workflow/history/", workflowController.History)

	artifactRouter.GET("/tickets/", ticketController.ListByArtifact)

	// ticket transitions are not artifact scoped, the ticket row carries its
	// artifact
	apiV1.PATCH("/tickets/:ticketID/", ticketController.UpdateStatus)

	return APIV1Router{Group: apiV1}
}
