// Copyright 2025 stridemap contributors.
// SPDX-License-Identifier: 	AGPL-3.0-or-later

package controllers

import (
	"github.com/stridemap-dev/stridemap/database/models"
	"github.com/stridemap-dev/stridemap/shared"
)

type ProjectController struct {
	projectRepository shared.ProjectRepository
	statisticsService shared.StatisticsService
}

func NewProjectController(projectRepository shared.ProjectRepository, statisticsService shared.StatisticsService) *ProjectController {
	return &ProjectController{
		projectRepository: projectRepository,
		statisticsService: statisticsService,
	}
}

func (c *ProjectController) List(ctx shared.Context) error {
	projects, err := c.projectRepository.All()
	if err != nil {
		return httpError(err, "could not list projects")
	}
	return ctx.JSON(200, projects)
}

func (c *ProjectController) Create(ctx shared.Context) error {
	type requestBody struct {
		Name        string `json:"name" validate:"required"`
		Description string `json:"description"`
	}

	var body requestBody
	if err := bindAndValidate(ctx, &body); err != nil {
		return err
	}

	project := models.Project{
		Name:        body.Name,
		Description: body.Description,
	}
	if err := c.projectRepository.Create(nil, &project); err != nil {
		return httpError(err, "could not create project")
	}
	return ctx.JSON(201, project)
}

func (c *ProjectController) Read(ctx shared.Context) error {
	return ctx.JSON(200, shared.GetProject(ctx))
}

func (c *ProjectController) Delete(ctx shared.Context) error {
	project := shared.GetProject(ctx)
	if err := c.projectRepository.Delete(nil, project.ID); err != nil {
		return httpError(err, "could not delete project")
	}
	return ctx.NoContent(204)
}

// WorkflowStats reports the aggregated workflow posture of the project.
func (c *ProjectController) WorkflowStats(ctx shared.Context) error {
	project := shared.GetProject(ctx)
	stats, err := c.statisticsService.GetProjectWorkflowStats(project.ID)
	if err != nil {
		return httpError(err, "could not aggregate workflow stats")
	}
	return ctx.JSON(200, stats)
}
