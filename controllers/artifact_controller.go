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

package controllers

import (
	"github.com/stridemap-dev/stridemap/database/models"
	"github.com/stridemap-dev/stridemap/dtos"
	"github.com/stridemap-dev/stridemap/shared"
)

type ArtifactController struct {
	artifactRepository    shared.ArtifactRepository
	ticketRepository      shared.TicketRepository
	scanHistoryRepository shared.ScanHistoryRepository
	statisticsService     shared.StatisticsService
}

func NewArtifactController(artifactRepository shared.ArtifactRepository, ticketRepository shared.TicketRepository, scanHistoryRepository shared.ScanHistoryRepository, statisticsService shared.StatisticsService) *ArtifactController {
	return &ArtifactController{
		artifactRepository:    artifactRepository,
		ticketRepository:      ticketRepository,
		scanHistoryRepository: scanHistoryRepository,
		statisticsService:     statisticsService,
	}
}

// List returns the project's artifacts, optionally filtered to the artifacts
// currently sitting on one workflow step (?step=1..5).
func (c *ArtifactController) List(ctx shared.Context) error {
	project := shared.GetProject(ctx)

	var step *int
	var query struct {
		Step *int `query:"step" validate:"omitempty,gte=1,lte=5"`
	}
	if err := bindAndValidate(ctx, &query); err != nil {
		return err
	}
	step = query.Step

	if step != nil {
		artifacts, err := c.statisticsService.GetArtifactsByWorkflowStep(project.ID, step)
		if err != nil {
			return httpError(err, "could not list artifacts")
		}
		return ctx.JSON(200, artifacts)
	}

	artifacts, err := c.artifactRepository.GetByProjectID(project.ID)
	if err != nil {
		return httpError(err, "could not list artifacts")
	}
	return ctx.JSON(200, artifacts)
}

func (c *ArtifactController) Create(ctx shared.Context) error {
	project := shared.GetProject(ctx)

	type requestBody struct {
		Name    string            `json:"name" validate:"required"`
		Type    dtos.ArtifactType `json:"type" validate:"required"`
		URL     string            `json:"url"`
		Version string            `json:"version"`
		CPE     string            `json:"cpe"`
	}

	var body requestBody
	if err := bindAndValidate(ctx, &body); err != nil {
		return err
	}

	artifact := models.Artifact{
		ProjectID: project.ID,
		Name:      body.Name,
		Type:      body.Type,
		URL:       body.URL,
		Version:   body.Version,
		CPE:       body.CPE,
	}
	if err := c.artifactRepository.Create(nil, &artifact); err != nil {
		return httpError(err, "could not create artifact")
	}
	return ctx.JSON(201, artifact)
}

// Read returns the artifact including its linked threats.
func (c *ArtifactController) Read(ctx shared.Context) error {
	artifact := shared.GetArtifact(ctx)
	full, err := c.artifactRepository.ReadWithThreats(artifact.ID)
	if err != nil {
		return httpError(err, "could not read artifact")
	}
	return ctx.JSON(200, full)
}

// Delete removes the artifact and its tickets. Threats stay, they may be
// linked to other artifacts.
func (c *ArtifactController) Delete(ctx shared.Context) error {
	artifact := shared.GetArtifact(ctx)
	err := c.artifactRepository.Transaction(func(tx shared.DB) error {
		if err := c.ticketRepository.DeleteByArtifactID(tx, artifact.ID); err != nil {
			return err
		}
		return c.artifactRepository.Delete(tx, artifact.ID)
	})
	if err != nil {
		return httpError(err, "could not delete artifact")
	}
	return ctx.NoContent(204)
}

// ScanHistory returns the audit snapshots of past scan cycles.
func (c *ArtifactController) ScanHistory(ctx shared.Context) error {
	artifact := shared.GetArtifact(ctx)
	history, err := c.scanHistoryRepository.FindByArtifactID(artifact.ID)
	if err != nil {
		return httpError(err, "could not read scan history")
	}
	return ctx.JSON(200, history)
}
