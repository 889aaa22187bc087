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
	"github.com/stridemap-dev/stridemap/shared"
)

type WorkflowController struct {
	workflowService    shared.WorkflowService
	artifactRepository shared.ArtifactRepository
}

func NewWorkflowController(workflowService shared.WorkflowService, artifactRepository shared.ArtifactRepository) *WorkflowController {
	return &WorkflowController{
		workflowService:    workflowService,
		artifactRepository: artifactRepository,
	}
}

// TriggerStep re-evaluates the given workflow step. Safe to over-trigger:
// a trigger for a step the artifact is not currently on is a no-op.
func (c *WorkflowController) TriggerStep(ctx shared.Context) error {
	artifact := shared.GetArtifact(ctx)

	type requestBody struct {
		Step int `json:"step" validate:"required,gte=1,lte=5"`
	}
	var body requestBody
	if err := bindAndValidate(ctx, &body); err != nil {
		return err
	}

	if err := c.workflowService.UpdateWorkflowStatus(artifact.ID, body.Step); err != nil {
		return httpError(err, "could not update workflow status")
	}

	updated, err := c.artifactRepository.Read(artifact.ID)
	if err != nil {
		return httpError(err, "could not read artifact")
	}
	return ctx.JSON(200, map[string]any{
		"currentWorkflowStep": updated.CurrentWorkflowStep,
		"workflowCompleted":   updated.WorkflowCompleted,
		"workflowCyclesCount": updated.WorkflowCyclesCount,
		"currentCycle":        updated.ActiveCycle(),
	})
}

// History returns every workflow cycle of the artifact, the live one
// included.
func (c *WorkflowController) History(ctx shared.Context) error {
	artifact := shared.GetArtifact(ctx)
	cycles, err := c.workflowService.GetWorkflowHistory(artifact.ID)
	if err != nil {
		return httpError(err, "could not read workflow history")
	}
	return ctx.JSON(200, cycles)
}
