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
	"log/slog"

	"github.com/stridemap-dev/stridemap/dtos"
	"github.com/stridemap-dev/stridemap/shared"
	"github.com/stridemap-dev/stridemap/utils"
)

type TicketController struct {
	ticketRepository shared.TicketRepository
	workflowService  shared.WorkflowService
	// mark public to let it be overridden in tests
	utils.FireAndForgetSynchronizer
}

func NewTicketController(ticketRepository shared.TicketRepository, workflowService shared.WorkflowService, synchronizer utils.FireAndForgetSynchronizer) *TicketController {
	return &TicketController{
		ticketRepository:          ticketRepository,
		workflowService:           workflowService,
		FireAndForgetSynchronizer: synchronizer,
	}
}

func (c *TicketController) ListByArtifact(ctx shared.Context) error {
	artifact := shared.GetArtifact(ctx)
	tickets, err := c.ticketRepository.FindByArtifactID(artifact.ID)
	if err != nil {
		return httpError(err, "could not list tickets")
	}
	return ctx.JSON(200, tickets)
}

// UpdateStatus applies a manual ticket transition and re-evaluates the
// workflow steps the transition may have completed. The previous status is
// recorded on every transition, it feeds the returned-to-processing
// detection at verification.
func (c *TicketController) UpdateStatus(ctx shared.Context) error {
	ticketID, err := shared.ParseID(ctx, "ticketID")
	if err != nil {
		return httpError(err, "invalid ticket id")
	}

	var body dtos.UpdateTicketStatusRequest
	if err := bindAndValidate(ctx, &body); err != nil {
		return err
	}

	ticket, err := c.ticketRepository.Read(ticketID)
	if err != nil {
		return httpError(err, "could not read ticket")
	}

	if ticket.Status != body.Status {
		ticket.PreviousStatus = ticket.Status
		ticket.Status = body.Status
	}
	if body.Assignee != nil {
		ticket.Assignee = body.Assignee
	}
	if err := c.ticketRepository.Save(nil, &ticket); err != nil {
		return httpError(err, "could not save ticket")
	}
	slog.Info("ticket transitioned",
		"ticketId", ticket.ID, "status", ticket.Status, "assignee", utils.SafeDereference(ticket.Assignee))

	// a ticket transition can complete assignment, remediation or
	// verification, depending on where the artifact currently is
	artifactID := ticket.ArtifactID
	c.FireAndForget(func() {
		for _, step := range []int{dtos.WorkflowStepAssignment, dtos.WorkflowStepRemediation, dtos.WorkflowStepVerification} {
			if err := c.workflowService.UpdateWorkflowStatus(artifactID, step); err != nil {
				slog.Error("could not update workflow status after ticket transition", "artifactId", artifactID, "step", step, "err", err)
			}
		}
	})

	return ctx.JSON(200, ticket)
}
