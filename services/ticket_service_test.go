// Copyright 2025 stridemap contributors.
// SPDX-License-Identifier: 	AGPL-3.0-or-later
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stridemap-dev/stridemap/database/models"
	"github.com/stridemap-dev/stridemap/dtos"
)

func TestTicketService(t *testing.T) {
	newFixture := func(t *testing.T) (*fakeStore, models.Artifact, *fakeTicketRepository, *ticketService) {
		t.Helper()
		store := newFakeStore()
		project := store.addProject("acme")
		artifact := store.addArtifact(project.ID, "billing-service")
		tickets := &fakeTicketRepository{store: store}
		return store, artifact, tickets, NewTicketService(tickets, &fakeProjectRepository{store: store})
	}

	t.Run("should create a ticket with denormalized project name and derived priority", func(t *testing.T) {
		_, artifact, _, service := newFixture(t)
		threat := models.Threat{ID: uuid.New(), Name: "CVE-1", Score: models.ThreatScore{Total: 9.5}}

		ticket, err := service.CreateTicket(threat, artifact)

		assert.NoError(t, err)
		assert.Equal(t, "Remediate CVE-1 on billing-service", ticket.Title)
		assert.Equal(t, "acme", ticket.ProjectName)
		assert.Equal(t, dtos.TicketPriorityCritical, ticket.Priority)
		assert.Equal(t, dtos.TicketStatusNotAccepted, ticket.Status)
	})

	t.Run("should still create the ticket when the project lookup fails", func(t *testing.T) {
		_, _, _, service := newFixture(t)
		orphan := models.Artifact{ID: uuid.New(), ProjectID: uuid.New(), Name: "orphan"}
		threat := models.Threat{ID: uuid.New(), Name: "CVE-2"}

		ticket, err := service.CreateTicket(threat, orphan)

		assert.NoError(t, err)
		assert.Empty(t, ticket.ProjectName)
	})

	t.Run("should record the previous status on transitions", func(t *testing.T) {
		_, artifact, tickets, service := newFixture(t)
		threatID := uuid.New()
		ticket := models.Ticket{ArtifactID: artifact.ID, ThreatID: threatID, Status: dtos.TicketStatusSubmitted}
		assert.NoError(t, tickets.Create(nil, &ticket))

		assert.NoError(t, service.UpdateTicketStatus(threatID, artifact.ID, false))

		updated, _ := tickets.Read(ticket.ID)
		assert.Equal(t, dtos.TicketStatusProcessing, updated.Status)
		assert.Equal(t, dtos.TicketStatusSubmitted, updated.PreviousStatus)
	})

	t.Run("should leave a ticket already in the target status untouched", func(t *testing.T) {
		_, artifact, tickets, service := newFixture(t)
		threatID := uuid.New()
		ticket := models.Ticket{ArtifactID: artifact.ID, ThreatID: threatID, Status: dtos.TicketStatusProcessing, PreviousStatus: dtos.TicketStatusSubmitted}
		assert.NoError(t, tickets.Create(nil, &ticket))

		assert.NoError(t, service.UpdateTicketStatus(threatID, artifact.ID, false))

		updated, _ := tickets.Read(ticket.ID)
		// the returned marker survives repeated reopen calls
		assert.True(t, updated.Returned())
	})

	t.Run("should only touch tickets of the given artifact", func(t *testing.T) {
		store, artifact, tickets, service := newFixture(t)
		other := store.addArtifact(artifact.ProjectID, "other-service")
		threatID := uuid.New()
		mine := models.Ticket{ArtifactID: artifact.ID, ThreatID: threatID, Status: dtos.TicketStatusSubmitted}
		theirs := models.Ticket{ArtifactID: other.ID, ThreatID: threatID, Status: dtos.TicketStatusSubmitted}
		assert.NoError(t, tickets.Create(nil, &mine))
		assert.NoError(t, tickets.Create(nil, &theirs))

		assert.NoError(t, service.UpdateTicketStatus(threatID, artifact.ID, true))

		updatedMine, _ := tickets.Read(mine.ID)
		updatedTheirs, _ := tickets.Read(theirs.ID)
		assert.Equal(t, dtos.TicketStatusResolved, updatedMine.Status)
		assert.Equal(t, dtos.TicketStatusSubmitted, updatedTheirs.Status)
	})
}
