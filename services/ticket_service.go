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

package services

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/stridemap-dev/stridemap/database/models"
	"github.com/stridemap-dev/stridemap/dtos"
	"github.com/stridemap-dev/stridemap/shared"
)

type ticketService struct {
	ticketRepository  shared.TicketRepository
	projectRepository shared.ProjectRepository
}

func NewTicketService(ticketRepository shared.TicketRepository, projectRepository shared.ProjectRepository) *ticketService {
	return &ticketService{
		ticketRepository:  ticketRepository,
		projectRepository: projectRepository,
	}
}

var _ shared.TicketService = &ticketService{}

// CreateTicket opens the remediation ticket for a freshly linked threat.
func (s *ticketService) CreateTicket(threat models.Threat, artifact models.Artifact) (models.Ticket, error) {
	projectName := ""
	project, err := s.projectRepository.Read(artifact.ProjectID)
	if err != nil {
		// the ticket is still useful without the denormalized name
		slog.Warn("could not resolve project for ticket", "artifactId", artifact.ID, "err", err)
	} else {
		projectName = project.Name
	}

	ticket := models.Ticket{
		Title:       fmt.Sprintf("Remediate %s on %s", threat.Name, artifact.Name),
		Status:      dtos.TicketStatusNotAccepted,
		Priority:    priorityFromScore(threat.Score.Total),
		ThreatID:    threat.ID,
		ProjectName: projectName,
		ArtifactID:  artifact.ID,
	}
	if err := s.ticketRepository.Create(nil, &ticket); err != nil {
		return models.Ticket{}, err
	}
	return ticket, nil
}

func (s *ticketService) QueryTickets(threatIDs []uuid.UUID) ([]models.Ticket, error) {
	return s.ticketRepository.FindByThreatIDs(threatIDs)
}

// UpdateTicketStatus auto-resolves or reopens every ticket targeting the
// threat on the given artifact. The previous status is recorded before each
// transition; a ticket already in the target status is left untouched so the
// transition history stays meaningful.
func (s *ticketService) UpdateTicketStatus(threatID uuid.UUID, artifactID uuid.UUID, resolved bool) error {
	target := dtos.TicketStatusProcessing
	if resolved {
		target = dtos.TicketStatusResolved
	}

	tickets, err := s.ticketRepository.FindByThreatIDs([]uuid.UUID{threatID})
	if err != nil {
		return err
	}
	for _, ticket := range tickets {
		if ticket.ArtifactID != artifactID || ticket.Status == target {
			continue
		}
		ticket.PreviousStatus = ticket.Status
		ticket.Status = target
		if err := s.ticketRepository.Save(nil, &ticket); err != nil {
			return err
		}
	}
	return nil
}

func priorityFromScore(score float64) dtos.TicketPriority {
	switch {
	case score >= 9:
		return dtos.TicketPriorityCritical
	case score >= 7:
		return dtos.TicketPriorityHigh
	case score >= 4:
		return dtos.TicketPriorityMedium
	default:
		return dtos.TicketPriorityLow
	}
}
