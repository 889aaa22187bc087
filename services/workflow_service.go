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
	"time"

	"github.com/google/uuid"
	"github.com/stridemap-dev/stridemap/database/models"
	"github.com/stridemap-dev/stridemap/dtos"
	"github.com/stridemap-dev/stridemap/monitoring"
	"github.com/stridemap-dev/stridemap/shared"
	"github.com/stridemap-dev/stridemap/statemachine"
	"github.com/stridemap-dev/stridemap/utils"
)

// workflowService drives artifacts through the five workflow steps, possibly
// over multiple cycles. Every transition runs inside a transaction holding a
// row lock on the artifact, so concurrent triggers for the same artifact
// serialize and re-evaluate against fresh state. Triggers for a step the
// artifact is not currently on are no-ops, which makes every caller safe to
// over-trigger.
type workflowService struct {
	artifactRepository shared.ArtifactRepository
	ticketRepository   shared.TicketRepository
	now                func() time.Time
}

func NewWorkflowService(artifactRepository shared.ArtifactRepository, ticketRepository shared.TicketRepository) *workflowService {
	return &workflowService{
		artifactRepository: artifactRepository,
		ticketRepository:   ticketRepository,
		now:                time.Now,
	}
}

var _ shared.WorkflowService = &workflowService{}

func (s *workflowService) UpdateWorkflowStatus(artifactID uuid.UUID, step int) error {
	if step < dtos.WorkflowStepDetection || step > dtos.WorkflowStepVerification {
		return fmt.Errorf("%w: unknown workflow step %d", shared.ErrValidation, step)
	}

	return s.artifactRepository.Transaction(func(tx shared.DB) error {
		artifact, err := s.artifactRepository.ReadWithThreatsLocked(tx, artifactID)
		if err != nil {
			return err
		}

		if artifact.WorkflowCompleted {
			return nil
		}

		cycle := s.ensureActiveCycle(&artifact)
		if cycle.CurrentStep != step {
			return nil
		}

		switch step {
		case dtos.WorkflowStepDetection:
			s.checkDetection(&artifact, cycle)
		case dtos.WorkflowStepClassification:
			s.checkClassification(&artifact, cycle)
		case dtos.WorkflowStepAssignment:
			if err := s.checkAssignment(&artifact, cycle); err != nil {
				return err
			}
		case dtos.WorkflowStepRemediation:
			if err := s.checkRemediation(&artifact, cycle); err != nil {
				return err
			}
		case dtos.WorkflowStepVerification:
			if err := s.checkVerification(&artifact, cycle); err != nil {
				return err
			}
		}

		s.syncCycleState(&artifact, cycle)
		return s.artifactRepository.Save(tx, &artifact)
	})
}

func (s *workflowService) GetWorkflowHistory(artifactID uuid.UUID) ([]models.WorkflowCycle, error) {
	artifact, err := s.artifactRepository.Read(artifactID)
	if err != nil {
		return nil, err
	}
	return artifact.WorkflowCycles, nil
}

// ensureActiveCycle returns the live cycle, initializing cycle #1 lazily on
// the first trigger. It also repairs a cycle counter that diverged from the
// live cycle number, in either direction, in favor of the live cycle.
func (s *workflowService) ensureActiveCycle(artifact *models.Artifact) *models.WorkflowCycle {
	cycle := artifact.ActiveCycle()
	if cycle == nil {
		fresh := statemachine.NewCycle(artifact.WorkflowCyclesCount+1, len(artifact.VulnerabilityList), len(artifact.Threats), s.now())
		cycle = &fresh
		artifact.SetActiveCycle(cycle)
		artifact.WorkflowCyclesCount = fresh.CycleNumber
		artifact.CurrentWorkflowStep = fresh.CurrentStep
		monitoring.WorkflowCyclesStarted.Inc()
	}

	if artifact.WorkflowCyclesCount != cycle.CycleNumber {
		slog.Warn("workflow cycle counter diverged from live cycle, repairing",
			"artifactId", artifact.ID, "counter", artifact.WorkflowCyclesCount, "cycle", cycle.CycleNumber)
		artifact.WorkflowCyclesCount = cycle.CycleNumber
		monitoring.ConsistencyRepairs.Inc()
	}
	return cycle
}

// syncCycleState writes the mutated cycle back into both storage locations
// and heals any divergence between them.
func (s *workflowService) syncCycleState(artifact *models.Artifact, cycle *models.WorkflowCycle) {
	history, healed := statemachine.SyncCycleHistory(artifact.WorkflowCycles, *cycle)
	if healed {
		slog.Warn("workflow cycle history diverged from live cycle, repaired",
			"artifactId", artifact.ID, "cycle", cycle.CycleNumber)
		monitoring.ConsistencyRepairs.Inc()
	}
	artifact.WorkflowCycles = history
	artifact.SetActiveCycle(cycle)
	artifact.CurrentWorkflowStep = cycle.CurrentStep
}

func (s *workflowService) advance(artifact *models.Artifact, cycle *models.WorkflowCycle) {
	monitoring.WorkflowStepAdvances.WithLabelValues(fmt.Sprint(cycle.CurrentStep)).Inc()
	cycle.CurrentStep++
	slog.Info("workflow step advanced",
		"artifactId", artifact.ID, "cycle", cycle.CycleNumber, "step", cycle.CurrentStep)
}

func (s *workflowService) checkDetection(artifact *models.Artifact, cycle *models.WorkflowCycle) {
	cycle.Detection.NumberVuls = len(artifact.VulnerabilityList)
	cycle.Detection.ListVuls = artifact.VulnerabilityList
	if !statemachine.DetectionComplete(*artifact) {
		return
	}
	cycle.Detection.CompletedAt = utils.Ptr(s.now())
	s.advance(artifact, cycle)
}

func (s *workflowService) checkClassification(artifact *models.Artifact, cycle *models.WorkflowCycle) {
	cycle.Classification.NumberThreats = len(artifact.Threats)
	cycle.Classification.ListThreats = threatIDs(artifact.Threats)

	switch statemachine.ClassifyStepOutcome(len(artifact.Threats), len(artifact.VulnerabilityList)) {
	case statemachine.ClassificationAdvance:
		cycle.Classification.CompletedAt = utils.Ptr(s.now())
		s.advance(artifact, cycle)
	case statemachine.ClassificationTerminal:
		// nothing detected and nothing to classify: the whole workflow is
		// done without ever reaching assignment
		cycle.Classification.CompletedAt = utils.Ptr(s.now())
		s.completeWorkflow(artifact, cycle)
	case statemachine.ClassificationWaiting:
	}
}

func (s *workflowService) checkAssignment(artifact *models.Artifact, cycle *models.WorkflowCycle) error {
	tickets, err := s.ticketRepository.FindByArtifactID(artifact.ID)
	if err != nil {
		return err
	}

	// counts are re-snapshotted on every trigger so the cycle document
	// reflects the latest ticket state even while the step stays open
	assigned := utils.Count(tickets, func(t models.Ticket) bool {
		return t.Status != dtos.TicketStatusNotAccepted
	})
	cycle.Assignment.NumberTicketsAssigned = assigned
	cycle.Assignment.NumberTicketsNotAssigned = len(tickets) - assigned
	cycle.Assignment.ListTickets = ticketIDs(tickets)

	if !statemachine.AssignmentComplete(tickets) {
		return nil
	}
	cycle.Assignment.CompletedAt = utils.Ptr(s.now())
	s.advance(artifact, cycle)
	return nil
}

func (s *workflowService) checkRemediation(artifact *models.Artifact, cycle *models.WorkflowCycle) error {
	tickets, err := s.ticketRepository.FindByArtifactID(artifact.ID)
	if err != nil {
		return err
	}

	submitted := utils.Count(tickets, func(t models.Ticket) bool {
		return t.Status == dtos.TicketStatusSubmitted || t.Status == dtos.TicketStatusResolved
	})
	resolved := utils.Count(tickets, func(t models.Ticket) bool {
		return t.Status == dtos.TicketStatusResolved
	})
	cycle.Remediation.NumberTicketsSubmitted = submitted
	cycle.Remediation.NumberTicketsNotSubmitted = len(tickets) - submitted
	cycle.Remediation.NumberThreatsResolved = resolved
	cycle.Remediation.ListTickets = ticketIDs(tickets)

	if !statemachine.RemediationComplete(tickets) {
		return nil
	}
	cycle.Remediation.CompletedAt = utils.Ptr(s.now())
	s.advance(artifact, cycle)
	return nil
}

func (s *workflowService) checkVerification(artifact *models.Artifact, cycle *models.WorkflowCycle) error {
	// the restart-vs-terminate decision needs a settled vulnerability list.
	// While a rescan is in flight the trigger fires again after
	// reconciliation.
	if artifact.IsScanning {
		return nil
	}

	tickets, err := s.ticketRepository.FindByArtifactID(artifact.ID)
	if err != nil {
		return err
	}

	resolved, returned := statemachine.VerificationCounts(tickets)
	cycle.Verification.NumberTicketsResolved = resolved
	cycle.Verification.NumberTicketsReturnedToProcessing = returned
	cycle.Verification.CompletedAt = utils.Ptr(s.now())
	monitoring.WorkflowStepAdvances.WithLabelValues(fmt.Sprint(cycle.CurrentStep)).Inc()

	if statemachine.NeedsNewCycle(returned, len(artifact.VulnerabilityList)) {
		s.startNextCycle(artifact, cycle)
		return nil
	}
	s.completeWorkflow(artifact, cycle)
	return nil
}

// startNextCycle finalizes the live cycle into the history and begins the
// next one back at detection.
func (s *workflowService) startNextCycle(artifact *models.Artifact, cycle *models.WorkflowCycle) {
	now := s.now()
	cycle.CompletedAt = &now
	history, _ := statemachine.SyncCycleHistory(artifact.WorkflowCycles, *cycle)
	artifact.WorkflowCycles = history

	next := statemachine.NewCycle(cycle.CycleNumber+1, len(artifact.VulnerabilityList), len(artifact.Threats), now)
	*cycle = next
	artifact.WorkflowCyclesCount = next.CycleNumber
	monitoring.WorkflowCyclesStarted.Inc()
	slog.Info("workflow restarting for new cycle", "artifactId", artifact.ID, "cycle", next.CycleNumber)
}

func (s *workflowService) completeWorkflow(artifact *models.Artifact, cycle *models.WorkflowCycle) {
	cycle.CompletedAt = utils.Ptr(s.now())
	artifact.WorkflowCompleted = true
	monitoring.WorkflowsCompleted.Inc()
	slog.Info("workflow completed", "artifactId", artifact.ID, "cycles", cycle.CycleNumber)
}

func threatIDs(threats []models.Threat) []uuid.UUID {
	return utils.Map(threats, func(t models.Threat) uuid.UUID { return t.ID })
}

func ticketIDs(tickets []models.Ticket) []uuid.UUID {
	return utils.Map(tickets, func(t models.Ticket) uuid.UUID { return t.ID })
}
