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

package statemachine

import (
	"reflect"
	"time"

	"github.com/stridemap-dev/stridemap/database/models"
	"github.com/stridemap-dev/stridemap/dtos"
	"github.com/stridemap-dev/stridemap/utils"
)

// NewCycle initializes workflow cycle number n at step 1, pre-populated
// with the artifact's current vulnerability and threat counts.
func NewCycle(n int, vulnCount int, threatCount int, now time.Time) models.WorkflowCycle {
	return models.WorkflowCycle{
		CycleNumber: n,
		CurrentStep: dtos.WorkflowStepDetection,
		StartedAt:   now,
		Detection: models.DetectionStep{
			NumberVuls: vulnCount,
		},
		Classification: models.ClassificationStep{
			NumberThreats: threatCount,
		},
	}
}

// SyncCycleHistory enforces the mirror invariant between the live cycle and
// the history: the history must contain exactly one entry with the live
// cycle's number, structurally identical to it. Any divergence is corrected
// in favor of the live cycle. The returned bool reports whether a repair
// was necessary.
func SyncCycleHistory(history []models.WorkflowCycle, current models.WorkflowCycle) ([]models.WorkflowCycle, bool) {
	healed := false
	found := false

	out := make([]models.WorkflowCycle, 0, len(history)+1)
	for _, cycle := range history {
		if cycle.CycleNumber != current.CycleNumber {
			out = append(out, cycle)
			continue
		}
		if found {
			// duplicate entry for the live cycle, drop it
			healed = true
			continue
		}
		found = true
		if !reflect.DeepEqual(cycle, current) {
			healed = true
		}
		out = append(out, current)
	}

	if !found {
		out = append(out, current)
		healed = true
	}

	return out, healed
}

// DetectionComplete: the detection step is done once every scanner reported.
func DetectionComplete(artifact models.Artifact) bool {
	return !artifact.IsScanning
}

// ClassificationOutcome is the decision of the classification step check.
type ClassificationOutcome int

const (
	// ClassificationWaiting - no threats yet, but vulnerabilities remain;
	// stay on the step.
	ClassificationWaiting ClassificationOutcome = iota
	// ClassificationAdvance - threats exist, move on to assignment.
	ClassificationAdvance
	// ClassificationTerminal - nothing to classify and nothing detected;
	// the whole workflow is complete.
	ClassificationTerminal
)

func ClassifyStepOutcome(threatCount int, vulnCount int) ClassificationOutcome {
	if threatCount > 0 {
		return ClassificationAdvance
	}
	if vulnCount == 0 {
		return ClassificationTerminal
	}
	return ClassificationWaiting
}

// AssignmentComplete: at least one ticket left the initial state.
func AssignmentComplete(tickets []models.Ticket) bool {
	return utils.Any(tickets, func(t models.Ticket) bool {
		return t.Status != dtos.TicketStatusNotAccepted
	})
}

// RemediationComplete: at least one ticket was submitted or resolved.
func RemediationComplete(tickets []models.Ticket) bool {
	return utils.Any(tickets, func(t models.Ticket) bool {
		return t.Status == dtos.TicketStatusSubmitted || t.Status == dtos.TicketStatusResolved
	})
}

// VerificationCounts tallies the resolved tickets and the tickets that went
// back from submitted to processing.
func VerificationCounts(tickets []models.Ticket) (resolved int, returned int) {
	resolved = utils.Count(tickets, func(t models.Ticket) bool {
		return t.Status == dtos.TicketStatusResolved
	})
	returned = utils.Count(tickets, func(t models.Ticket) bool {
		return t.Returned()
	})
	return resolved, returned
}

// NeedsNewCycle is the restart-vs-terminate decision of the verification
// step: another cycle is required while tickets got returned or
// vulnerabilities are still present.
func NeedsNewCycle(returnedTickets int, vulnCount int) bool {
	return returnedTickets > 0 || vulnCount > 0
}
