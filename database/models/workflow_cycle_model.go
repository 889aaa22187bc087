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

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/stridemap-dev/stridemap/dtos"
)

// WorkflowCycle is one pass of an artifact through the five workflow steps.
// It is embedded into the artifact document twice: as the live, mutable
// CurrentWorkflowCycle and mirrored by cycle number into the WorkflowCycles
// history. The engine keeps both in sync and heals any divergence in favor
// of the live cycle.
type WorkflowCycle struct {
	CycleNumber int        `json:"cycleNumber"`
	CurrentStep int        `json:"currentStep"`
	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	Detection      DetectionStep      `json:"detection"`
	Classification ClassificationStep `json:"classification"`
	Assignment     AssignmentStep     `json:"assignment"`
	Remediation    RemediationStep    `json:"remediation"`
	Verification   VerificationStep   `json:"verification"`
}

type DetectionStep struct {
	NumberVuls  int                  `json:"numberVuls"`
	ListVuls    []dtos.Vulnerability `json:"listVuls,omitempty"`
	CompletedAt *time.Time           `json:"completedAt,omitempty"`
}

type ClassificationStep struct {
	NumberThreats int         `json:"numberThreats"`
	ListThreats   []uuid.UUID `json:"listThreats,omitempty"`
	CompletedAt   *time.Time  `json:"completedAt,omitempty"`
}

type AssignmentStep struct {
	NumberTicketsAssigned    int         `json:"numberTicketsAssigned"`
	NumberTicketsNotAssigned int         `json:"numberTicketsNotAssigned"`
	ListTickets              []uuid.UUID `json:"listTickets,omitempty"`
	CompletedAt              *time.Time  `json:"completedAt,omitempty"`
}

type RemediationStep struct {
	NumberTicketsSubmitted    int         `json:"numberTicketsSubmitted"`
	NumberTicketsNotSubmitted int         `json:"numberTicketsNotSubmitted"`
	NumberThreatsResolved     int         `json:"numberThreatsResolved"`
	ListTickets               []uuid.UUID `json:"listTickets,omitempty"`
	CompletedAt               *time.Time  `json:"completedAt,omitempty"`
}

type VerificationStep struct {
	NumberTicketsResolved             int        `json:"numberTicketsResolved"`
	NumberTicketsReturnedToProcessing int        `json:"numberTicketsReturnedToProcessing"`
	CompletedAt                       *time.Time `json:"completedAt,omitempty"`
}
