// Copyright 2025 stridemap contributors.
// SPDX-License-Identifier: 	AGPL-3.0-or-later

package dtos

// ProjectWorkflowStats aggregates workflow progress over every artifact of a
// project.
type ProjectWorkflowStats struct {
	// PerStepCounts maps workflow step (1..5) to the number of artifacts
	// currently sitting on that step.
	PerStepCounts  map[int]int `json:"perStepCounts"`
	CompletedCount int         `json:"completedCount"`
	TotalCycles    int         `json:"totalCycles"`
	AverageCycles  float64     `json:"averageCycles"`
}

type UpdateTicketStatusRequest struct {
	Status   TicketStatus `json:"status" validate:"required,oneof=notAccepted processing submitted resolved"`
	Assignee *string      `json:"assignee"`
}
