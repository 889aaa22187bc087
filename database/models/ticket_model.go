// Copyright 2025 stridemap contributors.
// SPDX-License-Identifier: 	AGPL-3.0-or-later

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/stridemap-dev/stridemap/dtos"
)

// Ticket is a remediation ticket opened for a threat on a specific artifact.
// PreviousStatus records the status before the last transition, which is how
// the verification step detects "returned to processing" tickets.
type Ticket struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Title          string              `json:"title" gorm:"not null"`
	Assignee       *string             `json:"assignee"`
	Assigner       *string             `json:"assigner"`
	Status         dtos.TicketStatus   `json:"status" gorm:"default:notAccepted"`
	PreviousStatus dtos.TicketStatus   `json:"previousStatus"`
	Priority       dtos.TicketPriority `json:"priority"`

	ThreatID uuid.UUID `json:"targetedThreat" gorm:"not null;type:uuid;index"`
	Threat   Threat    `json:"-" gorm:"foreignKey:ThreatID;constraint:OnDelete:CASCADE;"`

	ProjectName string    `json:"projectName"`
	ArtifactID  uuid.UUID `json:"artifactId" gorm:"not null;type:uuid;index"`
}

func (t Ticket) TableName() string {
	return "tickets"
}

// Returned reports whether the ticket went back from submitted to
// processing, i.e. verification rejected the fix.
func (t Ticket) Returned() bool {
	return t.Status == dtos.TicketStatusProcessing && t.PreviousStatus == dtos.TicketStatusSubmitted
}
