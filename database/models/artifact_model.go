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
	"gorm.io/datatypes"
)

// Artifact is the root aggregate of the workflow engine. The scan fields are
// mutated by the aggregator, the threat/vulnerability lists by the
// reconciler and the workflow fields exclusively by the workflow cycle
// engine. The artifact row is the unit of locking: every logical state
// transition for one artifact is serialized through conditional updates on
// its ScanRevision.
type Artifact struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	ProjectID uuid.UUID `json:"projectId" gorm:"not null;type:uuid;index"`
	Project   Project   `json:"-" gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE;"`

	Name    string             `json:"name" gorm:"not null"`
	Type    dtos.ArtifactType  `json:"type" gorm:"not null"`
	URL     string             `json:"url"`
	Version string             `json:"version"`
	CPE     string             `json:"cpe"`
	State   dtos.ArtifactState `json:"state"`

	// VulnerabilityList holds the confirmed findings of the last completed
	// scan cycle. TempVuls stages findings while scanners are still
	// reporting and is cleared once reconciliation consumed it.
	VulnerabilityList datatypes.JSONSlice[dtos.Vulnerability] `json:"vulnerabilityList"`
	TempVuls          datatypes.JSONSlice[dtos.Vulnerability] `json:"tempVuls"`

	Threats []Threat `json:"threatList,omitempty" gorm:"many2many:artifact_threats;"`

	IsScanning        bool `json:"isScanning"`
	ScannersCompleted int  `json:"scannersCompleted"`
	TotalScanners     int  `json:"totalScanners"`
	// ScanRevision backs the optimistic concurrency loop on the scan
	// fields. Incremented on every conditional write.
	ScanRevision int `json:"-"`

	CurrentWorkflowStep  int                                    `json:"currentWorkflowStep"`
	CurrentWorkflowCycle datatypes.JSONType[*WorkflowCycle]     `json:"currentWorkflowCycle"`
	WorkflowCycles       datatypes.JSONSlice[WorkflowCycle]     `json:"workflowCycles"`
	WorkflowCyclesCount  int                                    `json:"workflowCyclesCount"`
	WorkflowCompleted    bool                                   `json:"workflowCompleted"`
}

func (a Artifact) TableName() string {
	return "artifacts"
}

// ActiveCycle returns the live workflow cycle, or nil when no cycle has been
// initialized yet.
func (a *Artifact) ActiveCycle() *WorkflowCycle {
	return a.CurrentWorkflowCycle.Data()
}

func (a *Artifact) SetActiveCycle(c *WorkflowCycle) {
	a.CurrentWorkflowCycle = datatypes.NewJSONType(c)
}
