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

package shared

import (
	"context"

	"github.com/google/uuid"
	"github.com/stridemap-dev/stridemap/database/models"
	"github.com/stridemap-dev/stridemap/dtos"
)

type ProjectRepository interface {
	All() ([]models.Project, error)
	Read(id uuid.UUID) (models.Project, error)
	ReadByName(name string) (models.Project, error)
	Create(tx DB, project *models.Project) error
	Delete(tx DB, id uuid.UUID) error
	GetDB(tx DB) DB
}

type ArtifactRepository interface {
	Read(id uuid.UUID) (models.Artifact, error)
	// ReadWithThreats preloads the linked threat rows.
	ReadWithThreats(id uuid.UUID) (models.Artifact, error)
	// ReadWithThreatsLocked additionally takes a row lock on the artifact,
	// serializing concurrent workflow transitions for the same artifact.
	// Must be called inside a transaction.
	ReadWithThreatsLocked(tx DB, id uuid.UUID) (models.Artifact, error)
	GetByProjectID(projectID uuid.UUID) ([]models.Artifact, error)
	Create(tx DB, artifact *models.Artifact) error
	Save(tx DB, artifact *models.Artifact) error
	Delete(tx DB, id uuid.UUID) error
	GetDB(tx DB) DB
	Transaction(fn func(tx DB) error) error

	// StartScan atomically arms the scan fields. It fails with a
	// validation error while a scan is already in flight.
	StartScan(id uuid.UUID, totalScanners int) error
	// StageScannerResult atomically merges the scanner findings into the
	// staging list and increments the completion counter. When the
	// completion gate is reached it also flips isScanning off and resets
	// the counters in the same write. The returned artifact reflects the
	// state after the write; allDone is true exactly once per scan cycle,
	// for the call whose increment reached the expected scanner count.
	StageScannerResult(id uuid.UUID, vulns []dtos.Vulnerability, state dtos.ArtifactState) (artifact models.Artifact, allDone bool, err error)
	// FinalizeScanResult promotes the staged findings into the confirmed
	// vulnerability list with a conditional write keyed on the scan
	// revision. Only the two scan list columns are written, so workflow
	// state committed concurrently stays intact. A revision mismatch
	// means another scan took over the staging area and yields a
	// concurrency conflict.
	FinalizeScanResult(tx DB, id uuid.UUID, revision int, vulns []dtos.Vulnerability) error
	// ForceFinishScan unconditionally clears isScanning. Used on
	// reconciliation failure and by the operator escape hatch so an
	// artifact is never left permanently scanning.
	ForceFinishScan(id uuid.UUID) error

	LinkThreat(tx DB, artifact *models.Artifact, threat models.Threat) error
	UnlinkThreat(tx DB, artifact *models.Artifact, threat models.Threat) error
}

type ThreatRepository interface {
	Read(id uuid.UUID) (models.Threat, error)
	// FindByName looks a threat up by its unique name (the originating CVE
	// id for vulnerability derived threats).
	FindByName(name string) (models.Threat, error)
	Create(tx DB, threat *models.Threat) error
	Save(tx DB, threat *models.Threat) error
	GetDB(tx DB) DB
}

type TicketRepository interface {
	Read(id uuid.UUID) (models.Ticket, error)
	FindByThreatIDs(threatIDs []uuid.UUID) ([]models.Ticket, error)
	FindByArtifactID(artifactID uuid.UUID) ([]models.Ticket, error)
	Create(tx DB, ticket *models.Ticket) error
	Save(tx DB, ticket *models.Ticket) error
	DeleteByArtifactID(tx DB, artifactID uuid.UUID) error
	GetDB(tx DB) DB
}

type ScanHistoryRepository interface {
	Create(tx DB, history *models.ScanHistory) error
	FindByArtifactID(artifactID uuid.UUID) ([]models.ScanHistory, error)
	GetDB(tx DB) DB
}

type ScannerRepository interface {
	All() ([]models.Scanner, error)
	CountEnabled() (int, error)
	Create(tx DB, scanner *models.Scanner) error
	GetDB(tx DB) DB
}

// ScanAggregator is the scan ingestion surface: it collects partial results
// from an a-priori unknown number of concurrently running scanners and
// triggers reconciliation once the last one reported.
type ScanAggregator interface {
	BeginScan(artifactID uuid.UUID, totalScanners int) error
	SubmitScannerResult(artifactID uuid.UUID, result dtos.ScannerResultRequest) (dtos.ScanStatusResponse, error)
	// ForceFinishScan ends a scan whose remaining scanners will never
	// report and reconciles whatever was staged so far.
	ForceFinishScan(artifactID uuid.UUID) error
}

// ThreatReconciler turns the staged vulnerability set of a finished scan
// into threat and ticket mutations and hands the artifact to the workflow
// engine.
type ThreatReconciler interface {
	ReconcileScanResult(artifact models.Artifact) error
}

type WorkflowService interface {
	// UpdateWorkflowStatus re-evaluates the completion predicate of the
	// given step. Idempotent: calling it for a step the artifact is not
	// currently on is a no-op.
	UpdateWorkflowStatus(artifactID uuid.UUID, step int) error
	GetWorkflowHistory(artifactID uuid.UUID) ([]models.WorkflowCycle, error)
}

// TicketService is the ticket collaborator consumed by the reconciler and
// the workflow engine.
type TicketService interface {
	CreateTicket(threat models.Threat, artifact models.Artifact) (models.Ticket, error)
	QueryTickets(threatIDs []uuid.UUID) ([]models.Ticket, error)
	// UpdateTicketStatus auto-resolves (resolved=true) or reopens to
	// processing (resolved=false) every ticket targeting the threat on the
	// given artifact.
	UpdateTicketStatus(threatID uuid.UUID, artifactID uuid.UUID, resolved bool) error
}

type StatisticsService interface {
	GetProjectWorkflowStats(projectID uuid.UUID) (dtos.ProjectWorkflowStats, error)
	GetArtifactsByWorkflowStep(projectID uuid.UUID, step *int) ([]models.Artifact, error)
}

// ThreatClassifier assigns a STRIDE category to a vulnerability. Pure and
// deterministic; the rule tables are injected, not read from disk.
type ThreatClassifier interface {
	Classify(vuln dtos.Vulnerability) (dtos.ThreatType, float64)
}

// ScannerAdapter normalizes raw tool output into the common vulnerability
// shape. One implementation per tool family.
type ScannerAdapter interface {
	Adapt(raw []byte) ([]dtos.Vulnerability, error)
}

// EnrichmentService looks up CVE details. Best effort: a nil result with a
// nil error means the CVE is unknown upstream.
type EnrichmentService interface {
	Lookup(ctx context.Context, cveID string) (*dtos.Enrichment, error)
}

// FireAndForgetSynchronizer mirrors utils.FireAndForgetSynchronizer for
// consumers that only import shared.
type FireAndForgetSynchronizer interface {
	FireAndForget(fn func())
}
