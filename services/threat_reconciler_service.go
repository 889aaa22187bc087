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
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/stridemap-dev/stridemap/database/models"
	"github.com/stridemap-dev/stridemap/dtos"
	"github.com/stridemap-dev/stridemap/monitoring"
	"github.com/stridemap-dev/stridemap/shared"
	"github.com/stridemap-dev/stridemap/statemachine"
	"github.com/stridemap-dev/stridemap/utils"
	"gorm.io/datatypes"
)

// ThreatScoreFunc derives the DREAD sub-scores of a synthesized threat from
// its originating vulnerability. The scoring formula is deliberately
// pluggable.
type ThreatScoreFunc func(vuln dtos.Vulnerability) models.ThreatScore

// DefaultThreatScore spreads the CVSS base score uniformly over the five
// sub-scores, falling back to a severity derived value when no score is
// available.
func DefaultThreatScore(vuln dtos.Vulnerability) models.ThreatScore {
	base := utils.OrDefault(vuln.Score, severityFallbackScore(vuln.Severity))
	return models.ThreatScore{
		Damage:          base,
		Reproducibility: base,
		Exploitability:  base,
		AffectedUsers:   base,
		Discoverability: base,
	}
}

func severityFallbackScore(severity dtos.Severity) float64 {
	switch severity {
	case dtos.SeverityCritical:
		return 9.5
	case dtos.SeverityHigh:
		return 8.0
	case dtos.SeverityMedium:
		return 5.5
	case dtos.SeverityLow:
		return 2.5
	default:
		return 0
	}
}

// threatReconcilerService turns the staged vulnerability set of a finished
// scan into the artifact's new threat and vulnerability lists, creating and
// resolving threats and tickets on the way, and finally hands the artifact
// to the workflow engine. Only one reconciliation runs per artifact at a
// time, guaranteed by the aggregator's single completion trigger per scan
// cycle.
type threatReconcilerService struct {
	artifactRepository    shared.ArtifactRepository
	threatRepository      shared.ThreatRepository
	scanHistoryRepository shared.ScanHistoryRepository
	ticketService         shared.TicketService
	classifier            shared.ThreatClassifier
	workflowService       shared.WorkflowService
	scoreFunc             ThreatScoreFunc
}

func NewThreatReconcilerService(artifactRepository shared.ArtifactRepository, threatRepository shared.ThreatRepository, scanHistoryRepository shared.ScanHistoryRepository, ticketService shared.TicketService, classifier shared.ThreatClassifier, workflowService shared.WorkflowService) *threatReconcilerService {
	return &threatReconcilerService{
		artifactRepository:    artifactRepository,
		threatRepository:      threatRepository,
		scanHistoryRepository: scanHistoryRepository,
		ticketService:         ticketService,
		classifier:            classifier,
		workflowService:       workflowService,
		scoreFunc:             DefaultThreatScore,
	}
}

var _ shared.ThreatReconciler = &threatReconcilerService{}

func (s *threatReconcilerService) ReconcileScanResult(artifact models.Artifact) error {
	start := time.Now()
	defer func() {
		monitoring.ReconcileDuration.Observe(time.Since(start).Seconds())
	}()

	// re-read with the threat links; the aggregator handed us the bare row
	artifact, err := s.artifactRepository.ReadWithThreats(artifact.ID)
	if err != nil {
		return err
	}
	revision := artifact.ScanRevision

	merged := []dtos.Vulnerability(artifact.TempVuls)
	priorThreats := make([]models.Threat, len(artifact.Threats))
	copy(priorThreats, artifact.Threats)

	// Pass 1 runs before pass 2 on purpose: a vulnerability that persists
	// across the rescan must never be transiently flagged as resolved.
	diff := statemachine.DiffScanResults(artifact.VulnerabilityList, merged)
	for _, vuln := range diff.New {
		if err := s.adoptVulnerability(&artifact, vuln); err != nil {
			return err
		}
	}

	// Pass 2 reconciles the threats that predate this scan against the
	// current findings.
	currentSet := statemachine.NewVulnSet(merged)
	persisting, stale := utils.Partition(priorThreats, func(t models.Threat) bool {
		return currentSet.Contains(t.Name)
	})
	for _, threat := range persisting {
		if err := s.ticketService.UpdateTicketStatus(threat.ID, artifact.ID, false); err != nil {
			slog.Error("could not reopen tickets for persisting threat", "threat", threat.Name, "err", err)
		}
	}
	for _, threat := range stale {
		// no matching finding anymore: resolve the tickets and unlink the
		// threat. The threat and ticket rows are retained for audit.
		if err := s.ticketService.UpdateTicketStatus(threat.ID, artifact.ID, true); err != nil {
			slog.Error("could not resolve tickets for stale threat", "threat", threat.Name, "err", err)
		}
		if err := s.artifactRepository.UnlinkThreat(nil, &artifact, threat); err != nil {
			return err
		}
		artifact.Threats = utils.Filter(artifact.Threats, func(t models.Threat) bool {
			return t.ID != threat.ID
		})
	}

	// audit snapshot, then promote the staged findings
	history := models.ScanHistory{
		ArtifactID:      artifact.ID,
		Vulnerabilities: datatypes.NewJSONSlice(merged),
	}
	if err := s.scanHistoryRepository.Create(nil, &history); err != nil {
		return err
	}

	// The promotion is a targeted conditional write, never a full row save:
	// the workflow engine may commit cycle transitions for this artifact
	// while the reconciliation is in flight, and those must survive.
	if err := s.artifactRepository.FinalizeScanResult(nil, artifact.ID, revision, merged); err != nil {
		return err
	}

	for _, step := range []int{dtos.WorkflowStepDetection, dtos.WorkflowStepClassification, dtos.WorkflowStepAssignment} {
		if err := s.workflowService.UpdateWorkflowStatus(artifact.ID, step); err != nil {
			return err
		}
	}
	return nil
}

// adoptVulnerability links a threat for a newly detected vulnerability,
// reusing an existing threat with the same name before synthesizing a new
// one, and opens exactly one ticket for a fresh link.
func (s *threatReconcilerService) adoptVulnerability(artifact *models.Artifact, vuln dtos.Vulnerability) error {
	threat, err := s.threatRepository.FindByName(vuln.CVEID)
	if shared.IsNotFound(err) {
		threat = s.synthesizeThreat(vuln)
		if err := s.threatRepository.Create(nil, &threat); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	if threatLinked(*artifact, threat.ID) {
		return nil
	}

	if err := s.artifactRepository.LinkThreat(nil, artifact, threat); err != nil {
		return err
	}
	artifact.Threats = append(artifact.Threats, threat)

	if _, err := s.ticketService.CreateTicket(threat, *artifact); err != nil {
		// external collaborator failure: keep going with partial data, the
		// next reconciliation converges
		slog.Error("could not create ticket for threat", "threat", threat.Name, "err", err)
	}
	return nil
}

func (s *threatReconcilerService) synthesizeThreat(vuln dtos.Vulnerability) models.Threat {
	category, confidence := s.classifier.Classify(vuln)
	slog.Debug("classified vulnerability", "cveId", vuln.CVEID, "category", category, "confidence", confidence)

	return models.Threat{
		Name:        vuln.CVEID,
		Description: vuln.Description,
		Type:        category,
		Status:      dtos.ThreatStatusNonMitigated,
		Score:       s.scoreFunc(vuln),
	}
}

func threatLinked(artifact models.Artifact, threatID uuid.UUID) bool {
	return utils.Any(artifact.Threats, func(t models.Threat) bool {
		return t.ID == threatID
	})
}
