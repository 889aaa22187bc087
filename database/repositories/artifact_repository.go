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

package repositories

import (
	goerrors "errors"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stridemap-dev/stridemap/database/models"
	"github.com/stridemap-dev/stridemap/dtos"
	"github.com/stridemap-dev/stridemap/shared"
	"github.com/stridemap-dev/stridemap/statemachine"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// scanWriteRetries bounds the optimistic retry loop on the artifact's scan
// fields. Contention on a single artifact is at most one write per scanner
// completion, so a handful of retries is plenty.
const scanWriteRetries = 5

type artifactRepository struct {
	db *gorm.DB
	*GormRepository[uuid.UUID, models.Artifact]
}

func NewArtifactRepository(db *gorm.DB) *artifactRepository {
	return &artifactRepository{
		db:             db,
		GormRepository: newGormRepository[uuid.UUID, models.Artifact](db),
	}
}

var _ shared.ArtifactRepository = &artifactRepository{}

func (r *artifactRepository) ReadWithThreats(id uuid.UUID) (models.Artifact, error) {
	var artifact models.Artifact
	err := r.db.Preload("Threats").First(&artifact, "id = ?", id).Error
	if goerrors.Is(err, gorm.ErrRecordNotFound) {
		return artifact, shared.ErrNotFound
	}
	return artifact, err
}

// ReadWithThreatsLocked takes a FOR UPDATE lock on the artifact row,
// serializing workflow transitions for one artifact while leaving other
// artifacts fully parallel.
func (r *artifactRepository) ReadWithThreatsLocked(tx *gorm.DB, id uuid.UUID) (models.Artifact, error) {
	var artifact models.Artifact
	err := r.GetDB(tx).Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "artifacts"}}).
		Preload("Threats").First(&artifact, "id = ?", id).Error
	if goerrors.Is(err, gorm.ErrRecordNotFound) {
		return artifact, shared.ErrNotFound
	}
	return artifact, err
}

func (r *artifactRepository) GetByProjectID(projectID uuid.UUID) ([]models.Artifact, error) {
	var artifacts []models.Artifact
	err := r.db.Where("project_id = ?", projectID).Order("created_at ASC").Find(&artifacts).Error
	return artifacts, err
}

// Save persists the artifact row without touching the threat association.
// Linking and unlinking threats goes through LinkThreat/UnlinkThreat.
func (r *artifactRepository) Save(tx *gorm.DB, artifact *models.Artifact) error {
	return r.GetDB(tx).Omit(clause.Associations).Save(artifact).Error
}

// StartScan arms the scan fields with a conditional write keyed on the scan
// revision. Re-invocation while a scan is in flight is rejected before any
// mutation.
func (r *artifactRepository) StartScan(id uuid.UUID, totalScanners int) error {
	if totalScanners <= 0 {
		return errors.Wrap(shared.ErrValidation, "totalScanners must be positive")
	}

	for range scanWriteRetries {
		artifact, err := r.Read(id)
		if err != nil {
			return err
		}
		if artifact.IsScanning {
			return errors.Wrap(shared.ErrValidation, "a scan is already in progress for this artifact")
		}

		res := r.db.Model(&models.Artifact{}).
			Where("id = ? AND scan_revision = ?", id, artifact.ScanRevision).
			Updates(map[string]any{
				"is_scanning":        true,
				"scanners_completed": 0,
				"total_scanners":     totalScanners,
				"temp_vuls":          datatypes.NewJSONSlice([]dtos.Vulnerability{}),
				"scan_revision":      artifact.ScanRevision + 1,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 1 {
			return nil
		}
		// lost the race, re-read and try again
	}
	return errors.Wrap(shared.ErrConcurrencyConflict, "could not start scan")
}

// StageScannerResult merges the scanner findings into the staging list and
// increments the completion counter as a single conditional write. Two
// scanners finishing at the same time therefore never lose each other's
// findings: the loser of the revision check retries on top of the winner's
// state. When the increment reaches the expected count the same write also
// flips isScanning off and resets the counters, so the gate fires exactly
// once per scan cycle.
func (r *artifactRepository) StageScannerResult(id uuid.UUID, vulns []dtos.Vulnerability, state dtos.ArtifactState) (models.Artifact, bool, error) {
	for range scanWriteRetries {
		artifact, err := r.Read(id)
		if err != nil {
			return models.Artifact{}, false, err
		}
		if !artifact.IsScanning {
			return models.Artifact{}, false, errors.Wrap(shared.ErrValidation, "no scan in progress for this artifact")
		}

		merged := statemachine.MergeVulnerabilities(artifact.TempVuls, vulns)
		completed := artifact.ScannersCompleted + 1
		allDone := completed >= artifact.TotalScanners

		updates := map[string]any{
			"temp_vuls":     datatypes.NewJSONSlice(merged),
			"scan_revision": artifact.ScanRevision + 1,
		}
		if allDone {
			updates["is_scanning"] = false
			updates["scanners_completed"] = 0
			updates["total_scanners"] = 0
		} else {
			updates["scanners_completed"] = completed
		}
		// an insecure verdict from any scanner sticks for the whole cycle
		if state == dtos.ArtifactStateS1 || (state != "" && artifact.State != dtos.ArtifactStateS1) {
			updates["state"] = state
		}

		res := r.db.Model(&models.Artifact{}).
			Where("id = ? AND scan_revision = ?", id, artifact.ScanRevision).
			Updates(updates)
		if res.Error != nil {
			return models.Artifact{}, false, res.Error
		}
		if res.RowsAffected == 1 {
			artifact.TempVuls = merged
			artifact.ScanRevision++
			if allDone {
				artifact.IsScanning = false
				artifact.ScannersCompleted = 0
				artifact.TotalScanners = 0
			} else {
				artifact.ScannersCompleted = completed
			}
			return artifact, allDone, nil
		}
	}
	return models.Artifact{}, false, errors.Wrap(shared.ErrConcurrencyConflict, "could not stage scanner result")
}

// FinalizeScanResult promotes the staged findings into the confirmed list.
// The write is keyed on the scan revision and touches only the two scan
// list columns: workflow transitions committed by the workflow engine while
// a reconciliation is in flight are never overwritten here. A revision
// mismatch means a new scan armed in the meantime and owns the staging
// area now.
func (r *artifactRepository) FinalizeScanResult(tx *gorm.DB, id uuid.UUID, revision int, vulns []dtos.Vulnerability) error {
	res := r.GetDB(tx).Model(&models.Artifact{}).
		Where("id = ? AND scan_revision = ?", id, revision).
		Updates(map[string]any{
			"vulnerability_list": datatypes.NewJSONSlice(vulns),
			"temp_vuls":          datatypes.NewJSONSlice([]dtos.Vulnerability{}),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.Wrap(shared.ErrConcurrencyConflict, "scan revision changed during reconciliation")
	}
	return nil
}

// ForceFinishScan unconditionally clears the scanning flag. The staged
// findings are left untouched so nothing is lost.
func (r *artifactRepository) ForceFinishScan(id uuid.UUID) error {
	return r.db.Model(&models.Artifact{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"is_scanning":   false,
			"scan_revision": gorm.Expr("scan_revision + 1"),
		}).Error
}

func (r *artifactRepository) LinkThreat(tx *gorm.DB, artifact *models.Artifact, threat models.Threat) error {
	if err := r.GetDB(tx).Model(artifact).Omit("Threats.*").Association("Threats").Append(&threat); err != nil {
		return err
	}
	return nil
}

func (r *artifactRepository) UnlinkThreat(tx *gorm.DB, artifact *models.Artifact, threat models.Threat) error {
	return r.GetDB(tx).Model(artifact).Association("Threats").Delete(&threat)
}
