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

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stridemap-dev/stridemap/dtos"
	"github.com/stridemap-dev/stridemap/monitoring"
	"github.com/stridemap-dev/stridemap/shared"
)

// scanAggregatorService collects partial results from an a-priori unknown
// number of concurrently running scanners. The merge-then-increment is a
// single conditional write per artifact (see the artifact repository), so
// two scanners finishing within the same millisecond cannot lose each
// other's findings. The completion gate fires exactly once and hands the
// staged set to the reconciler.
type scanAggregatorService struct {
	artifactRepository shared.ArtifactRepository
	scannerRepository  shared.ScannerRepository
	reconciler         shared.ThreatReconciler
}

func NewScanAggregatorService(artifactRepository shared.ArtifactRepository, scannerRepository shared.ScannerRepository, reconciler shared.ThreatReconciler) *scanAggregatorService {
	return &scanAggregatorService{
		artifactRepository: artifactRepository,
		scannerRepository:  scannerRepository,
		reconciler:         reconciler,
	}
}

var _ shared.ScanAggregator = &scanAggregatorService{}

// BeginScan arms the scan fields. A totalScanners of zero means "every
// enabled registered scanner".
func (s *scanAggregatorService) BeginScan(artifactID uuid.UUID, totalScanners int) error {
	if totalScanners < 0 {
		return errors.Wrap(shared.ErrValidation, "totalScanners must not be negative")
	}
	if totalScanners == 0 {
		count, err := s.scannerRepository.CountEnabled()
		if err != nil {
			return err
		}
		totalScanners = count
	}
	if totalScanners == 0 {
		return errors.Wrap(shared.ErrValidation, "no scanners registered")
	}

	if err := s.artifactRepository.StartScan(artifactID, totalScanners); err != nil {
		return err
	}
	monitoring.ScansStarted.Inc()
	return nil
}

// SubmitScannerResult merges one scanner's findings into the staging list.
// The call whose increment reaches the expected scanner count runs
// reconciliation. If reconciliation fails the artifact is still not
// scanning (the gate write already cleared the flag) and the staged
// findings are retained, so nothing is lost; the error is surfaced to the
// caller and not retried automatically.
func (s *scanAggregatorService) SubmitScannerResult(artifactID uuid.UUID, result dtos.ScannerResultRequest) (dtos.ScanStatusResponse, error) {
	artifact, allDone, err := s.artifactRepository.StageScannerResult(artifactID, result.Vulnerabilities, result.State)
	if err != nil {
		return dtos.ScanStatusResponse{}, err
	}
	monitoring.ScannerResultsSubmitted.Inc()

	status := dtos.ScanStatusResponse{
		IsScanning:        artifact.IsScanning,
		ScannersCompleted: artifact.ScannersCompleted,
		TotalScanners:     artifact.TotalScanners,
	}

	if !allDone {
		return status, nil
	}

	if err := s.reconciler.ReconcileScanResult(artifact); err != nil {
		monitoring.ReconcileFailures.Inc()
		slog.Error("reconciliation failed after scan completion", "artifactId", artifactID, "err", err)
		// make sure the artifact can never be left permanently scanning,
		// whatever a partial reconciliation did. A concurrency conflict
		// means a newer scan armed in the meantime and owns the flag now.
		if !errors.Is(err, shared.ErrConcurrencyConflict) {
			if finishErr := s.artifactRepository.ForceFinishScan(artifactID); finishErr != nil {
				slog.Error("could not clear scanning flag", "artifactId", artifactID, "err", finishErr)
			}
		}
		return status, err
	}
	return status, nil
}

// ForceFinishScan is the operator escape hatch for an artifact stuck
// scanning because a scanner crashed. It clears the gate and reconciles the
// findings of the scanners that did report, so partial results are not
// lost. Without a scan in flight there is nothing to finish; rejecting that
// case keeps the command from re-reconciling an already promoted (and by
// then empty) staging list as a clean rescan.
func (s *scanAggregatorService) ForceFinishScan(artifactID uuid.UUID) error {
	artifact, err := s.artifactRepository.Read(artifactID)
	if err != nil {
		return err
	}
	if !artifact.IsScanning {
		return errors.Wrap(shared.ErrValidation, "no scan in progress for this artifact")
	}

	if err := s.artifactRepository.ForceFinishScan(artifactID); err != nil {
		return err
	}
	artifact, err = s.artifactRepository.Read(artifactID)
	if err != nil {
		return err
	}
	return s.reconciler.ReconcileScanResult(artifact)
}
