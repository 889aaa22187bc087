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
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stridemap-dev/stridemap/database/models"
	"github.com/stridemap-dev/stridemap/dtos"
	"github.com/stridemap-dev/stridemap/shared"
	"github.com/stridemap-dev/stridemap/utils"
)

type recordingReconciler struct {
	calls atomic.Int32
	err   error
	last  models.Artifact
	mu    sync.Mutex
}

func (r *recordingReconciler) ReconcileScanResult(artifact models.Artifact) error {
	r.calls.Add(1)
	r.mu.Lock()
	r.last = artifact
	r.mu.Unlock()
	return r.err
}

func newAggregatorFixture(t *testing.T) (*fakeStore, models.Artifact, *recordingReconciler, shared.ScanAggregator) {
	t.Helper()
	store := newFakeStore()
	project := store.addProject("acme")
	artifact := store.addArtifact(project.ID, "billing-service")
	reconciler := &recordingReconciler{}
	aggregator := NewScanAggregatorService(&fakeArtifactRepository{store: store}, &fakeScannerRepository{store: store}, reconciler)
	return store, artifact, reconciler, aggregator
}

func TestBeginScan(t *testing.T) {
	t.Run("should arm the scan fields", func(t *testing.T) {
		store, artifact, _, aggregator := newAggregatorFixture(t)

		err := aggregator.BeginScan(artifact.ID, 3)

		assert.NoError(t, err)
		updated := store.artifacts[artifact.ID]
		assert.True(t, updated.IsScanning)
		assert.Equal(t, 3, updated.TotalScanners)
		assert.Equal(t, 0, updated.ScannersCompleted)
		assert.Empty(t, updated.TempVuls)
	})

	t.Run("should reject a second begin while scanning", func(t *testing.T) {
		_, artifact, _, aggregator := newAggregatorFixture(t)

		assert.NoError(t, aggregator.BeginScan(artifact.ID, 2))
		err := aggregator.BeginScan(artifact.ID, 2)

		assert.True(t, shared.IsValidation(err))
	})

	t.Run("should fall back to the enabled scanner count", func(t *testing.T) {
		store, artifact, _, aggregator := newAggregatorFixture(t)
		scannerRepo := &fakeScannerRepository{store: store}
		assert.NoError(t, scannerRepo.Create(nil, &models.Scanner{Name: "trivy", Kind: "sca", Enabled: true}))
		assert.NoError(t, scannerRepo.Create(nil, &models.Scanner{Name: "zap", Kind: "dast", Enabled: false}))

		err := aggregator.BeginScan(artifact.ID, 0)

		assert.NoError(t, err)
		assert.Equal(t, 1, store.artifacts[artifact.ID].TotalScanners)
	})

	t.Run("should reject when no scanners are registered", func(t *testing.T) {
		_, artifact, _, aggregator := newAggregatorFixture(t)

		err := aggregator.BeginScan(artifact.ID, 0)

		assert.True(t, shared.IsValidation(err))
	})

	t.Run("should reject negative scanner counts", func(t *testing.T) {
		_, artifact, _, aggregator := newAggregatorFixture(t)

		err := aggregator.BeginScan(artifact.ID, -1)

		assert.True(t, shared.IsValidation(err))
	})
}

func TestSubmitScannerResult(t *testing.T) {
	t.Run("should reject a submission without a running scan", func(t *testing.T) {
		_, artifact, _, aggregator := newAggregatorFixture(t)

		_, err := aggregator.SubmitScannerResult(artifact.ID, dtos.ScannerResultRequest{ScannerName: "trivy"})

		assert.True(t, shared.IsValidation(err))
	})

	t.Run("should stage partial results without reconciling", func(t *testing.T) {
		_, artifact, reconciler, aggregator := newAggregatorFixture(t)
		assert.NoError(t, aggregator.BeginScan(artifact.ID, 2))

		status, err := aggregator.SubmitScannerResult(artifact.ID, dtos.ScannerResultRequest{
			ScannerName:     "trivy",
			Vulnerabilities: []dtos.Vulnerability{{CVEID: "CVE-1", Severity: dtos.SeverityHigh}},
		})

		assert.NoError(t, err)
		assert.True(t, status.IsScanning)
		assert.Equal(t, 1, status.ScannersCompleted)
		assert.Equal(t, 2, status.TotalScanners)
		assert.Equal(t, int32(0), reconciler.calls.Load())
	})

	t.Run("should merge duplicate findings first seen wins and reconcile once", func(t *testing.T) {
		_, artifact, reconciler, aggregator := newAggregatorFixture(t)
		assert.NoError(t, aggregator.BeginScan(artifact.ID, 2))

		_, err := aggregator.SubmitScannerResult(artifact.ID, dtos.ScannerResultRequest{
			ScannerName:     "trivy",
			Vulnerabilities: []dtos.Vulnerability{{CVEID: "CVE-1", Description: "first"}},
		})
		assert.NoError(t, err)

		status, err := aggregator.SubmitScannerResult(artifact.ID, dtos.ScannerResultRequest{
			ScannerName: "grype",
			Vulnerabilities: []dtos.Vulnerability{
				{CVEID: "CVE-1", Description: "second"},
				{CVEID: "CVE-2"},
			},
		})

		assert.NoError(t, err)
		assert.False(t, status.IsScanning)
		assert.Equal(t, int32(1), reconciler.calls.Load())
		assert.Equal(t, 2, len(reconciler.last.TempVuls))
		assert.Equal(t, "first", reconciler.last.TempVuls[0].Description)
	})

	t.Run("should make an insecure verdict stick for the whole cycle", func(t *testing.T) {
		store, artifact, _, aggregator := newAggregatorFixture(t)
		assert.NoError(t, aggregator.BeginScan(artifact.ID, 2))

		_, err := aggregator.SubmitScannerResult(artifact.ID, dtos.ScannerResultRequest{ScannerName: "a", State: dtos.ArtifactStateS1})
		assert.NoError(t, err)
		_, err = aggregator.SubmitScannerResult(artifact.ID, dtos.ScannerResultRequest{ScannerName: "b", State: dtos.ArtifactStateS3})
		assert.NoError(t, err)

		assert.Equal(t, dtos.ArtifactStateS1, store.artifacts[artifact.ID].State)
	})

	t.Run("should not lose findings under concurrent submissions", func(t *testing.T) {
		_, artifact, reconciler, aggregator := newAggregatorFixture(t)
		const scanners = 8
		assert.NoError(t, aggregator.BeginScan(artifact.ID, scanners))

		var wg sync.WaitGroup
		for i := 0; i < scanners; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				_, err := aggregator.SubmitScannerResult(artifact.ID, dtos.ScannerResultRequest{
					ScannerName:     fmt.Sprintf("scanner-%d", n),
					Vulnerabilities: []dtos.Vulnerability{{CVEID: fmt.Sprintf("CVE-2024-%04d", n)}},
				})
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()

		assert.Equal(t, int32(1), reconciler.calls.Load())
		assert.Equal(t, scanners, len(reconciler.last.TempVuls))
	})

	t.Run("should surface reconciliation failure and keep the staged findings", func(t *testing.T) {
		store, artifact, reconciler, aggregator := newAggregatorFixture(t)
		reconciler.err = assert.AnError
		assert.NoError(t, aggregator.BeginScan(artifact.ID, 1))

		_, err := aggregator.SubmitScannerResult(artifact.ID, dtos.ScannerResultRequest{
			ScannerName:     "trivy",
			Vulnerabilities: []dtos.Vulnerability{{CVEID: "CVE-1"}},
		})

		assert.Error(t, err)
		updated := store.artifacts[artifact.ID]
		assert.False(t, updated.IsScanning)
		assert.Equal(t, 1, len(updated.TempVuls))
	})

	t.Run("should allow a fresh scan cycle after completion", func(t *testing.T) {
		_, artifact, reconciler, aggregator := newAggregatorFixture(t)
		assert.NoError(t, aggregator.BeginScan(artifact.ID, 1))
		_, err := aggregator.SubmitScannerResult(artifact.ID, dtos.ScannerResultRequest{ScannerName: "trivy"})
		assert.NoError(t, err)

		assert.NoError(t, aggregator.BeginScan(artifact.ID, 1))
		_, err = aggregator.SubmitScannerResult(artifact.ID, dtos.ScannerResultRequest{
			ScannerName:     "trivy",
			Vulnerabilities: []dtos.Vulnerability{{CVEID: "CVE-9"}},
		})

		assert.NoError(t, err)
		assert.Equal(t, int32(2), reconciler.calls.Load())
		assert.Equal(t, []string{"CVE-9"}, utils.Map([]dtos.Vulnerability(reconciler.last.TempVuls), func(v dtos.Vulnerability) string { return v.CVEID }))
	})
}

func TestForceFinishScan(t *testing.T) {
	t.Run("should reconcile the findings staged before the crash", func(t *testing.T) {
		store, artifact, reconciler, aggregator := newAggregatorFixture(t)
		assert.NoError(t, aggregator.BeginScan(artifact.ID, 3))
		_, err := aggregator.SubmitScannerResult(artifact.ID, dtos.ScannerResultRequest{
			ScannerName:     "trivy",
			Vulnerabilities: []dtos.Vulnerability{{CVEID: "CVE-1"}},
		})
		assert.NoError(t, err)

		// the two remaining scanners never report
		assert.NoError(t, aggregator.ForceFinishScan(artifact.ID))

		assert.Equal(t, int32(1), reconciler.calls.Load())
		assert.Equal(t, 1, len(reconciler.last.TempVuls))
		assert.False(t, store.artifacts[artifact.ID].IsScanning)
	})

	t.Run("should reject force finishing without a running scan", func(t *testing.T) {
		_, artifact, reconciler, aggregator := newAggregatorFixture(t)

		err := aggregator.ForceFinishScan(artifact.ID)

		assert.True(t, shared.IsValidation(err))
		assert.Equal(t, int32(0), reconciler.calls.Load())
	})
}
