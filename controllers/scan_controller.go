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

package controllers

import (
	"io"
	"log/slog"

	"github.com/stridemap-dev/stridemap/dtos"
	"github.com/stridemap-dev/stridemap/shared"
)

type ScanController struct {
	scanAggregator shared.ScanAggregator
	adapter        shared.ScannerAdapter
}

func NewScanController(scanAggregator shared.ScanAggregator, adapter shared.ScannerAdapter) *ScanController {
	return &ScanController{
		scanAggregator: scanAggregator,
		adapter:        adapter,
	}
}

// BeginScan arms the artifact for a new scan cycle. While a scan is already
// in flight the request is rejected, the running cycle keeps its expected
// scanner count.
func (c *ScanController) BeginScan(ctx shared.Context) error {
	artifact := shared.GetArtifact(ctx)

	var body dtos.BeginScanRequest
	if err := bindAndValidate(ctx, &body); err != nil {
		return err
	}

	if err := c.scanAggregator.BeginScan(artifact.ID, body.TotalScanners); err != nil {
		return httpError(err, "could not begin scan")
	}
	slog.Info("scan started", "artifactId", artifact.ID, "totalScanners", body.TotalScanners)
	return ctx.NoContent(202)
}

// SubmitResult ingests one scanner's normalized findings.
func (c *ScanController) SubmitResult(ctx shared.Context) error {
	artifact := shared.GetArtifact(ctx)

	var body dtos.ScannerResultRequest
	if err := bindAndValidate(ctx, &body); err != nil {
		return err
	}

	status, err := c.scanAggregator.SubmitScannerResult(artifact.ID, body)
	if err != nil {
		return httpError(err, "could not submit scanner result")
	}
	return ctx.JSON(200, status)
}

// SubmitRawResult ingests raw tool output and runs it through the adapter
// before submission. The scanner name and artifact state come from headers
// so the body can stay the unmodified tool report.
func (c *ScanController) SubmitRawResult(ctx shared.Context) error {
	artifact := shared.GetArtifact(ctx)

	raw, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return httpError(err, "could not read request body")
	}
	defer ctx.Request().Body.Close()

	vulns, err := c.adapter.Adapt(raw)
	if err != nil {
		return httpError(err, "could not parse scanner report")
	}

	result := dtos.ScannerResultRequest{
		ScannerName:     ctx.Request().Header.Get("X-Scanner-Name"),
		Vulnerabilities: vulns,
		State:           dtos.ArtifactState(ctx.Request().Header.Get("X-Artifact-State")),
	}

	status, err := c.scanAggregator.SubmitScannerResult(artifact.ID, result)
	if err != nil {
		return httpError(err, "could not submit scanner result")
	}
	return ctx.JSON(200, status)
}
