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

package normalize

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"github.com/stridemap-dev/stridemap/dtos"
)

// rawFinding covers the field spellings the supported tool families emit.
type rawFinding struct {
	CVEID       string   `json:"cveId"`
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Title       string   `json:"title"`
	Severity    string   `json:"severity"`
	Score       *float64 `json:"score"`
	CVSSVector  *string  `json:"cvssVector"`
	Vector      *string  `json:"vector"`
	CWEs        []string `json:"cwes"`
}

// EnrichmentLookup fills gaps in raw scanner output. Best effort: a nil
// result means no data.
type EnrichmentLookup interface {
	Lookup(ctx context.Context, cveID string) (*dtos.Enrichment, error)
}

// JSONAdapter normalizes the generic JSON finding format into the common
// vulnerability shape, using the enrichment service to fill missing CVSS
// fields. Enrichment failures degrade to null fields, they never fail the
// adaptation.
type JSONAdapter struct {
	enrichment EnrichmentLookup
}

func NewJSONAdapter(enrichment EnrichmentLookup) *JSONAdapter {
	return &JSONAdapter{enrichment: enrichment}
}

func (a *JSONAdapter) Adapt(raw []byte) ([]dtos.Vulnerability, error) {
	var findings []rawFinding
	if err := json.Unmarshal(raw, &findings); err != nil {
		return nil, errors.Wrap(err, "could not parse scanner output")
	}

	vulns := make([]dtos.Vulnerability, 0, len(findings))
	for _, finding := range findings {
		vuln := a.normalize(finding)
		if vuln.CVEID == "" {
			continue
		}
		vulns = append(vulns, vuln)
	}
	return vulns, nil
}

func (a *JSONAdapter) normalize(finding rawFinding) dtos.Vulnerability {
	vuln := dtos.Vulnerability{
		CVEID:       finding.CVEID,
		Description: finding.Description,
		Severity:    Severity(finding.Severity),
		Score:       finding.Score,
		CVSSVector:  finding.CVSSVector,
		CWEs:        finding.CWEs,
	}
	if vuln.CVEID == "" {
		vuln.CVEID = finding.ID
	}
	if vuln.Description == "" {
		vuln.Description = finding.Title
	}
	if vuln.CVSSVector == nil {
		vuln.CVSSVector = finding.Vector
	}

	a.fillGaps(&vuln)

	if vuln.Score == nil && vuln.CVSSVector != nil {
		vuln.Score = ScoreFromVector(*vuln.CVSSVector)
	}
	if vuln.Severity == dtos.SeverityUnknown && vuln.Score != nil {
		vuln.Severity = SeverityFromScore(*vuln.Score)
	}
	if vuln.Score != nil && (*vuln.Score < 0 || *vuln.Score > 10) {
		vuln.Score = nil
	}
	return vuln
}

func (a *JSONAdapter) fillGaps(vuln *dtos.Vulnerability) {
	if a.enrichment == nil {
		return
	}
	if vuln.Score != nil && vuln.CVSSVector != nil && len(vuln.CWEs) > 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	enrichment, err := a.enrichment.Lookup(ctx, vuln.CVEID)
	if err != nil {
		slog.Warn("cve enrichment lookup failed", "cveId", vuln.CVEID, "err", err)
		return
	}
	if enrichment == nil {
		return
	}
	if vuln.Score == nil {
		vuln.Score = enrichment.Score
	}
	if vuln.CVSSVector == nil {
		vuln.CVSSVector = enrichment.CVSSVector
	}
	if len(vuln.CWEs) == 0 {
		vuln.CWEs = enrichment.CWEs
	}
}
