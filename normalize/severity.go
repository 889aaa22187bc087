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
	"strings"

	gocvss20 "github.com/pandatix/go-cvss/20"
	gocvss30 "github.com/pandatix/go-cvss/30"
	gocvss31 "github.com/pandatix/go-cvss/31"
	gocvss40 "github.com/pandatix/go-cvss/40"
	"github.com/stridemap-dev/stridemap/dtos"
)

// Severity normalizes arbitrary scanner severity labels into the common
// enum.
func Severity(raw string) dtos.Severity {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "critical", "crit":
		return dtos.SeverityCritical
	case "high", "important":
		return dtos.SeverityHigh
	case "medium", "moderate", "med":
		return dtos.SeverityMedium
	case "low", "minor", "negligible":
		return dtos.SeverityLow
	default:
		return dtos.SeverityUnknown
	}
}

// SeverityFromScore maps a CVSS base score onto a severity label per the
// CVSS v3 qualitative rating scale.
func SeverityFromScore(score float64) dtos.Severity {
	switch {
	case score >= 9.0:
		return dtos.SeverityCritical
	case score >= 7.0:
		return dtos.SeverityHigh
	case score >= 4.0:
		return dtos.SeverityMedium
	case score > 0:
		return dtos.SeverityLow
	default:
		return dtos.SeverityUnknown
	}
}

// ScoreFromVector computes the base score from a CVSS vector string. Returns
// nil for vectors that cannot be parsed.
func ScoreFromVector(vector string) *float64 {
	if vector == "" {
		return nil
	}
	switch {
	case strings.HasPrefix(vector, "CVSS:4.0"):
		cvss, err := gocvss40.ParseVector(vector)
		if err != nil {
			return nil
		}
		score := cvss.Score()
		return &score
	case strings.HasPrefix(vector, "CVSS:3.1"):
		cvss, err := gocvss31.ParseVector(vector)
		if err != nil {
			return nil
		}
		score := cvss.BaseScore()
		return &score
	case strings.HasPrefix(vector, "CVSS:3.0"):
		cvss, err := gocvss30.ParseVector(vector)
		if err != nil {
			return nil
		}
		score := cvss.BaseScore()
		return &score
	default:
		// CVSS 2.0 vectors carry no version prefix
		cvss, err := gocvss20.ParseVector(vector)
		if err != nil {
			return nil
		}
		score := cvss.BaseScore()
		return &score
	}
}
