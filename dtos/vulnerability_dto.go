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

package dtos

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityUnknown  Severity = "unknown"
)

// Vulnerability is the normalized finding shape every scanner adapter
// produces. It is a value type - it only ever lives inside an artifact's
// vulnerability lists. Identity for merge and diff purposes is the CVEID
// alone.
type Vulnerability struct {
	CVEID       string   `json:"cveId"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	Score       *float64 `json:"score"`
	CVSSVector  *string  `json:"cvssVector"`
	CWEs        []string `json:"cwes"`
}
