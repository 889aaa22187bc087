// Copyright 2025 stridemap contributors.
// SPDX-License-Identifier: 	AGPL-3.0-or-later

package dtos

// Enrichment is the CVE detail shape the enrichment service returns.
// Adapters use it to fill gaps in raw scanner output.
type Enrichment struct {
	Score      *float64 `json:"score"`
	CVSSVector *string  `json:"cvssVector"`
	CWEs       []string `json:"cwes"`
}
