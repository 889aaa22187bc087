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

package classification

import (
	"strings"

	"github.com/stridemap-dev/stridemap/dtos"
)

const (
	cweWeight     = 3
	keywordWeight = 2
)

// Classifier assigns a STRIDE category to a vulnerability by weighted
// voting: every matched CWE rule contributes 3 votes per mapped category,
// every matched description keyword 2. The highest cumulative score wins,
// ties broken by the category registered first. No votes defaults to
// information disclosure.
type Classifier struct {
	rules Ruleset
}

func NewClassifier(rules Ruleset) *Classifier {
	return &Classifier{rules: rules}
}

// Classify returns the winning category and a confidence in [0, 1]
// (top score / 5, capped at 1). Pure: no I/O, deterministic for a given
// ruleset.
func (c *Classifier) Classify(vuln dtos.Vulnerability) (dtos.ThreatType, float64) {
	votes := make(map[dtos.ThreatType]int, len(c.rules.Categories))

	for _, cwe := range vuln.CWEs {
		for _, category := range c.rules.CWERules[normalizeCWE(cwe)] {
			votes[category] += cweWeight
		}
	}

	description := strings.ToLower(vuln.Description)
	for keyword, categories := range c.rules.KeywordRules {
		if strings.Contains(description, keyword) {
			for _, category := range categories {
				votes[category] += keywordWeight
			}
		}
	}

	winner := dtos.ThreatTypeInformationDisclosure
	top := 0
	for _, category := range c.rules.Categories {
		if votes[category] > top {
			top = votes[category]
			winner = category
		}
	}

	confidence := float64(top) / 5
	if confidence > 1 {
		confidence = 1
	}
	return winner, confidence
}

func normalizeCWE(cwe string) string {
	cwe = strings.ToUpper(strings.TrimSpace(cwe))
	if !strings.HasPrefix(cwe, "CWE-") {
		cwe = "CWE-" + cwe
	}
	return cwe
}
