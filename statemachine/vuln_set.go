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

package statemachine

import (
	"github.com/stridemap-dev/stridemap/dtos"
)

// VulnSet deduplicates vulnerabilities by CVE id, first seen wins.
type VulnSet struct {
	byCVE map[string]dtos.Vulnerability
	order []string
}

func NewVulnSet(vulns []dtos.Vulnerability) *VulnSet {
	set := &VulnSet{
		byCVE: make(map[string]dtos.Vulnerability, len(vulns)),
	}
	for _, vuln := range vulns {
		set.Add(vuln)
	}
	return set
}

// Add inserts a vulnerability unless its CVE id is already present. Later
// duplicates from a different scanner are dropped, not merged field by
// field.
func (s *VulnSet) Add(vuln dtos.Vulnerability) {
	if _, exists := s.byCVE[vuln.CVEID]; exists {
		return
	}
	s.byCVE[vuln.CVEID] = vuln
	s.order = append(s.order, vuln.CVEID)
}

func (s *VulnSet) Contains(cveID string) bool {
	_, exists := s.byCVE[cveID]
	return exists
}

// Values returns the vulnerabilities in insertion order.
func (s *VulnSet) Values() []dtos.Vulnerability {
	r := make([]dtos.Vulnerability, 0, len(s.order))
	for _, cveID := range s.order {
		r = append(r, s.byCVE[cveID])
	}
	return r
}

// MergeVulnerabilities merges incoming scanner findings into the staged
// list, deduplicating by CVE id with first-seen-wins semantics. Call order
// decides which duplicate survives, but the resulting CVE id set is
// independent of interleaving.
func MergeVulnerabilities(staged []dtos.Vulnerability, incoming []dtos.Vulnerability) []dtos.Vulnerability {
	set := NewVulnSet(staged)
	for _, vuln := range incoming {
		set.Add(vuln)
	}
	return set.Values()
}

// ScanDiff is the result of comparing a finished scan against the previous
// confirmed findings.
type ScanDiff struct {
	// New findings whose CVE id was absent from the previous list.
	New []dtos.Vulnerability
	// Persisting findings present in both lists.
	Persisting []dtos.Vulnerability
	// Gone holds the previous findings no longer detected.
	Gone []dtos.Vulnerability
}

// DiffScanResults compares the freshly merged findings against the previous
// confirmed vulnerability list.
func DiffScanResults(previous []dtos.Vulnerability, current []dtos.Vulnerability) ScanDiff {
	diff := ScanDiff{
		New:        make([]dtos.Vulnerability, 0),
		Persisting: make([]dtos.Vulnerability, 0),
		Gone:       make([]dtos.Vulnerability, 0),
	}

	previousSet := NewVulnSet(previous)
	currentSet := NewVulnSet(current)

	for _, vuln := range current {
		if previousSet.Contains(vuln.CVEID) {
			diff.Persisting = append(diff.Persisting, vuln)
		} else {
			diff.New = append(diff.New, vuln)
		}
	}

	for _, vuln := range previous {
		if !currentSet.Contains(vuln.CVEID) {
			diff.Gone = append(diff.Gone, vuln)
		}
	}

	return diff
}
