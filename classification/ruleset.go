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
	"github.com/stridemap-dev/stridemap/dtos"
)

// Ruleset is the immutable classification rule table. It is injected into
// the classifier instead of being read from disk at call time, so
// classification stays pure and unit-testable.
type Ruleset struct {
	// Categories in registration order. Registration order breaks ties.
	Categories []dtos.ThreatType `json:"categories"`
	// CWERules maps a CWE id ("CWE-89") to the categories it votes for.
	CWERules map[string][]dtos.ThreatType `json:"cweRules"`
	// KeywordRules maps a lowercase description keyword to the categories
	// it votes for.
	KeywordRules map[string][]dtos.ThreatType `json:"keywordRules"`
}

// DefaultRuleset returns the built-in CWE and keyword tables. Operators can
// override them through the CLI seed command.
func DefaultRuleset() Ruleset {
	return Ruleset{
		Categories: []dtos.ThreatType{
			dtos.ThreatTypeSpoofing,
			dtos.ThreatTypeTampering,
			dtos.ThreatTypeRepudiation,
			dtos.ThreatTypeInformationDisclosure,
			dtos.ThreatTypeDenialOfService,
			dtos.ThreatTypeElevationOfPrivilege,
		},
		CWERules: map[string][]dtos.ThreatType{
			// authentication / identity
			"CWE-287": {dtos.ThreatTypeSpoofing},
			"CWE-290": {dtos.ThreatTypeSpoofing},
			"CWE-295": {dtos.ThreatTypeSpoofing},
			"CWE-306": {dtos.ThreatTypeSpoofing},
			"CWE-346": {dtos.ThreatTypeSpoofing},
			"CWE-798": {dtos.ThreatTypeSpoofing, dtos.ThreatTypeElevationOfPrivilege},
			// injection / integrity
			"CWE-20":  {dtos.ThreatTypeTampering},
			"CWE-74":  {dtos.ThreatTypeTampering},
			"CWE-78":  {dtos.ThreatTypeTampering, dtos.ThreatTypeElevationOfPrivilege},
			"CWE-79":  {dtos.ThreatTypeTampering},
			"CWE-89":  {dtos.ThreatTypeTampering},
			"CWE-94":  {dtos.ThreatTypeTampering, dtos.ThreatTypeElevationOfPrivilege},
			"CWE-434": {dtos.ThreatTypeTampering},
			"CWE-502": {dtos.ThreatTypeTampering, dtos.ThreatTypeElevationOfPrivilege},
			// logging / audit
			"CWE-117": {dtos.ThreatTypeRepudiation},
			"CWE-223": {dtos.ThreatTypeRepudiation},
			"CWE-778": {dtos.ThreatTypeRepudiation},
			// exposure / crypto
			"CWE-22":  {dtos.ThreatTypeInformationDisclosure},
			"CWE-200": {dtos.ThreatTypeInformationDisclosure},
			"CWE-209": {dtos.ThreatTypeInformationDisclosure},
			"CWE-311": {dtos.ThreatTypeInformationDisclosure},
			"CWE-319": {dtos.ThreatTypeInformationDisclosure},
			"CWE-327": {dtos.ThreatTypeInformationDisclosure},
			"CWE-532": {dtos.ThreatTypeInformationDisclosure},
			// resource exhaustion
			"CWE-400": {dtos.ThreatTypeDenialOfService},
			"CWE-770": {dtos.ThreatTypeDenialOfService},
			"CWE-835": {dtos.ThreatTypeDenialOfService},
			// memory safety / privileges
			"CWE-119": {dtos.ThreatTypeElevationOfPrivilege},
			"CWE-120": {dtos.ThreatTypeElevationOfPrivilege},
			"CWE-190": {dtos.ThreatTypeElevationOfPrivilege},
			"CWE-250": {dtos.ThreatTypeElevationOfPrivilege},
			"CWE-269": {dtos.ThreatTypeElevationOfPrivilege},
			"CWE-416": {dtos.ThreatTypeElevationOfPrivilege},
			"CWE-787": {dtos.ThreatTypeElevationOfPrivilege},
		},
		KeywordRules: map[string][]dtos.ThreatType{
			"spoof":                {dtos.ThreatTypeSpoofing},
			"impersonat":           {dtos.ThreatTypeSpoofing},
			"authentication":      {dtos.ThreatTypeSpoofing},
			"certificate":          {dtos.ThreatTypeSpoofing},
			"injection":            {dtos.ThreatTypeTampering},
			"cross-site scripting": {dtos.ThreatTypeTampering},
			"tamper":               {dtos.ThreatTypeTampering},
			"audit":                {dtos.ThreatTypeRepudiation},
			"logging":              {dtos.ThreatTypeRepudiation},
			"disclosure":           {dtos.ThreatTypeInformationDisclosure},
			"exposure":             {dtos.ThreatTypeInformationDisclosure},
			"leak":                 {dtos.ThreatTypeInformationDisclosure},
			"plaintext":            {dtos.ThreatTypeInformationDisclosure},
			"denial of service":    {dtos.ThreatTypeDenialOfService},
			"resource exhaustion":  {dtos.ThreatTypeDenialOfService},
			"infinite loop":        {dtos.ThreatTypeDenialOfService},
			"crash":                {dtos.ThreatTypeDenialOfService},
			"privilege escalation": {dtos.ThreatTypeElevationOfPrivilege},
			"arbitrary code":       {dtos.ThreatTypeElevationOfPrivilege},
			"remote code execution": {dtos.ThreatTypeElevationOfPrivilege},
			"buffer overflow":      {dtos.ThreatTypeElevationOfPrivilege},
			"out-of-bounds write":  {dtos.ThreatTypeElevationOfPrivilege},
		},
	}
}
