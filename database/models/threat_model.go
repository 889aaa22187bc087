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

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/stridemap-dev/stridemap/dtos"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Threat is a STRIDE classified threat. Threats are shared across artifacts
// by name: a vulnerability derived threat is named after its CVE id, and the
// reconciler looks threats up by name before synthesizing a new one. Threats
// are never hard-deleted by the reconciler, only unlinked from an artifact.
type Threat struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Name        string            `json:"name" gorm:"uniqueIndex;not null"`
	Description string            `json:"description"`
	Type        dtos.ThreatType   `json:"type" gorm:"not null"`
	Status      dtos.ThreatStatus `json:"status" gorm:"default:nonMitigated"`

	// Mitigation holds free-text mitigation advice, Mitigations the
	// structured entities.
	Mitigation  datatypes.JSONSlice[string] `json:"mitigation"`
	Mitigations []Mitigation                `json:"mitigations,omitempty" gorm:"foreignKey:ThreatID;constraint:OnDelete:CASCADE;"`

	Score ThreatScore `json:"score" gorm:"embedded;embeddedPrefix:score_"`
}

func (t Threat) TableName() string {
	return "threats"
}

// BeforeSave recomputes the total as the mean of the five sub-scores. The
// total is never settable directly.
func (t *Threat) BeforeSave(tx *gorm.DB) error {
	t.Score.Total = t.Score.mean()
	return nil
}

// ThreatScore is a DREAD style rating. Total is derived, not stored input.
type ThreatScore struct {
	Total           float64 `json:"total"`
	Damage          float64 `json:"damage"`
	Reproducibility float64 `json:"reproducibility"`
	Exploitability  float64 `json:"exploitability"`
	AffectedUsers   float64 `json:"affectedUsers"`
	Discoverability float64 `json:"discoverability"`
}

func (s ThreatScore) mean() float64 {
	return (s.Damage + s.Reproducibility + s.Exploitability + s.AffectedUsers + s.Discoverability) / 5
}

type Mitigation struct {
	ID          uuid.UUID `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	CreatedAt   time.Time `json:"createdAt"`
	ThreatID    uuid.UUID `json:"threatId" gorm:"not null;type:uuid;index"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description"`
	Implemented bool      `json:"implemented"`
}

func (m Mitigation) TableName() string {
	return "mitigations"
}
